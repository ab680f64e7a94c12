package catalog

import (
	"context"
	"log"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"ihub/models"
)

// AdvancedSearch resolves a filter set to a page of titles of the requested
// kind. With no people selected it is a single discover query; with people it
// intersects their credit lists and re-verifies every candidate against the
// authoritative detail record. Failures anywhere degrade to the empty page.
func (s *Service) AdvancedSearch(ctx context.Context, filters models.SearchFilterSet, kind models.MediaKind, page int) models.Page {
	token := s.NextToken()
	if kind != models.KindSeries {
		kind = models.KindMovie
	}

	var (
		results    []models.MediaRecord
		totalPages int
	)
	if len(filters.People) > 0 {
		results, totalPages = s.searchByPeople(ctx, filters, kind, page)
	} else {
		results, totalPages = s.searchByDiscover(ctx, filters, kind, page)
	}

	// Final poster filter and display ordering. A rating filter implies
	// rating-ordered display; otherwise popularity rules.
	withPosters := make([]models.MediaRecord, 0, len(results))
	for _, rec := range results {
		if rec.PosterPath != "" {
			withPosters = append(withPosters, rec)
		}
	}
	if filters.MinRating > 0 {
		sort.SliceStable(withPosters, func(i, j int) bool {
			return withPosters[i].VoteAverage > withPosters[j].VoteAverage
		})
	} else {
		sort.SliceStable(withPosters, func(i, j int) bool {
			return withPosters[i].Popularity > withPosters[j].Popularity
		})
	}

	return models.Page{
		Results:    withPosters,
		TotalPages: maxInt(totalPages, 1),
		Page:       maxInt(page, 1),
		Token:      token,
	}
}

// searchByDiscover composes a single upstream discover query from the filter
// set. Documentaries are excluded by default; requesting genre 99 lifts the
// exclusion.
func (s *Service) searchByDiscover(ctx context.Context, filters models.SearchFilterSet, kind models.MediaKind, page int) ([]models.MediaRecord, int) {
	params := url.Values{}
	params.Set("sort_by", "popularity.desc")
	params.Set("include_adult", "false")
	params.Set("vote_count.gte", strconv.Itoa(minVoteCount))
	params.Set("with_original_language", allowedLanguages)
	params.Set("page", strconv.Itoa(maxInt(page, 1)))

	if filters.GenreID != strconv.FormatInt(documentaryGenreID, 10) {
		params.Set("without_genres", strconv.FormatInt(documentaryGenreID, 10))
	}
	if filters.GenreID != "" {
		params.Set("with_genres", filters.GenreID)
	}

	if start, end, ok := parseYearFilter(filters.Year); ok {
		if kind == models.KindMovie {
			if start != end {
				params.Set("primary_release_date.gte", strconv.Itoa(start)+"-01-01")
				params.Set("primary_release_date.lte", strconv.Itoa(end)+"-12-31")
			} else {
				params.Set("primary_release_year", strconv.Itoa(start))
			}
		} else {
			if start != end {
				params.Set("first_air_date.gte", strconv.Itoa(start)+"-01-01")
				params.Set("first_air_date.lte", strconv.Itoa(end)+"-12-31")
			} else {
				params.Set("first_air_date_year", strconv.Itoa(start))
			}
		}
	}

	if filters.MinRating > 0 {
		params.Set("vote_average.gte", strconv.FormatFloat(filters.MinRating, 'f', -1, 64))
	}

	payload, err := s.tmdb.discover(ctx, apiKind(kind), params)
	if err != nil {
		log.Printf("[catalog] advanced discover failed: %v", err)
		return []models.MediaRecord{}, 1
	}

	results := make([]models.MediaRecord, 0, len(payload.Results))
	for _, raw := range payload.Results {
		results = append(results, toMediaRecord(raw, kind))
	}
	return results, maxInt(payload.TotalPages, 1)
}

// searchByPeople finds titles shared by every selected person. The bulk
// credit list is only a candidate source: each intersection hit is
// re-verified against the detail record's cast and crew before it counts.
func (s *Service) searchByPeople(ctx context.Context, filters models.SearchFilterSet, kind models.MediaKind, page int) ([]models.MediaRecord, int) {
	creditSets := s.fetchCreditIDSets(ctx, filters.People, kind)

	common := intersectIDs(creditSets)
	if len(common) == 0 {
		return []models.MediaRecord{}, 1
	}

	verified := make([]models.MediaRecord, len(common))
	p := pool.New().WithMaxGoroutines(maxDetailFetches)
	for i, id := range common {
		p.Go(func() {
			detail, err := s.cachedDetails(ctx, kind, id)
			if err != nil {
				log.Printf("[catalog] %s %s detail failed: %v", kind, id, err)
				return
			}
			if !allPeopleCredited(detail, filters.People) {
				return
			}
			verified[i] = toMediaRecord(*detail, kind)
		})
	}
	p.Wait()

	filtered := make([]models.MediaRecord, 0, len(verified))
	for _, rec := range verified {
		if rec.ID == "" {
			continue
		}
		if !passesFilters(rec, filters) {
			continue
		}
		filtered = append(filtered, rec)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Popularity > filtered[j].Popularity
	})

	return paginateLocal(filtered, page)
}

// fetchCreditIDSets fetches every selected person's combined credits
// concurrently and reduces each to the set of title identifiers of the
// requested kind. Cast credits flagged "uncredited" are skipped; crew credits
// always count. A failed fetch yields an empty set for that person — the
// siblings are unaffected, and the intersection simply comes up empty.
func (s *Service) fetchCreditIDSets(ctx context.Context, people []models.PersonRecord, kind models.MediaKind) []idSet {
	sets := make([]idSet, len(people))
	p := pool.New().WithMaxGoroutines(maxDetailFetches)
	for i, person := range people {
		p.Go(func() {
			set := idSet{ids: map[string]bool{}}
			credits, err := s.cachedCredits(ctx, person.ID)
			if err != nil {
				log.Printf("[catalog] person %d credits failed: %v", person.ID, err)
				sets[i] = set
				return
			}
			for _, raw := range credits.Cast {
				if strings.Contains(strings.ToLower(raw.Character), "uncredited") {
					continue
				}
				set.add(raw, kind)
			}
			for _, raw := range credits.Crew {
				set.add(raw, kind)
			}
			sets[i] = set
		})
	}
	p.Wait()
	return sets
}

// idSet is an identifier set that remembers insertion order, so the
// intersection result is deterministic given identical upstream responses.
type idSet struct {
	ids   map[string]bool
	order []string
}

func (s *idSet) add(raw tmdbRecord, kind models.MediaKind) {
	if raw.ID == 0 {
		return
	}
	rec := toMediaRecord(raw, "")
	if rec.MediaType != kind {
		return
	}
	if s.ids[rec.ID] {
		return
	}
	s.ids[rec.ID] = true
	s.order = append(s.order, rec.ID)
}

// intersectIDs returns the identifiers present in every set, in the first
// set's insertion order.
func intersectIDs(sets []idSet) []string {
	if len(sets) == 0 {
		return nil
	}
	var common []string
	for _, id := range sets[0].order {
		inAll := true
		for _, other := range sets[1:] {
			if !other.ids[id] {
				inAll = false
				break
			}
		}
		if inAll {
			common = append(common, id)
		}
	}
	return common
}

// allPeopleCredited checks the authoritative detail credits for every
// selected person. This defends against stale or colliding identifiers in
// the bulk combined-credits payload.
func allPeopleCredited(detail *tmdbRecord, people []models.PersonRecord) bool {
	if detail.Credits == nil {
		return false
	}
	for _, person := range people {
		found := false
		for _, member := range detail.Credits.Cast {
			if member.ID == person.ID {
				found = true
				break
			}
		}
		if !found {
			for _, member := range detail.Credits.Crew {
				if member.ID == person.ID {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// passesFilters evaluates the genre/year/rating filters against a detail
// record. Documentaries are excluded unless genre 99 was explicitly
// requested.
func passesFilters(rec models.MediaRecord, filters models.SearchFilterSet) bool {
	isDocumentary := hasGenre(rec, documentaryGenreID)
	docRequested := filters.GenreID == strconv.FormatInt(documentaryGenreID, 10)
	if isDocumentary && !docRequested {
		return false
	}

	if filters.GenreID != "" {
		wanted, err := strconv.ParseInt(filters.GenreID, 10, 64)
		if err != nil || !hasGenre(rec, wanted) {
			return false
		}
	}

	if start, end, ok := parseYearFilter(filters.Year); ok {
		year := releaseYear(rec)
		if year == 0 || year < start || year > end {
			return false
		}
	}

	if filters.MinRating > 0 && rec.VoteAverage < filters.MinRating {
		return false
	}

	return true
}

func hasGenre(rec models.MediaRecord, id int64) bool {
	for _, g := range rec.GenreIDs {
		if g == id {
			return true
		}
	}
	return false
}

// parseYearFilter parses "YYYY" or "YYYY-YYYY" into an inclusive year range.
func parseYearFilter(raw string) (start, end int, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, 0, false
	}
	if from, to, found := strings.Cut(raw, "-"); found {
		start, err1 := strconv.Atoi(strings.TrimSpace(from))
		end, err2 := strconv.Atoi(strings.TrimSpace(to))
		if err1 != nil || err2 != nil {
			return 0, 0, false
		}
		return start, end, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, 0, false
	}
	return year, year, true
}

// releaseYear extracts the year from whichever date field the record has.
func releaseYear(rec models.MediaRecord) int {
	date := rec.ReleaseDate
	if date == "" {
		date = rec.FirstAirDate
	}
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
