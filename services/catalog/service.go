package catalog

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"

	"ihub/models"
)

const (
	// pageSize is the local page size for the flows TMDB does not paginate
	// (person credits, director credits, multi-person advanced search).
	pageSize = 20

	// minVoteCount is the quality floor applied to every discover query.
	minVoteCount = 100

	// maxDetailFetches bounds the concurrent per-candidate detail lookups.
	maxDetailFetches = 5
)

// Origin allow-lists for the curated browse shelves. Records from outside
// these regions are dropped, not deprioritized.
var (
	allowedCountries = map[string]bool{
		"US": true, "GB": true, "FR": true, "DE": true, "ES": true,
		"IT": true, "NL": true, "SE": true, "DK": true, "NO": true,
	}
	allowedLanguages = "en|es|fr|de|it"

	// Major-network allow-list for series discovery, pipe-joined TMDB
	// network identifiers.
	seriesNetworks = "213|1024|2739|49|2552|4330|3186|64|44|2|359|2668|318|16|80|174|453|13|40|56|65|2597|4"
)

// Service is the catalog query layer. Every exported query returns a
// well-formed models.Page; upstream failures degrade to the empty page and
// are logged, never propagated.
type Service struct {
	tmdb  *tmdbClient
	cache *fileCache

	// tokens issues monotonically increasing request tokens so callers can
	// discard responses that arrive after a newer query was started.
	tokens atomic.Uint64
}

// NewService constructs the catalog service with an on-disk response cache
// under cacheDir.
func NewService(apiKey, language, cacheDir string, ttlHours int) *Service {
	return &Service{
		tmdb:  newTMDBClient(apiKey, language, nil),
		cache: newFileCache(afero.NewOsFs(), filepath.Join(cacheDir, "catalog"), ttlHours),
	}
}

// newTestService wires a service against an injected HTTP client and an
// in-memory cache; used by tests only.
func newTestService(httpc *http.Client) *Service {
	return &Service{
		tmdb:  newTMDBClient("test-key", "en", httpc),
		cache: newFileCache(afero.NewMemMapFs(), "cache", 1),
	}
}

// NextToken returns a fresh request token. Handlers stamp pages with it when
// the caller did not supply its own.
func (s *Service) NextToken() uint64 {
	return s.tokens.Add(1)
}

// PopularMovies returns the curated popular-movie shelf.
func (s *Service) PopularMovies(ctx context.Context, page int) models.Page {
	return s.discoverMovies(ctx, "", page)
}

// MoviesByGenre returns the movie shelf restricted to one genre.
func (s *Service) MoviesByGenre(ctx context.Context, genreID string, page int) models.Page {
	return s.discoverMovies(ctx, genreID, page)
}

func (s *Service) discoverMovies(ctx context.Context, genreID string, page int) models.Page {
	token := s.NextToken()
	params := url.Values{}
	params.Set("sort_by", "popularity.desc")
	params.Set("page", strconv.Itoa(maxInt(page, 1)))
	params.Set("watch_region", "US")
	params.Set("with_original_language", allowedLanguages)
	params.Set("with_release_type", "2|3")
	params.Set("vote_count.gte", strconv.Itoa(minVoteCount))
	if genreID != "" {
		params.Set("with_genres", genreID)
	}

	payload, err := s.tmdb.discover(ctx, "movie", params)
	if err != nil {
		log.Printf("[catalog] discover movies failed: %v", err)
		return models.EmptyPage(page, token)
	}

	results := make([]models.MediaRecord, 0, len(payload.Results))
	for _, raw := range payload.Results {
		rec := toMediaRecord(raw, models.KindMovie)
		if rec.PosterPath == "" || !originAllowed(raw, rec) {
			continue
		}
		results = append(results, rec)
	}

	return models.Page{
		Results:    results,
		TotalPages: maxInt(payload.TotalPages, 1),
		Page:       maxInt(page, 1),
		Token:      token,
	}
}

// PopularSeries returns the curated popular-series shelf.
func (s *Service) PopularSeries(ctx context.Context, page int) models.Page {
	return s.discoverSeries(ctx, "", page)
}

// SeriesByGenre returns the series shelf restricted to one genre.
func (s *Service) SeriesByGenre(ctx context.Context, genreID string, page int) models.Page {
	return s.discoverSeries(ctx, genreID, page)
}

func (s *Service) discoverSeries(ctx context.Context, genreID string, page int) models.Page {
	token := s.NextToken()
	params := url.Values{}
	params.Set("sort_by", "popularity.desc")
	params.Set("page", strconv.Itoa(maxInt(page, 1)))
	params.Set("watch_region", "US")
	params.Set("with_original_language", allowedLanguages)
	params.Set("with_networks", seriesNetworks)
	if genreID != "" {
		params.Set("with_genres", genreID)
	}

	payload, err := s.tmdb.discover(ctx, "tv", params)
	if err != nil {
		log.Printf("[catalog] discover series failed: %v", err)
		return models.EmptyPage(page, token)
	}

	results := make([]models.MediaRecord, 0, len(payload.Results))
	for _, raw := range payload.Results {
		rec := toMediaRecord(raw, models.KindSeries)
		if rec.PosterPath == "" {
			continue
		}
		if !anyCountryAllowed(rec.OriginCountry) {
			continue
		}
		results = append(results, rec)
	}

	return models.Page{
		Results:    results,
		TotalPages: maxInt(payload.TotalPages, 1),
		Page:       maxInt(page, 1),
		Token:      token,
	}
}

// PersonCredits returns a person's combined filmography, deduplicated, scored
// and locally paginated. TMDB returns the full credit list in one response,
// so memory here is O(total credits) for the duration of the call.
func (s *Service) PersonCredits(ctx context.Context, personID int64, page int) models.Page {
	token := s.NextToken()
	credits, err := s.cachedCredits(ctx, personID)
	if err != nil {
		log.Printf("[catalog] person %d credits failed: %v", personID, err)
		return models.EmptyPage(page, token)
	}

	merged := make([]models.MediaRecord, 0, len(credits.Cast)+len(credits.Crew))
	for _, raw := range append(append([]tmdbRecord{}, credits.Cast...), credits.Crew...) {
		merged = append(merged, toMediaRecord(raw, ""))
	}

	unique := dedupeByID(merged)
	valid := make([]models.MediaRecord, 0, len(unique))
	for _, rec := range unique {
		if validForDisplay(rec) {
			valid = append(valid, rec)
		}
	}
	sortByContentScore(valid, false)

	results, totalPages := paginateLocal(valid, page)
	return models.Page{Results: results, TotalPages: totalPages, Page: maxInt(page, 1), Token: token}
}

// DirectorCredits returns the movies a person directed, ranked with
// theatrical releases above made-for-TV work. Release-window information is
// only available on the detail endpoint, so each candidate is fetched
// individually (bounded fan-out, cached).
func (s *Service) DirectorCredits(ctx context.Context, personID int64, page int) models.Page {
	token := s.NextToken()
	credits, err := s.cachedCredits(ctx, personID)
	if err != nil {
		log.Printf("[catalog] director %d credits failed: %v", personID, err)
		return models.EmptyPage(page, token)
	}

	candidates := make([]models.MediaRecord, 0, len(credits.Crew))
	for _, raw := range credits.Crew {
		if raw.Job != "Director" {
			continue
		}
		rec := toMediaRecord(raw, "")
		if rec.MediaType != models.KindMovie {
			continue
		}
		rec.Job = "Director"
		candidates = append(candidates, rec)
	}
	candidates = dedupeByID(candidates)

	// Enrich each candidate with full detail (genres, theatrical flag).
	// A failed detail fetch keeps the bare credit record.
	enriched := make([]models.MediaRecord, len(candidates))
	p := pool.New().WithMaxGoroutines(maxDetailFetches)
	for i, cand := range candidates {
		p.Go(func() {
			detail, err := s.cachedDetails(ctx, models.KindMovie, cand.ID)
			if err != nil {
				log.Printf("[catalog] movie %s detail failed: %v", cand.ID, err)
				enriched[i] = cand
				return
			}
			rec := toMediaRecord(*detail, models.KindMovie)
			rec.Job = "Director"
			enriched[i] = rec
		})
	}
	p.Wait()

	valid := make([]models.MediaRecord, 0, len(enriched))
	for _, rec := range enriched {
		if validForDisplay(rec) {
			valid = append(valid, rec)
		}
	}
	sortByContentScore(valid, true)

	results, totalPages := paginateLocal(valid, page)
	return models.Page{Results: results, TotalPages: totalPages, Page: maxInt(page, 1), Token: token}
}

func (s *Service) cachedCredits(ctx context.Context, personID int64) (*tmdbCreditsPayload, error) {
	key := fmt.Sprintf("credits:%d", personID)
	var cached tmdbCreditsPayload
	if s.cache.get(key, &cached) {
		return &cached, nil
	}
	payload, err := s.tmdb.combinedCredits(ctx, personID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.set(key, payload); err != nil {
		log.Printf("[catalog] cache write failed for %s: %v", key, err)
	}
	return payload, nil
}

func (s *Service) cachedDetails(ctx context.Context, kind models.MediaKind, id string) (*tmdbRecord, error) {
	key := fmt.Sprintf("detail:%s:%s", kind, id)
	var cached tmdbRecord
	if s.cache.get(key, &cached) {
		return &cached, nil
	}
	payload, err := s.tmdb.details(ctx, apiKind(kind), id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.set(key, payload); err != nil {
		log.Printf("[catalog] cache write failed for %s: %v", key, err)
	}
	return payload, nil
}

// originAllowed applies the region/language allow-list: production countries
// when the record carries them, original language otherwise.
func originAllowed(raw tmdbRecord, rec models.MediaRecord) bool {
	if len(raw.ProductionCountries) > 0 {
		for _, country := range raw.ProductionCountries {
			if allowedCountries[country.ISO31661] {
				return true
			}
		}
		return false
	}
	switch rec.OriginalLanguage {
	case "en", "es", "fr", "de", "it":
		return true
	}
	return false
}

func anyCountryAllowed(countries []string) bool {
	for _, c := range countries {
		if allowedCountries[c] {
			return true
		}
	}
	return false
}

// paginateLocal slices a fully materialized result list into fixed-size
// pages. Page numbers are 1-indexed; an empty list still has one page.
func paginateLocal(records []models.MediaRecord, page int) ([]models.MediaRecord, int) {
	totalPages := (len(records) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	page = maxInt(page, 1)
	start := (page - 1) * pageSize
	if start >= len(records) {
		return []models.MediaRecord{}, totalPages
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end], totalPages
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
