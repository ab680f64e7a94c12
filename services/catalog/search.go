package catalog

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"ihub/models"
)

// Search runs the free-text search: three concurrent sub-queries (movie
// title, series title, person name) merged in that order. A failing
// sub-query contributes nothing; the others still return. No scoring or
// re-sorting is applied — order is the upstream concatenation order.
//
// A title appearing in more than one sub-query result is intentionally not
// deduplicated here.
func (s *Service) Search(ctx context.Context, query string) []models.MediaRecord {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.MediaRecord{}
	}

	var moviePayload, seriesPayload, personPayload *tmdbListPayload

	p := pool.New()
	p.Go(func() {
		payload, err := s.tmdb.search(ctx, "movie", query)
		if err != nil {
			log.Printf("[catalog] movie search failed: %v", err)
			return
		}
		moviePayload = payload
	})
	p.Go(func() {
		payload, err := s.tmdb.search(ctx, "tv", query)
		if err != nil {
			log.Printf("[catalog] series search failed: %v", err)
			return
		}
		seriesPayload = payload
	})
	p.Go(func() {
		payload, err := s.tmdb.search(ctx, "person", query)
		if err != nil {
			log.Printf("[catalog] person search failed: %v", err)
			return
		}
		personPayload = payload
	})
	p.Wait()

	results := []models.MediaRecord{}

	if moviePayload != nil {
		for _, raw := range moviePayload.Results {
			rec := toMediaRecord(raw, models.KindMovie)
			if rec.PosterPath == "" {
				continue
			}
			results = append(results, rec)
		}
	}

	if seriesPayload != nil {
		for _, raw := range seriesPayload.Results {
			rec := toMediaRecord(raw, models.KindSeries)
			if rec.PosterPath == "" {
				continue
			}
			results = append(results, rec)
		}
	}

	if personPayload != nil {
		for _, raw := range personPayload.Results {
			rec := toMediaRecord(raw, models.KindPerson)
			if rec.ProfilePath == "" {
				continue
			}
			// People render in the same card grid as titles.
			rec.Title = rec.Name
			rec.PosterPath = rec.ProfilePath
			results = append(results, rec)
		}
	}

	return results
}

// SearchPeople returns the top person matches for the advanced-search
// people picker: profile image required, most popular first, capped at 5.
func (s *Service) SearchPeople(ctx context.Context, query string) []models.PersonRecord {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.PersonRecord{}
	}

	payload, err := s.tmdb.search(ctx, "person", query)
	if err != nil {
		log.Printf("[catalog] people search failed: %v", err)
		return []models.PersonRecord{}
	}

	people := make([]models.PersonRecord, 0, len(payload.Results))
	for _, raw := range payload.Results {
		if raw.ProfilePath == "" {
			continue
		}
		people = append(people, toPersonRecord(raw))
	}
	sort.SliceStable(people, func(i, j int) bool {
		return people[i].Popularity > people[j].Popularity
	})
	if len(people) > 5 {
		people = people[:5]
	}
	return people
}
