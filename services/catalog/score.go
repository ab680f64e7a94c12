package catalog

import (
	"sort"
	"strings"

	"github.com/mozillazg/go-unidecode"

	"ihub/models"
)

// Genre identifiers that influence ranking. Priority genres (action,
// adventure, drama, comedy) lift a record; documentaries sink unless the
// caller explicitly asked for them.
var priorityGenres = map[int64]bool{28: true, 12: true, 18: true, 35: true}

const documentaryGenreID = int64(99)

// Titles matching any of these keywords are excluded from credit-based
// listings. Curation choice, not a correctness rule.
var animeKeywords = []string{"anime", "animated series", "japanese animation"}

// contentScore ranks a record for credit-based listings. Scores are relative
// ordering keys only and are never surfaced. Purely additive, no clamping.
func contentScore(rec models.MediaRecord, directorContext bool) float64 {
	score := 0.0

	if rec.MediaType == models.KindMovie {
		score += 1000
	}

	for _, id := range rec.GenreIDs {
		if priorityGenres[id] {
			score += 100
		}
		if id == documentaryGenreID {
			score -= 500
		}
	}

	score += rec.Popularity
	score += rec.VoteAverage * 10

	if directorContext && rec.ReleaseType == "Theatrical" {
		score += 200
	}

	return score
}

// validForDisplay is the filter applied before any credit-derived record is
// scored: it needs a poster, a title or name, must not be adult content, and
// must clear the anime keyword exclusion.
func validForDisplay(rec models.MediaRecord) bool {
	return rec.PosterPath != "" &&
		rec.DisplayTitle() != "" &&
		!rec.Adult &&
		!isAnimeTitle(rec.DisplayTitle())
}

// isAnimeTitle matches the keyword list against the romanized, lowercased
// title so that width variants and accented forms still match.
func isAnimeTitle(title string) bool {
	t := strings.ToLower(strings.TrimSpace(unidecode.Unidecode(title)))
	if t == "" {
		return false
	}
	for _, kw := range animeKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

// dedupeByID collapses a credit list to one record per identifier. First
// occurrence wins; attribution from later duplicates is discarded.
func dedupeByID(records []models.MediaRecord) []models.MediaRecord {
	seen := make(map[string]bool, len(records))
	out := make([]models.MediaRecord, 0, len(records))
	for _, rec := range records {
		if rec.ID == "" || seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true
		out = append(out, rec)
	}
	return out
}

// sortByContentScore orders records descending by content score. The sort is
// stable so ties keep their upstream order.
func sortByContentScore(records []models.MediaRecord, directorContext bool) {
	scores := make(map[string]float64, len(records))
	for _, rec := range records {
		scores[rec.ID] = contentScore(rec, directorContext)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return scores[records[i].ID] > scores[records[j].ID]
	})
}
