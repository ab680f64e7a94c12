package catalog

import "ihub/models"

// Classify resolves the media kind of a loosely typed catalog record. TMDB
// omits media_type on most endpoints (discover, details, some credit shapes),
// so the kind has to be inferred from which optional fields are populated.
//
// Precedence: an explicit upstream tag is never overridden; otherwise
// TV-indicative fields win over movie-indicative ones; a record with no
// indicators at all defaults to movie rather than being dropped.
func Classify(rec models.MediaRecord) models.MediaKind {
	if rec.MediaType == models.KindMovie || rec.MediaType == models.KindSeries {
		return rec.MediaType
	}
	if rec.MediaType == models.KindPerson {
		return models.KindPerson
	}

	if rec.FirstAirDate != "" ||
		rec.SeasonCount > 0 ||
		len(rec.EpisodeRuntime) > 0 ||
		len(rec.OriginCountry) > 0 ||
		rec.OriginalName != "" ||
		rec.TypeTag == "tv" ||
		(rec.Name != "" && rec.Title == "") {
		return models.KindSeries
	}

	if rec.ReleaseDate != "" ||
		rec.RuntimeMinutes > 0 ||
		rec.OriginalTitle != "" ||
		rec.TypeTag == "movie" ||
		(rec.Title != "" && rec.Name == "") {
		return models.KindMovie
	}

	return models.KindMovie
}
