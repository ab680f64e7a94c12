package catalog

import (
	"strconv"

	"ihub/models"
)

// toMediaRecord converts a raw TMDB record into the canonical catalog shape.
// kindHint tags records coming from endpoints whose kind is implied by the
// request (discover/movie, search/tv, ...); pass the empty string to let the
// classifier infer it. This is the only place raw records become MediaRecords.
func toMediaRecord(raw tmdbRecord, kindHint models.MediaKind) models.MediaRecord {
	rec := models.MediaRecord{
		ID:               strconv.FormatInt(raw.ID, 10),
		Title:            raw.Title,
		Name:             raw.Name,
		Overview:         raw.Overview,
		PosterPath:       raw.PosterPath,
		BackdropPath:     raw.BackdropPath,
		ProfilePath:      raw.ProfilePath,
		VoteAverage:      float64(raw.VoteAverage),
		VoteCount:        raw.VoteCount,
		ReleaseDate:      raw.ReleaseDate,
		FirstAirDate:     raw.FirstAirDate,
		GenreIDs:         raw.GenreIDs,
		MediaType:        models.MediaKind(mapUpstreamKind(raw.MediaType)),
		Popularity:       raw.Popularity,
		Adult:            raw.Adult,
		OriginalTitle:    raw.OriginalTitle,
		OriginalName:     raw.OriginalName,
		OriginalLanguage: raw.OriginalLanguage,
		OriginCountry:    raw.OriginCountry,
		TypeTag:          raw.TypeTag,
		RuntimeMinutes:   raw.Runtime,
		SeasonCount:      raw.NumberOfSeasons,
		EpisodeCount:     raw.NumberOfEpisodes,
		EpisodeRuntime:   raw.EpisodeRunTime,

		KnownForDepartment: raw.KnownForDepartment,
		Character:          raw.Character,
		Job:                raw.Job,
	}

	// Detail responses carry full genre objects instead of genre_ids.
	if len(rec.GenreIDs) == 0 && len(raw.Genres) > 0 {
		ids := make([]int64, 0, len(raw.Genres))
		for _, g := range raw.Genres {
			ids = append(ids, g.ID)
		}
		rec.GenreIDs = ids
	}

	if raw.ReleaseDates.hasTheatricalRelease() {
		rec.ReleaseType = "Theatrical"
	}

	if kindHint != "" {
		rec.MediaType = kindHint
	} else {
		rec.MediaType = Classify(rec)
	}

	return rec
}

// mapUpstreamKind translates TMDB's "tv" into the canonical "series" tag.
func mapUpstreamKind(mediaType string) string {
	switch mediaType {
	case "tv":
		return string(models.KindSeries)
	case "movie", "person":
		return mediaType
	default:
		return ""
	}
}

// apiKind is the inverse mapping, used when building endpoint paths.
func apiKind(kind models.MediaKind) string {
	if kind == models.KindSeries {
		return "tv"
	}
	return "movie"
}

// toPersonRecord converts a raw person search result.
func toPersonRecord(raw tmdbRecord) models.PersonRecord {
	return models.PersonRecord{
		ID:                 raw.ID,
		Name:               raw.Name,
		ProfilePath:        raw.ProfilePath,
		KnownForDepartment: raw.KnownForDepartment,
		Popularity:         raw.Popularity,
		Character:          raw.Character,
		Job:                raw.Job,
	}
}
