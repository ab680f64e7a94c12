package models

// Shared catalog structures. Records arriving from TMDB are loosely typed;
// the catalog service resolves every record to a concrete MediaKind before it
// leaves the ingestion boundary.

// MediaKind discriminates the three record variants surfaced by the catalog.
type MediaKind string

const (
	KindMovie  MediaKind = "movie"
	KindSeries MediaKind = "series"
	KindPerson MediaKind = "person"
)

// Valid reports whether k is an explicit, known kind tag.
func (k MediaKind) Valid() bool {
	return k == KindMovie || k == KindSeries || k == KindPerson
}

// MediaRecord is a single catalog entry: a movie, a series, or (in free-text
// search results) a person. Upstream omits most fields depending on the
// endpoint, so everything beyond ID is optional.
type MediaRecord struct {
	ID           string    `json:"id"`
	Title        string    `json:"title,omitempty"`
	Name         string    `json:"name,omitempty"`
	Overview     string    `json:"overview,omitempty"`
	PosterPath   string    `json:"posterPath,omitempty"`
	BackdropPath string    `json:"backdropPath,omitempty"`
	ProfilePath  string    `json:"profilePath,omitempty"`
	VoteAverage  float64   `json:"voteAverage,omitempty"`
	VoteCount    int       `json:"voteCount,omitempty"`
	ReleaseDate  string    `json:"releaseDate,omitempty"`
	FirstAirDate string    `json:"firstAirDate,omitempty"`
	GenreIDs     []int64   `json:"genreIds,omitempty"`
	MediaType    MediaKind `json:"mediaType,omitempty"`
	Popularity   float64   `json:"popularity,omitempty"`
	Adult        bool      `json:"adult,omitempty"`

	// TypeTag carries the upstream "type" field verbatim. Some endpoints use
	// it as a secondary kind hint ("tv", "movie"); series details reuse it for
	// format ("Scripted", "Miniseries").
	TypeTag string `json:"type,omitempty"`

	OriginalTitle    string   `json:"originalTitle,omitempty"`
	OriginalName     string   `json:"originalName,omitempty"`
	OriginalLanguage string   `json:"originalLanguage,omitempty"`
	OriginCountry    []string `json:"originCountry,omitempty"`

	// Movie-specific.
	RuntimeMinutes int    `json:"runtimeMinutes,omitempty"`
	ReleaseType    string `json:"releaseType,omitempty"` // "Theatrical" when a type-3 release window exists

	// Series-specific.
	SeasonCount    int   `json:"seasonCount,omitempty"`
	EpisodeCount   int   `json:"episodeCount,omitempty"`
	EpisodeRuntime []int `json:"episodeRuntime,omitempty"`

	// Person-specific (free-text search results include people).
	KnownForDepartment string `json:"knownForDepartment,omitempty"`

	// Credit attribution, present on records produced from a credit list.
	Character string `json:"character,omitempty"`
	Job       string `json:"job,omitempty"`
}

// DisplayTitle returns the title for movies and the name for series/people.
func (r MediaRecord) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// PersonRecord is a cast/crew entity used both as an advanced-search filter
// input and as a display entity in credit lists.
type PersonRecord struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	ProfilePath        string  `json:"profilePath,omitempty"`
	KnownForDepartment string  `json:"knownForDepartment,omitempty"`
	Popularity         float64 `json:"popularity,omitempty"`
	Character          string  `json:"character,omitempty"`
	Job                string  `json:"job,omitempty"`
}

// Page is the uniform result of every catalog query operation. Pages are
// 1-indexed and always well-formed: a failed upstream call produces an empty
// page with TotalPages 1, never an error.
type Page struct {
	Results    []MediaRecord `json:"results"`
	TotalPages int           `json:"total_pages"`
	Page       int           `json:"page"`
	// Token correlates a page with the query that produced it so callers can
	// discard responses superseded by a newer query.
	Token uint64 `json:"token,omitempty"`
}

// EmptyPage is what every query operation degrades to on upstream failure.
func EmptyPage(page int, token uint64) Page {
	if page < 1 {
		page = 1
	}
	return Page{Results: []MediaRecord{}, TotalPages: 1, Page: page, Token: token}
}

// SearchFilterSet is the single-use input bundle for advanced search. It is
// consumed once per page request; subsequent pages re-supply the same filters.
type SearchFilterSet struct {
	Year      string         `json:"year,omitempty"` // "YYYY" or "YYYY-YYYY"
	GenreID   string         `json:"genre,omitempty"`
	People    []PersonRecord `json:"people,omitempty"`
	MinRating float64        `json:"rating,omitempty"`
}
