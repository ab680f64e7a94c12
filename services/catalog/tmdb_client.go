package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"
)

type tmdbClient struct {
	apiKey   string
	language string
	httpc    *http.Client
	limiter  *rate.Limiter
}

func newTMDBClient(apiKey, language string, httpc *http.Client) *tmdbClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	// TMDB allows ~50 req/s per key; stay well under it.
	return &tmdbClient{
		apiKey:   strings.TrimSpace(apiKey),
		language: language,
		httpc:    httpc,
		limiter:  rate.NewLimiter(rate.Every(25*time.Millisecond), 5),
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

// doGET fetches a TMDB endpoint into v. Transport failures, 429 and 5xx are
// retried with exponential backoff; other 4xx responses fail immediately.
func (c *tmdbClient) doGET(ctx context.Context, endpoint string, params url.Values, v any) error {
	if !c.isConfigured() {
		return errors.New("tmdb api key not configured")
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if params.Get("language") == "" {
		params.Set("language", normalizeLanguage(c.language))
	}
	fullURL := tmdbBaseURL + endpoint + "?" + params.Encode()

	return retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return fmt.Errorf("tmdb %s: %s", endpoint, resp.Status)
			}
			if resp.StatusCode >= 400 {
				return retry.Unrecoverable(fmt.Errorf("tmdb %s: %s", endpoint, resp.Status))
			}

			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(fmt.Errorf("tmdb %s: decode: %w", endpoint, err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

func normalizeLanguage(lang string) string {
	lang = strings.TrimSpace(strings.ReplaceAll(lang, "_", "-"))
	if len(lang) == 2 {
		return strings.ToLower(lang) + "-US"
	}
	if len(lang) >= 5 {
		return strings.ToLower(lang[:2]) + "-" + strings.ToUpper(lang[3:5])
	}
	return "en-US"
}

// flexFloat decodes a JSON value that should be a number but is sometimes a
// quoted string or null in upstream payloads.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		*f = 0
		return nil
	}
	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(parsed)
	return nil
}

// tmdbRecord is the loose shape shared by list results, credit entries and
// detail responses. Only the fields present on a given endpoint are populated.
type tmdbRecord struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Name             string    `json:"name"`
	Overview         string    `json:"overview"`
	PosterPath       string    `json:"poster_path"`
	BackdropPath     string    `json:"backdrop_path"`
	ProfilePath      string    `json:"profile_path"`
	VoteAverage      flexFloat `json:"vote_average"`
	VoteCount        int       `json:"vote_count"`
	ReleaseDate      string    `json:"release_date"`
	FirstAirDate     string    `json:"first_air_date"`
	GenreIDs         []int64   `json:"genre_ids"`
	Genres           []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
	MediaType        string    `json:"media_type"`
	Popularity       float64   `json:"popularity"`
	Adult            bool      `json:"adult"`
	OriginalTitle    string    `json:"original_title"`
	OriginalName     string    `json:"original_name"`
	OriginalLanguage string    `json:"original_language"`
	OriginCountry    []string  `json:"origin_country"`
	TypeTag          string    `json:"type"`
	Runtime          int       `json:"runtime"`
	NumberOfSeasons  int       `json:"number_of_seasons"`
	NumberOfEpisodes int       `json:"number_of_episodes"`
	EpisodeRunTime   []int     `json:"episode_run_time"`

	ProductionCountries []struct {
		ISO31661 string `json:"iso_3166_1"`
	} `json:"production_countries"`

	KnownForDepartment string `json:"known_for_department"`
	Character          string `json:"character"`
	Job                string `json:"job"`

	Credits      *tmdbCredits      `json:"credits"`
	ReleaseDates *tmdbReleaseDates `json:"release_dates"`
}

type tmdbCredits struct {
	Cast []tmdbRecord `json:"cast"`
	Crew []tmdbRecord `json:"crew"`
}

type tmdbReleaseDates struct {
	Results []struct {
		ISO31661     string `json:"iso_3166_1"`
		ReleaseDates []struct {
			Type int `json:"type"`
		} `json:"release_dates"`
	} `json:"results"`
}

// hasTheatricalRelease reports whether any country has a type-3 (theatrical)
// release window.
func (d *tmdbReleaseDates) hasTheatricalRelease() bool {
	if d == nil {
		return false
	}
	for _, country := range d.Results {
		for _, entry := range country.ReleaseDates {
			if entry.Type == 3 {
				return true
			}
		}
	}
	return false
}

type tmdbListPayload struct {
	Page       int          `json:"page"`
	Results    []tmdbRecord `json:"results"`
	TotalPages int          `json:"total_pages"`
}

type tmdbCreditsPayload struct {
	Cast []tmdbRecord `json:"cast"`
	Crew []tmdbRecord `json:"crew"`
}

func (c *tmdbClient) discover(ctx context.Context, kind string, params url.Values) (*tmdbListPayload, error) {
	var payload tmdbListPayload
	if err := c.doGET(ctx, "/discover/"+kind, params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *tmdbClient) search(ctx context.Context, kind, query string) (*tmdbListPayload, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	var payload tmdbListPayload
	if err := c.doGET(ctx, "/search/"+kind, params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// combinedCredits fetches a person's full cast and crew credit list. The
// endpoint is un-paginated; callers paginate locally.
func (c *tmdbClient) combinedCredits(ctx context.Context, personID int64) (*tmdbCreditsPayload, error) {
	var payload tmdbCreditsPayload
	endpoint := fmt.Sprintf("/person/%d/combined_credits", personID)
	if err := c.doGET(ctx, endpoint, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// details fetches a movie or tv detail record with credits and (for movies)
// release windows appended.
func (c *tmdbClient) details(ctx context.Context, kind, id string) (*tmdbRecord, error) {
	params := url.Values{}
	if kind == "movie" {
		params.Set("append_to_response", "credits,release_dates")
	} else {
		params.Set("append_to_response", "credits")
	}
	var payload tmdbRecord
	if err := c.doGET(ctx, "/"+kind+"/"+id, params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
