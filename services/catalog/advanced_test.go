package catalog

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"ihub/models"
)

func twoPeople() []models.PersonRecord {
	return []models.PersonRecord{
		{ID: 1, Name: "First Person"},
		{ID: 2, Name: "Second Person"},
	}
}

func movieDetail(id string, castIDs ...string) string {
	cast := ""
	for i, c := range castIDs {
		if i > 0 {
			cast += ","
		}
		cast += `{"id":` + c + `,"name":"Person ` + c + `"}`
	}
	return `{"id":` + id + `,"title":"Film ` + id + `","poster_path":"/p.jpg","release_date":"2015-06-01","popularity":` + id + `,"genres":[{"id":18,"name":"Drama"}],"credits":{"cast":[` + cast + `],"crew":[]}}`
}

func creditList(ids ...string) string {
	body := `{"cast":[`
	for i, id := range ids {
		if i > 0 {
			body += ","
		}
		body += `{"id":` + id + `,"title":"Film ` + id + `","poster_path":"/p.jpg","release_date":"2015-06-01"}`
	}
	return body + `],"crew":[]}`
}

func TestAdvancedSearchIntersectsPeople(t *testing.T) {
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			switch req.URL.Path {
			case "/3/person/1/combined_credits":
				return jsonResponse(http.StatusOK, creditList("10", "20", "30")), nil
			case "/3/person/2/combined_credits":
				return jsonResponse(http.StatusOK, creditList("20", "30", "40")), nil
			case "/3/movie/20":
				return jsonResponse(http.StatusOK, movieDetail("20", "1", "2")), nil
			case "/3/movie/30":
				return jsonResponse(http.StatusOK, movieDetail("30", "1", "2")), nil
			}
			t.Errorf("unexpected path %s", req.URL.Path)
			return jsonResponse(http.StatusNotFound, `{}`), nil
		}),
	}

	svc := newTestService(httpc)
	page := svc.AdvancedSearch(context.Background(), models.SearchFilterSet{People: twoPeople()}, models.KindMovie, 1)

	if len(page.Results) != 2 {
		t.Fatalf("expected the 2-title intersection, got %d results", len(page.Results))
	}
	// Popularity descending: film 30 over film 20.
	if page.Results[0].ID != "30" || page.Results[1].ID != "20" {
		t.Errorf("expected [30 20], got [%s %s]", page.Results[0].ID, page.Results[1].ID)
	}
}

func TestAdvancedSearchReverificationDropsFalsePositives(t *testing.T) {
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			switch req.URL.Path {
			case "/3/person/1/combined_credits":
				return jsonResponse(http.StatusOK, creditList("20", "30")), nil
			case "/3/person/2/combined_credits":
				return jsonResponse(http.StatusOK, creditList("20", "30")), nil
			case "/3/movie/20":
				// Authoritative credits only list person 1.
				return jsonResponse(http.StatusOK, movieDetail("20", "1")), nil
			case "/3/movie/30":
				return jsonResponse(http.StatusOK, movieDetail("30", "1", "2")), nil
			}
			return jsonResponse(http.StatusNotFound, `{}`), nil
		}),
	}

	svc := newTestService(httpc)
	page := svc.AdvancedSearch(context.Background(), models.SearchFilterSet{People: twoPeople()}, models.KindMovie, 1)

	if len(page.Results) != 1 || page.Results[0].ID != "30" {
		t.Fatalf("expected only the re-verified title, got %+v", page.Results)
	}
}

func TestAdvancedSearchSkipsUncreditedRoles(t *testing.T) {
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			switch req.URL.Path {
			case "/3/person/1/combined_credits":
				body := `{"cast":[
					{"id":20,"title":"Film 20","poster_path":"/p.jpg","release_date":"2015-06-01","character":"Man in Bar (uncredited)"},
					{"id":30,"title":"Film 30","poster_path":"/p.jpg","release_date":"2015-06-01","character":"Lead"}
				],"crew":[]}`
				return jsonResponse(http.StatusOK, body), nil
			case "/3/person/2/combined_credits":
				return jsonResponse(http.StatusOK, creditList("20", "30")), nil
			case "/3/movie/30":
				return jsonResponse(http.StatusOK, movieDetail("30", "1", "2")), nil
			}
			return jsonResponse(http.StatusNotFound, `{}`), nil
		}),
	}

	svc := newTestService(httpc)
	page := svc.AdvancedSearch(context.Background(), models.SearchFilterSet{People: twoPeople()}, models.KindMovie, 1)

	if len(page.Results) != 1 || page.Results[0].ID != "30" {
		t.Fatalf("expected the uncredited appearance excluded, got %+v", page.Results)
	}
}

func TestAdvancedSearchFailedPersonFetchMeansEmptyIntersection(t *testing.T) {
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.Path == "/3/person/1/combined_credits" {
				return jsonResponse(http.StatusOK, creditList("20", "30")), nil
			}
			return jsonResponse(http.StatusNotFound, `{}`), nil
		}),
	}

	svc := newTestService(httpc)
	page := svc.AdvancedSearch(context.Background(), models.SearchFilterSet{People: twoPeople()}, models.KindMovie, 1)

	if len(page.Results) != 0 {
		t.Fatalf("expected empty results when one person's credits fail, got %d", len(page.Results))
	}
	if page.TotalPages != 1 {
		t.Errorf("expected total_pages 1, got %d", page.TotalPages)
	}
}

func TestAdvancedSearchDiscoverBranch(t *testing.T) {
	var seen url.Values
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.Path != "/3/discover/movie" {
				t.Errorf("unexpected path %s", req.URL.Path)
				return jsonResponse(http.StatusNotFound, `{}`), nil
			}
			seen = req.URL.Query()
			body := `{"page":1,"total_pages":2,"results":[
				{"id":1,"title":"Low","poster_path":"/a.jpg","vote_average":6.1,"popularity":90},
				{"id":2,"title":"High","poster_path":"/b.jpg","vote_average":8.4,"popularity":10},
				{"id":3,"title":"Posterless","vote_average":9.9}
			]}`
			return jsonResponse(http.StatusOK, body), nil
		}),
	}

	svc := newTestService(httpc)
	filters := models.SearchFilterSet{GenreID: "18", Year: "2000-2010", MinRating: 6}
	page := svc.AdvancedSearch(context.Background(), filters, models.KindMovie, 1)

	if seen.Get("with_genres") != "18" {
		t.Errorf("expected genre filter, got %q", seen.Get("with_genres"))
	}
	if seen.Get("without_genres") != "99" {
		t.Errorf("expected documentary exclusion, got %q", seen.Get("without_genres"))
	}
	if seen.Get("primary_release_date.gte") != "2000-01-01" || seen.Get("primary_release_date.lte") != "2010-12-31" {
		t.Errorf("expected year range params, got gte=%q lte=%q", seen.Get("primary_release_date.gte"), seen.Get("primary_release_date.lte"))
	}
	if seen.Get("vote_average.gte") != "6" {
		t.Errorf("expected rating filter, got %q", seen.Get("vote_average.gte"))
	}

	if len(page.Results) != 2 {
		t.Fatalf("expected 2 results with posters, got %d", len(page.Results))
	}
	// Rating filter set, so display order is rating-descending.
	if page.Results[0].ID != "2" {
		t.Errorf("expected the higher-rated title first, got %s", page.Results[0].ID)
	}
	if page.TotalPages != 2 {
		t.Errorf("expected upstream total_pages, got %d", page.TotalPages)
	}
}

func TestAdvancedSearchDocumentaryRequestLiftsExclusion(t *testing.T) {
	var seen url.Values
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			seen = req.URL.Query()
			return jsonResponse(http.StatusOK, `{"page":1,"total_pages":1,"results":[]}`), nil
		}),
	}

	svc := newTestService(httpc)
	svc.AdvancedSearch(context.Background(), models.SearchFilterSet{GenreID: "99"}, models.KindMovie, 1)

	if seen.Get("without_genres") != "" {
		t.Errorf("expected no documentary exclusion when genre 99 requested, got %q", seen.Get("without_genres"))
	}
	if seen.Get("with_genres") != "99" {
		t.Errorf("expected genre 99 passed through, got %q", seen.Get("with_genres"))
	}
}

func TestParseYearFilter(t *testing.T) {
	cases := []struct {
		raw        string
		start, end int
		ok         bool
	}{
		{"2005", 2005, 2005, true},
		{"1990-1999", 1990, 1999, true},
		{" 2001 ", 2001, 2001, true},
		{"", 0, 0, false},
		{"abc", 0, 0, false},
		{"19xx-2000", 0, 0, false},
	}
	for _, tc := range cases {
		start, end, ok := parseYearFilter(tc.raw)
		if start != tc.start || end != tc.end || ok != tc.ok {
			t.Errorf("parseYearFilter(%q) = (%d,%d,%v), want (%d,%d,%v)", tc.raw, start, end, ok, tc.start, tc.end, tc.ok)
		}
	}
}

func TestPassesFilters(t *testing.T) {
	rec := models.MediaRecord{ID: "1", GenreIDs: []int64{18}, ReleaseDate: "2008-06-01", VoteAverage: 7.4}

	if !passesFilters(rec, models.SearchFilterSet{GenreID: "18", Year: "2008", MinRating: 7}) {
		t.Error("expected matching record to pass")
	}
	if passesFilters(rec, models.SearchFilterSet{GenreID: "35"}) {
		t.Error("expected genre mismatch to fail")
	}
	if passesFilters(rec, models.SearchFilterSet{Year: "2010-2015"}) {
		t.Error("expected out-of-range year to fail")
	}
	if passesFilters(rec, models.SearchFilterSet{MinRating: 8}) {
		t.Error("expected low rating to fail")
	}

	doc := models.MediaRecord{ID: "2", GenreIDs: []int64{99}}
	if passesFilters(doc, models.SearchFilterSet{}) {
		t.Error("expected documentary excluded by default")
	}
	if !passesFilters(doc, models.SearchFilterSet{GenreID: "99"}) {
		t.Error("expected documentary kept when explicitly requested")
	}
}
