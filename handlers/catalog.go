package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"ihub/models"
	"ihub/services/catalog"
)

type catalogService interface {
	PopularMovies(ctx context.Context, page int) models.Page
	MoviesByGenre(ctx context.Context, genreID string, page int) models.Page
	PopularSeries(ctx context.Context, page int) models.Page
	SeriesByGenre(ctx context.Context, genreID string, page int) models.Page
	PersonCredits(ctx context.Context, personID int64, page int) models.Page
	DirectorCredits(ctx context.Context, personID int64, page int) models.Page
	Search(ctx context.Context, query string) []models.MediaRecord
	SearchPeople(ctx context.Context, query string) []models.PersonRecord
	AdvancedSearch(ctx context.Context, filters models.SearchFilterSet, kind models.MediaKind, page int) models.Page
}

var _ catalogService = (*catalog.Service)(nil)

type CatalogHandler struct {
	Service catalogService
}

func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{Service: service}
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Movies serves popular movies, optionally narrowed to a genre.
func (h *CatalogHandler) Movies(w http.ResponseWriter, r *http.Request) {
	genreID := strings.TrimSpace(r.URL.Query().Get("genre"))

	var page models.Page
	if genreID != "" {
		page = h.Service.MoviesByGenre(r.Context(), genreID, pageParam(r))
	} else {
		page = h.Service.PopularMovies(r.Context(), pageParam(r))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

// Series serves popular series, optionally narrowed to a genre.
func (h *CatalogHandler) Series(w http.ResponseWriter, r *http.Request) {
	genreID := strings.TrimSpace(r.URL.Query().Get("genre"))

	var page models.Page
	if genreID != "" {
		page = h.Service.SeriesByGenre(r.Context(), genreID, pageParam(r))
	} else {
		page = h.Service.PopularSeries(r.Context(), pageParam(r))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

// Search runs a free-text multi-kind search.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	results := h.Service.Search(r.Context(), query)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// SearchPeople resolves a partial name to people suggestions.
func (h *CatalogHandler) SearchPeople(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	people := h.Service.SearchPeople(r.Context(), query)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(people)
}

func personIDParam(r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(mux.Vars(r)["personID"])
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// PersonCredits serves a person's full filmography, best-scored first.
func (h *CatalogHandler) PersonCredits(w http.ResponseWriter, r *http.Request) {
	id, ok := personIDParam(r)
	if !ok {
		http.Error(w, "person id is required", http.StatusBadRequest)
		return
	}

	page := h.Service.PersonCredits(r.Context(), id, pageParam(r))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

// DirectorCredits serves only the films a person directed.
func (h *CatalogHandler) DirectorCredits(w http.ResponseWriter, r *http.Request) {
	id, ok := personIDParam(r)
	if !ok {
		http.Error(w, "person id is required", http.StatusBadRequest)
		return
	}

	page := h.Service.DirectorCredits(r.Context(), id, pageParam(r))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

// AdvancedSearch resolves a structured filter set to a page of titles.
func (h *CatalogHandler) AdvancedSearch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MediaType string                 `json:"mediaType"`
		Page      int                    `json:"page"`
		Filters   models.SearchFilterSet `json:"filters"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	kind := models.MediaKind(strings.TrimSpace(body.MediaType))
	if kind == "" {
		kind = models.KindMovie
	}
	if kind != models.KindMovie && kind != models.KindSeries {
		http.Error(w, "mediaType must be movie or series", http.StatusBadRequest)
		return
	}

	page := h.Service.AdvancedSearch(r.Context(), body.Filters, kind, body.Page)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}
