package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"ihub/models"
	"ihub/services/favorites"
)

type favoritesService interface {
	List() []models.FavoriteItem
	IsFavorite(mediaType models.MediaKind, id string) bool
	Toggle(record models.MediaRecord) (bool, error)
}

var _ favoritesService = (*favorites.Service)(nil)

type FavoritesHandler struct {
	Service favoritesService
}

func NewFavoritesHandler(service favoritesService) *FavoritesHandler {
	return &FavoritesHandler{Service: service}
}

func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.List())
}

// Toggle flips favorite membership for the submitted title and reports the
// resulting state.
func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var record models.MediaRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	favorited, err := h.Service.Toggle(record)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, favorites.ErrIdentifierRequired) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"favorited": favorited})
}

// Status reports whether a single title is favorited.
func (h *FavoritesHandler) Status(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mediaType := models.MediaKind(strings.TrimSpace(vars["mediaType"]))
	id := strings.TrimSpace(vars["id"])
	if id == "" || !mediaType.Valid() {
		http.Error(w, "id and media type are required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"favorited": h.Service.IsFavorite(mediaType, id)})
}
