package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"ihub/services/player"
)

type playerService interface {
	Start(media player.MediaRef) (player.Session, error)
	Get(id string) (player.Session, error)
	HandleLoaded(id string) (player.Session, error)
	HandleError(id, reason string) (player.Session, error)
	Stop(id string)
}

var _ playerService = (*player.Service)(nil)

type PlayerHandler struct {
	Service playerService
	Policy  player.NavigationPolicy
}

func NewPlayerHandler(service playerService, policy player.NavigationPolicy) *PlayerHandler {
	if policy == nil {
		policy = player.DefaultNavigationPolicy()
	}
	return &PlayerHandler{Service: service, Policy: policy}
}

// Start opens a playback session and returns the primary embed URL.
func (h *PlayerHandler) Start(w http.ResponseWriter, r *http.Request) {
	var media player.MediaRef
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&media); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if media.URL != "" && !h.Policy.Allow(media.URL) {
		http.Error(w, "url host not allowed", http.StatusBadRequest)
		return
	}

	session, err := h.Service.Start(media)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(session)
}

func sessionIDParam(r *http.Request) string {
	return strings.TrimSpace(mux.Vars(r)["sessionID"])
}

// Status returns the current session state, including the embed URL of the
// provider currently being attempted.
func (h *PlayerHandler) Status(w http.ResponseWriter, r *http.Request) {
	session, err := h.Service.Get(sessionIDParam(r))
	if err != nil {
		h.sessionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

// Event records a player frame event: "loaded" or "error".
func (h *PlayerHandler) Event(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Event  string `json:"event"`
		Reason string `json:"reason,omitempty"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := sessionIDParam(r)
	var (
		session player.Session
		err     error
	)
	switch body.Event {
	case "loaded":
		session, err = h.Service.HandleLoaded(id)
	case "error":
		reason := body.Reason
		if reason == "" {
			reason = "provider error"
		}
		session, err = h.Service.HandleError(id, reason)
	default:
		http.Error(w, "event must be loaded or error", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.sessionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}

// Stop tears a playback session down.
func (h *PlayerHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.Service.Stop(sessionIDParam(r))
	w.WriteHeader(http.StatusNoContent)
}

// CheckNavigation reports whether the player frame may follow a URL.
func (h *PlayerHandler) CheckNavigation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"allowed": h.Policy.Allow(body.URL)})
}

func (h *PlayerHandler) sessionError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, player.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, player.ErrSessionTerminal):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}
