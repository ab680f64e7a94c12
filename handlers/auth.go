package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ihub/services/gate"
)

type gateService interface {
	Enabled() bool
	Login(pin string) (string, error)
	Check(token string) bool
	Logout(token string)
}

var _ gateService = (*gate.Service)(nil)

type AuthHandler struct {
	Service gateService
}

func NewAuthHandler(service gateService) *AuthHandler {
	return &AuthHandler{Service: service}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// Login verifies the PIN and hands back a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Pin string `json:"pin"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	token, err := h.Service.Login(body.Pin)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, gate.ErrPinRequired):
			status = http.StatusBadRequest
		case errors.Is(err, gate.ErrPinInvalid):
			status = http.StatusUnauthorized
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// Check reports whether the presented token names a live session.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	valid := h.Service.Check(bearerToken(r))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{
		"valid":   valid,
		"enabled": h.Service.Enabled(),
	})
}

// Logout discards the presented session token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Service.Logout(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

// RequireSession wraps a handler behind the gate. With no PIN configured the
// wrapper is a pass-through.
func (h *AuthHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.Service.Check(bearerToken(r)) {
			http.Error(w, "session required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
