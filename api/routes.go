package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"ihub/handlers"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleOptions handles OPTIONS requests for CORS preflight
func handleOptions(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func Register(
	r *mux.Router,
	catalogHandler *handlers.CatalogHandler,
	favoritesHandler *handlers.FavoritesHandler,
	authHandler *handlers.AuthHandler,
	playerHandler *handlers.PlayerHandler,
) {
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	// Auth routes (no session required)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/auth/check", authHandler.Check).Methods(http.MethodGet)
	api.HandleFunc("/auth/check", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", handleOptions).Methods(http.MethodOptions)

	// Everything else sits behind the gate.
	protected := api.PathPrefix("").Subrouter()
	protected.Use(authHandler.RequireSession)

	protected.HandleFunc("/catalog/movies", catalogHandler.Movies).Methods(http.MethodGet)
	protected.HandleFunc("/catalog/movies", handleOptions).Methods(http.MethodOptions)
	protected.HandleFunc("/catalog/series", catalogHandler.Series).Methods(http.MethodGet)
	protected.HandleFunc("/catalog/series", handleOptions).Methods(http.MethodOptions)

	protected.HandleFunc("/search", catalogHandler.Search).Methods(http.MethodGet)
	protected.HandleFunc("/search", handleOptions).Methods(http.MethodOptions)
	protected.HandleFunc("/search/advanced", catalogHandler.AdvancedSearch).Methods(http.MethodPost)
	protected.HandleFunc("/search/advanced", handleOptions).Methods(http.MethodOptions)

	protected.HandleFunc("/people/search", catalogHandler.SearchPeople).Methods(http.MethodGet)
	protected.HandleFunc("/people/search", handleOptions).Methods(http.MethodOptions)
	protected.HandleFunc("/people/{personID}/credits", catalogHandler.PersonCredits).Methods(http.MethodGet)
	protected.HandleFunc("/people/{personID}/credits", handleOptions).Methods(http.MethodOptions)
	protected.HandleFunc("/people/{personID}/directed", catalogHandler.DirectorCredits).Methods(http.MethodGet)
	protected.HandleFunc("/people/{personID}/directed", handleOptions).Methods(http.MethodOptions)

	protected.HandleFunc("/favorites", favoritesHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/favorites", favoritesHandler.Toggle).Methods(http.MethodPost)
	protected.HandleFunc("/favorites", handleOptions).Methods(http.MethodOptions)
	protected.HandleFunc("/favorites/{mediaType}/{id}", favoritesHandler.Status).Methods(http.MethodGet)
	protected.HandleFunc("/favorites/{mediaType}/{id}", handleOptions).Methods(http.MethodOptions)

	protected.HandleFunc("/player/sessions", playerHandler.Start).Methods(http.MethodPost)
	protected.HandleFunc("/player/sessions", handleOptions).Methods(http.MethodOptions)
	protected.HandleFunc("/player/sessions/{sessionID}", playerHandler.Status).Methods(http.MethodGet)
	protected.HandleFunc("/player/sessions/{sessionID}", playerHandler.Stop).Methods(http.MethodDelete)
	protected.HandleFunc("/player/sessions/{sessionID}", handleOptions).Methods(http.MethodOptions)
	protected.HandleFunc("/player/sessions/{sessionID}/event", playerHandler.Event).Methods(http.MethodPost)
	protected.HandleFunc("/player/sessions/{sessionID}/event", handleOptions).Methods(http.MethodOptions)
	protected.HandleFunc("/player/navigation/check", playerHandler.CheckNavigation).Methods(http.MethodPost)
	protected.HandleFunc("/player/navigation/check", handleOptions).Methods(http.MethodOptions)
}
