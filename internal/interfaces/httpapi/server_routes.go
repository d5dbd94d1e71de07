package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

// The frontend posts to the site root; /v1/matches is the versioned alias.
func registerScheduleRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /{$}", handler.ListMatches)
	mux.HandleFunc("POST /v1/matches", handler.ListMatches)
}
