package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

func badRequest(w http.ResponseWriter, why string) {
	http.Error(w, why, http.StatusBadRequest)
}

func notFound(w http.ResponseWriter, target string) {
	http.Error(w, "The resource '"+target+"' was not found.", http.StatusNotFound)
}

func serverError(w http.ResponseWriter, what string) {
	http.Error(w, "An error occurred: '"+what+"'", http.StatusInternalServerError)
}

// badGateway answers when the cache had nothing to serve and the upstream refresh failed.
func badGateway(w http.ResponseWriter, what string) {
	http.Error(w, what, http.StatusBadGateway)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write JSON response")
	}
}
