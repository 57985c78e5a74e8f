package handlers

import (
	"net/http"

	"currency-converter/internal/server"
	"currency-converter/internal/services"
)

type CacheStatsSource interface {
	Stats() map[string]services.CacheStats
}

type ConnStatsSource interface {
	Stats() server.Stats
}

type HealthHandler struct {
	caches CacheStatsSource
	conns  ConnStatsSource
}

func NewHealthHandler(caches CacheStatsSource, conns ConnStatsSource) *HealthHandler {
	return &HealthHandler{caches: caches, conns: conns}
}

// Health reports cache counters and, when wired, inbound connection counters.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status": "ok",
		"caches": h.caches.Stats(),
	}
	if h.conns != nil {
		body["connections"] = h.conns.Stats()
	}
	writeJSON(w, http.StatusOK, body)
}
