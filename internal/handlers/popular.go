package handlers

import (
	"context"
	"net/http"

	"currency-converter/internal/models"

	"github.com/rs/zerolog/log"
)

type PopularSource interface {
	Top(ctx context.Context, n int64) ([]models.PopularCurrency, error)
}

type PopularHandler struct {
	source PopularSource
	size   int64
}

func NewPopularHandler(source PopularSource, size int64) *PopularHandler {
	return &PopularHandler{source: source, size: size}
}

func (h *PopularHandler) List(w http.ResponseWriter, r *http.Request) {
	top, err := h.source.Top(r.Context(), h.size)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load popular currencies")
		serverError(w, "popular currencies unavailable")
		return
	}
	if top == nil {
		top = []models.PopularCurrency{}
	}
	writeJSON(w, http.StatusOK, top)
}
