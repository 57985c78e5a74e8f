package cron

import (
	"context"
	"time"

	"currency-converter/internal/models"

	"github.com/rs/zerolog/log"
)

type PopularSource interface {
	Top(ctx context.Context, n int64) ([]models.PopularCurrency, error)
}

type RateQuerier interface {
	Query(ctx context.Context, key string) (float64, bool)
}

// CacheWarmer periodically queries the rate cache for the most requested
// currencies, so stale popular entries are refreshed before a user asks.
// Fresh entries are served from memory and cost nothing.
type CacheWarmer struct {
	source   PopularSource
	cache    RateQuerier
	interval time.Duration
	size     int64
}

func NewCacheWarmer(source PopularSource, cache RateQuerier, interval time.Duration, size int64) *CacheWarmer {
	return &CacheWarmer{
		source:   source,
		cache:    cache,
		interval: interval,
		size:     size,
	}
}

func (w *CacheWarmer) Start(ctx context.Context) {
	if w.interval <= 0 {
		log.Error().Dur("interval", w.interval).Msg("CacheWarmer not started: interval must be positive")
		return
	}
	log.Info().Dur("interval", w.interval).Int64("size", w.size).Msg("CacheWarmer started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				log.Warn().Err(err).Msg("CacheWarmer iteration failed")
			}
		case <-ctx.Done():
			log.Info().Msg("CacheWarmer stopped")
			return
		}
	}
}

// RunOnce returns the number of currencies that have a value after the pass.
func (w *CacheWarmer) RunOnce(ctx context.Context) (int, error) {
	top, err := w.source.Top(ctx, w.size)
	if err != nil {
		return 0, err
	}

	warm := 0
	for _, c := range top {
		if ctx.Err() != nil {
			return warm, ctx.Err()
		}
		if _, ok := w.cache.Query(ctx, c.Code); ok {
			warm++
		}
	}
	log.Debug().Int("popular", len(top)).Int("warm", warm).Msg("CacheWarmer pass done")
	return warm, nil
}
