package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"currency-converter/internal/api"
	"currency-converter/internal/models"

	"github.com/rs/zerolog/log"
)

// EventPublisher receives a RefreshEvent after every successful refresh.
// kafka.Producer satisfies it.
type EventPublisher interface {
	PublishObjectAsync(key []byte, obj interface{})
}

type CacheEntry[V any] struct {
	Key       string
	Value     V
	FetchedAt time.Time
}

// Valid reports whether the entry is still within ttl at now. The boundary is inclusive.
func (e CacheEntry[V]) Valid(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.FetchedAt) <= ttl
}

type CacheStats struct {
	Entries   int    `json:"entries"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Stale     uint64 `json:"stale"`
	Refreshes uint64 `json:"refreshes"`
	Failures  uint64 `json:"failures"`
}

type CacheConfig struct {
	Name      string
	TTL       time.Duration
	Clock     func() time.Time
	Publisher EventPublisher
	// Normalize maps equivalent keys onto one entry before lookup.
	Normalize func(string) string
}

// TimedCache keeps one value per key together with the time it was fetched
// and refreshes it through a Fetcher once it is older than the TTL.
//
// Lookups share a read lock; stores take the write lock. The upstream round
// trip runs outside the lock, so two callers racing on the same stale key may
// both fetch. The last store with the newest timestamp wins.
type TimedCache[V any] struct {
	name      string
	ttl       time.Duration
	now       func() time.Time
	fetcher   Fetcher[V]
	publisher EventPublisher
	normalize func(string) string

	mu      sync.RWMutex
	entries map[string]CacheEntry[V]

	hits      atomic.Uint64
	misses    atomic.Uint64
	stale     atomic.Uint64
	refreshes atomic.Uint64
	failures  atomic.Uint64
}

func NewTimedCache[V any](cfg CacheConfig, fetcher Fetcher[V]) *TimedCache[V] {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &TimedCache[V]{
		name:      cfg.Name,
		ttl:       cfg.TTL,
		now:       now,
		fetcher:   fetcher,
		publisher: cfg.Publisher,
		normalize: cfg.Normalize,
		entries:   make(map[string]CacheEntry[V]),
	}
}

// Query returns the value for key, refreshing it first when it is missing or
// stale. The boolean is false when no value could be produced; a stale entry
// is never returned in that case.
func (c *TimedCache[V]) Query(ctx context.Context, key string) (V, bool) {
	var zero V
	if c.normalize != nil {
		key = c.normalize(key)
	}
	if key == "" {
		return zero, false
	}
	logger := log.With().Str("cache", c.name).Str("key", key).Logger()

	c.mu.RLock()
	entry, found := c.entries[key]
	c.mu.RUnlock()

	now := c.now()
	switch {
	case found && entry.Valid(now, c.ttl):
		c.hits.Add(1)
		logger.Trace().Msg("Cache HIT")
		return entry.Value, true
	case found:
		c.stale.Add(1)
		logger.Debug().Dur("age", now.Sub(entry.FetchedAt)).Msg("Cache STALE")
	default:
		c.misses.Add(1)
		logger.Debug().Msg("Cache MISS")
	}

	value, err := c.fetcher.Fetch(ctx, key)
	if err != nil {
		c.failures.Add(1)
		logger.Error().Err(err).Str("kind", failureKind(err)).Msg("Refresh failed, no data returned")
		return zero, false
	}

	fresh := CacheEntry[V]{Key: key, Value: value, FetchedAt: c.now()}
	if c.store(fresh) {
		c.refreshes.Add(1)
		logger.Debug().Time("fetched_at", fresh.FetchedAt).Msg("Cache refreshed")
		if c.publisher != nil {
			c.publisher.PublishObjectAsync([]byte(c.name+":"+key), models.RefreshEvent{
				Cache:     c.name,
				Key:       key,
				FetchedAt: fresh.FetchedAt,
			})
		}
	}
	return value, true
}

// store inserts or replaces the entry unless the current one is newer.
func (c *TimedCache[V]) store(e CacheEntry[V]) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.entries[e.Key]; ok && cur.FetchedAt.After(e.FetchedAt) {
		return false
	}
	c.entries[e.Key] = e
	return true
}

// Peek returns a copy of the stored entry without refreshing it.
func (c *TimedCache[V]) Peek(key string) (CacheEntry[V], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *TimedCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *TimedCache[V]) Name() string {
	return c.name
}

func (c *TimedCache[V]) Stats() CacheStats {
	return CacheStats{
		Entries:   c.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Stale:     c.stale.Load(),
		Refreshes: c.refreshes.Load(),
		Failures:  c.failures.Load(),
	}
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, api.ErrRemoteUnavailable):
		return "remote_unavailable"
	case errors.Is(err, api.ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "remote_unavailable"
	default:
		return "unknown"
	}
}
