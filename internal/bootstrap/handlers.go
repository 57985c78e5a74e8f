package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"

	"currency-converter/internal/api"
	"currency-converter/internal/config"
	"currency-converter/internal/db"
	"currency-converter/internal/handlers"
	"currency-converter/internal/kafka"
	"currency-converter/internal/models"
	"currency-converter/internal/repositories"
	"currency-converter/internal/server"
	"currency-converter/internal/services"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const popularSize = 5

// Popular records and ranks requested currencies.
type Popular interface {
	Record(ctx context.Context, code string) error
	Top(ctx context.Context, n int64) ([]models.PopularCurrency, error)
}

type HandlersBundle struct {
	ExchangeHandler *handlers.ExchangeHandler
	PageHandler     *handlers.PageHandler
	StaticHandler   *handlers.StaticHandler
	PopularHandler  *handlers.PopularHandler
	HealthHandler   *handlers.HealthHandler
}

type App struct {
	Config    *config.Config
	RateCache *services.TimedCache[float64]
	ListCache *services.TimedCache[json.RawMessage]
	Exchange  *services.ExchangeService
	Popular   Popular
	Handlers  *HandlersBundle
	// Conns is handed to server.New so /healthz reports live connection counts.
	Conns *server.ConnCounter

	redis    *redis.Client
	producer *kafka.Producer
}

// InitBootstrap wires the upstream client, both caches and the optional
// Redis and Kafka integrations.
func InitBootstrap(ctx context.Context, cfg *config.Config) (*App, error) {
	client, err := api.NewClient(api.ClientConfig{
		BaseURL: cfg.CurrencyAPIURL,
		APIKey:  cfg.CurrencyAPIKey,
		CAFile:  cfg.CurrencyCAFile,
		Timeout: cfg.FetchTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("currency API client: %w", err)
	}

	app := &App{Config: cfg, Popular: repositories.NoopPopular{}, Conns: &server.ConnCounter{}}

	if cfg.RedisURL != "" {
		rdb, err := db.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		app.redis = rdb
		app.Popular = repositories.NewPopularRepository(rdb, repositories.DefaultPopularKey)
	} else {
		log.Info().Msg("REDIS_URL not set, popularity tracking disabled")
	}

	var publisher services.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.ExchangeTopic)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.producer = producer
		publisher = producer
	} else {
		log.Info().Msg("KAFKA_BROKERS not set, refresh events disabled")
	}

	app.RateCache = services.NewTimedCache[float64](services.CacheConfig{
		Name:      "rates",
		TTL:       cfg.CacheTTL,
		Publisher: publisher,
		Normalize: services.NormalizeCurrencyCode,
	}, services.RateFetcher{Source: client})
	app.ListCache = services.NewTimedCache[json.RawMessage](services.CacheConfig{
		Name:      services.CurrencyListKey,
		TTL:       cfg.CacheTTL,
		Publisher: publisher,
	}, services.ListFetcher{Source: client})

	app.Exchange = services.NewExchangeService(app.RateCache, app.ListCache, app.Popular)
	app.Handlers = InitHandlers(cfg, app.Exchange, app.Popular, app.Conns)
	return app, nil
}

func InitHandlers(
	cfg *config.Config,
	exchange handlers.ExchangeService,
	popular handlers.PopularSource,
	conns handlers.ConnStatsSource,
) *HandlersBundle {
	return &HandlersBundle{
		ExchangeHandler: handlers.NewExchangeHandler(exchange),
		PageHandler:     handlers.NewPageHandler(cfg.DocRoot, cfg.GoogleMapsKey, cfg.AllowOrigin),
		StaticHandler:   handlers.NewStaticHandler(cfg.DocRoot),
		PopularHandler:  handlers.NewPopularHandler(popular, popularSize),
		HealthHandler:   handlers.NewHealthHandler(exchange, conns),
	}
}

// Close releases the Kafka producer and the Redis connection.
func (a *App) Close() {
	if a.producer != nil {
		a.producer.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Redis close error")
		}
	}
}
