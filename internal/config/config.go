package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	ListenAddr string
	DocRoot    string

	TLSCertFile string
	TLSKeyFile  string

	GoogleMapsKey  string
	CurrencyAPIKey string
	CurrencyAPIURL string
	CurrencyCAFile string

	CacheTTL       time.Duration
	FetchTimeout   time.Duration
	MaxConnections int
	AllowOrigin    string

	RedisURL      string
	KafkaBrokers  []string
	ExchangeTopic string
	WarmInterval  time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and the process environment.
// Credentials and TLS material are required.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg(".env not loaded (ok for prod)")
	}

	cfg := &Config{
		ListenAddr:     listenAddr(),
		DocRoot:        getEnv("DOC_ROOT", "."),
		TLSCertFile:    os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:     os.Getenv("TLS_KEY_FILE"),
		GoogleMapsKey:  getEnv("GOOGLE_MAPS_KEY", os.Getenv("googlekey")),
		CurrencyAPIKey: getEnv("CURRENCY_API_KEY", os.Getenv("currencykey")),
		CurrencyAPIURL: strings.TrimRight(getEnv("CURRENCY_API_URL", "https://openexchangerates.org"), "/"),
		CurrencyCAFile: os.Getenv("CURRENCY_CA_FILE"),
		AllowOrigin:    os.Getenv("ALLOW_ORIGIN"),
		RedisURL:       os.Getenv("REDIS_URL"),
		KafkaBrokers:   splitList(os.Getenv("KAFKA_BROKERS")),
		ExchangeTopic:  getEnv("EXCHANGE_KAFKA_TOPIC", "exchange-updates"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
	}

	var errs []error
	var err error
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.FetchTimeout, err = getDuration("FETCH_TIMEOUT", 10*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.WarmInterval, err = getDuration("WARM_INTERVAL", 5*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if cfg.MaxConnections, err = getInt("MAX_CONNECTIONS", 256); err != nil {
		errs = append(errs, err)
	}

	required := []struct{ name, value string }{
		{"GOOGLE_MAPS_KEY", cfg.GoogleMapsKey},
		{"CURRENCY_API_KEY", cfg.CurrencyAPIKey},
		{"TLS_CERT_FILE", cfg.TLSCertFile},
		{"TLS_KEY_FILE", cfg.TLSKeyFile},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%s not set", r.name))
		}
	}
	if cfg.MaxConnections <= 0 {
		errs = append(errs, fmt.Errorf("MAX_CONNECTIONS must be > 0, got %d", cfg.MaxConnections))
	}
	if cfg.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be > 0, got %s", cfg.CacheTTL))
	}
	if cfg.WarmInterval <= 0 {
		errs = append(errs, fmt.Errorf("WARM_INTERVAL must be > 0, got %s", cfg.WarmInterval))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func listenAddr() string {
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		return addr
	}
	return "0.0.0.0:" + getEnv("PORT", "8443")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
