package repositories

import (
	"context"
	"fmt"
	"strings"

	"currency-converter/internal/models"

	"github.com/redis/go-redis/v9"
)

const DefaultPopularKey = "popular:currencies"

// PopularRepository counts successful conversions per target currency in a
// Redis sorted set.
type PopularRepository struct {
	redis *redis.Client
	key   string
}

func NewPopularRepository(client *redis.Client, key string) *PopularRepository {
	if key == "" {
		key = DefaultPopularKey
	}
	return &PopularRepository{redis: client, key: key}
}

func (r *PopularRepository) Record(ctx context.Context, code string) error {
	return r.redis.ZIncrBy(ctx, r.key, 1, strings.ToUpper(code)).Err()
}

// Top returns up to n currencies, most requested first.
func (r *PopularRepository) Top(ctx context.Context, n int64) ([]models.PopularCurrency, error) {
	if n <= 0 {
		return nil, nil
	}
	zs, err := r.redis.ZRevRangeWithScores(ctx, r.key, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.key, err)
	}

	top := make([]models.PopularCurrency, 0, len(zs))
	for _, z := range zs {
		code, ok := z.Member.(string)
		if !ok {
			continue
		}
		top = append(top, models.PopularCurrency{Code: code, Count: z.Score})
	}
	return top, nil
}

// NoopPopular is used when no Redis is configured.
type NoopPopular struct{}

func (NoopPopular) Record(context.Context, string) error { return nil }

func (NoopPopular) Top(context.Context, int64) ([]models.PopularCurrency, error) { return nil, nil }
