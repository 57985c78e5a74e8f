// test/utils/redis.go
package testutils

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
)

const RedisURL = "redis://localhost:6379/0"

// RequireRedis returns a client for the local Redis or skips the test.
func RequireRedis(t *testing.T) *redis.Client {
	t.Helper()

	opt, err := redis.ParseURL(RedisURL)
	if err != nil {
		t.Fatal(err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		t.Skipf("Redis unavailable: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb
}
