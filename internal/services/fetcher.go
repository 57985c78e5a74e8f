package services

import "context"

// Fetcher loads a fresh value for a cache key from the upstream.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, key string) (T, error)
}

type FetcherFunc[T any] func(ctx context.Context, key string) (T, error)

func (f FetcherFunc[T]) Fetch(ctx context.Context, key string) (T, error) {
	return f(ctx, key)
}
