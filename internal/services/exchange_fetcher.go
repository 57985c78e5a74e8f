package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// CurrencyListKey is the only key used with the list cache.
const CurrencyListKey = "currency_list"

// RateSource is the part of api.Client the rate fetcher needs.
type RateSource interface {
	FetchRate(ctx context.Context, code string) (float64, error)
}

// ListSource is the part of api.Client the list fetcher needs.
type ListSource interface {
	FetchCurrencies(ctx context.Context) (json.RawMessage, error)
}

type RateFetcher struct {
	Source RateSource
}

// Fetch expects a normalized code; see NormalizeCurrencyCode.
func (f RateFetcher) Fetch(ctx context.Context, code string) (float64, error) {
	return f.Source.FetchRate(ctx, code)
}

// NormalizeCurrencyCode is the key normalizer for the rate cache.
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type ListFetcher struct {
	Source ListSource
}

func (f ListFetcher) Fetch(ctx context.Context, key string) (json.RawMessage, error) {
	if key != CurrencyListKey {
		return nil, fmt.Errorf("unknown list key %q", key)
	}
	return f.Source.FetchCurrencies(ctx)
}
