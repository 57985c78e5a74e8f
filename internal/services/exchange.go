package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"currency-converter/internal/models"

	"github.com/rs/zerolog/log"
)

var (
	// ErrNoData means the cache could neither serve nor refresh the value.
	ErrNoData          = errors.New("exchange data unavailable")
	ErrInvalidCurrency = errors.New("invalid currency")
)

type PopularityRecorder interface {
	Record(ctx context.Context, code string) error
}

type ExchangeService struct {
	rates   *TimedCache[float64]
	list    *TimedCache[json.RawMessage]
	popular PopularityRecorder
}

func NewExchangeService(
	rates *TimedCache[float64],
	list *TimedCache[json.RawMessage],
	popular PopularityRecorder,
) *ExchangeService {
	return &ExchangeService{
		rates:   rates,
		list:    list,
		popular: popular,
	}
}

// Convert multiplies amount by the cached rate of the currency named in toCurrency.
func (s *ExchangeService) Convert(ctx context.Context, amount float64, toCurrency string) (*models.ConversionResult, error) {
	code, err := ParseCurrencyCode(toCurrency)
	if err != nil {
		return nil, err
	}

	rate, ok := s.rates.Query(ctx, code)
	if !ok {
		return nil, fmt.Errorf("%w: rate for %s", ErrNoData, code)
	}

	if s.popular != nil {
		if err := s.popular.Record(ctx, code); err != nil {
			log.Warn().Err(err).Str("code", code).Msg("Failed to record popular currency")
		}
	}

	return &models.ConversionResult{
		Amount: amount,
		Code:   code,
		Rate:   rate,
		Result: amount * rate,
	}, nil
}

// Currencies returns the JSON object of supported currencies.
func (s *ExchangeService) Currencies(ctx context.Context) (json.RawMessage, error) {
	list, ok := s.list.Query(ctx, CurrencyListKey)
	if !ok {
		return nil, fmt.Errorf("%w: currency list", ErrNoData)
	}
	return list, nil
}

func (s *ExchangeService) Stats() map[string]CacheStats {
	return map[string]CacheStats{
		s.rates.Name(): s.rates.Stats(),
		s.list.Name():  s.list.Stats(),
	}
}

// ParseCurrencyCode extracts the code from a form value. The leading token
// before the first space wins ("EUR - Euro"); otherwise a parenthesized code
// is accepted ("Euro (EUR)").
func ParseCurrencyCode(value string) (string, error) {
	value = strings.TrimSpace(value)
	lead, _, _ := strings.Cut(value, " ")
	if isCurrencyCode(lead) {
		return strings.ToUpper(lead), nil
	}
	if open := strings.IndexByte(value, '('); open >= 0 {
		if inner, _, ok := strings.Cut(value[open+1:], ")"); ok && isCurrencyCode(inner) {
			return strings.ToUpper(inner), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, value)
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}
