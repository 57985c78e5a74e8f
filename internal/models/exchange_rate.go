package models

import "time"

// ConversionResult is what the form endpoint computes for one submission.
type ConversionResult struct {
	Amount float64 `json:"amount"`
	Code   string  `json:"code"`
	Rate   float64 `json:"rate"`
	Result float64 `json:"result"`
}

// RefreshEvent is published every time a cache entry is replaced by a fresh upstream value.
type RefreshEvent struct {
	Cache     string    `json:"cache"`
	Key       string    `json:"key"`
	FetchedAt time.Time `json:"fetched_at"`
}
