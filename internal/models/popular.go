package models

type PopularCurrency struct {
	Code  string  `json:"code"`
	Count float64 `json:"count"`
}
