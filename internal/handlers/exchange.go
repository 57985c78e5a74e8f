package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"currency-converter/internal/models"
	"currency-converter/internal/services"

	"github.com/rs/zerolog/log"
)

const maxFormSize = 1 << 20

// ExchangeService is what the handlers need from services.ExchangeService.
type ExchangeService interface {
	Convert(ctx context.Context, amount float64, toCurrency string) (*models.ConversionResult, error)
	Currencies(ctx context.Context) (json.RawMessage, error)
	Stats() map[string]services.CacheStats
}

type ExchangeHandler struct {
	service ExchangeService
}

func NewExchangeHandler(service ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{service: service}
}

// Convert handles the form submission: currency_amount times the rate of to_currency.
func (h *ExchangeHandler) Convert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)

	contentType := r.Header.Get("Content-Type")
	var err error
	switch {
	case strings.Contains(contentType, "multipart/form-data"):
		err = r.ParseMultipartForm(maxFormSize)
	case strings.Contains(contentType, "application/x-www-form-urlencoded"):
		err = r.ParseForm()
	default:
		badRequest(w, "Bad request")
		return
	}
	if err != nil {
		log.Debug().Err(err).Msg("Unparsable form body")
		badRequest(w, "Bad request")
		return
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(r.PostFormValue("currency_amount")), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		badRequest(w, "Field 'currency_amount' must be a number")
		return
	}

	result, err := h.service.Convert(r.Context(), amount, r.PostFormValue("to_currency"))
	switch {
	case errors.Is(err, services.ErrInvalidCurrency):
		badRequest(w, "Field 'to_currency' must start with a currency code")
		return
	case errors.Is(err, services.ErrNoData):
		badGateway(w, "Exchange rate currently unavailable")
		return
	case err != nil:
		serverError(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprint(w, FormatConversion(result))
}

// CurrencyList serves the cached JSON object of currency codes to names.
func (h *ExchangeHandler) CurrencyList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.Currencies(r.Context())
	if err != nil {
		badGateway(w, "Currency list currently unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(list)))
	w.Write(list)
}

// FormatConversion renders "<result> <CODE>" with six decimals.
func FormatConversion(res *models.ConversionResult) string {
	return strconv.FormatFloat(res.Result, 'f', 6, 64) + " " + res.Code
}
