package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"currency-converter/internal/models"
	"currency-converter/internal/server"
	"currency-converter/internal/services"
)

type fakeExchange struct {
	rate float64
	list json.RawMessage
	err  error
}

func (f *fakeExchange) Convert(ctx context.Context, amount float64, toCurrency string) (*models.ConversionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	code, err := services.ParseCurrencyCode(toCurrency)
	if err != nil {
		return nil, err
	}
	return &models.ConversionResult{Amount: amount, Code: code, Rate: f.rate, Result: amount * f.rate}, nil
}

func (f *fakeExchange) Currencies(ctx context.Context) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func (f *fakeExchange) Stats() map[string]services.CacheStats {
	return map[string]services.CacheStats{"rates": {Entries: 2, Hits: 5}}
}

func postForm(h http.HandlerFunc, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestConvert(t *testing.T) {
	h := NewExchangeHandler(&fakeExchange{rate: 0.85})

	rec := postForm(h.Convert, url.Values{"currency_amount": {"100"}, "to_currency": {"EUR - Euro"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
	if got := rec.Body.String(); got != "85.000000 EUR" {
		t.Errorf("body = %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestConvert_Multipart(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("currency_amount", "2.5")
	mw.WriteField("to_currency", "Japanese Yen (JPY)")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/convert", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	NewExchangeHandler(&fakeExchange{rate: 150}).Convert(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "375.000000 JPY" {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestConvert_BadInput(t *testing.T) {
	h := NewExchangeHandler(&fakeExchange{rate: 1})
	cases := []struct {
		name   string
		values url.Values
	}{
		{"missing amount", url.Values{"to_currency": {"EUR"}}},
		{"text amount", url.Values{"currency_amount": {"ten"}, "to_currency": {"EUR"}}},
		{"nan amount", url.Values{"currency_amount": {"NaN"}, "to_currency": {"EUR"}}},
		{"inf amount", url.Values{"currency_amount": {"+Inf"}, "to_currency": {"EUR"}}},
		{"bad currency", url.Values{"currency_amount": {"1"}, "to_currency": {"Euro"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := postForm(h.Convert, tc.values); rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestConvert_UnsupportedContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"currency_amount":1}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	NewExchangeHandler(&fakeExchange{rate: 1}).Convert(rec, req)

	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Bad request") {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestConvert_Errors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: rate for EUR", services.ErrNoData), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		h := NewExchangeHandler(&fakeExchange{err: tc.err})
		rec := postForm(h.Convert, url.Values{"currency_amount": {"1"}, "to_currency": {"EUR"}})
		if rec.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.status)
		}
	}
}

func TestCurrencyList(t *testing.T) {
	h := NewExchangeHandler(&fakeExchange{list: json.RawMessage(`{"EUR":"Euro"}`)})
	rec := httptest.NewRecorder()
	h.CurrencyList(rec, httptest.NewRequest(http.MethodGet, "/?q=currency_list", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != `{"EUR":"Euro"}` {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	h = NewExchangeHandler(&fakeExchange{err: services.ErrNoData})
	rec = httptest.NewRecorder()
	h.CurrencyList(rec, httptest.NewRequest(http.MethodGet, "/?q=currency_list", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

type fixedConns server.Stats

func (c fixedConns) Stats() server.Stats { return server.Stats(c) }

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	h := NewHealthHandler(&fakeExchange{}, fixedConns{Accepted: 7, Active: 2})
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var body struct {
		Status      string                         `json:"status"`
		Caches      map[string]services.CacheStats `json:"caches"`
		Connections *server.Stats                  `json:"connections"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Caches["rates"].Hits != 5 {
		t.Errorf("body = %+v", body)
	}
	if body.Connections == nil || body.Connections.Accepted != 7 || body.Connections.Active != 2 {
		t.Errorf("connections = %+v", body.Connections)
	}
}

func TestHealth_WithoutConnections(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(&fakeExchange{}, nil).Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if strings.Contains(rec.Body.String(), "connections") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func writeDocRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":         `<script src="https://maps.example/js?key={{.GoogleKey}}"></script>`,
		"styles/styles.css":  "body{}",
		"scripts/scripts.js": "void 0;",
		"docs/index.html":    "docs",
	}
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestIndex(t *testing.T) {
	h := NewPageHandler(writeDocRoot(t), "k3y", "https://example.org")
	rec := httptest.NewRecorder()
	h.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "key=k3y") {
		t.Errorf("body = %q", rec.Body.String())
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://example.org" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestIndex_Missing(t *testing.T) {
	h := NewPageHandler(t.TempDir(), "k3y", "")
	rec := httptest.NewRecorder()
	h.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unexpected CORS header")
	}
}

func TestIndex_BrokenTemplate(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "index.html"), []byte("{{.GoogleKey"), 0o644)

	rec := httptest.NewRecorder()
	NewPageHandler(dir, "", "").Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestGoogleKey(t *testing.T) {
	rec := httptest.NewRecorder()
	NewPageHandler("", "k3y", "").GoogleKey(rec, httptest.NewRequest(http.MethodGet, "/?q=googlekey", nil))

	var body map[string]string
	json.NewDecoder(rec.Body).Decode(&body)
	if body["googlekey"] != "k3y" {
		t.Fatalf("body = %v", body)
	}
}

func TestByQuery(t *testing.T) {
	mark := func(s string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(s)) }
	}
	h := ByQuery("q", map[string]http.HandlerFunc{"currency_list": mark("list")}, mark("page"))

	cases := []struct {
		target string
		status int
		body   string
	}{
		{"/", http.StatusOK, "page"},
		{"/?q=currency_list", http.StatusOK, "list"},
		{"/?q=nope", http.StatusNotFound, "was not found"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))
		if rec.Code != tc.status || !strings.Contains(rec.Body.String(), tc.body) {
			t.Errorf("%s: got %d %q", tc.target, rec.Code, rec.Body.String())
		}
	}
}

func TestStaticHandler(t *testing.T) {
	h := NewStaticHandler(writeDocRoot(t))
	cases := []struct {
		target      string
		status      int
		contentType string
		body        string
	}{
		{"/styles/styles.css", http.StatusOK, "text/css", "body{}"},
		{"/scripts/scripts.js", http.StatusOK, "application/javascript", "void 0;"},
		{"/docs/", http.StatusOK, "text/html", "docs"},
		{"/docs", http.StatusNotFound, "", "The resource '/docs' was not found."},
		{"/missing.png", http.StatusNotFound, "", "was not found"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))
		if rec.Code != tc.status {
			t.Errorf("%s: status = %d, want %d", tc.target, rec.Code, tc.status)
			continue
		}
		if tc.contentType != "" && rec.Header().Get("Content-Type") != tc.contentType {
			t.Errorf("%s: Content-Type = %q", tc.target, rec.Header().Get("Content-Type"))
		}
		if !strings.Contains(rec.Body.String(), tc.body) {
			t.Errorf("%s: body = %q", tc.target, rec.Body.String())
		}
	}
}

func TestMimeType(t *testing.T) {
	cases := map[string]string{
		"a.HTML":      "text/html",
		"logo.svgz":   "image/svg+xml",
		"favicon.ico": "image/vnd.microsoft.icon",
		"data.json":   "application/json",
		"noext":       "application/text",
	}
	for name, want := range cases {
		if got := MimeType(name); got != want {
			t.Errorf("MimeType(%q) = %q, want %q", name, got, want)
		}
	}
}

type fakePopular struct {
	top []models.PopularCurrency
	err error
}

func (f fakePopular) Top(ctx context.Context, n int64) ([]models.PopularCurrency, error) {
	return f.top, f.err
}

func TestPopularList(t *testing.T) {
	rec := httptest.NewRecorder()
	NewPopularHandler(fakePopular{}, 5).List(rec, httptest.NewRequest(http.MethodGet, "/?q=popular", nil))
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty body = %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	top := []models.PopularCurrency{{Code: "EUR", Count: 3}}
	NewPopularHandler(fakePopular{top: top}, 5).List(rec, httptest.NewRequest(http.MethodGet, "/?q=popular", nil))
	var got []models.PopularCurrency
	json.NewDecoder(rec.Body).Decode(&got)
	if len(got) != 1 || got[0].Code != "EUR" {
		t.Errorf("got %+v", got)
	}

	rec = httptest.NewRecorder()
	NewPopularHandler(fakePopular{err: errors.New("redis down")}, 5).List(rec, httptest.NewRequest(http.MethodGet, "/?q=popular", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
