package integration

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"currency-converter/internal/bootstrap"
	"currency-converter/internal/config"
	testutils "currency-converter/test/utils"
)

const appID = "integration-app-id"

func testConfig(t *testing.T, upstream *testutils.Upstream) *config.Config {
	t.Helper()

	docRoot := t.TempDir()
	if err := os.WriteFile(filepath.Join(docRoot, "index.html"), []byte("{{.GoogleKey}}"), 0o644); err != nil {
		t.Fatal(err)
	}
	return &config.Config{
		ListenAddr:     "127.0.0.1:0",
		DocRoot:        docRoot,
		GoogleMapsKey:  "maps-key",
		CurrencyAPIKey: appID,
		CurrencyAPIURL: upstream.URL,
		CurrencyCAFile: upstream.CAFile,
		CacheTTL:       time.Hour,
		FetchTimeout:   5 * time.Second,
		MaxConnections: 16,
		WarmInterval:   time.Minute,
	}
}

func startApp(t *testing.T, cfg *config.Config) (*bootstrap.App, *httptest.Server) {
	t.Helper()

	app, err := bootstrap.InitBootstrap(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitBootstrap: %v", err)
	}
	srv := httptest.NewServer(bootstrap.InitRoutes(app.Handlers))
	t.Cleanup(func() {
		srv.Close()
		app.Close()
	})
	return app, srv
}

func convert(t *testing.T, baseURL, amount, currency string) (int, string) {
	t.Helper()

	form := url.Values{"currency_amount": {amount}, "to_currency": {currency}}
	resp, err := http.Post(baseURL+"/", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}
