// test/utils/upstream.go
package testutils

import (
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

// Upstream imitates the exchange-rate API over TLS.
type Upstream struct {
	URL    string
	CAFile string
	Calls  atomic.Int64
}

func StartUpstream(t *testing.T, appID string, rates map[string]float64) *Upstream {
	t.Helper()

	u := &Upstream{}
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.Calls.Add(1)
		if r.URL.Query().Get("app_id") != appID {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"error": true, "message": "invalid_app_id"})
			return
		}

		switch r.URL.Path {
		case "/api/latest.json":
			picked := map[string]float64{}
			for _, code := range strings.Split(r.URL.Query().Get("symbols"), ",") {
				if rate, ok := rates[code]; ok {
					picked[code] = rate
				}
			}
			json.NewEncoder(w).Encode(map[string]any{"base": "USD", "rates": picked})
		case "/api/currencies.json":
			names := map[string]string{}
			for code := range rates {
				names[code] = code + " name"
			}
			json.NewEncoder(w).Encode(names)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	u.URL = srv.URL
	u.CAFile = filepath.Join(t.TempDir(), "upstream-ca.pem")
	block := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	if err := os.WriteFile(u.CAFile, block, 0o600); err != nil {
		t.Fatal(err)
	}
	return u
}
