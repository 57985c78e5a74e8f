package api

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	userAgent   = "currency-converter/1.0"
	maxBodySize = 4 << 20
)

type ClientConfig struct {
	BaseURL string
	APIKey  string
	// CAFile is an optional PEM bundle appended to the root pool.
	CAFile string
	// RootCAs replaces the system root pool when set.
	RootCAs *x509.CertPool
	Timeout time.Duration
}

// Client talks to an openexchangerates.org compatible API over TLS.
// It performs one exchange per connection and caches nothing.
type Client struct {
	baseURL *url.URL
	apiKey  string
	timeout time.Duration
	http    *http.Client
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("currency API key not set")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme != "https" || base.Host == "" {
		return nil, fmt.Errorf("base URL must be an https URL, got %q", cfg.BaseURL)
	}

	roots := cfg.RootCAs
	if roots == nil {
		if roots, err = x509.SystemCertPool(); err != nil {
			log.Warn().Err(err).Msg("System cert pool unavailable, starting from an empty pool")
			roots = x509.NewCertPool()
		}
	}
	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		if !roots.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", cfg.CAFile)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: timeout,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			RootCAs:    roots,
			MinVersion: tls.VersionTLS12,
		},
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		DisableKeepAlives:     true,
		ForceAttemptHTTP2:     false,
	}

	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout, Transport: transport},
	}, nil
}

// FetchRate returns rates.<CODE> from the latest rates endpoint.
func (c *Client) FetchRate(ctx context.Context, code string) (float64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return 0, fmt.Errorf("%w: empty currency code", ErrMalformedResponse)
	}

	body, err := c.get(ctx, "/api/latest.json", url.Values{
		"app_id":  {c.apiKey},
		"symbols": {code},
	})
	if err != nil {
		return 0, err
	}

	var result struct {
		Rates map[string]*float64 `json:"rates"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("%w: decode rates: %w", ErrMalformedResponse, err)
	}

	rate, ok := result.Rates[code]
	if !ok || rate == nil {
		return 0, fmt.Errorf("%w: currency %s not found", ErrMalformedResponse, code)
	}
	return *rate, nil
}

// FetchCurrencies returns the raw JSON object mapping currency codes to names.
func (c *Client) FetchCurrencies(ctx context.Context) (json.RawMessage, error) {
	body, err := c.get(ctx, "/api/currencies.json", url.Values{
		"app_id": {c.apiKey},
	})
	if err != nil {
		return nil, err
	}

	var names map[string]string
	if err := json.Unmarshal(body, &names); err != nil {
		return nil, fmt.Errorf("%w: decode currency list: %w", ErrMalformedResponse, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: empty currency list", ErrMalformedResponse)
	}
	return json.RawMessage(body), nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL.JoinPath(path)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrRemoteUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		// url.Error carries the full URL, app_id included
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("%w: GET %s: %w", ErrRemoteUnavailable, path, err)
	}
	defer closeBody(resp.Body, path)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrRemoteUnavailable, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: GET %s returned %d: %s",
			ErrRemoteUnavailable, path, resp.StatusCode, upstreamMessage(resp.StatusCode, body))
	}
	return body, nil
}

// closeBody tears the connection down. A peer that already closed is fine;
// anything else is logged, the body has been read by then.
func closeBody(body io.Closer, path string) {
	if err := body.Close(); err != nil && !peerClosed(err) {
		log.Warn().Err(err).Str("remote", path).Msg("Upstream connection teardown failed")
	}
}

func peerClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}

func upstreamMessage(status int, body []byte) string {
	var errResp struct {
		Message     string `json:"message"`
		Description string `json:"description"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
		if errResp.Description != "" {
			return errResp.Message + " (" + errResp.Description + ")"
		}
		return errResp.Message
	}
	return http.StatusText(status)
}
