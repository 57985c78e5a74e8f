package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/netutil"
)

type Config struct {
	Addr           string
	TLS            *tls.Config
	MaxConnections int
	// Conns is shared with the health endpoint; nil gets a private counter.
	Conns *ConnCounter
}

type Stats struct {
	Accepted int64 `json:"accepted"`
	Active   int64 `json:"active"`
}

// ConnCounter tracks inbound connections through http.Server.ConnState.
type ConnCounter struct {
	accepted atomic.Int64
	active   atomic.Int64
}

func (c *ConnCounter) Stats() Stats {
	return Stats{Accepted: c.accepted.Load(), Active: c.active.Load()}
}

func (c *ConnCounter) track(conn net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		c.accepted.Add(1)
		c.active.Add(1)
	case http.StateClosed, http.StateHijacked:
		c.active.Add(-1)
	default:
		return
	}
	log.Trace().Str("remote", conn.RemoteAddr().String()).Str("state", state.String()).Msg("Connection state")
}

// Server terminates TLS for inbound connections. Each accepted connection is
// served by its own goroutine, one request at a time, and kept alive until
// the client asks to close. The number of open connections is capped.
type Server struct {
	http     *http.Server
	maxConns int
	conns    *ConnCounter
}

// LoadTLSConfig loads the server certificate and key once at startup.
func LoadTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load TLS key pair: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func New(cfg Config, handler http.Handler) *Server {
	s := &Server{maxConns: cfg.MaxConnections, conns: cfg.Conns}
	if s.maxConns <= 0 {
		s.maxConns = 256
	}
	if s.conns == nil {
		s.conns = &ConnCounter{}
	}

	errLogger := log.With().Str("component", "http").Logger()
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		TLSConfig:         cfg.TLS,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		ErrorLog:          stdlog.New(errLogger, "", 0),
		ConnState:         s.conns.track,
	}
	return s
}

// Listen binds the address and applies the connection cap.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return nil, err
	}
	return netutil.LimitListener(ln, s.maxConns), nil
}

// Serve runs the TLS accept loop on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	log.Info().Str("addr", ln.Addr().String()).Int("max_connections", s.maxConns).Msg("HTTPS server started")
	err := s.http.ServeTLS(ln, "", "")
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting, lets in-flight requests finish and closes idle
// connections, which performs the TLS close_notify.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) Stats() Stats {
	return s.conns.Stats()
}
