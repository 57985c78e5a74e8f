package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"currency-converter/internal/bootstrap"
	"currency-converter/internal/config"
	"currency-converter/internal/server"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	setupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.InitBootstrap(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Bootstrap failed")
	}

	tlsCfg, err := server.LoadTLSConfig(cfg.TLSCertFile, cfg.TLSKeyFile)
	if err != nil {
		app.Close()
		log.Fatal().Err(err).Msg("TLS setup failed")
	}

	srv := server.New(server.Config{
		Addr:           cfg.ListenAddr,
		TLS:            tlsCfg,
		MaxConnections: cfg.MaxConnections,
		Conns:          app.Conns,
	}, bootstrap.InitRoutes(app.Handlers))

	ln, err := srv.Listen()
	if err != nil {
		app.Close()
		log.Fatal().Err(err).Str("addr", cfg.ListenAddr).Msg("Listen failed")
	}

	log.Info().
		Str("addr", ln.Addr().String()).
		Str("doc_root", cfg.DocRoot).
		Dur("cache_ttl", cfg.CacheTTL).
		Int("max_connections", cfg.MaxConnections).
		Msg("Server started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(ln)
	})
	g.Go(func() error {
		bootstrap.RunCronJobs(gctx, app)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		bootstrap.Shutdown(srv, app)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}
	log.Info().Msg("Server stopped")
}

func setupLogger(level, format string) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
