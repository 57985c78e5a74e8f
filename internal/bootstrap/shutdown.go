package bootstrap

import (
	"context"
	"time"

	"currency-converter/internal/server"

	"github.com/rs/zerolog/log"
)

// Shutdown drains the server and then releases the app's connections.
func Shutdown(srv *server.Server, app *App) {
	log.Info().Msg("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	app.Close()
}
