package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Recoverer turns a panic in one request into a 500 so the connection's
// goroutine, and every other connection, keeps serving.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.WithLevel(zerolog.ErrorLevel).
				Interface("panic", rec).
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("path", r.URL.Path).
				Bytes("stack", debug.Stack()).
				Msg("Panic in request handler")
			http.Error(w, fmt.Sprintf("An error occurred: '%v'", rec), http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}
