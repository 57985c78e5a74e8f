package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// RequestGuard rejects methods other than GET, HEAD and POST, and request
// targets that are not absolute paths or that contain "..". Rejections are
// client errors and are only logged at debug level.
func RequestGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodPost:
		default:
			log.Debug().Str("method", r.Method).Msg("Rejected request method")
			http.Error(w, "Unknown HTTP-method", http.StatusBadRequest)
			return
		}

		target := r.RequestURI
		if target == "" {
			target = r.URL.RequestURI()
		}
		if !strings.HasPrefix(target, "/") ||
			strings.Contains(target, "..") ||
			strings.Contains(r.URL.Path, "..") {
			log.Debug().Str("target", target).Msg("Rejected request target")
			http.Error(w, "Illegal request-target", http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}
