package bootstrap

import (
	"net/http"

	"currency-converter/internal/handlers"
	"currency-converter/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func InitRoutes(h *HandlersBundle) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestGuard)
	r.Use(chimw.GetHead)

	r.Get("/", handlers.ByQuery("q", map[string]http.HandlerFunc{
		"currency_list": h.ExchangeHandler.CurrencyList,
		"googlekey":     h.PageHandler.GoogleKey,
		"popular":       h.PopularHandler.List,
	}, h.PageHandler.Index))
	r.Get("/healthz", h.HealthHandler.Health)
	r.Get("/*", h.StaticHandler.ServeHTTP)

	// the conversion form may be posted to any path
	r.Post("/", h.ExchangeHandler.Convert)
	r.Post("/*", h.ExchangeHandler.Convert)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unknown HTTP-method", http.StatusBadRequest)
	})

	return r
}
