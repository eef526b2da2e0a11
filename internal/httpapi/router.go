// Package httpapi exposes the journal and its analytics as a JSON API.
// It is one presentation layer over the engine; everything it returns comes
// from internal/app and internal/analytics, never from its own arithmetic.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"tradecraft/internal/app"
	"tradecraft/internal/metrics"
	"tradecraft/internal/ports"
)

// Handler carries the dependencies shared by all route handlers.
type Handler struct {
	svc      *app.JournalService
	logger   ports.Logger
	validate *validator.Validate
}

// NewRouter builds the chi router with the full API surface mounted.
func NewRouter(svc *app.JournalService, logger ports.Logger, requestTimeout time.Duration) chi.Router {
	h := &Handler{
		svc:      svc,
		logger:   logger,
		validate: validator.New(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"tradecraft"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.requireUser)

		r.Route("/trades", func(r chi.Router) {
			r.Post("/", h.createTrade)
			r.Get("/", h.listTrades)
			r.Route("/{tradeID}", func(r chi.Router) {
				r.Get("/", h.getTrade)
				r.Put("/", h.updateTrade)
				r.Delete("/", h.deleteTrade)
				r.Post("/legs", h.appendLeg)
			})
		})

		r.Get("/stats", h.stats)
		r.Get("/stats/tags", h.statsByTag)
		r.Get("/stats/symbols", h.statsBySymbol)
		r.Get("/equity-curve", h.equityCurve)
		r.Get("/dashboard", h.dashboard)
	})

	return r
}
