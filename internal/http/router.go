package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/showtix/showtix/internal/auth"
	"github.com/showtix/showtix/internal/observability"
	"github.com/showtix/showtix/internal/ratelimit"
)

func SetupRouter(h *Handlers, authSvc *auth.Service, logger observability.Logger, rl *ratelimit.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(MetricsMiddleware)

	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(rl))
		r.Post("/v1/auth/register", h.Register)
		r.Post("/v1/auth/login", h.Login)
		r.Get("/v1/shows", h.ListShows)
		r.Get("/v1/shows/{id}", h.GetShow)
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authSvc))
		r.Use(RateLimitMiddleware(rl))
		r.Post("/v1/shows/{id}/bookings", h.CreateBooking)
		r.Get("/v1/bookings", h.MyBookings)
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authSvc))
		r.Use(RequireAdmin)
		r.Get("/v1/admin/shows", h.AdminListShows)
		r.Post("/v1/admin/shows", h.AdminCreateShow)
		r.Get("/v1/admin/shows/{id}", h.AdminGetShow)
		r.Put("/v1/admin/shows/{id}", h.AdminUpdateShow)
		r.Delete("/v1/admin/shows/{id}", h.AdminDeleteShow)
		r.Get("/v1/admin/bookings", h.AdminListBookings)
	})

	return r
}
