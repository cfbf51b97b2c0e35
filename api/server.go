/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the web frontend

ROUTE GROUPS:
  /api/visitors/*   Visitor registration, accrual, dashboard
  /api/bookings/*   Visit booking lifecycle
  /api/rewards      Reward catalog
  /api/program      Earning criteria and tiers
  /api/admin/*      Manual adjustments, reset (dev only)

SECURITY NOTE:
  No authentication middleware. Auth is owned by the hosted identity
  provider in front of this service.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Visitor routes
		r.Route("/visitors", func(r chi.Router) {
			r.Get("/", h.ListVisitors)
			r.Post("/", h.CreateVisitor)
			r.Get("/{id}", h.GetVisitor)
			r.Get("/{id}/balance", h.GetBalance)
			r.Get("/{id}/transactions", h.GetTransactions)
			r.Get("/{id}/badges", h.GetBadges)
			r.Get("/{id}/redemptions", h.ListRedemptions)
			r.Post("/{id}/quiz-results", h.SubmitQuizResult)
			r.Post("/{id}/redemptions", h.RedeemReward)
		})

		// Booking routes
		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", h.CreateBooking)
			r.Get("/{id}", h.GetBooking)
			r.Post("/{id}/confirm", h.ConfirmBooking)
			r.Post("/{id}/cancel", h.CancelBooking)
		})

		// Catalog and criteria routes
		r.Get("/rewards", h.ListRewards)
		r.Get("/program", h.GetProgram)

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/adjustments", h.CreateAdjustment)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
