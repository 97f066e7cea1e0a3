package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/quanviet/store-console/internal/config"
	"github.com/quanviet/store-console/internal/foodapi"
	"github.com/quanviet/store-console/internal/handler"
	mw "github.com/quanviet/store-console/internal/middleware"
	"github.com/quanviet/store-console/internal/order"
	"github.com/quanviet/store-console/internal/ws"
)

// New creates a Chi router with the console routes wired up. notifier may
// be nil when the socket channel is down; transitions then commit without
// dispatching events.
func New(cfg *config.Config, api *foodapi.Client, hub *ws.Hub, notifier order.Notifier) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Store-scoped routes
		r.Route("/stores/{sid}", func(r chi.Router) {
			r.Use(mw.RequireStore)

			orderHandler := handler.NewOrderHandler(api, order.NewTransitionService(api, notifier))
			r.Route("/orders", orderHandler.RegisterRoutes)
		})
	})

	return r
}
