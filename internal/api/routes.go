package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ignite/order-tracker/internal/auth"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures the router. Registration, login, health and metrics
// are public; everything else sits behind the bearer-token middleware.
func SetupRoutes(h *Handlers, tokens *auth.Manager) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/v1/api", func(r chi.Router) {
		r.Post("/users/register", h.Register)
		r.Post("/users/token", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(tokens.Middleware)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.ListUsers)
				r.Get("/{id}", h.GetUser)
				r.Put("/{id}", h.UpdateUser)
				r.Delete("/{id}", h.DeleteUser)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/create", h.CreateOrder)
				r.Get("/", h.ListOrders)
				r.Put("/{id}", h.UpdateOrderStatus)
			})
		})
	})

	return r
}
