package server

import (
	"compress/gzip"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/VladKvetkin/gofood/internal/auth"
	"github.com/VladKvetkin/gofood/internal/handler"
	"github.com/VladKvetkin/gofood/internal/middleware"
)

func (s *Server) setupRoutes(handler *handler.Handler, guard *auth.Guard) {
	s.setupMiddleware(guard)

	s.mux.Handle("/metrics", promhttp.Handler())

	s.mux.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/login", handler.Login)
			r.Post("/register", handler.Register)
		})

		r.Post("/admin/accounts", handler.CreateAccount)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", handler.CreateOrder)
			r.Get("/", handler.GetOrders)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handler.GetOrder)
				r.Post("/prepare", handler.StartPreparing)
				r.Post("/assign", handler.AssignDriver)
				r.Post("/confirm-pickup", handler.ConfirmPickup)
				r.Post("/confirm-delivery", handler.ConfirmDelivery)
				r.Post("/cancel", handler.CancelOrder)
			})
		})

		r.Get("/notifications", handler.GetNotifications)
	})
}

func (s *Server) setupMiddleware(guard *auth.Guard) {
	s.mux.Use(
		middleware.DecompressBodyReader,
		middleware.Auth(guard),
		middleware.Logger,
		middleware.Metrics,
		chiMiddleware.Compress(gzip.BestCompression, "application/json", "text/html", "text/plain"),
	)
}
