package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)
	})

	// owner-scoped routes behind bearer-token authentication
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/shipments", func(r chi.Router) {
			r.Get("/", h.listShipments)
			r.Post("/", h.createShipment)
			r.Get("/{id}", h.getShipment)
			r.Put("/{id}", h.updateShipment)
			r.Delete("/{id}", h.deleteShipment)
		})
	})

	return router
}
