/*
server.go - Router configuration

PURPOSE:
  Assembles the chi router: middleware, CORS and the route table. The
  route table is the single place the API surface is declared.

ROUTES:
  GET    /api/health
  POST   /api/calculations/debt
  POST   /api/calculations/arrears
  POST   /api/calculations/sentence
  GET    /api/calculations
  GET    /api/calculations/{id}
  DELETE /api/calculations/{id}
  GET    /api/indexes
  GET    /api/indexes/{code}/factors
  PUT    /api/indexes/{code}/factors

SEE ALSO:
  - handlers.go: the handlers behind each route
  - cmd/server/main.go: server lifecycle
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the HTTP router over the given handler.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", ownerHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/calculations", func(r chi.Router) {
			r.Post("/debt", h.ComputeDebt)
			r.Post("/arrears", h.ComputeArrears)
			r.Post("/sentence", h.ComputeSentence)

			r.Get("/", h.ListCalculations)
			r.Get("/{id}", h.GetCalculation)
			r.Delete("/{id}", h.DeleteCalculation)
		})

		r.Route("/indexes", func(r chi.Router) {
			r.Get("/", h.ListIndexes)
			r.Get("/{code}/factors", h.ListFactors)
			r.Put("/{code}/factors", h.PutFactors)
		})
	})

	return r
}
