// Package handler implements the HTTP surface of the service log API.
// All handlers are methods on Server and are registered on a chi router by
// Register. Methods are split into files by concern (service.go, query.go,
// export.go, health.go) but share the same Server struct.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/servicelog/internal/domain"
)

// AggregateServicer defines the single-service operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type AggregateServicer interface {
	Create(ctx context.Context, actor domain.Actor, t domain.ServiceType, ps domain.PatchSet) (domain.ClientService, error)
	Read(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.ClientService, error)
	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, ps domain.PatchSet) (domain.ClientService, error)
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error
}

// QueryServicer defines the list, stats and export operations.
type QueryServicer interface {
	List(ctx context.Context, actor domain.Actor, f domain.ListFilter, p domain.PaginationParams, s domain.SortParams) (domain.Page[domain.ClientService], error)
	Stats(ctx context.Context, actor domain.Actor, f domain.ListFilter) (domain.Stats, error)
	Export(ctx context.Context, actor domain.Actor, f domain.ListFilter) ([]domain.ExportRow, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	services AggregateServicer
	queries  QueryServicer
	log      *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(services AggregateServicer, queries QueryServicer, log *slog.Logger) *Server {
	return &Server{services: services, queries: queries, log: log}
}

// Register mounts every API route on r. The /services tree runs behind
// authenticate; /healthz does not. Register must be called after r.Use so
// the router's global middleware is already in place.
//
// Static segments (/stats, /export) take precedence over /{id} in chi's
// routing tree, so they never reach the id parser.
func (s *Server) Register(r chi.Router, authenticate func(http.Handler) http.Handler) {
	r.NotFound(s.notFound)
	r.MethodNotAllowed(s.methodNotAllowed)

	r.Get("/healthz", s.GetHealth)

	r.Route("/services", func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/", s.CreateService)
		r.Get("/", s.ListServices)
		r.Get("/stats", s.GetStats)
		r.Get("/export", s.GetExport)

		r.Get("/{id}", s.GetService)
		r.Put("/{id}", s.UpdateService)
		r.Delete("/{id}", s.DeleteService)
	})
}

func (s *Server) notFound(w http.ResponseWriter, _ *http.Request) {
	writeFailure(w, http.StatusNotFound, "route not found")
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, domain.ErrMethodNotAllowed)
}
