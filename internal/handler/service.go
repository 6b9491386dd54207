package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/servicelog/internal/domain"
	"github.com/pkordes/servicelog/internal/middleware"
)

// CreateService handles POST /services.
func (s *Server) CreateService(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	var body createBody
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.services.Create(r.Context(), actor, domain.ServiceType(body.Type), body.patchSet())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, serviceToResponse(created))
}

// GetService handles GET /services/{id}.
func (s *Server) GetService(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := s.actorAndID(w, r)
	if !ok {
		return
	}
	svc, err := s.services.Read(r.Context(), actor, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, serviceToResponse(svc))
}

// UpdateService handles PUT /services/{id}.
// The body is a partial update: absent fields are left unchanged.
func (s *Server) UpdateService(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := s.actorAndID(w, r)
	if !ok {
		return
	}
	var body updateBody
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.services.Update(r.Context(), actor, id, body.patchSet())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, serviceToResponse(updated))
}

// DeleteService handles DELETE /services/{id}.
func (s *Server) DeleteService(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := s.actorAndID(w, r)
	if !ok {
		return
	}
	if err := s.services.Delete(r.Context(), actor, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, deletedResponse{ID: id})
}

// ---- request helpers -------------------------------------------------------

// actor returns the actor placed in the context by the auth middleware.
// A request that somehow bypassed it is answered with 401.
func (s *Server) actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	a, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		s.writeError(w, r, domain.ErrUnauthorized)
	}
	return a, ok
}

func (s *Server) actorAndID(w http.ResponseWriter, r *http.Request) (domain.Actor, openapi_types.UUID, bool) {
	actor, ok := s.actor(w, r)
	if !ok {
		return domain.Actor{}, openapi_types.UUID{}, false
	}
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: id must be a UUID", domain.ErrValidation))
		return domain.Actor{}, openapi_types.UUID{}, false
	}
	return actor, id, true
}
