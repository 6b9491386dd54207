// Package service contains the business logic for the service log API.
// Services validate inputs, enforce authorization, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/servicelog/internal/domain"
	"github.com/pkordes/servicelog/internal/fieldmap"
	"github.com/pkordes/servicelog/internal/repo"
)

// Compensation outcomes reported to the CompensationRecorder.
const (
	CompensationSucceeded = "compensated"
	CompensationFailed    = "failed"
)

// CompensationRecorder counts create compensations by outcome.
type CompensationRecorder interface {
	RecordCompensation(outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordCompensation(string) {}

// AggregateService creates, reads, updates and deletes single services.
// Every operation checks the actor against the service owner before touching
// the stored aggregate.
type AggregateService struct {
	repo     repo.ServiceRepo
	tx       repo.Transactor
	recorder CompensationRecorder
	log      *slog.Logger
}

// Option configures an AggregateService.
type Option func(*AggregateService)

// WithTransactor makes Create run both inserts in one database transaction.
// Without it Create inserts the parent and child separately and deletes the
// parent again when the child insert fails.
func WithTransactor(tx repo.Transactor) Option {
	return func(s *AggregateService) { s.tx = tx }
}

// WithCompensationRecorder sets where compensation outcomes are counted.
func WithCompensationRecorder(r CompensationRecorder) Option {
	return func(s *AggregateService) { s.recorder = r }
}

// NewAggregateService constructs an AggregateService backed by r.
func NewAggregateService(r repo.ServiceRepo, log *slog.Logger, opts ...Option) *AggregateService {
	s := &AggregateService{repo: r, recorder: noopRecorder{}, log: log}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create validates and persists a new service of type t owned by the actor.
// Returns domain.ErrValidation for an unknown type or invalid fields, and a
// *domain.CompensationError if the child insert failed and the parent could
// not be removed again.
func (s *AggregateService) Create(ctx context.Context, actor domain.Actor, t domain.ServiceType, ps domain.PatchSet) (domain.ClientService, error) {
	if !t.Valid() {
		return domain.ClientService{}, fmt.Errorf("%w: type must be one of secondary, sport", domain.ErrValidation)
	}
	if actor.ID == "" {
		return domain.ClientService{}, fmt.Errorf("service.AggregateService.Create: %w", domain.ErrUnauthorized)
	}
	payload := ps.For(t)
	if err := validatePayload(t, payload); err != nil {
		return domain.ClientService{}, err
	}

	d := fieldmap.ExtractDenormalized(t, payload).WithCreateDefaults()
	status := domain.StatusDraft
	if payload.Status != nil {
		status = *payload.Status
	}
	parent := domain.Service{
		Type:        t,
		OwnerID:     actor.ID,
		Status:      status,
		Kilometers:  *d.Kilometers,
		Price:       *d.Price,
		ServiceDate: d.ServiceDate,
	}
	table, err := fieldmap.SelectChildTable(t)
	if err != nil {
		return domain.ClientService{}, err
	}
	cols := fieldmap.ToChildStorage(t, payload)

	var id uuid.UUID
	if s.tx != nil {
		err = s.tx.WithinTx(ctx, func(r repo.ServiceRepo) error {
			created, err := r.InsertParent(ctx, parent)
			if err != nil {
				return err
			}
			id = created.ID
			return r.InsertChild(ctx, table, created.ID, cols)
		})
		if err != nil {
			return domain.ClientService{}, storageErr("service.AggregateService.Create", err)
		}
	} else {
		created, err := s.repo.InsertParent(ctx, parent)
		if err != nil {
			return domain.ClientService{}, storageErr("service.AggregateService.Create", err)
		}
		id = created.ID
		if err := s.repo.InsertChild(ctx, table, id, cols); err != nil {
			return domain.ClientService{}, s.compensate(ctx, id, err)
		}
	}

	agg, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.ClientService{}, storageErr("service.AggregateService.Create: re-read", err)
	}
	return s.view(ctx, agg), nil
}

// compensate deletes the parent whose child insert failed with cause.
// The delete runs even if ctx was already cancelled.
func (s *AggregateService) compensate(ctx context.Context, id uuid.UUID, cause error) error {
	if err := s.repo.DeleteParent(context.WithoutCancel(ctx), id); err != nil {
		s.recorder.RecordCompensation(CompensationFailed)
		s.log.ErrorContext(ctx, "compensating delete failed, parent left without child",
			"orphan_service_id", id,
			"cause", cause.Error(),
			"compensation_error", err.Error(),
		)
		return fmt.Errorf("service.AggregateService.Create: %w",
			&domain.CompensationError{ServiceID: id, Cause: cause, Compensation: err})
	}
	s.recorder.RecordCompensation(CompensationSucceeded)
	s.log.InfoContext(ctx, "child insert failed, parent removed",
		"service_id", id,
		"cause", cause.Error(),
	)
	return storageErr("service.AggregateService.Create", cause)
}

// Read returns a single service.
// Returns domain.ErrNotFound if it does not exist and domain.ErrForbidden if
// the actor may not see it.
func (s *AggregateService) Read(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.ClientService, error) {
	agg, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.ClientService{}, storageErr("service.AggregateService.Read", err)
	}
	if !actor.CanAccess(agg.Parent.OwnerID) {
		return domain.ClientService{}, fmt.Errorf("service.AggregateService.Read: %w", domain.ErrForbidden)
	}
	return s.view(ctx, agg), nil
}

// Update applies the fields present in ps to an existing service.
// The stored type selects which subtype fields are read from ps; id, type,
// owner and timestamps cannot be changed. A request that carries no
// recognized field fails with domain.ErrValidation before anything is written.
// Parent and child are written separately and a failure of the second write
// is not undone.
func (s *AggregateService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, ps domain.PatchSet) (domain.ClientService, error) {
	own, err := s.authorize(ctx, actor, id)
	if err != nil {
		return domain.ClientService{}, fmt.Errorf("service.AggregateService.Update: %w", err)
	}

	payload := ps.For(own.Type)
	if err := validatePayload(own.Type, payload); err != nil {
		return domain.ClientService{}, err
	}
	parentPatch := fieldmap.ExtractDenormalized(own.Type, payload).ParentPatch(payload.Status)
	childPatch := fieldmap.ToChildStorage(own.Type, payload)
	if parentPatch.IsEmpty() && len(childPatch) == 0 {
		return domain.ClientService{}, fmt.Errorf("%w: nothing to update", domain.ErrValidation)
	}

	if !parentPatch.IsEmpty() {
		if err := s.repo.UpdateParent(ctx, id, parentPatch); err != nil {
			return domain.ClientService{}, storageErr("service.AggregateService.Update: parent", err)
		}
	}
	if len(childPatch) > 0 {
		table, err := fieldmap.SelectChildTable(own.Type)
		if err != nil {
			return domain.ClientService{}, err
		}
		if err := s.repo.UpdateChild(ctx, table, id, childPatch); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.log.ErrorContext(ctx, "update found no child row", "service_id", id, "table", string(table))
				err = fmt.Errorf("child row of %s is missing: %w", id, domain.ErrStorage)
			}
			return domain.ClientService{}, storageErr("service.AggregateService.Update: child", err)
		}
	}

	agg, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.ClientService{}, storageErr("service.AggregateService.Update: re-read", err)
	}
	return s.view(ctx, agg), nil
}

// Delete removes a service. The child row goes with it through the foreign
// key cascade.
func (s *AggregateService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if _, err := s.authorize(ctx, actor, id); err != nil {
		return fmt.Errorf("service.AggregateService.Delete: %w", err)
	}
	if err := s.repo.DeleteParent(ctx, id); err != nil {
		return storageErr("service.AggregateService.Delete", err)
	}
	return nil
}

// authorize loads the ownership projection of id and checks the actor against it.
func (s *AggregateService) authorize(ctx context.Context, actor domain.Actor, id uuid.UUID) (domain.Ownership, error) {
	own, err := s.repo.GetOwnership(ctx, id)
	if err != nil {
		return domain.Ownership{}, storageErr("ownership", err)
	}
	if !actor.CanAccess(own.OwnerID) {
		return domain.Ownership{}, domain.ErrForbidden
	}
	return own, nil
}

// view maps an aggregate to its client shape, logging a missing child.
func (s *AggregateService) view(ctx context.Context, agg repo.Aggregate) domain.ClientService {
	v, complete := fieldmap.ToClientView(agg.Parent, agg.Child)
	if !complete {
		s.log.WarnContext(ctx, "service has no child row, returning empty detail",
			"service_id", agg.Parent.ID,
			"type", string(agg.Parent.Type),
		)
	}
	return v
}

// validatePayload enforces the rules shared by Create and Update.
//   - status, if present, must be a known status.
//   - money and distance fields must not be negative.
func validatePayload(t domain.ServiceType, p domain.Payload) error {
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *p.Status)
	}
	d := fieldmap.ExtractDenormalized(t, p)
	if d.Price != nil && *d.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	if d.Kilometers != nil && *d.Kilometers < 0 {
		return fmt.Errorf("%w: kilometers must not be negative", domain.ErrValidation)
	}
	return nil
}

// storageErr prefixes err with op. Errors that already carry a domain meaning
// keep it; anything else is marked as a storage failure.
func storageErr(op string, err error) error {
	for _, known := range []error{
		domain.ErrNotFound,
		domain.ErrValidation,
		domain.ErrForbidden,
		domain.ErrUnauthorized,
		domain.ErrStorage,
	} {
		if errors.Is(err, known) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}
