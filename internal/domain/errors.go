package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrValidation is returned when input is malformed or insufficient
// (unknown type, negative price, an update with no recognized fields).
// Handlers should map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned by the auth gate when the bearer credential is
// missing, malformed, expired, or carries an unknown role.
// Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when an authenticated actor is not entitled to a
// service it asked for. Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrMethodNotAllowed is returned for a known route used with a method it
// does not support. Handlers should map this to HTTP 405.
var ErrMethodNotAllowed = errors.New("method not allowed")

// ErrStorage marks a failure of the underlying storage call.
// Handlers should map this to HTTP 500.
var ErrStorage = errors.New("storage error")

// CompensationError reports a create whose child insert failed and whose
// compensating parent delete failed too. The parent row identified by
// ServiceID is left without a child and must be reconciled by an operator.
//
// Both causes stay reachable through errors.Is / errors.As.
type CompensationError struct {
	ServiceID    uuid.UUID
	Cause        error
	Compensation error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("child insert failed (%v) and compensating delete of service %s failed (%v)",
		e.Cause, e.ServiceID, e.Compensation)
}

// Unwrap exposes ErrStorage and both failures so callers can match on any
// of them.
func (e *CompensationError) Unwrap() []error {
	return []error{ErrStorage, e.Cause, e.Compensation}
}
