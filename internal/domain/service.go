// Package domain contains the core data types for the service log.
// This package has no dependencies beyond uuid and is imported by every
// other internal package (fieldmap, repo, service, handler).
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ServiceType selects which child table and field mapping apply to a service.
// It is fixed at creation.
type ServiceType string

const (
	TypeSecondary ServiceType = "secondary"
	TypeSport     ServiceType = "sport"
)

// Valid reports whether t is one of the known service types.
func (t ServiceType) Valid() bool {
	return t == TypeSecondary || t == TypeSport
}

// ParseServiceType returns the ServiceType named by s or an ErrValidation.
func ParseServiceType(s string) (ServiceType, error) {
	t := ServiceType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: type must be one of secondary, sport", ErrValidation)
	}
	return t, nil
}

// Service is the parent envelope shared by every service regardless of type.
// Kilometers, Price and ServiceDate are copies of the child's fields so that
// lists can be filtered, sorted and summed without joining the child table.
// ServiceDate is nil when no date was recorded.
type Service struct {
	ID          uuid.UUID
	Type        ServiceType
	OwnerID     string
	Status      Status
	Kilometers  float64
	Price       float64
	ServiceDate *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Ownership is the cheap projection used by delete to authorize the caller.
type Ownership struct {
	ID      uuid.UUID
	Type    ServiceType
	OwnerID string
}

// ClientService is the aggregate as the client sees it: the envelope plus the
// detail of exactly one subtype. The detail is only reachable through
// Secondary or Sport, which report whether the service has that type.
type ClientService struct {
	Service
	secondary *SecondaryDetail
	sport     *SportDetail
}

// NewSecondaryService builds a secondary aggregate. The envelope type is forced
// to TypeSecondary.
func NewSecondaryService(s Service, d SecondaryDetail) ClientService {
	s.Type = TypeSecondary
	return ClientService{Service: s, secondary: &d}
}

// NewSportService builds a sport aggregate. The envelope type is forced to
// TypeSport.
func NewSportService(s Service, d SportDetail) ClientService {
	s.Type = TypeSport
	return ClientService{Service: s, sport: &d}
}

// Secondary returns the patient-transport detail when the service is secondary.
func (c ClientService) Secondary() (SecondaryDetail, bool) {
	if c.secondary == nil {
		return SecondaryDetail{}, false
	}
	return *c.secondary, true
}

// Sport returns the event detail when the service is a sport service.
func (c ClientService) Sport() (SportDetail, bool) {
	if c.sport == nil {
		return SportDetail{}, false
	}
	return *c.sport, true
}
