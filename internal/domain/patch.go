package domain

import "time"

// SecondaryPatch carries the secondary fields present in a request body.
// A nil field was absent and must be left unchanged; it never means "clear".
type SecondaryPatch struct {
	PatientName    *string
	PatientPhone   *string
	PickupAddress  *string
	PickupType     *string
	PickupTime     *string
	DropoffAddress *string
	DropoffType    *string
	DropoffTime    *string
	ArrivalTime    *string
	DepartureTime  *string
	Vehicle        *string
	Equipment      *[]string
	Position       *string
	Difficulties   *[]string
	Notes          *string
	ServiceDate    *time.Time
	Kilometers     *float64
	Price          *float64
}

// SportPatch carries the sport fields present in a request body.
// Kilometers and Price arrive from the client as kilometersSport and priceSport.
type SportPatch struct {
	EventType        *string
	EventName        *string
	EventDate        *time.Time
	StartTime        *string
	EndTime          *string
	ArrivalTime      *string
	DepartureTime    *string
	OrganizerName    *string
	OrganizerContact *string
	Vehicle          *string
	Equipment        *[]string
	Notes            *string
	Kilometers       *float64
	Price            *float64
}

// PatchSet is a decoded request body before the service type is known.
// Update bodies carry no trustworthy type, so both subtype patches are decoded
// and the stored type picks one of them via For.
type PatchSet struct {
	Status    *Status
	Secondary SecondaryPatch
	Sport     SportPatch
}

// For narrows the set to the payload of type t.
func (ps PatchSet) For(t ServiceType) Payload {
	switch t {
	case TypeSecondary:
		p := ps.Secondary
		return Payload{Status: ps.Status, kind: t, secondary: &p}
	case TypeSport:
		p := ps.Sport
		return Payload{Status: ps.Status, kind: t, sport: &p}
	}
	return Payload{Status: ps.Status}
}

// Payload is a request body bound to exactly one service type.
// Subtype fields are reachable only through Secondary or Sport.
type Payload struct {
	Status    *Status
	kind      ServiceType
	secondary *SecondaryPatch
	sport     *SportPatch
}

// Type returns the service type the payload was bound to, or "" when it was
// bound to an unknown type.
func (p Payload) Type() ServiceType { return p.kind }

// Secondary returns the secondary patch when the payload is bound to TypeSecondary.
func (p Payload) Secondary() (SecondaryPatch, bool) {
	if p.secondary == nil {
		return SecondaryPatch{}, false
	}
	return *p.secondary, true
}

// Sport returns the sport patch when the payload is bound to TypeSport.
func (p Payload) Sport() (SportPatch, bool) {
	if p.sport == nil {
		return SportPatch{}, false
	}
	return *p.sport, true
}

// ParentPatch is the set of envelope columns an update writes.
// Nil fields are left untouched.
type ParentPatch struct {
	Status      *Status
	Kilometers  *float64
	Price       *float64
	ServiceDate *time.Time
}

// IsEmpty reports whether the patch would change nothing.
func (p ParentPatch) IsEmpty() bool {
	return p.Status == nil && p.Kilometers == nil && p.Price == nil && p.ServiceDate == nil
}
