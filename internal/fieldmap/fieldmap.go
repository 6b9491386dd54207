// Package fieldmap translates services between their client shape and their
// two-table storage shape. Every function here is pure: no I/O, no logging.
//
// The client names fields in camelCase, storage uses snake_case columns, and a
// few fields are renamed on the way (the sport client's priceSport is the
// event_services.price column). Each subtype has a fixed bijection between
// client fields and storage columns, published by ClientFields and
// StorageColumns.
package fieldmap

import (
	"fmt"
	"slices"
	"time"

	"github.com/pkordes/servicelog/internal/domain"
)

// DateLayout is the wire and column format of calendar dates.
const DateLayout = "2006-01-02"

// Table names a child table.
type Table string

const (
	TableSecondary Table = "secondary_services"
	TableSport     Table = "event_services"
)

// SelectChildTable returns the child table that stores services of type t.
func SelectChildTable(t domain.ServiceType) (Table, error) {
	switch t {
	case domain.TypeSecondary:
		return TableSecondary, nil
	case domain.TypeSport:
		return TableSport, nil
	}
	return "", fmt.Errorf("fieldmap.SelectChildTable: %w: unknown service type %q", domain.ErrValidation, t)
}

// Field pairs a client field name with the storage column it maps to.
type Field struct {
	Client string
	Column string
}

// Column names shared by both child tables.
const (
	colServiceID     = "service_id"
	colArrivalTime   = "arrival_time"
	colDepartureTime = "departure_time"
	colVehicle       = "vehicle"
	colEquipment     = "equipment"
	colNotes         = "notes"
	colKilometers    = "kilometers"
	colPrice         = "price"
)

// secondary_services columns.
const (
	colPatientName    = "patient_name"
	colPatientPhone   = "patient_phone"
	colPickupAddress  = "pickup_address"
	colPickupType     = "pickup_type"
	colPickupTime     = "pickup_time"
	colDropoffAddress = "dropoff_address"
	colDropoffType    = "dropoff_type"
	colDropoffTime    = "dropoff_time"
	colPosition       = "position"
	colDifficulties   = "difficulties"
	colServiceDate    = "service_date"
)

// event_services columns.
const (
	colEventType        = "event_type"
	colEventName        = "event_name"
	colEventDate        = "event_date"
	colStartTime        = "start_time"
	colEndTime          = "end_time"
	colOrganizerName    = "organizer_name"
	colOrganizerContact = "organizer_contact"
)

var secondaryFields = []Field{
	{"patientName", colPatientName},
	{"patientPhone", colPatientPhone},
	{"pickupAddress", colPickupAddress},
	{"pickupType", colPickupType},
	{"pickupTime", colPickupTime},
	{"dropoffAddress", colDropoffAddress},
	{"dropoffType", colDropoffType},
	{"dropoffTime", colDropoffTime},
	{"arrivalTime", colArrivalTime},
	{"departureTime", colDepartureTime},
	{"vehicle", colVehicle},
	{"equipment", colEquipment},
	{"position", colPosition},
	{"difficulties", colDifficulties},
	{"notes", colNotes},
	{"serviceDate", colServiceDate},
	{"kilometers", colKilometers},
	{"price", colPrice},
}

var sportFields = []Field{
	{"eventType", colEventType},
	{"eventName", colEventName},
	{"eventDate", colEventDate},
	{"startTime", colStartTime},
	{"endTime", colEndTime},
	{"arrivalTime", colArrivalTime},
	{"departureTime", colDepartureTime},
	{"organizerName", colOrganizerName},
	{"organizerContact", colOrganizerContact},
	{"vehicle", colVehicle},
	{"equipment", colEquipment},
	{"notes", colNotes},
	{"kilometersSport", colKilometers},
	{"priceSport", colPrice},
}

// Fields returns the client/column pairs of type t, or nil for an unknown type.
func Fields(t domain.ServiceType) []Field {
	switch t {
	case domain.TypeSecondary:
		return slices.Clone(secondaryFields)
	case domain.TypeSport:
		return slices.Clone(sportFields)
	}
	return nil
}

// ClientFields returns the client field names of type t.
func ClientFields(t domain.ServiceType) []string {
	var out []string
	for _, f := range Fields(t) {
		out = append(out, f.Client)
	}
	return out
}

// StorageColumns returns the child-table columns of type t, excluding the
// service_id key.
func StorageColumns(t domain.ServiceType) []string {
	var out []string
	for _, f := range Fields(t) {
		out = append(out, f.Column)
	}
	return out
}

// ColumnPatch maps child-table columns to the values to write.
// Only columns present in the request appear; absent means unchanged.
type ColumnPatch map[string]any

// Columns returns the patch's column names in sorted order so generated SQL
// is deterministic.
func (c ColumnPatch) Columns() []string {
	cols := make([]string, 0, len(c))
	for k := range c {
		cols = append(cols, k)
	}
	slices.Sort(cols)
	return cols
}

// ToChildStorage returns the child-table patch for the fields present in p.
// A payload bound to a type other than t yields an empty patch.
func ToChildStorage(t domain.ServiceType, p domain.Payload) ColumnPatch {
	out := ColumnPatch{}
	switch t {
	case domain.TypeSecondary:
		sp, ok := p.Secondary()
		if !ok {
			return out
		}
		put(out, colPatientName, sp.PatientName)
		put(out, colPatientPhone, sp.PatientPhone)
		put(out, colPickupAddress, sp.PickupAddress)
		put(out, colPickupType, sp.PickupType)
		put(out, colPickupTime, sp.PickupTime)
		put(out, colDropoffAddress, sp.DropoffAddress)
		put(out, colDropoffType, sp.DropoffType)
		put(out, colDropoffTime, sp.DropoffTime)
		put(out, colArrivalTime, sp.ArrivalTime)
		put(out, colDepartureTime, sp.DepartureTime)
		put(out, colVehicle, sp.Vehicle)
		putSet(out, colEquipment, sp.Equipment)
		put(out, colPosition, sp.Position)
		putSet(out, colDifficulties, sp.Difficulties)
		put(out, colNotes, sp.Notes)
		put(out, colServiceDate, sp.ServiceDate)
		put(out, colKilometers, sp.Kilometers)
		put(out, colPrice, sp.Price)
	case domain.TypeSport:
		sp, ok := p.Sport()
		if !ok {
			return out
		}
		put(out, colEventType, sp.EventType)
		put(out, colEventName, sp.EventName)
		put(out, colEventDate, sp.EventDate)
		put(out, colStartTime, sp.StartTime)
		put(out, colEndTime, sp.EndTime)
		put(out, colArrivalTime, sp.ArrivalTime)
		put(out, colDepartureTime, sp.DepartureTime)
		put(out, colOrganizerName, sp.OrganizerName)
		put(out, colOrganizerContact, sp.OrganizerContact)
		put(out, colVehicle, sp.Vehicle)
		putSet(out, colEquipment, sp.Equipment)
		put(out, colNotes, sp.Notes)
		put(out, colKilometers, sp.Kilometers)
		put(out, colPrice, sp.Price)
	}
	return out
}

// put stores *v under col when v is present.
func put[T any](out ColumnPatch, col string, v *T) {
	if v != nil {
		out[col] = *v
	}
}

// putSet stores a string set, writing an empty set rather than NULL when the
// client sent an explicit empty list.
func putSet(out ColumnPatch, col string, v *[]string) {
	if v == nil {
		return
	}
	if *v == nil {
		out[col] = []string{}
		return
	}
	out[col] = slices.Clone(*v)
}

// Denormalized holds the parent columns copied from the child.
// Nil fields were absent from the payload.
type Denormalized struct {
	Kilometers  *float64
	Price       *float64
	ServiceDate *time.Time
}

// ExtractDenormalized picks the subtype-specific source of each parent copy:
// price/kilometers/serviceDate for secondary, priceSport/kilometersSport/
// eventDate for sport. Absent fields stay nil.
func ExtractDenormalized(t domain.ServiceType, p domain.Payload) Denormalized {
	switch t {
	case domain.TypeSecondary:
		if sp, ok := p.Secondary(); ok {
			return Denormalized{Kilometers: sp.Kilometers, Price: sp.Price, ServiceDate: sp.ServiceDate}
		}
	case domain.TypeSport:
		if sp, ok := p.Sport(); ok {
			return Denormalized{Kilometers: sp.Kilometers, Price: sp.Price, ServiceDate: sp.EventDate}
		}
	}
	return Denormalized{}
}

// WithCreateDefaults fills absent numbers with zero. ServiceDate stays nil.
func (d Denormalized) WithCreateDefaults() Denormalized {
	if d.Kilometers == nil {
		zero := 0.0
		d.Kilometers = &zero
	}
	if d.Price == nil {
		zero := 0.0
		d.Price = &zero
	}
	return d
}

// ParentPatch turns the present fields into an envelope patch.
func (d Denormalized) ParentPatch(status *domain.Status) domain.ParentPatch {
	return domain.ParentPatch{
		Status:      status,
		Kilometers:  d.Kilometers,
		Price:       d.Price,
		ServiceDate: d.ServiceDate,
	}
}
