package fieldmap

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/pkordes/servicelog/internal/domain"
)

// ChildRow is a decoded child-table row: *SecondaryRow or *SportRow.
type ChildRow interface {
	Table() Table
}

// SecondaryRow is a secondary_services row as produced by to_jsonb(row).
type SecondaryRow struct {
	ServiceID      string   `json:"service_id"`
	PatientName    string   `json:"patient_name"`
	PatientPhone   string   `json:"patient_phone"`
	PickupAddress  string   `json:"pickup_address"`
	PickupType     string   `json:"pickup_type"`
	PickupTime     string   `json:"pickup_time"`
	DropoffAddress string   `json:"dropoff_address"`
	DropoffType    string   `json:"dropoff_type"`
	DropoffTime    string   `json:"dropoff_time"`
	ArrivalTime    string   `json:"arrival_time"`
	DepartureTime  string   `json:"departure_time"`
	Vehicle        string   `json:"vehicle"`
	Equipment      []string `json:"equipment"`
	Position       string   `json:"position"`
	Difficulties   []string `json:"difficulties"`
	Notes          string   `json:"notes"`
	ServiceDate    *string  `json:"service_date"`
	Kilometers     float64  `json:"kilometers"`
	Price          float64  `json:"price"`
}

// Table implements ChildRow.
func (*SecondaryRow) Table() Table { return TableSecondary }

// SportRow is an event_services row as produced by to_jsonb(row).
type SportRow struct {
	ServiceID        string   `json:"service_id"`
	EventType        string   `json:"event_type"`
	EventName        string   `json:"event_name"`
	EventDate        *string  `json:"event_date"`
	StartTime        string   `json:"start_time"`
	EndTime          string   `json:"end_time"`
	ArrivalTime      string   `json:"arrival_time"`
	DepartureTime    string   `json:"departure_time"`
	OrganizerName    string   `json:"organizer_name"`
	OrganizerContact string   `json:"organizer_contact"`
	Vehicle          string   `json:"vehicle"`
	Equipment        []string `json:"equipment"`
	Notes            string   `json:"notes"`
	Kilometers       float64  `json:"kilometers"`
	Price            float64  `json:"price"`
}

// Table implements ChildRow.
func (*SportRow) Table() Table { return TableSport }

// DecodeChildRow decodes the JSON form of a child row of type t.
// Empty input or JSON null means the row is missing and yields (nil, nil).
func DecodeChildRow(t domain.ServiceType, raw []byte) (ChildRow, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var row ChildRow
	switch t {
	case domain.TypeSecondary:
		row = &SecondaryRow{}
	case domain.TypeSport:
		row = &SportRow{}
	default:
		return nil, fmt.Errorf("fieldmap.DecodeChildRow: %w: unknown service type %q", domain.ErrValidation, t)
	}
	if err := json.Unmarshal(raw, row); err != nil {
		return nil, fmt.Errorf("fieldmap.DecodeChildRow: %w", err)
	}
	return row, nil
}

// ToClientView merges the parent envelope with the child row of the matching
// type. When the child is missing or of the wrong type the subtype fields are
// returned as empty defaults and complete is false; the caller decides whether
// to log the degradation.
func ToClientView(parent domain.Service, child ChildRow) (view domain.ClientService, complete bool) {
	switch parent.Type {
	case domain.TypeSecondary:
		row, ok := child.(*SecondaryRow)
		if !ok || row == nil {
			return domain.NewSecondaryService(parent, emptySecondary()), false
		}
		return domain.NewSecondaryService(parent, secondaryDetail(row)), true
	case domain.TypeSport:
		row, ok := child.(*SportRow)
		if !ok || row == nil {
			return domain.NewSportService(parent, emptySport()), false
		}
		return domain.NewSportService(parent, sportDetail(row)), true
	}
	return domain.ClientService{Service: parent}, false
}

func secondaryDetail(r *SecondaryRow) domain.SecondaryDetail {
	return domain.SecondaryDetail{
		PatientName:    r.PatientName,
		PatientPhone:   r.PatientPhone,
		PickupAddress:  r.PickupAddress,
		PickupType:     r.PickupType,
		PickupTime:     r.PickupTime,
		DropoffAddress: r.DropoffAddress,
		DropoffType:    r.DropoffType,
		DropoffTime:    r.DropoffTime,
		ArrivalTime:    r.ArrivalTime,
		DepartureTime:  r.DepartureTime,
		Vehicle:        r.Vehicle,
		Equipment:      set(r.Equipment),
		Position:       r.Position,
		Difficulties:   set(r.Difficulties),
		Notes:          r.Notes,
		ServiceDate:    parseDate(r.ServiceDate),
		Kilometers:     r.Kilometers,
		Price:          r.Price,
	}
}

func sportDetail(r *SportRow) domain.SportDetail {
	return domain.SportDetail{
		EventType:        r.EventType,
		EventName:        r.EventName,
		EventDate:        parseDate(r.EventDate),
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		ArrivalTime:      r.ArrivalTime,
		DepartureTime:    r.DepartureTime,
		OrganizerName:    r.OrganizerName,
		OrganizerContact: r.OrganizerContact,
		Vehicle:          r.Vehicle,
		Equipment:        set(r.Equipment),
		Notes:            r.Notes,
		Kilometers:       r.Kilometers,
		Price:            r.Price,
	}
}

func emptySecondary() domain.SecondaryDetail {
	return domain.SecondaryDetail{Equipment: []string{}, Difficulties: []string{}}
}

func emptySport() domain.SportDetail {
	return domain.SportDetail{Equipment: []string{}}
}

// set returns a non-nil copy so empty sets render as [] rather than null.
func set(v []string) []string {
	if v == nil {
		return []string{}
	}
	return slices.Clone(v)
}

// parseDate reads a date column. to_jsonb renders dates as "2006-01-02";
// RFC3339 is accepted too so rows built from Go values decode the same way.
// Unparseable values are treated as absent.
func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	for _, layout := range []string{DateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, *s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}
