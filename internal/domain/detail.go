package domain

import "time"

// SecondaryDetail is the patient-transport half of a secondary service.
// Clock fields (PickupTime, DropoffTime, ArrivalTime, DepartureTime) hold
// "15:04" strings; empty means not recorded.
type SecondaryDetail struct {
	PatientName    string
	PatientPhone   string
	PickupAddress  string
	PickupType     string
	PickupTime     string
	DropoffAddress string
	DropoffType    string
	DropoffTime    string
	ArrivalTime    string
	DepartureTime  string
	Vehicle        string
	Equipment      []string
	Position       string
	Difficulties   []string
	Notes          string
	ServiceDate    *time.Time
	Kilometers     float64
	Price          float64
}

// SportDetail is the event-support half of a sport service.
// EventDate is mirrored onto the parent's ServiceDate.
type SportDetail struct {
	EventType        string
	EventName        string
	EventDate        *time.Time
	StartTime        string
	EndTime          string
	ArrivalTime      string
	DepartureTime    string
	OrganizerName    string
	OrganizerContact string
	Vehicle          string
	Equipment        []string
	Notes            string
	Kilometers       float64
	Price            float64
}
