package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/servicelog/internal/domain"
)

// clockPattern matches a 24-hour "HH:MM" clock reading.
var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

var validate = newValidator()

// newValidator returns a validator that reports fields by their JSON names
// and knows the "clock" tag. An empty clock string is accepted: it clears a
// recorded time.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || clockPattern.MatchString(s)
	})
	return v
}

// updateBody is the body of PUT /services/{id} and the shared part of the
// create body. It carries the client fields of both subtypes; the service
// type then decides which of them apply. Fields outside this set (id,
// ownerId, createdAt, updatedAt, and type on update) are ignored.
type updateBody struct {
	Status *string `json:"status" validate:"omitempty,oneof=draft pending confirmed completed cancelled"`

	// shared by both subtypes
	ArrivalTime   *string   `json:"arrivalTime" validate:"omitempty,clock"`
	DepartureTime *string   `json:"departureTime" validate:"omitempty,clock"`
	Vehicle       *string   `json:"vehicle"`
	Equipment     *[]string `json:"equipment"`
	Notes         *string   `json:"notes"`

	// secondary
	PatientName    *string             `json:"patientName"`
	PatientPhone   *string             `json:"patientPhone"`
	PickupAddress  *string             `json:"pickupAddress"`
	PickupType     *string             `json:"pickupType"`
	PickupTime     *string             `json:"pickupTime" validate:"omitempty,clock"`
	DropoffAddress *string             `json:"dropoffAddress"`
	DropoffType    *string             `json:"dropoffType"`
	DropoffTime    *string             `json:"dropoffTime" validate:"omitempty,clock"`
	Position       *string             `json:"position"`
	Difficulties   *[]string           `json:"difficulties"`
	ServiceDate    *openapi_types.Date `json:"serviceDate"`
	Kilometers     *float64            `json:"kilometers" validate:"omitempty,gte=0"`
	Price          *float64            `json:"price" validate:"omitempty,gte=0"`

	// sport
	EventType        *string             `json:"eventType"`
	EventName        *string             `json:"eventName"`
	EventDate        *openapi_types.Date `json:"eventDate"`
	StartTime        *string             `json:"startTime" validate:"omitempty,clock"`
	EndTime          *string             `json:"endTime" validate:"omitempty,clock"`
	OrganizerName    *string             `json:"organizerName"`
	OrganizerContact *string             `json:"organizerContact"`
	KilometersSport  *float64            `json:"kilometersSport" validate:"omitempty,gte=0"`
	PriceSport       *float64            `json:"priceSport" validate:"omitempty,gte=0"`
}

// createBody is the body of POST /services.
type createBody struct {
	Type string `json:"type" validate:"required,oneof=secondary sport"`
	updateBody
}

// patchSet converts the body into the domain's type-agnostic patch.
func (b updateBody) patchSet() domain.PatchSet {
	ps := domain.PatchSet{
		Secondary: domain.SecondaryPatch{
			PatientName:    b.PatientName,
			PatientPhone:   b.PatientPhone,
			PickupAddress:  b.PickupAddress,
			PickupType:     b.PickupType,
			PickupTime:     b.PickupTime,
			DropoffAddress: b.DropoffAddress,
			DropoffType:    b.DropoffType,
			DropoffTime:    b.DropoffTime,
			ArrivalTime:    b.ArrivalTime,
			DepartureTime:  b.DepartureTime,
			Vehicle:        b.Vehicle,
			Equipment:      b.Equipment,
			Position:       b.Position,
			Difficulties:   b.Difficulties,
			Notes:          b.Notes,
			ServiceDate:    dateTime(b.ServiceDate),
			Kilometers:     b.Kilometers,
			Price:          b.Price,
		},
		Sport: domain.SportPatch{
			EventType:        b.EventType,
			EventName:        b.EventName,
			EventDate:        dateTime(b.EventDate),
			StartTime:        b.StartTime,
			EndTime:          b.EndTime,
			ArrivalTime:      b.ArrivalTime,
			DepartureTime:    b.DepartureTime,
			OrganizerName:    b.OrganizerName,
			OrganizerContact: b.OrganizerContact,
			Vehicle:          b.Vehicle,
			Equipment:        b.Equipment,
			Notes:            b.Notes,
			Kilometers:       b.KilometersSport,
			Price:            b.PriceSport,
		},
	}
	if b.Status != nil {
		st := domain.Status(*b.Status)
		ps.Status = &st
	}
	return ps
}

// decodeBody reads a JSON body into dst and validates it.
// Every failure is a domain.ErrValidation except an oversized body, which
// keeps its *http.MaxBytesError so it maps to 413.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return fmt.Errorf("%w: request body is required", domain.ErrValidation)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return err
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: request body is required", domain.ErrValidation)
		}
		return fmt.Errorf("%w: invalid request body: %s", domain.ErrValidation, err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError flattens validator errors into one ErrValidation.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s %s", fe.Field(), fieldMessage(fe)))
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "clock":
		return "must be a HH:MM time"
	default:
		return "failed validation: " + fe.Tag()
	}
}

func dateTime(d *openapi_types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func datePtr(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	return &openapi_types.Date{Time: *t}
}

// ---- responses -------------------------------------------------------------

// serviceEnvelope is the parent part of every service response.
type serviceEnvelope struct {
	ID          openapi_types.UUID  `json:"id"`
	Type        string              `json:"type"`
	OwnerID     string              `json:"ownerId"`
	Status      string              `json:"status"`
	Kilometers  float64             `json:"kilometers"`
	Price       float64             `json:"price"`
	ServiceDate *openapi_types.Date `json:"serviceDate"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// secondaryResponse flattens a secondary service. Its own serviceDate,
// kilometers and price shadow the envelope's mirrored copies.
type secondaryResponse struct {
	serviceEnvelope
	PatientName    string              `json:"patientName"`
	PatientPhone   string              `json:"patientPhone"`
	PickupAddress  string              `json:"pickupAddress"`
	PickupType     string              `json:"pickupType"`
	PickupTime     string              `json:"pickupTime"`
	DropoffAddress string              `json:"dropoffAddress"`
	DropoffType    string              `json:"dropoffType"`
	DropoffTime    string              `json:"dropoffTime"`
	ArrivalTime    string              `json:"arrivalTime"`
	DepartureTime  string              `json:"departureTime"`
	Vehicle        string              `json:"vehicle"`
	Equipment      []string            `json:"equipment"`
	Position       string              `json:"position"`
	Difficulties   []string            `json:"difficulties"`
	Notes          string              `json:"notes"`
	ServiceDate    *openapi_types.Date `json:"serviceDate"`
	Kilometers     float64             `json:"kilometers"`
	Price          float64             `json:"price"`
}

// sportResponse flattens a sport service.
type sportResponse struct {
	serviceEnvelope
	EventType        string              `json:"eventType"`
	EventName        string              `json:"eventName"`
	EventDate        *openapi_types.Date `json:"eventDate"`
	StartTime        string              `json:"startTime"`
	EndTime          string              `json:"endTime"`
	ArrivalTime      string              `json:"arrivalTime"`
	DepartureTime    string              `json:"departureTime"`
	OrganizerName    string              `json:"organizerName"`
	OrganizerContact string              `json:"organizerContact"`
	Vehicle          string              `json:"vehicle"`
	Equipment        []string            `json:"equipment"`
	Notes            string              `json:"notes"`
	KilometersSport  float64             `json:"kilometersSport"`
	PriceSport       float64             `json:"priceSport"`
}

// serviceToResponse converts a domain.ClientService into its flat JSON shape.
func serviceToResponse(c domain.ClientService) any {
	env := serviceEnvelope{
		ID:          c.ID,
		Type:        string(c.Type),
		OwnerID:     c.OwnerID,
		Status:      string(c.Status),
		Kilometers:  c.Kilometers,
		Price:       c.Price,
		ServiceDate: datePtr(c.ServiceDate),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if d, ok := c.Secondary(); ok {
		return secondaryResponse{
			serviceEnvelope: env,
			PatientName:     d.PatientName,
			PatientPhone:    d.PatientPhone,
			PickupAddress:   d.PickupAddress,
			PickupType:      d.PickupType,
			PickupTime:      d.PickupTime,
			DropoffAddress:  d.DropoffAddress,
			DropoffType:     d.DropoffType,
			DropoffTime:     d.DropoffTime,
			ArrivalTime:     d.ArrivalTime,
			DepartureTime:   d.DepartureTime,
			Vehicle:         d.Vehicle,
			Equipment:       nonNil(d.Equipment),
			Position:        d.Position,
			Difficulties:    nonNil(d.Difficulties),
			Notes:           d.Notes,
			ServiceDate:     datePtr(d.ServiceDate),
			Kilometers:      d.Kilometers,
			Price:           d.Price,
		}
	}
	if d, ok := c.Sport(); ok {
		return sportResponse{
			serviceEnvelope:  env,
			EventType:        d.EventType,
			EventName:        d.EventName,
			EventDate:        datePtr(d.EventDate),
			StartTime:        d.StartTime,
			EndTime:          d.EndTime,
			ArrivalTime:      d.ArrivalTime,
			DepartureTime:    d.DepartureTime,
			OrganizerName:    d.OrganizerName,
			OrganizerContact: d.OrganizerContact,
			Vehicle:          d.Vehicle,
			Equipment:        nonNil(d.Equipment),
			Notes:            d.Notes,
			KilometersSport:  d.Kilometers,
			PriceSport:       d.Price,
		}
	}
	return env
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

type pageResponse struct {
	Items      []any `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

type statsResponse struct {
	Total           int     `json:"total"`
	Completed       int     `json:"completed"`
	Pending         int     `json:"pending"`
	Cancelled       int     `json:"cancelled"`
	TotalRevenue    float64 `json:"totalRevenue"`
	AveragePrice    float64 `json:"averagePrice"`
	TotalKilometers float64 `json:"totalKilometers"`
}

type deletedResponse struct {
	ID openapi_types.UUID `json:"id"`
}
