package model

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/carwise/internal/domain/vehicle"
)

// DamageSeverity grades the extent of body damage.
type DamageSeverity string

// Damage severities.
const (
	SeverityMinor    DamageSeverity = "minor"
	SeverityModerate DamageSeverity = "moderate"
	SeveritySevere   DamageSeverity = "severe"
)

// DamageTypes lists the body-shop services a repair request may ask for.
var DamageTypes = []string{"bumper", "dent", "glass", "paint", "panel", "scratch"}

const maxDescriptionLen = 2000

// RepairVehicle identifies the vehicle of a repair request.
type RepairVehicle struct {
	Brand     string `json:"brand"`
	Model     string `json:"model,omitempty"`
	ModelYear int    `json:"model_year,omitempty"`
}

// RepairRequest asks a garage for a body-shop repair quote.
type RepairRequest struct {
	// RequestID is an optional client idempotency key.
	RequestID    string         `json:"request_id,omitempty"`
	GarageID     string         `json:"garage_id"`
	Vehicle      RepairVehicle  `json:"vehicle"`
	DamageType   string         `json:"damage_type"`
	Severity     DamageSeverity `json:"severity"`
	Description  string         `json:"description,omitempty"`
	ContactEmail string         `json:"contact_email"`
}

// Normalize trims the free-text fields and canonicalises brand and damage type.
func (r RepairRequest) Normalize() RepairRequest {
	r.RequestID = strings.TrimSpace(r.RequestID)
	r.GarageID = strings.TrimSpace(r.GarageID)
	r.Vehicle.Brand = vehicle.CanonicalBrand(r.Vehicle.Brand)
	r.Vehicle.Model = strings.TrimSpace(r.Vehicle.Model)
	r.DamageType = strings.ToLower(strings.TrimSpace(r.DamageType))
	r.Severity = DamageSeverity(strings.ToLower(strings.TrimSpace(string(r.Severity))))
	r.Description = strings.TrimSpace(r.Description)
	r.ContactEmail = strings.TrimSpace(r.ContactEmail)
	return r
}

// Validate checks the whole request and reports every offending field at once.
func (r RepairRequest) Validate(now time.Time) error {
	var fields []vehicle.FieldError
	add := func(field, msg string) {
		fields = append(fields, vehicle.FieldError{Field: field, Message: msg})
	}

	if r.GarageID == "" {
		add("garage_id", "is required")
	}
	if r.Vehicle.Brand == "" {
		add("vehicle.brand", "is required")
	}
	if y := r.Vehicle.ModelYear; y != 0 && (y < vehicle.MinModelYear || y > now.Year()+1) {
		add("vehicle.model_year", "is out of range")
	}
	if !isDamageType(r.DamageType) {
		add("damage_type", "must be one of "+strings.Join(DamageTypes, ", "))
	}
	switch r.Severity {
	case SeverityMinor, SeverityModerate, SeveritySevere:
	default:
		add("severity", "must be minor, moderate or severe")
	}
	if len(r.Description) > maxDescriptionLen {
		add("description", "is too long")
	}
	if _, err := mail.ParseAddress(r.ContactEmail); err != nil {
		add("contact_email", "is not a valid email address")
	}

	if len(fields) > 0 {
		return &RequestValidationError{Fields: fields}
	}
	return nil
}

func isDamageType(s string) bool {
	for _, d := range DamageTypes {
		if d == s {
			return true
		}
	}
	return false
}

// TicketStatus is the lifecycle state of a repair ticket.
type TicketStatus string

// Ticket statuses.
const (
	StatusPending TicketStatus = "pending"
	StatusQuoted  TicketStatus = "quoted"
	StatusFailed  TicketStatus = "failed"
)

// RepairTicket tracks a repair request after it was accepted.
type RepairTicket struct {
	Reference     string        `json:"reference"`
	Status        TicketStatus  `json:"status"`
	Quote         *float64      `json:"quote,omitempty"`
	Currency      string        `json:"currency"`
	Request       RepairRequest `json:"request"`
	FailureReason string        `json:"failure_reason,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewTicket creates a pending ticket for req with a fresh reference.
func NewTicket(req RepairRequest, now time.Time) RepairTicket {
	return RepairTicket{
		Reference: NewReference(),
		Status:    StatusPending,
		Currency:  "EUR",
		Request:   req,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

// NewReference returns a booking reference such as RR-1A2B3C4D.
func NewReference() string {
	return "RR-" + strings.ToUpper(uuid.NewString()[:8])
}

// RepairJob asks a repair worker to quote the ticket with Reference.
type RepairJob struct {
	Reference  string
	EnqueuedAt time.Time
}
