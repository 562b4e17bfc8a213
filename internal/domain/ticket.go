package domain

import "time"

type TicketStatus string

const (
	TicketStatusUnused    TicketStatus = "unused"
	TicketStatusValidated TicketStatus = "validated"
)

// Ticket is the persisted ticket record. The engine mutates only the
// validation fields (Status, ValidationCount, UsedAt, ValidatedBy); the
// booking system owns the rest.
type Ticket struct {
	ID              string
	EventID         string
	BookingID       string
	UserID          string
	TypeName        string
	Price           float64
	Status          TicketStatus
	ValidationCount int
	UsedAt          *time.Time
	ValidatedBy     string
	CreatedAt       time.Time
}
