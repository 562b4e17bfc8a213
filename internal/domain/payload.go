package domain

import "time"

// TicketReference is the structured form of a decoded QR payload.
// Immutable once decoded.
type TicketReference struct {
	EventID   string
	TicketID  string
	BookingID string
	UserID    string
	IssuedAt  time.Time
}
