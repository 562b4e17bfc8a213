package domain

import "time"

type ValidationType string

const (
	ValidationTypeEntry   ValidationType = "entry"
	ValidationTypeExit    ValidationType = "exit"
	ValidationTypeGeneral ValidationType = "general"
)

type LogStatus string

const (
	LogStatusValidated LogStatus = "validated"
	LogStatusRejected  LogStatus = "rejected"
	LogStatusFlagged   LogStatus = "flagged"
)

// ValidationLogEntry is one immutable audit record per validation
// attempt. TicketID, EventID and UserID are empty when decoding failed
// before a ticket was identified.
type ValidationLogEntry struct {
	ID             string
	ValidatorID    string
	TicketID       string
	EventID        string
	UserID         string
	ValidationType ValidationType
	Status         LogStatus
	Notes          string
	Location       string
	DeviceInfo     string
	CreatedAt      time.Time
}
