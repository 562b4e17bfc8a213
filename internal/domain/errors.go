package domain

import "errors"

var (
	ErrMalformedPayload   = errors.New("malformed qr payload")
	ErrUnreadableImage    = errors.New("unreadable qr image")
	ErrFeatureDisabled    = errors.New("qr validation disabled")
	ErrUnauthorized       = errors.New("validator not authorized")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrReplayDetected     = errors.New("replayed qr payload")
	ErrOutsideWindow      = errors.New("outside admission window")
	ErrLocationNotAllowed = errors.New("location not allowed")
	ErrAlreadyUsed        = errors.New("ticket already used")
	ErrValidationLimit    = errors.New("validation limit reached")
	ErrClaimConflict      = errors.New("concurrent claim lost")
	ErrValidationTimeout  = errors.New("validation timed out")
	ErrInvalidID          = errors.New("invalid id")
	ErrEventTitleRequired = errors.New("event title required")
	ErrUserIDRequired     = errors.New("user id required")
	ErrInvalidPolicy      = errors.New("invalid policy document")
)
