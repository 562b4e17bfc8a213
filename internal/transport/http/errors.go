package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/admir900-maker/ticket-gate/internal/domain"
)

// ErrorKind values carried on the wire in failure responses.
const (
	kindMalformedPayload   = "MalformedPayload"
	kindUnreadableImage    = "UnreadableImage"
	kindFeatureDisabled    = "FeatureDisabled"
	kindUnauthorized       = "Unauthorized"
	kindNotFound           = "NotFound"
	kindReplayDetected     = "ReplayDetected"
	kindOutsideWindow      = "OutsideWindow"
	kindLocationNotAllowed = "LocationNotAllowed"
	kindAlreadyUsed        = "AlreadyUsed"
	kindValidationLimit    = "ValidationLimitReached"
	kindTimeout            = "Timeout"
	kindStoreUnavailable   = "StoreUnavailable"
)

// Codes for the generic admin/error envelope.
const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeInvalidDate        = "invalid_date"
	codeInvalidID          = "invalid_id"
	codeEventTitleRequired = "event_title_required"
	codeUserIDRequired     = "user_id_required"
	codeEventNotFound      = "event_not_found"
	codeInvalidPolicy      = "invalid_policy"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

// kindFor maps a validation error to its wire kind, HTTP status and
// operator-facing message. Unknown errors are infrastructure failures:
// they surface as StoreUnavailable with retry guidance, never as a
// ticket rejection.
func kindFor(err error) (kind string, status int, message string) {
	switch {
	case errors.Is(err, domain.ErrMalformedPayload):
		return kindMalformedPayload, http.StatusBadRequest, "scanned data is not a valid ticket payload"
	case errors.Is(err, domain.ErrUnreadableImage):
		return kindUnreadableImage, http.StatusBadRequest, "no QR code could be read from the image; retry with a higher-resolution image or enter the code manually"
	case errors.Is(err, domain.ErrFeatureDisabled):
		return kindFeatureDisabled, http.StatusForbidden, "QR validation is currently disabled"
	case errors.Is(err, domain.ErrUnauthorized):
		return kindUnauthorized, http.StatusForbidden, "you are not authorized to validate tickets"
	case errors.Is(err, domain.ErrTicketNotFound):
		return kindNotFound, http.StatusNotFound, "ticket not found for this event"
	case errors.Is(err, domain.ErrReplayDetected):
		return kindReplayDetected, http.StatusConflict, "this QR code was already scanned moments ago"
	case errors.Is(err, domain.ErrOutsideWindow):
		return kindOutsideWindow, http.StatusForbidden, "validation is not open for this event date"
	case errors.Is(err, domain.ErrLocationNotAllowed):
		return kindLocationNotAllowed, http.StatusForbidden, "validation is not allowed from this location"
	case errors.Is(err, domain.ErrAlreadyUsed):
		return kindAlreadyUsed, http.StatusConflict, "ticket has already been used"
	case errors.Is(err, domain.ErrValidationLimit):
		return kindValidationLimit, http.StatusConflict, "ticket has reached its validation limit"
	case errors.Is(err, domain.ErrValidationTimeout):
		return kindTimeout, http.StatusGatewayTimeout, "validation timed out, please retry"
	default:
		return kindStoreUnavailable, http.StatusServiceUnavailable, "validation could not be completed, please retry"
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}
