package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/admir900-maker/ticket-gate/internal/app"
)

const (
	validatorIDHeader   = "X-Validator-Id"
	validatorRoleHeader = "X-Validator-Role"
	scanLocationHeader  = "X-Scan-Location"
	deviceInfoHeader    = "X-Device-Info"
)

// TicketValidator is the minimal interface needed to validate a scan.
type TicketValidator interface {
	Validate(ctx context.Context, in app.ValidateInput) (app.ValidateResult, error)
}

// HandleValidate returns the handler for POST /validate. The caller is
// an already-authenticated validator; identity and role arrive as
// headers set by the auth layer in front of this service.
func HandleValidate(svc TicketValidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req validateRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		res, err := svc.Validate(r.Context(), app.ValidateInput{
			QRCodeData:    req.QRCodeData,
			ValidatorID:   r.Header.Get(validatorIDHeader),
			ValidatorRole: r.Header.Get(validatorRoleHeader),
			Location:      r.Header.Get(scanLocationHeader),
			DeviceInfo:    r.Header.Get(deviceInfoHeader),
		})
		writeValidateResult(w, res, err)
	}
}

type validateRequest struct {
	QRCodeData string `json:"qrCodeData"`
}

type validateSuccessResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Ticket   ticketSummary   `json:"ticket"`
	Event    eventSummary    `json:"event"`
	Customer customerSummary `json:"customer"`
}

type ticketSummary struct {
	TicketID    string     `json:"ticketId"`
	TicketName  string     `json:"ticketName"`
	Price       float64    `json:"price"`
	UsedAt      *time.Time `json:"usedAt"`
	ValidatedBy string     `json:"validatedBy"`
}

type eventSummary struct {
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Venue    string    `json:"venue"`
	Location string    `json:"location"`
}

type customerSummary struct {
	UserID string `json:"userId"`
}

type validateFailureResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorKind string `json:"error"`
	Status    string `json:"status,omitempty"`
	EventDate string `json:"eventDate,omitempty"`
	UsedAt    string `json:"usedAt,omitempty"`
	UsedBy    string `json:"validatedBy,omitempty"`
}

func writeValidateResult(w http.ResponseWriter, res app.ValidateResult, err error) {
	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		kind, status, message := kindFor(err)

		resp := validateFailureResponse{
			Success:   false,
			Message:   message,
			ErrorKind: kind,
		}
		if res.Ticket != nil {
			resp.Status = string(res.Ticket.Status)
			if res.Ticket.UsedAt != nil {
				resp.UsedAt = res.Ticket.UsedAt.UTC().Format(time.RFC3339)
			}
			resp.UsedBy = res.Ticket.ValidatedBy
		}
		if res.Event != nil {
			resp.EventDate = res.Event.Date.UTC().Format(time.RFC3339)
		}

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	// An admission without a claimed ticket is a service bug, not a
	// well-formed success.
	if res.Ticket == nil {
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}

	resp := validateSuccessResponse{
		Success: true,
		Message: "ticket validated",
		Ticket: ticketSummary{
			TicketID:    res.Ticket.ID,
			TicketName:  res.Ticket.TypeName,
			Price:       res.Ticket.Price,
			UsedAt:      res.Ticket.UsedAt,
			ValidatedBy: res.Ticket.ValidatedBy,
		},
		Customer: customerSummary{UserID: res.Ticket.UserID},
	}
	if res.Event != nil {
		resp.Event = eventSummary{
			Title:    res.Event.Title,
			Date:     res.Event.Date,
			Venue:    res.Event.Venue,
			Location: res.Event.Location,
		}
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
