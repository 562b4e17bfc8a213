package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/admir900-maker/ticket-gate/internal/app"
	"github.com/admir900-maker/ticket-gate/internal/domain"
)

// EventIssuer is the minimal interface for the event endpoints.
type EventIssuer interface {
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

// TicketIssuer is the minimal interface for the ticket issuance endpoint.
type TicketIssuer interface {
	IssueTicket(ctx context.Context, in app.IssueTicketInput) (app.IssueTicketResult, error)
}

// HandleAdminEvents returns the handler for /admin/events.
func HandleAdminEvents(svc EventIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			events, err := svc.ListEvents(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			resp := make([]eventAdminResponse, 0, len(events))
			for _, event := range events {
				resp = append(resp, newEventAdminResponse(event))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
			return
		case http.MethodPost:
			var req createEventRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			if req.Title == "" {
				writeError(w, http.StatusBadRequest, codeEventTitleRequired, domain.ErrEventTitleRequired.Error())
				return
			}

			var date *time.Time
			if req.Date != "" {
				parsed, err := time.Parse(time.RFC3339, req.Date)
				if err != nil {
					writeError(w, http.StatusBadRequest, codeInvalidDate, "invalid date format")
					return
				}
				date = &parsed
			}

			event, err := svc.CreateEvent(r.Context(), app.CreateEventInput{
				Title:    req.Title,
				Date:     date,
				Venue:    req.Venue,
				Location: req.Location,
			})
			if err != nil {
				switch err {
				case domain.ErrEventTitleRequired:
					writeError(w, http.StatusBadRequest, codeEventTitleRequired, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(newEventAdminResponse(event))
			return
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
	}
}

// HandleIssueTicket returns the handler for /admin/events/{id}/tickets.
func HandleIssueTicket(svc TicketIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, ok := parseEventTicketsPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req issueTicketRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.UserID == "" {
			writeError(w, http.StatusBadRequest, codeUserIDRequired, domain.ErrUserIDRequired.Error())
			return
		}

		res, err := svc.IssueTicket(r.Context(), app.IssueTicketInput{
			EventID:   eventID,
			UserID:    req.UserID,
			BookingID: req.BookingID,
			TypeName:  req.TypeName,
			Price:     req.Price,
		})
		if err != nil {
			switch err {
			case domain.ErrInvalidID:
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case domain.ErrEventNotFound:
				writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
			case domain.ErrUserIDRequired:
				writeError(w, http.StatusBadRequest, codeUserIDRequired, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		resp := issueTicketResponse{
			TicketID:  res.Ticket.ID,
			EventID:   res.Ticket.EventID,
			BookingID: res.Ticket.BookingID,
			UserID:    res.Ticket.UserID,
			TypeName:  res.Ticket.TypeName,
			Price:     res.Ticket.Price,
			Status:    string(res.Ticket.Status),
			Payload:   res.Payload,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type createEventRequest struct {
	Title    string `json:"title"`
	Date     string `json:"date,omitempty"`
	Venue    string `json:"venue,omitempty"`
	Location string `json:"location,omitempty"`
}

type eventAdminResponse struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Venue    string    `json:"venue"`
	Location string    `json:"location"`
}

func newEventAdminResponse(event domain.Event) eventAdminResponse {
	return eventAdminResponse{
		ID:       event.ID,
		Title:    event.Title,
		Date:     event.Date,
		Venue:    event.Venue,
		Location: event.Location,
	}
}

type issueTicketRequest struct {
	UserID    string  `json:"user_id"`
	BookingID string  `json:"booking_id,omitempty"`
	TypeName  string  `json:"type_name,omitempty"`
	Price     float64 `json:"price,omitempty"`
}

type issueTicketResponse struct {
	TicketID  string  `json:"ticket_id"`
	EventID   string  `json:"event_id"`
	BookingID string  `json:"booking_id"`
	UserID    string  `json:"user_id"`
	TypeName  string  `json:"type_name"`
	Price     float64 `json:"price"`
	Status    string  `json:"status"`
	Payload   string  `json:"payload"`
}

func parseEventTicketsPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 {
		return "", false
	}
	if parts[0] != "admin" || parts[1] != "events" || parts[3] != "tickets" {
		return "", false
	}
	if parts[2] == "" {
		return "", false
	}
	return parts[2], true
}
