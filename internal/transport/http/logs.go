package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/admir900-maker/ticket-gate/internal/domain"
)

// AuditReader is the minimal interface for the log listing endpoint.
type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]domain.ValidationLogEntry, error)
}

// HandleAdminLogs returns the handler for GET /admin/logs.
func HandleAdminLogs(reader AuditReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 || parsed > 500 {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid limit")
				return
			}
			limit = parsed
		}

		entries, err := reader.ListRecent(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		resp := make([]logEntryResponse, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, logEntryResponse{
				ID:             e.ID,
				ValidatorID:    e.ValidatorID,
				TicketID:       e.TicketID,
				EventID:        e.EventID,
				UserID:         e.UserID,
				ValidationType: string(e.ValidationType),
				Status:         string(e.Status),
				Notes:          e.Notes,
				Location:       e.Location,
				DeviceInfo:     e.DeviceInfo,
				CreatedAt:      e.CreatedAt,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type logEntryResponse struct {
	ID             string    `json:"id"`
	ValidatorID    string    `json:"validator_id"`
	TicketID       string    `json:"ticket_id,omitempty"`
	EventID        string    `json:"event_id,omitempty"`
	UserID         string    `json:"user_id,omitempty"`
	ValidationType string    `json:"validation_type"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes"`
	Location       string    `json:"location"`
	DeviceInfo     string    `json:"device_info"`
	CreatedAt      time.Time `json:"created_at"`
}
