package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/admir900-maker/ticket-gate/internal/domain"
)

type fakeAuditReader struct {
	gotLimit int
	entries  []domain.ValidationLogEntry
	err      error
}

func (f *fakeAuditReader) ListRecent(_ context.Context, limit int) ([]domain.ValidationLogEntry, error) {
	f.gotLimit = limit
	return f.entries, f.err
}

func TestHandleAdminLogs(t *testing.T) {
	t.Run("lists entries with the default limit", func(t *testing.T) {
		reader := &fakeAuditReader{
			entries: []domain.ValidationLogEntry{
				{
					ID:             "log-1",
					ValidatorID:    "val-1",
					TicketID:       "ticket-1",
					ValidationType: domain.ValidationTypeEntry,
					Status:         domain.LogStatusValidated,
					CreatedAt:      time.Now().UTC(),
				},
			},
		}
		handler := HandleAdminLogs(reader)

		req := httptest.NewRequest(http.MethodGet, "/admin/logs", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if reader.gotLimit != 50 {
			t.Fatalf("expected default limit 50, got %d", reader.gotLimit)
		}
		var resp []logEntryResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp) != 1 || resp[0].ID != "log-1" || resp[0].Status != "validated" {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})

	t.Run("honors an explicit limit", func(t *testing.T) {
		reader := &fakeAuditReader{}
		handler := HandleAdminLogs(reader)

		req := httptest.NewRequest(http.MethodGet, "/admin/logs?limit=7", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if reader.gotLimit != 7 {
			t.Fatalf("expected limit 7, got %d", reader.gotLimit)
		}
	})

	t.Run("rejects out-of-range limits", func(t *testing.T) {
		handler := HandleAdminLogs(&fakeAuditReader{})

		for _, raw := range []string{"0", "-1", "501", "abc"} {
			req := httptest.NewRequest(http.MethodGet, "/admin/logs?limit="+raw, nil)
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("limit %q: expected 400, got %d", raw, rec.Code)
			}
		}
	})

	t.Run("rejects non-GET methods", func(t *testing.T) {
		handler := HandleAdminLogs(&fakeAuditReader{})

		req := httptest.NewRequest(http.MethodPost, "/admin/logs", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})
}
