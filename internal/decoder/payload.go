package decoder

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/admir900-maker/ticket-gate/internal/domain"
)

// wirePayload is the JSON object embedded in issued QR codes. Timestamp
// is the issuance instant in Unix milliseconds.
type wirePayload struct {
	EventID   string `json:"eventId"`
	TicketID  string `json:"ticketId"`
	BookingID string `json:"bookingId"`
	UserID    string `json:"userId"`
	Timestamp int64  `json:"timestamp"`
}

// DecodeText parses a scanned QR string into a TicketReference. It is a
// pure function: the same input always yields the same reference or the
// same error.
func DecodeText(raw string) (domain.TicketReference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.TicketReference{}, domain.ErrMalformedPayload
	}

	var p wirePayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return domain.TicketReference{}, domain.ErrMalformedPayload
	}
	if p.EventID == "" || p.TicketID == "" || p.BookingID == "" || p.UserID == "" {
		return domain.TicketReference{}, domain.ErrMalformedPayload
	}
	if p.Timestamp <= 0 {
		return domain.TicketReference{}, domain.ErrMalformedPayload
	}

	return domain.TicketReference{
		EventID:   p.EventID,
		TicketID:  p.TicketID,
		BookingID: p.BookingID,
		UserID:    p.UserID,
		IssuedAt:  time.UnixMilli(p.Timestamp).UTC(),
	}, nil
}

// EncodeText renders the payload the issuance side embeds in a QR code.
// DecodeText(EncodeText(ref)) recovers ref.
func EncodeText(ref domain.TicketReference) (string, error) {
	out, err := json.Marshal(wirePayload{
		EventID:   ref.EventID,
		TicketID:  ref.TicketID,
		BookingID: ref.BookingID,
		UserID:    ref.UserID,
		Timestamp: ref.IssuedAt.UnixMilli(),
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
