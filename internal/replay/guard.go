package replay

import (
	"context"
	"time"

	"github.com/admir900-maker/ticket-gate/internal/domain"
)

// Guard tracks recently processed QR payloads. A payload is keyed on the
// ticket ID plus the issuance timestamp embedded at printing, so a
// captured image re-submitted verbatim is caught while a fresh payload
// for the same ticket is not.
type Guard interface {
	// Seen registers the payload and reports whether an identical one
	// was already processed within the window.
	Seen(ctx context.Context, ref domain.TicketReference, window time.Duration) (bool, error)
}

// Key renders the guard key for a decoded payload.
func Key(ref domain.TicketReference) string {
	return ref.TicketID + "|" + ref.IssuedAt.UTC().Format(time.RFC3339Nano)
}
