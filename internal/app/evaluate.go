package app

import (
	"time"

	"github.com/admir900-maker/ticket-gate/internal/domain"
)

// RequestContext carries the per-scan facts the evaluator needs beyond
// the ticket itself: who is scanning, when, from where, and whether the
// replay guard already saw this exact payload.
type RequestContext struct {
	ValidatorID   string
	ValidatorRole string
	Now           time.Time
	Location      string
	ReplaySeen    bool
}

// Roles allowed to admit tickets when the policy requires one.
var validatorRoles = map[string]struct{}{
	"admin":     {},
	"organizer": {},
	"validator": {},
}

// Evaluate runs the ordered admission checklist and returns nil to
// admit, or the first failing check's rejection. The order is fixed so a
// given state always produces the same verdict; ticket is nil when no
// persisted ticket matched the reference. Evaluate never mutates
// anything, which is what keeps it testable without a database.
func Evaluate(ref domain.TicketReference, ticket *domain.Ticket, event domain.Event, pol domain.ValidationPolicy, rctx RequestContext) error {
	if !pol.QRCodeEnabled || !pol.ScannerEnabled {
		return domain.ErrFeatureDisabled
	}

	if pol.RequireValidatorRole {
		if _, ok := validatorRoles[rctx.ValidatorRole]; !ok {
			return domain.ErrUnauthorized
		}
	}

	if ticket == nil || ticket.EventID != ref.EventID {
		return domain.ErrTicketNotFound
	}

	if pol.AntiReplayEnabled && rctx.ReplaySeen {
		return domain.ErrReplayDetected
	}

	if !pol.AllowValidationAnytime {
		opens := event.Date.AddDate(0, 0, -pol.ValidationStartDays)
		closes := event.Date.AddDate(0, 0, pol.ScanTimeWindowDays)
		if rctx.Now.Before(opens) || rctx.Now.After(closes) {
			return domain.ErrOutsideWindow
		}
	}

	if pol.GeoLocationRequired && !pol.LocationAllowed(rctx.Location) {
		return domain.ErrLocationNotAllowed
	}

	if ticket.Status == domain.TicketStatusValidated {
		if !pol.MultipleScansAllowed {
			return domain.ErrAlreadyUsed
		}
		if ticket.ValidationCount >= pol.MaxValidationsPerTicket {
			return domain.ErrValidationLimit
		}
	}

	return nil
}
