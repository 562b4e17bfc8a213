package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/admir900-maker/ticket-gate/internal/clock"
	"github.com/admir900-maker/ticket-gate/internal/decoder"
	"github.com/admir900-maker/ticket-gate/internal/domain"
	"github.com/admir900-maker/ticket-gate/internal/replay"
)

// ClaimInput parameterizes the atomic claim with the admissibility
// condition the store must re-check inside the write.
type ClaimInput struct {
	TicketID       string
	ValidatorID    string
	Now            time.Time
	AllowMultiple  bool
	MaxValidations int
}

type TicketStore interface {
	// GetTicket returns nil without error when no ticket exists.
	GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error)
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	// ClaimTicket performs the single atomic conditional write and
	// returns ErrClaimConflict when the persisted state no longer
	// satisfies the admissibility condition.
	ClaimTicket(ctx context.Context, in ClaimInput) (domain.Ticket, error)
}

type AuditLog interface {
	Append(ctx context.Context, entry domain.ValidationLogEntry) error
}

type PolicyProvider interface {
	Current(ctx context.Context) domain.ValidationPolicy
}

const defaultReplayWindow = 30 * time.Second

// ValidationService orchestrates a scan: decode, evaluate, claim, log,
// respond. It holds no per-request state; all cross-request coordination
// funnels through the ticket store's conditional write.
type ValidationService struct {
	tickets      TicketStore
	audit        AuditLog
	policies     PolicyProvider
	guard        replay.Guard
	clock        clock.Clock
	logger       *log.Logger
	replayWindow time.Duration
}

func NewValidationService(tickets TicketStore, audit AuditLog, policies PolicyProvider, guard replay.Guard, clk clock.Clock, opts ...ValidationOption) *ValidationService {
	svc := &ValidationService{
		tickets:      tickets,
		audit:        audit,
		policies:     policies,
		guard:        guard,
		clock:        clk,
		logger:       log.Default(),
		replayWindow: defaultReplayWindow,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ValidationOption func(*ValidationService)

// WithReplayWindow overrides how long an identical payload counts as a
// replay rather than a legitimate re-scan.
func WithReplayWindow(d time.Duration) ValidationOption {
	return func(s *ValidationService) {
		if d > 0 {
			s.replayWindow = d
		}
	}
}

func WithValidationLogger(logger *log.Logger) ValidationOption {
	return func(s *ValidationService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type ValidateInput struct {
	// QRCodeData is the scanned text; ImageData is a raw image upload.
	// Exactly one should be set.
	QRCodeData    string
	ImageData     []byte
	ValidatorID   string
	ValidatorRole string
	Location      string
	DeviceInfo    string
}

// ValidateResult carries whatever was identified, including on
// rejection, so the caller can display used-at/used-by details.
type ValidateResult struct {
	Reference domain.TicketReference
	Ticket    *domain.Ticket
	Event     *domain.Event
}

// Validate runs one scan under the policy's request timeout. A timed-out
// claim either completed atomically or did not happen; no intermediate
// ticket state is observable either way.
func (s *ValidationService) Validate(ctx context.Context, in ValidateInput) (ValidateResult, error) {
	pol := s.policies.Current(ctx)

	ctx, cancel := context.WithTimeout(ctx, pol.ValidationTimeout())
	defer cancel()

	res, err := s.validate(ctx, pol, in)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return res, domain.ErrValidationTimeout
	}
	return res, err
}

func (s *ValidationService) validate(ctx context.Context, pol domain.ValidationPolicy, in ValidateInput) (ValidateResult, error) {
	now := s.clock.Now()
	rctx := RequestContext{
		ValidatorID:   in.ValidatorID,
		ValidatorRole: in.ValidatorRole,
		Now:           now,
		Location:      in.Location,
	}

	// The feature gate short-circuits before any decode or store access:
	// a disabled scanner must leave tickets, logs and the replay guard
	// untouched.
	if !pol.QRCodeEnabled || !pol.ScannerEnabled {
		return ValidateResult{}, domain.ErrFeatureDisabled
	}

	ref, err := s.decode(ctx, in)
	if err != nil {
		s.logAttempt(ctx, pol, in, domain.TicketReference{}, domain.LogStatusRejected, err)
		return ValidateResult{}, err
	}
	res := ValidateResult{Reference: ref}

	ticket, err := s.tickets.GetTicket(ctx, ref.TicketID)
	if err != nil {
		return res, fmt.Errorf("lookup ticket: %w", err)
	}
	res.Ticket = ticket

	var event domain.Event
	if ticket != nil && ticket.EventID == ref.EventID {
		event, err = s.tickets.GetEvent(ctx, ticket.EventID)
		if err != nil {
			return res, fmt.Errorf("lookup event: %w", err)
		}
		res.Event = &event
	}

	if pol.AntiReplayEnabled && ticket != nil {
		seen, err := s.guard.Seen(ctx, ref, s.replayWindow)
		if err != nil {
			// The claim store still enforces single use; a guard outage
			// must not turn every scan away.
			s.logger.Printf("WARN: replay guard unavailable: %v", err)
		} else {
			rctx.ReplaySeen = seen
		}
	}

	if err := Evaluate(ref, ticket, event, pol, rctx); err != nil {
		status := domain.LogStatusRejected
		if errors.Is(err, domain.ErrReplayDetected) {
			status = domain.LogStatusFlagged
		}
		s.logAttempt(ctx, pol, in, ref, status, err)
		return res, err
	}

	claimed, err := s.tickets.ClaimTicket(ctx, ClaimInput{
		TicketID:       ref.TicketID,
		ValidatorID:    in.ValidatorID,
		Now:            now,
		AllowMultiple:  pol.MultipleScansAllowed,
		MaxValidations: pol.MaxValidationsPerTicket,
	})
	if err != nil {
		if errors.Is(err, domain.ErrClaimConflict) {
			return s.resolveConflict(ctx, pol, in, res)
		}
		return res, fmt.Errorf("claim ticket: %w", err)
	}
	res.Ticket = &claimed

	s.logAttempt(ctx, pol, in, ref, domain.LogStatusValidated, nil)
	return res, nil
}

func (s *ValidationService) decode(ctx context.Context, in ValidateInput) (domain.TicketReference, error) {
	if len(in.ImageData) > 0 {
		return decoder.DecodeImageBytes(ctx, in.ImageData)
	}
	return decoder.DecodeText(in.QRCodeData)
}

// resolveConflict maps a lost conditional write to the rejection a
// microseconds-later scan would have produced, from fresh state.
func (s *ValidationService) resolveConflict(ctx context.Context, pol domain.ValidationPolicy, in ValidateInput, res ValidateResult) (ValidateResult, error) {
	reason := domain.ErrAlreadyUsed
	if pol.MultipleScansAllowed {
		reason = domain.ErrValidationLimit
	}

	fresh, err := s.tickets.GetTicket(ctx, res.Reference.TicketID)
	if err == nil && fresh != nil {
		res.Ticket = fresh
	}

	s.logAttempt(ctx, pol, in, res.Reference, domain.LogStatusRejected, reason)
	return res, reason
}

// logAttempt appends to the audit trail, best effort. A failed append is
// reported to the operational log and never fails the validation.
func (s *ValidationService) logAttempt(ctx context.Context, pol domain.ValidationPolicy, in ValidateInput, ref domain.TicketReference, status domain.LogStatus, reason error) {
	if !pol.LogValidations {
		return
	}

	notes := "admitted"
	if reason != nil {
		notes = reason.Error()
	}

	entry := domain.ValidationLogEntry{
		ID:             uuid.NewString(),
		ValidatorID:    in.ValidatorID,
		TicketID:       ref.TicketID,
		EventID:        ref.EventID,
		UserID:         ref.UserID,
		ValidationType: domain.ValidationTypeEntry,
		Status:         status,
		Notes:          notes,
		Location:       in.Location,
		DeviceInfo:     in.DeviceInfo,
		CreatedAt:      s.clock.Now(),
	}

	// The append outlives a request timeout: the attempt happened and
	// the forensic trail records it.
	if err := s.audit.Append(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Printf("ERROR: audit append failed ticket=%s status=%s: %v", ref.TicketID, status, err)
	}
}
