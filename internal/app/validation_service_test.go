package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/admir900-maker/ticket-gate/internal/clock"
	"github.com/admir900-maker/ticket-gate/internal/decoder"
	"github.com/admir900-maker/ticket-gate/internal/domain"
	"github.com/admir900-maker/ticket-gate/internal/replay"
)

type fakeTicketStore struct {
	mu       sync.Mutex
	tickets  map[string]*domain.Ticket
	events   map[string]domain.Event
	getErr   error
	getCalls int
}

func newFakeTicketStore(event domain.Event, tickets ...domain.Ticket) *fakeTicketStore {
	s := &fakeTicketStore{
		tickets: make(map[string]*domain.Ticket),
		events:  map[string]domain.Event{event.ID: event},
	}
	for i := range tickets {
		t := tickets[i]
		s.tickets[t.ID] = &t
	}
	return s
}

func (s *fakeTicketStore) GetTicket(_ context.Context, ticketID string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if s.getErr != nil {
		return nil, s.getErr
	}
	t, ok := s.tickets[ticketID]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (s *fakeTicketStore) GetEvent(_ context.Context, eventID string) (domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return e, nil
}

// ClaimTicket re-checks admissibility under the lock, mirroring the
// conditional write the real store performs.
func (s *fakeTicketStore) ClaimTicket(_ context.Context, in ClaimInput) (domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[in.TicketID]
	if !ok {
		return domain.Ticket{}, domain.ErrClaimConflict
	}
	admissible := t.Status == domain.TicketStatusUnused ||
		(in.AllowMultiple && t.ValidationCount < in.MaxValidations)
	if !admissible {
		return domain.Ticket{}, domain.ErrClaimConflict
	}

	t.Status = domain.TicketStatusValidated
	t.ValidationCount++
	now := in.Now
	t.UsedAt = &now
	t.ValidatedBy = in.ValidatorID
	return *t, nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []domain.ValidationLogEntry
	err     error
}

func (a *fakeAudit) Append(_ context.Context, entry domain.ValidationLogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, entry)
	return nil
}

func (a *fakeAudit) all() []domain.ValidationLogEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.ValidationLogEntry{}, a.entries...)
}

type fixedPolicies struct {
	pol domain.ValidationPolicy
}

func (f fixedPolicies) Current(context.Context) domain.ValidationPolicy {
	return f.pol
}

func TestValidationService(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	event := domain.Event{ID: "event-1", Title: "Concert", Date: now.Add(2 * time.Hour), Venue: "Main Hall", Location: "Prishtina"}

	freshTicket := domain.Ticket{
		ID:      "ticket-1",
		EventID: "event-1",
		UserID:  "user-1",
		Status:  domain.TicketStatusUnused,
	}

	payloadFor := func(t *testing.T, ticket domain.Ticket) string {
		t.Helper()
		raw, err := decoder.EncodeText(domain.TicketReference{
			EventID:   ticket.EventID,
			TicketID:  ticket.ID,
			BookingID: "booking-1",
			UserID:    ticket.UserID,
			IssuedAt:  now.Add(-time.Hour),
		})
		if err != nil {
			t.Fatalf("encode payload: %v", err)
		}
		return raw
	}

	singleScanPolicy := domain.ValidationPolicy{
		QRCodeEnabled:           true,
		ScannerEnabled:          true,
		MultipleScansAllowed:    false,
		AllowValidationAnytime:  true,
		MaxValidationsPerTicket: 1,
		LogValidations:          true,
	}

	newService := func(pol domain.ValidationPolicy, store *fakeTicketStore, audit *fakeAudit) *ValidationService {
		clk := clock.NewFixed(now)
		return NewValidationService(store, audit, fixedPolicies{pol}, replay.NewMemoryGuard(clk), clk)
	}

	input := func(payload string) ValidateInput {
		return ValidateInput{
			QRCodeData:  payload,
			ValidatorID: "val-1",
			DeviceInfo:  "scanner-01",
		}
	}

	t.Run("first scan admits, immediate second scan rejects", func(t *testing.T) {
		store := newFakeTicketStore(event, freshTicket)
		audit := &fakeAudit{}
		svc := newService(singleScanPolicy, store, audit)
		payload := payloadFor(t, freshTicket)

		res, err := svc.Validate(context.Background(), input(payload))
		if err != nil {
			t.Fatalf("expected admit, got %v", err)
		}
		if res.Ticket.ValidationCount != 1 {
			t.Fatalf("expected validation count 1, got %d", res.Ticket.ValidationCount)
		}
		if res.Ticket.ValidatedBy != "val-1" {
			t.Fatalf("expected validatedBy val-1, got %s", res.Ticket.ValidatedBy)
		}

		res, err = svc.Validate(context.Background(), input(payload))
		if !errors.Is(err, domain.ErrAlreadyUsed) {
			t.Fatalf("expected ErrAlreadyUsed, got %v", err)
		}
		if res.Ticket == nil || res.Ticket.UsedAt == nil {
			t.Fatalf("expected rejection to carry used ticket state")
		}

		entries := audit.all()
		if len(entries) != 2 {
			t.Fatalf("expected 2 audit entries, got %d", len(entries))
		}
		if entries[0].Status != domain.LogStatusValidated || entries[1].Status != domain.LogStatusRejected {
			t.Fatalf("unexpected audit statuses: %+v", entries)
		}
	})

	t.Run("disabled feature touches nothing", func(t *testing.T) {
		pol := singleScanPolicy
		pol.QRCodeEnabled = false

		store := newFakeTicketStore(event, freshTicket)
		audit := &fakeAudit{}
		svc := newService(pol, store, audit)

		_, err := svc.Validate(context.Background(), input(payloadFor(t, freshTicket)))
		if !errors.Is(err, domain.ErrFeatureDisabled) {
			t.Fatalf("expected ErrFeatureDisabled, got %v", err)
		}
		if store.getCalls != 0 {
			t.Fatalf("expected no store access, got %d lookups", store.getCalls)
		}
		if len(audit.all()) != 0 {
			t.Fatalf("expected no audit entries, got %d", len(audit.all()))
		}
	})

	t.Run("malformed payload is logged without a ticket", func(t *testing.T) {
		store := newFakeTicketStore(event, freshTicket)
		audit := &fakeAudit{}
		svc := newService(singleScanPolicy, store, audit)

		_, err := svc.Validate(context.Background(), input("not-json"))
		if !errors.Is(err, domain.ErrMalformedPayload) {
			t.Fatalf("expected ErrMalformedPayload, got %v", err)
		}

		entries := audit.all()
		if len(entries) != 1 {
			t.Fatalf("expected 1 audit entry, got %d", len(entries))
		}
		if entries[0].TicketID != "" {
			t.Fatalf("expected empty ticket id, got %q", entries[0].TicketID)
		}
		if entries[0].Status != domain.LogStatusRejected {
			t.Fatalf("expected rejected status, got %s", entries[0].Status)
		}
	})

	t.Run("multi-scan ticket admits to the limit then rejects", func(t *testing.T) {
		pol := singleScanPolicy
		pol.MultipleScansAllowed = true
		pol.MaxValidationsPerTicket = 3

		used := freshTicket
		used.Status = domain.TicketStatusValidated
		used.ValidationCount = 2
		usedAt := now.Add(-time.Hour)
		used.UsedAt = &usedAt

		store := newFakeTicketStore(event, used)
		audit := &fakeAudit{}
		svc := newService(pol, store, audit)
		payload := payloadFor(t, used)

		res, err := svc.Validate(context.Background(), input(payload))
		if err != nil {
			t.Fatalf("expected third scan to admit, got %v", err)
		}
		if res.Ticket.ValidationCount != 3 {
			t.Fatalf("expected validation count 3, got %d", res.Ticket.ValidationCount)
		}

		_, err = svc.Validate(context.Background(), input(payload))
		if !errors.Is(err, domain.ErrValidationLimit) {
			t.Fatalf("expected ErrValidationLimit, got %v", err)
		}
	})

	t.Run("replayed payload is flagged", func(t *testing.T) {
		pol := singleScanPolicy
		pol.MultipleScansAllowed = true
		pol.MaxValidationsPerTicket = 10
		pol.AntiReplayEnabled = true

		store := newFakeTicketStore(event, freshTicket)
		audit := &fakeAudit{}
		svc := newService(pol, store, audit)
		payload := payloadFor(t, freshTicket)

		if _, err := svc.Validate(context.Background(), input(payload)); err != nil {
			t.Fatalf("expected first scan to admit, got %v", err)
		}

		_, err := svc.Validate(context.Background(), input(payload))
		if !errors.Is(err, domain.ErrReplayDetected) {
			t.Fatalf("expected ErrReplayDetected, got %v", err)
		}

		entries := audit.all()
		if len(entries) != 2 {
			t.Fatalf("expected 2 audit entries, got %d", len(entries))
		}
		if entries[1].Status != domain.LogStatusFlagged {
			t.Fatalf("expected flagged entry, got %s", entries[1].Status)
		}
	})

	t.Run("store failure is not a rejection", func(t *testing.T) {
		store := newFakeTicketStore(event, freshTicket)
		store.getErr = errors.New("connection refused")
		svc := newService(singleScanPolicy, store, &fakeAudit{})

		_, err := svc.Validate(context.Background(), input(payloadFor(t, freshTicket)))
		if err == nil {
			t.Fatalf("expected error")
		}
		for _, sentinel := range []error{
			domain.ErrAlreadyUsed, domain.ErrTicketNotFound, domain.ErrValidationLimit,
			domain.ErrOutsideWindow, domain.ErrMalformedPayload,
		} {
			if errors.Is(err, sentinel) {
				t.Fatalf("store failure must not map to %v", sentinel)
			}
		}
	})

	t.Run("deadline maps to timeout", func(t *testing.T) {
		store := newFakeTicketStore(event, freshTicket)
		store.getErr = context.DeadlineExceeded
		svc := newService(singleScanPolicy, store, &fakeAudit{})

		_, err := svc.Validate(context.Background(), input(payloadFor(t, freshTicket)))
		if !errors.Is(err, domain.ErrValidationTimeout) {
			t.Fatalf("expected ErrValidationTimeout, got %v", err)
		}
	})

	t.Run("audit failure does not fail the validation", func(t *testing.T) {
		store := newFakeTicketStore(event, freshTicket)
		audit := &fakeAudit{err: errors.New("log sink down")}
		svc := newService(singleScanPolicy, store, audit)

		if _, err := svc.Validate(context.Background(), input(payloadFor(t, freshTicket))); err != nil {
			t.Fatalf("expected admit despite audit failure, got %v", err)
		}
	})

	t.Run("unknown ticket rejects with not found", func(t *testing.T) {
		store := newFakeTicketStore(event)
		svc := newService(singleScanPolicy, store, &fakeAudit{})

		_, err := svc.Validate(context.Background(), input(payloadFor(t, freshTicket)))
		if !errors.Is(err, domain.ErrTicketNotFound) {
			t.Fatalf("expected ErrTicketNotFound, got %v", err)
		}
	})
}

func TestValidationService_ConcurrentScans(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	event := domain.Event{ID: "event-1", Title: "Concert", Date: now}
	ticket := domain.Ticket{ID: "ticket-1", EventID: "event-1", UserID: "user-1", Status: domain.TicketStatusUnused}

	pol := domain.ValidationPolicy{
		QRCodeEnabled:           true,
		ScannerEnabled:          true,
		AllowValidationAnytime:  true,
		MaxValidationsPerTicket: 1,
		LogValidations:          true,
	}

	payload, err := decoder.EncodeText(domain.TicketReference{
		EventID:   ticket.EventID,
		TicketID:  ticket.ID,
		BookingID: "booking-1",
		UserID:    ticket.UserID,
		IssuedAt:  now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}

	store := newFakeTicketStore(event, ticket)
	clk := clock.NewFixed(now)
	svc := NewValidationService(store, &fakeAudit{}, fixedPolicies{pol}, replay.NewMemoryGuard(clk), clk)

	const n = 50
	results := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Validate(context.Background(), ValidateInput{
				QRCodeData:  payload,
				ValidatorID: "val-1",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var admitted, alreadyUsed int
	for err := range results {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, domain.ErrAlreadyUsed):
			alreadyUsed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if admitted != 1 {
		t.Fatalf("expected exactly 1 admission, got %d", admitted)
	}
	if alreadyUsed != n-1 {
		t.Fatalf("expected %d AlreadyUsed rejections, got %d", n-1, alreadyUsed)
	}
}
