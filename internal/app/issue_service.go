package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/admir900-maker/ticket-gate/internal/clock"
	"github.com/admir900-maker/ticket-gate/internal/decoder"
	"github.com/admir900-maker/ticket-gate/internal/domain"
)

type IssueRepository interface {
	CreateEvent(ctx context.Context, event domain.Event) error
	ListEvents(ctx context.Context) ([]domain.Event, error)
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	CreateTicket(ctx context.Context, ticket domain.Ticket) error
}

// IssueService is the write side of the booking collaborator: it creates
// events and unused tickets so the engine has something to admit. Real
// checkout/payment stays outside this service.
type IssueService struct {
	repo  IssueRepository
	clock clock.Clock
}

func NewIssueService(repo IssueRepository, clk clock.Clock) *IssueService {
	return &IssueService{
		repo:  repo,
		clock: clk,
	}
}

type CreateEventInput struct {
	Title    string
	Date     *time.Time
	Venue    string
	Location string
}

func (s *IssueService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	if in.Title == "" {
		return domain.Event{}, domain.ErrEventTitleRequired
	}
	date := s.clock.Now()
	if in.Date != nil {
		date = *in.Date
	}

	event := domain.Event{
		ID:       uuid.NewString(),
		Title:    in.Title,
		Date:     date,
		Venue:    in.Venue,
		Location: in.Location,
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (s *IssueService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx)
}

type IssueTicketInput struct {
	EventID   string
	UserID    string
	BookingID string
	TypeName  string
	Price     float64
}

type IssueTicketResult struct {
	Ticket domain.Ticket
	// Payload is the JSON the QR renderer embeds in the issued code.
	Payload string
}

func (s *IssueService) IssueTicket(ctx context.Context, in IssueTicketInput) (IssueTicketResult, error) {
	if in.EventID == "" {
		return IssueTicketResult{}, domain.ErrInvalidID
	}
	if in.UserID == "" {
		return IssueTicketResult{}, domain.ErrUserIDRequired
	}

	if _, err := s.repo.GetEvent(ctx, in.EventID); err != nil {
		return IssueTicketResult{}, err
	}

	now := s.clock.Now()
	bookingID := in.BookingID
	if bookingID == "" {
		bookingID = uuid.NewString()
	}

	ticket := domain.Ticket{
		ID:        uuid.NewString(),
		EventID:   in.EventID,
		BookingID: bookingID,
		UserID:    in.UserID,
		TypeName:  in.TypeName,
		Price:     in.Price,
		Status:    domain.TicketStatusUnused,
		CreatedAt: now,
	}

	if err := s.repo.CreateTicket(ctx, ticket); err != nil {
		return IssueTicketResult{}, err
	}

	payload, err := decoder.EncodeText(domain.TicketReference{
		EventID:   ticket.EventID,
		TicketID:  ticket.ID,
		BookingID: ticket.BookingID,
		UserID:    ticket.UserID,
		IssuedAt:  now,
	})
	if err != nil {
		return IssueTicketResult{}, err
	}

	return IssueTicketResult{Ticket: ticket, Payload: payload}, nil
}
