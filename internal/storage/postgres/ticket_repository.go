package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admir900-maker/ticket-gate/internal/app"
	"github.com/admir900-maker/ticket-gate/internal/domain"
)

type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

const ticketColumns = `id, event_id, booking_id, user_id, type_name, price, status, validation_count, used_at, validated_by, created_at`

func (r *TicketRepository) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	t, err := scanTicket(r.pool.QueryRow(ctx, query, ticketID))
	if err != nil {
		if isInvalidUUID(err) || err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return &t, nil
}

func (r *TicketRepository) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	const query = `SELECT id, title, date, venue, location FROM events WHERE id = $1`

	var e domain.Event
	err := r.pool.QueryRow(ctx, query, eventID).
		Scan(&e.ID, &e.Title, &e.Date, &e.Venue, &e.Location)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Event{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// ClaimTicket marks the ticket used in one conditional write. The WHERE
// clause re-checks admissibility against the row's current state, so two
// racing validators cannot both win: the update that matches zero rows
// lost to one that already committed. No application lock, no
// read-then-write gap.
func (r *TicketRepository) ClaimTicket(ctx context.Context, in app.ClaimInput) (domain.Ticket, error) {
	const stmt = `
UPDATE tickets
SET status = $2, validation_count = validation_count + 1, used_at = $3, validated_by = $4
WHERE id = $1
  AND (status = $5 OR ($6 AND validation_count < $7))
RETURNING ` + ticketColumns

	t, err := scanTicket(r.pool.QueryRow(ctx, stmt,
		in.TicketID,
		domain.TicketStatusValidated,
		in.Now,
		in.ValidatorID,
		domain.TicketStatusUnused,
		in.AllowMultiple,
		in.MaxValidations,
	))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Ticket{}, domain.ErrClaimConflict
		}
		if err == pgx.ErrNoRows {
			return domain.Ticket{}, domain.ErrClaimConflict
		}
		return domain.Ticket{}, fmt.Errorf("claim ticket: %w", err)
	}
	return t, nil
}

func (r *TicketRepository) CreateEvent(ctx context.Context, event domain.Event) error {
	const stmt = `
INSERT INTO events (id, title, date, venue, location)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, stmt, event.ID, event.Title, event.Date, event.Venue, event.Location)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *TicketRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const query = `
SELECT id, title, date, venue, location
FROM events
ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Date, &e.Venue, &e.Location); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate events: %w", rows.Err())
	}
	return events, nil
}

func (r *TicketRepository) CreateTicket(ctx context.Context, ticket domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (id, event_id, booking_id, user_id, type_name, price, status, validation_count, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, stmt,
		ticket.ID,
		ticket.EventID,
		ticket.BookingID,
		ticket.UserID,
		ticket.TypeName,
		ticket.Price,
		ticket.Status,
		ticket.ValidationCount,
		ticket.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var t domain.Ticket
	var validatedBy *string
	err := row.Scan(
		&t.ID,
		&t.EventID,
		&t.BookingID,
		&t.UserID,
		&t.TypeName,
		&t.Price,
		&t.Status,
		&t.ValidationCount,
		&t.UsedAt,
		&validatedBy,
		&t.CreatedAt,
	)
	if err != nil {
		return domain.Ticket{}, err
	}
	if validatedBy != nil {
		t.ValidatedBy = *validatedBy
	}
	return t, nil
}
