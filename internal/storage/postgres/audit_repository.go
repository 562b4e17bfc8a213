package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admir900-maker/ticket-gate/internal/domain"
)

// AuditRepository owns the append-only validation trail. The engine only
// ever inserts; nothing here updates or deletes rows.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Append(ctx context.Context, entry domain.ValidationLogEntry) error {
	const stmt = `
INSERT INTO validation_logs (id, validator_id, ticket_id, event_id, user_id, validation_type, status, notes, location, device_info, created_at)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, stmt,
		entry.ID,
		entry.ValidatorID,
		entry.TicketID,
		entry.EventID,
		entry.UserID,
		entry.ValidationType,
		entry.Status,
		entry.Notes,
		entry.Location,
		entry.DeviceInfo,
		entry.CreatedAt,
	)
	if err != nil {
		// A duplicate entry id means this attempt is already recorded.
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("append validation log: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]domain.ValidationLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	const query = `
SELECT id, validator_id, COALESCE(ticket_id, ''), COALESCE(event_id, ''), COALESCE(user_id, ''), validation_type, status, notes, location, device_info, created_at
FROM validation_logs
ORDER BY created_at DESC
LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list validation logs: %w", err)
	}
	defer rows.Close()

	var entries []domain.ValidationLogEntry
	for rows.Next() {
		var e domain.ValidationLogEntry
		if err := rows.Scan(
			&e.ID,
			&e.ValidatorID,
			&e.TicketID,
			&e.EventID,
			&e.UserID,
			&e.ValidationType,
			&e.Status,
			&e.Notes,
			&e.Location,
			&e.DeviceInfo,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan validation log: %w", err)
		}
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate validation logs: %w", rows.Err())
	}
	return entries, nil
}
