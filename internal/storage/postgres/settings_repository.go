package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admir900-maker/ticket-gate/internal/domain"
)

// SettingsRepository reads and replaces the single validation settings
// document. The table holds at most one row; saving replaces it
// wholesale, matching the snapshot semantics upstream.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

const settingsColumns = `qr_code_enabled, scanner_enabled, multiple_scans_allowed, scan_time_window_days, validation_start_days, allow_validation_anytime, require_validator_role, anti_replay_enabled, max_validations_per_ticket, validation_timeout_seconds, geo_location_required, allowed_locations, log_validations`

func (r *SettingsRepository) LoadPolicy(ctx context.Context) (domain.ValidationPolicy, error) {
	const query = `SELECT ` + settingsColumns + ` FROM validation_settings WHERE singleton`

	var p domain.ValidationPolicy
	err := r.pool.QueryRow(ctx, query).Scan(
		&p.QRCodeEnabled,
		&p.ScannerEnabled,
		&p.MultipleScansAllowed,
		&p.ScanTimeWindowDays,
		&p.ValidationStartDays,
		&p.AllowValidationAnytime,
		&p.RequireValidatorRole,
		&p.AntiReplayEnabled,
		&p.MaxValidationsPerTicket,
		&p.ValidationTimeoutSecs,
		&p.GeoLocationRequired,
		&p.AllowedLocations,
		&p.LogValidations,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.DefaultPolicy(), nil
		}
		return domain.ValidationPolicy{}, fmt.Errorf("load validation settings: %w", err)
	}
	return p, nil
}

func (r *SettingsRepository) SavePolicy(ctx context.Context, pol domain.ValidationPolicy) error {
	const stmt = `
INSERT INTO validation_settings (singleton, ` + settingsColumns + `)
VALUES (TRUE, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (singleton) DO UPDATE SET
	qr_code_enabled = EXCLUDED.qr_code_enabled,
	scanner_enabled = EXCLUDED.scanner_enabled,
	multiple_scans_allowed = EXCLUDED.multiple_scans_allowed,
	scan_time_window_days = EXCLUDED.scan_time_window_days,
	validation_start_days = EXCLUDED.validation_start_days,
	allow_validation_anytime = EXCLUDED.allow_validation_anytime,
	require_validator_role = EXCLUDED.require_validator_role,
	anti_replay_enabled = EXCLUDED.anti_replay_enabled,
	max_validations_per_ticket = EXCLUDED.max_validations_per_ticket,
	validation_timeout_seconds = EXCLUDED.validation_timeout_seconds,
	geo_location_required = EXCLUDED.geo_location_required,
	allowed_locations = EXCLUDED.allowed_locations,
	log_validations = EXCLUDED.log_validations,
	updated_at = NOW()`

	locations := pol.AllowedLocations
	if locations == nil {
		locations = []string{}
	}

	_, err := r.pool.Exec(ctx, stmt,
		pol.QRCodeEnabled,
		pol.ScannerEnabled,
		pol.MultipleScansAllowed,
		pol.ScanTimeWindowDays,
		pol.ValidationStartDays,
		pol.AllowValidationAnytime,
		pol.RequireValidatorRole,
		pol.AntiReplayEnabled,
		pol.MaxValidationsPerTicket,
		pol.ValidationTimeoutSecs,
		pol.GeoLocationRequired,
		locations,
		pol.LogValidations,
	)
	if err != nil {
		return fmt.Errorf("save validation settings: %w", err)
	}
	return nil
}
