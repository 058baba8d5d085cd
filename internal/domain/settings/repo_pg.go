package settings

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/physiocare/clinic/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const settingsCols = `id, opening_time, closing_time, break_start, break_end,
	working_days, time_slot_duration, blocked_periods, is_active, created_at, updated_at`

// scanSettings reads working_days and blocked_periods as raw bytes and
// normalizes them through the decode helpers, so callers never see the
// JSON-or-string ambiguity.
func (r *repoPG) scanSettings(row pgx.Row) (*ClinicSettings, error) {
	var s ClinicSettings
	var rawDays, rawPeriods []byte
	err := row.Scan(&s.ID, &s.OpeningTime, &s.ClosingTime, &s.BreakStart, &s.BreakEnd,
		&rawDays, &s.TimeSlotDuration, &rawPeriods, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.WorkingDays = decodeWorkingDays(rawDays)
	s.BlockedPeriods = decodeBlockedPeriods(rawPeriods)
	return &s, nil
}

func (r *repoPG) GetLatest(ctx context.Context) (*ClinicSettings, error) {
	s, err := r.scanSettings(r.conn(ctx).QueryRow(ctx,
		`SELECT `+settingsCols+` FROM clinic_settings ORDER BY created_at DESC LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *repoPG) Create(ctx context.Context, s *ClinicSettings) error {
	s.ID = uuid.New()
	days, err := json.Marshal(s.WorkingDays)
	if err != nil {
		return err
	}
	periods, err := json.Marshal(s.BlockedPeriods)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO clinic_settings (id, opening_time, closing_time, break_start, break_end,
			working_days, time_slot_duration, blocked_periods, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		s.ID, s.OpeningTime, s.ClosingTime, s.BreakStart, s.BreakEnd,
		days, s.TimeSlotDuration, periods, s.IsActive)
	return err
}

func (r *repoPG) Update(ctx context.Context, s *ClinicSettings) error {
	days, err := json.Marshal(s.WorkingDays)
	if err != nil {
		return err
	}
	periods, err := json.Marshal(s.BlockedPeriods)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		UPDATE clinic_settings SET opening_time=$2, closing_time=$3, break_start=$4, break_end=$5,
			working_days=$6, time_slot_duration=$7, blocked_periods=$8, is_active=$9, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.OpeningTime, s.ClosingTime, s.BreakStart, s.BreakEnd,
		days, s.TimeSlotDuration, periods, s.IsActive)
	return err
}
