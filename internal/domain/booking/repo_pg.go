package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/physiocare/clinic/internal/platform/db"
	"github.com/physiocare/clinic/pkg/pagination"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// =========== Booking Repository ===========

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const bookingCols = `id, user_id, name, email, phone, service, service_category,
	date, time, session_type, session_duration, message, emergency_contact,
	medical_history, current_medications, previous_physiotherapy, status, notes,
	created_at, updated_at`

func (r *repoPG) scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Email, &b.Phone, &b.Service, &b.ServiceCategory,
		&b.Date, &b.Time, &b.SessionType, &b.SessionDuration, &b.Message, &b.EmergencyContact,
		&b.MedicalHistory, &b.CurrentMedications, &b.PreviousPhysiotherapy, &b.Status, &b.Notes,
		&b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts the booking. The bookings_active_slot partial unique index
// on (date, time) rejects a second active booking for the same slot; that
// violation surfaces as ErrSlotTaken.
func (r *repoPG) Create(ctx context.Context, b *Booking) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bookings (id, user_id, name, email, phone, service, service_category,
			date, time, session_type, session_duration, message, emergency_contact,
			medical_history, current_medications, previous_physiotherapy, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		b.ID, b.UserID, b.Name, b.Email, b.Phone, b.Service, b.ServiceCategory,
		b.Date, b.Time, b.SessionType, b.SessionDuration, b.Message, b.EmergencyContact,
		b.MedicalHistory, b.CurrentMedications, b.PreviousPhysiotherapy, b.Status, b.Notes)
	if isUniqueViolation(err) {
		return ErrSlotTaken
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return r.scanBooking(r.conn(ctx).QueryRow(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id = $1`, id))
}

func (r *repoPG) FindActiveAt(ctx context.Context, date, timeOfDay string) (*Booking, error) {
	return r.scanBooking(r.conn(ctx).QueryRow(ctx, `
		SELECT `+bookingCols+` FROM bookings
		WHERE date = $1 AND time = $2 AND status IN ('pending','confirmed')
		LIMIT 1`, date, timeOfDay))
}

func (r *repoPG) ActiveTimesOn(ctx context.Context, date string) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT time FROM bookings
		WHERE date = $1 AND status IN ('pending','confirmed')
		ORDER BY time`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Booking, int, error) {
	query := `SELECT ` + bookingCols + ` FROM bookings WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM bookings WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["date"]; ok {
		query += fmt.Sprintf(` AND date = $%d`, idx)
		countQuery += fmt.Sprintf(` AND date = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["email"]; ok {
		query += fmt.Sprintf(` AND email = $%d`, idx)
		countQuery += fmt.Sprintf(` AND email = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY created_at DESC ` + pagination.Params{Limit: limit, Offset: offset}.SQL()

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Booking
	for rows.Next() {
		b, err := r.scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string, notes *string) (*Booking, error) {
	var err error
	if notes != nil {
		_, err = r.conn(ctx).Exec(ctx,
			`UPDATE bookings SET status=$2, notes=$3, updated_at=NOW() WHERE id=$1`, id, status, notes)
	} else {
		_, err = r.conn(ctx).Exec(ctx,
			`UPDATE bookings SET status=$2, updated_at=NOW() WHERE id=$1`, id, status)
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// =========== BlockedSlot Repository ===========

type blockedSlotRepoPG struct{ pool *pgxpool.Pool }

func NewBlockedSlotRepoPG(pool *pgxpool.Pool) BlockedSlotRepository {
	return &blockedSlotRepoPG{pool: pool}
}

func (r *blockedSlotRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const blockedCols = `id, date, time, reason, created_by, created_at`

func (r *blockedSlotRepoPG) scanSlot(row pgx.Row) (*BlockedSlot, error) {
	var s BlockedSlot
	err := row.Scan(&s.ID, &s.Date, &s.Time, &s.Reason, &s.CreatedBy, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *blockedSlotRepoPG) Create(ctx context.Context, s *BlockedSlot) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO blocked_slots (id, date, time, reason, created_by)
		VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.Date, s.Time, s.Reason, s.CreatedBy)
	if isUniqueViolation(err) {
		return ErrSlotBlocked
	}
	return err
}

func (r *blockedSlotRepoPG) ExistsAt(ctx context.Context, date, timeOfDay string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM blocked_slots WHERE date = $1 AND time = $2)`,
		date, timeOfDay).Scan(&exists)
	return exists, err
}

func (r *blockedSlotRepoPG) TimesOn(ctx context.Context, date string) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT time FROM blocked_slots WHERE date = $1 ORDER BY time`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

func (r *blockedSlotRepoPG) List(ctx context.Context, limit, offset int) ([]*BlockedSlot, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM blocked_slots`).Scan(&total); err != nil {
		return nil, 0, err
	}
	pg := pagination.Params{Limit: limit, Offset: offset}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+blockedCols+` FROM blocked_slots ORDER BY date DESC, time `+pg.SQL())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*BlockedSlot
	for rows.Next() {
		s, err := r.scanSlot(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, nil
}

func (r *blockedSlotRepoPG) DeleteByID(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM blocked_slots WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *blockedSlotRepoPG) DeleteByDateTime(ctx context.Context, date, timeOfDay string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM blocked_slots WHERE date = $1 AND time = $2`, date, timeOfDay)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
