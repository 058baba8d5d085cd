package identity

import (
	"context"
	"errors"
	"strings"

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const userCols = `id, email, name, phone, role, created_at, updated_at`

func (r *repoPG) scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE email = $1`, strings.ToLower(email)))
}

func (r *repoPG) Upsert(ctx context.Context, u *User) (*User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `
		INSERT INTO users (id, email, name, phone, role)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (email) DO UPDATE
			SET name = EXCLUDED.name, phone = EXCLUDED.phone, updated_at = NOW()
		RETURNING `+userCols,
		u.ID, strings.ToLower(u.Email), u.Name, u.Phone, u.Role))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	pg := pagination.Params{Limit: limit, Offset: offset}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+userCols+` FROM users ORDER BY created_at DESC `+pg.SQL())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, nil
}
