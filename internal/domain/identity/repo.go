package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Upsert inserts the user or, when the email already exists, refreshes
	// the name and phone on the existing row. The stored row is returned
	// either way.
	Upsert(ctx context.Context, u *User) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
}
