package settings

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no settings row exists yet.
var ErrNotFound = errors.New("clinic settings not found")

// ErrInvalid marks a settings document rejected by validation.
var ErrInvalid = errors.New("invalid clinic settings")

// Repository persists the clinic settings record.
type Repository interface {
	// GetLatest returns the most recently created settings row, or
	// ErrNotFound when none exists.
	GetLatest(ctx context.Context) (*ClinicSettings, error)
	Create(ctx context.Context, s *ClinicSettings) error
	Update(ctx context.Context, s *ClinicSettings) error
}
