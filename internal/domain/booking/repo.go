package booking

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists bookings. Create must enforce the active-booking
// exclusivity per (date, time) and return ErrSlotTaken on violation, closing
// the check-then-insert race against concurrent submitters.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	// FindActiveAt returns the pending or confirmed booking at (date, time),
	// or ErrNotFound.
	FindActiveAt(ctx context.Context, date, timeOfDay string) (*Booking, error)
	// ActiveTimesOn lists the times of pending/confirmed bookings on a date.
	ActiveTimesOn(ctx context.Context, date string) ([]string, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Booking, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, notes *string) (*Booking, error)
}

// BlockedSlotRepository persists date-specific blocked slots.
type BlockedSlotRepository interface {
	Create(ctx context.Context, s *BlockedSlot) error
	ExistsAt(ctx context.Context, date, timeOfDay string) (bool, error)
	TimesOn(ctx context.Context, date string) ([]string, error)
	List(ctx context.Context, limit, offset int) ([]*BlockedSlot, int, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteByDateTime(ctx context.Context, date, timeOfDay string) error
}
