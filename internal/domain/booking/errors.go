package booking

import "errors"

var (
	// ErrValidation wraps malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrSlotTaken means an active booking already occupies the slot.
	ErrSlotTaken = errors.New("slot already booked")
	// ErrSlotBlocked means a blocked slot already exists for the pair.
	ErrSlotBlocked = errors.New("slot already blocked")
	// ErrNotFound means the target row is absent.
	ErrNotFound = errors.New("not found")
	// ErrClinicClosed means the clinic is toggled inactive.
	ErrClinicClosed = errors.New("clinic is currently closed for bookings")
)
