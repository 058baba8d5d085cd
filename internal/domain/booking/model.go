// Package booking implements appointment requests: slot availability
// computation, the admission path that creates bookings without
// double-booking, and date-specific blocked slots.
package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// TimeTBD marks home-visit bookings whose exact time is arranged by phone
// later. Such bookings do not occupy a slot.
const TimeTBD = "TBD"

// Booking maps to the bookings table. Date is "2006-01-02", Time is "HH:MM"
// or TimeTBD.
type Booking struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	UserID                *uuid.UUID `db:"user_id" json:"userId,omitempty"`
	Name                  string     `db:"name" json:"name"`
	Email                 string     `db:"email" json:"email"`
	Phone                 string     `db:"phone" json:"phone"`
	Service               string     `db:"service" json:"service"`
	ServiceCategory       *string    `db:"service_category" json:"serviceCategory,omitempty"`
	Date                  string     `db:"date" json:"date"`
	Time                  string     `db:"time" json:"time"`
	SessionType           *string    `db:"session_type" json:"sessionType,omitempty"`
	SessionDuration       *int       `db:"session_duration" json:"sessionDuration,omitempty"`
	Message               string     `db:"message" json:"message"`
	EmergencyContact      *string    `db:"emergency_contact" json:"emergencyContact,omitempty"`
	MedicalHistory        *string    `db:"medical_history" json:"medicalHistory,omitempty"`
	CurrentMedications    *string    `db:"current_medications" json:"currentMedications,omitempty"`
	PreviousPhysiotherapy *string    `db:"previous_physiotherapy" json:"previousPhysiotherapy,omitempty"`
	Status                string     `db:"status" json:"status"`
	Notes                 *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updatedAt"`
}

// ConfirmationFromID derives the human-facing confirmation number from a
// booking identifier: the last 8 characters, upper-cased. It is recomputed on
// every read, never stored.
func ConfirmationFromID(id string) string {
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return strings.ToUpper(id)
}

// ConfirmationNumber returns the confirmation number for this booking.
func (b *Booking) ConfirmationNumber() string {
	return ConfirmationFromID(b.ID.String())
}

// IsActive reports whether the booking occupies its slot.
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// BlockedSlot is a one-off, date-specific exclusion of a single time slot,
// unlike the recurring blocked periods in the clinic settings.
type BlockedSlot struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Date      string    `db:"date" json:"date"`
	Time      string    `db:"time" json:"time"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
	CreatedBy string    `db:"created_by" json:"createdBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
