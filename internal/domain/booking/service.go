package booking

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/physiocare/clinic/internal/domain/identity"
	"github.com/physiocare/clinic/internal/domain/settings"
	"github.com/physiocare/clinic/internal/platform/mail"
)

var validBookingStatuses = map[string]bool{
	StatusPending: true, StatusConfirmed: true,
	StatusCancelled: true, StatusCompleted: true,
}

var validSessionTypes = map[string]bool{"new": true, "followup": true}

var emailRx = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const dateLayout = "2006-01-02"

// SettingsProvider yields the current clinic settings.
type SettingsProvider interface {
	GetOrCreate(ctx context.Context) (*settings.ClinicSettings, error)
}

// UserResolver resolves a submitting identity, creating a guest when needed.
type UserResolver interface {
	EnsureUser(ctx context.Context, email, name string, phone *string) (*identity.User, error)
}

// Notifier dispatches booking emails best-effort.
type Notifier interface {
	DispatchBookingCreated(ctx context.Context, n mail.BookingNotification)
	DispatchBookingStatusChanged(ctx context.Context, n mail.BookingNotification)
}

// TxRunner wraps a function in a storage transaction. Repositories called
// inside pick the transaction up from the context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// CreateBookingRequest is the submission payload for a new booking.
type CreateBookingRequest struct {
	Name                  string  `json:"name"`
	Email                 string  `json:"email"`
	Phone                 string  `json:"phone"`
	Service               string  `json:"service"`
	ServiceCategory       *string `json:"serviceCategory,omitempty"`
	Date                  string  `json:"date"`
	Time                  string  `json:"time"`
	SessionType           *string `json:"sessionType,omitempty"`
	SessionDuration       *int    `json:"sessionDuration,omitempty"`
	Message               string  `json:"message"`
	EmergencyContact      *string `json:"emergencyContact,omitempty"`
	MedicalHistory        *string `json:"medicalHistory,omitempty"`
	CurrentMedications    *string `json:"currentMedications,omitempty"`
	PreviousPhysiotherapy *string `json:"previousPhysiotherapy,omitempty"`
}

// ClinicInfo is returned alongside public availability so the client can
// render opening hours.
type ClinicInfo struct {
	OpeningTime      string `json:"openingTime"`
	ClosingTime      string `json:"closingTime"`
	TimeSlotDuration int    `json:"slotDuration"`
}

type Service struct {
	bookings Repository
	blocked  BlockedSlotRepository
	settings SettingsProvider
	users    UserResolver
	notifier Notifier
	runTx    TxRunner
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(bookings Repository, blocked BlockedSlotRepository, cfg SettingsProvider,
	users UserResolver, notifier Notifier, runTx TxRunner, log zerolog.Logger) *Service {
	if runTx == nil {
		runTx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &Service{
		bookings: bookings,
		blocked:  blocked,
		settings: cfg,
		users:    users,
		notifier: notifier,
		runTx:    runTx,
		log:      log,
		now:      time.Now,
	}
}

// -- Availability --

// Availability computes the bookable slots for a date. The public variant
// rejects past dates; the admin variant does not, so staff can inspect
// historical days.
func (s *Service) Availability(ctx context.Context, dateStr string, admin bool) ([]string, string, *ClinicInfo, error) {
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return nil, "", nil, fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", ErrValidation, dateStr)
	}

	cfg, err := s.settings.GetOrCreate(ctx)
	if err != nil {
		return nil, "", nil, err
	}

	blockedTimes, err := s.blocked.TimesOn(ctx, dateStr)
	if err != nil {
		return nil, "", nil, err
	}
	bookedTimes, err := s.bookings.ActiveTimesOn(ctx, dateStr)
	if err != nil {
		return nil, "", nil, err
	}

	var slots []string
	var message string
	if admin {
		slots, message = AvailableSlots(date, cfg, blockedTimes, bookedTimes)
	} else {
		slots, message = AvailableSlotsAfter(s.now(), date, cfg, blockedTimes, bookedTimes)
	}

	info := &ClinicInfo{
		OpeningTime:      cfg.OpeningTime,
		ClosingTime:      cfg.ClosingTime,
		TimeSlotDuration: cfg.TimeSlotDuration,
	}
	return slots, message, info, nil
}

// -- Admission --

func (s *Service) validateRequest(req *CreateBookingRequest) error {
	if req.Name == "" || req.Email == "" || req.Phone == "" ||
		req.Service == "" || req.Date == "" || req.Time == "" || req.Message == "" {
		return fmt.Errorf("%w: missing required fields", ErrValidation)
	}
	if !emailRx.MatchString(req.Email) {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if req.SessionType != nil && !validSessionTypes[*req.SessionType] {
		return fmt.Errorf("%w: session_type must be new or followup", ErrValidation)
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", ErrValidation, req.Date)
	}
	if req.Time != TimeTBD {
		if _, err := settings.ParseClock(req.Time); err != nil {
			return fmt.Errorf("%w: invalid time %q, want HH:MM", ErrValidation, req.Time)
		}
	}
	if beforeDay(date, s.now()) {
		return fmt.Errorf("%w: cannot book appointments for past dates", ErrValidation)
	}
	return nil
}

// SubmitBooking runs the admission path: validate, re-check slot occupancy,
// resolve the submitting identity, insert as pending, and notify best-effort.
// The advisory availability listing a client saw earlier is not trusted; the
// occupancy check here plus the partial unique index are authoritative.
func (s *Service) SubmitBooking(ctx context.Context, req *CreateBookingRequest) (*Booking, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	// Home-visit bookings carry no slot, so they skip the conflict check.
	if req.Time != TimeTBD {
		if _, err := s.bookings.FindActiveAt(ctx, req.Date, req.Time); err == nil {
			return nil, fmt.Errorf("%w: please pick a different time", ErrSlotTaken)
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	cfg, err := s.settings.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.IsActive {
		return nil, ErrClinicClosed
	}

	b := &Booking{
		Name:                  req.Name,
		Email:                 req.Email,
		Phone:                 req.Phone,
		Service:               req.Service,
		ServiceCategory:       req.ServiceCategory,
		Date:                  req.Date,
		Time:                  req.Time,
		SessionType:           req.SessionType,
		SessionDuration:       req.SessionDuration,
		Message:               req.Message,
		EmergencyContact:      req.EmergencyContact,
		MedicalHistory:        req.MedicalHistory,
		CurrentMedications:    req.CurrentMedications,
		PreviousPhysiotherapy: req.PreviousPhysiotherapy,
		Status:                StatusPending,
	}

	// Guest resolution never blocks the booking.
	phone := req.Phone
	if user, err := s.users.EnsureUser(ctx, req.Email, req.Name, &phone); err != nil {
		s.log.Warn().Err(err).Str("email", req.Email).Msg("guest user resolution failed")
	} else {
		b.UserID = &user.ID
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return nil, fmt.Errorf("%w: please pick a different time", ErrSlotTaken)
		}
		return nil, err
	}

	s.notifier.DispatchBookingCreated(ctx, s.notification(b))
	return b, nil
}

func (s *Service) notification(b *Booking) mail.BookingNotification {
	sessionType := ""
	if b.SessionType != nil {
		sessionType = *b.SessionType
	}
	notes := b.Message
	return mail.BookingNotification{
		Confirmation: b.ConfirmationNumber(),
		PatientName:  b.Name,
		PatientEmail: b.Email,
		PatientPhone: b.Phone,
		Date:         b.Date,
		Time:         b.Time,
		SessionType:  sessionType,
		ServiceType:  b.Service,
		Notes:        notes,
		Status:       b.Status,
	}
}

// -- Administration --

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *Service) ListBookings(ctx context.Context, params map[string]string, limit, offset int) ([]*Booking, int, error) {
	if st, ok := params["status"]; ok && !validBookingStatuses[st] {
		return nil, 0, fmt.Errorf("%w: invalid status %q", ErrValidation, st)
	}
	return s.bookings.Search(ctx, params, limit, offset)
}

// UpdateBookingStatus transitions a booking and tells the patient when the
// outcome is decided.
func (s *Service) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status string, notes *string) (*Booking, error) {
	if !validBookingStatuses[status] {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}
	if _, err := s.bookings.GetByID(ctx, id); err != nil {
		return nil, err
	}
	b, err := s.bookings.UpdateStatus(ctx, id, status, notes)
	if err != nil {
		return nil, err
	}
	if status == StatusConfirmed || status == StatusCancelled {
		s.notifier.DispatchBookingStatusChanged(ctx, s.notification(b))
	}
	return b, nil
}

// CreateBlockedSlot blocks a (date, time) pair. The existence checks and the
// insert run in one transaction; the unique index on (date, time) backstops
// concurrent creates.
func (s *Service) CreateBlockedSlot(ctx context.Context, slot *BlockedSlot) error {
	if _, err := time.Parse(dateLayout, slot.Date); err != nil {
		return fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", ErrValidation, slot.Date)
	}
	if _, err := settings.ParseClock(slot.Time); err != nil {
		return fmt.Errorf("%w: invalid time %q, want HH:MM", ErrValidation, slot.Time)
	}

	return s.runTx(ctx, func(ctx context.Context) error {
		exists, err := s.blocked.ExistsAt(ctx, slot.Date, slot.Time)
		if err != nil {
			return err
		}
		if exists {
			return ErrSlotBlocked
		}
		if _, err := s.bookings.FindActiveAt(ctx, slot.Date, slot.Time); err == nil {
			return fmt.Errorf("%w: an active booking occupies this slot", ErrSlotTaken)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		return s.blocked.Create(ctx, slot)
	})
}

func (s *Service) ListBlockedSlots(ctx context.Context, limit, offset int) ([]*BlockedSlot, int, error) {
	return s.blocked.List(ctx, limit, offset)
}

func (s *Service) DeleteBlockedSlot(ctx context.Context, id uuid.UUID) error {
	return s.blocked.DeleteByID(ctx, id)
}

func (s *Service) DeleteBlockedSlotAt(ctx context.Context, date, timeOfDay string) error {
	return s.blocked.DeleteByDateTime(ctx, date, timeOfDay)
}
