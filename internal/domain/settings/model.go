// Package settings holds the clinic-wide scheduling configuration: opening
// hours, working days, slot duration, break window, and recurring blocked
// periods.
package settings

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BlockedPeriod is a recurring time-of-day range excluded from every working
// day, unlike booking.BlockedSlot which targets a single calendar date.
type BlockedPeriod struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason,omitempty"`
}

// ClinicSettings is the single logical configuration record. When multiple
// rows exist the most recently created one wins.
type ClinicSettings struct {
	ID               uuid.UUID       `json:"id"`
	OpeningTime      string          `json:"opening_time"`
	ClosingTime      string          `json:"closing_time"`
	BreakStart       *string         `json:"break_start,omitempty"`
	BreakEnd         *string         `json:"break_end,omitempty"`
	WorkingDays      []int           `json:"working_days"`
	TimeSlotDuration int             `json:"time_slot_duration"`
	BlockedPeriods   []BlockedPeriod `json:"blocked_periods"`
	IsActive         bool            `json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Defaults returns the settings created lazily on first read: 9:00-17:00,
// Monday through Friday, 30-minute slots, active.
func Defaults() *ClinicSettings {
	return &ClinicSettings{
		OpeningTime:      "09:00",
		ClosingTime:      "17:00",
		WorkingDays:      []int{1, 2, 3, 4, 5},
		TimeSlotDuration: 30,
		BlockedPeriods:   []BlockedPeriod{},
		IsActive:         true,
	}
}

// ParseClock converts an HH:MM 24-hour time-of-day to minutes from midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes from midnight to zero-padded HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// WorksOn reports whether the given weekday (0 = Sunday) is a working day.
func (s *ClinicSettings) WorksOn(weekday time.Weekday) bool {
	for _, d := range s.WorkingDays {
		if d == int(weekday) {
			return true
		}
	}
	return false
}

// Validate checks the invariants enforced on every admin write: opening
// before closing, break inside opening hours, well-ordered blocked periods,
// weekday values in range, positive slot duration.
func (s *ClinicSettings) Validate() error {
	open, err := ParseClock(s.OpeningTime)
	if err != nil {
		return fmt.Errorf("opening_time: %w", err)
	}
	clos, err := ParseClock(s.ClosingTime)
	if err != nil {
		return fmt.Errorf("closing_time: %w", err)
	}
	if open >= clos {
		return fmt.Errorf("opening_time %s must be before closing_time %s", s.OpeningTime, s.ClosingTime)
	}

	if (s.BreakStart == nil) != (s.BreakEnd == nil) {
		return fmt.Errorf("break_start and break_end must be set together")
	}
	if s.BreakStart != nil {
		bs, err := ParseClock(*s.BreakStart)
		if err != nil {
			return fmt.Errorf("break_start: %w", err)
		}
		be, err := ParseClock(*s.BreakEnd)
		if err != nil {
			return fmt.Errorf("break_end: %w", err)
		}
		if bs >= be {
			return fmt.Errorf("break_start %s must be before break_end %s", *s.BreakStart, *s.BreakEnd)
		}
		if bs < open || be > clos {
			return fmt.Errorf("break window must fall within opening hours")
		}
	}

	if s.TimeSlotDuration <= 0 {
		return fmt.Errorf("time_slot_duration must be positive, got %d", s.TimeSlotDuration)
	}

	for _, d := range s.WorkingDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("working day %d out of range [0,6]", d)
		}
	}

	for i, bp := range s.BlockedPeriods {
		bs, err := ParseClock(bp.Start)
		if err != nil {
			return fmt.Errorf("blocked_periods[%d].start: %w", i, err)
		}
		be, err := ParseClock(bp.End)
		if err != nil {
			return fmt.Errorf("blocked_periods[%d].end: %w", i, err)
		}
		if bs >= be {
			return fmt.Errorf("blocked_periods[%d]: start %s must be before end %s", i, bp.Start, bp.End)
		}
	}

	return nil
}

// decodeWorkingDays normalizes the stored working_days column, which may be a
// JSON array or a JSON-encoded string holding one. Parse failures yield an
// empty set rather than an error.
func decodeWorkingDays(raw []byte) []int {
	if len(raw) == 0 {
		return []int{}
	}
	var days []int
	if err := json.Unmarshal(raw, &days); err == nil {
		return days
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if err := json.Unmarshal([]byte(s), &days); err == nil {
			return days
		}
	}
	return []int{}
}

// decodeBlockedPeriods normalizes the stored blocked_periods column the same
// way as decodeWorkingDays.
func decodeBlockedPeriods(raw []byte) []BlockedPeriod {
	if len(raw) == 0 {
		return []BlockedPeriod{}
	}
	var periods []BlockedPeriod
	if err := json.Unmarshal(raw, &periods); err == nil {
		return periods
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if err := json.Unmarshal([]byte(s), &periods); err == nil {
			return periods
		}
	}
	return []BlockedPeriod{}
}
