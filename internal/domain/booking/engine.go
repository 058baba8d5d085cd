package booking

import (
	"fmt"
	"time"

	"github.com/physiocare/clinic/internal/domain/settings"
)

// Availability messages returned alongside an empty slot list.
const (
	MsgNotConfigured = "Clinic settings are not configured"
	MsgClosed        = "Clinic is currently closed for bookings"
	MsgPastDate      = "Cannot book appointments for past dates"
)

// overlaps reports whether the slot [t, t+dur) intersects [start, end).
// Half-open intervals: a slot ending exactly at start, or starting exactly at
// end, does not overlap.
func overlaps(t, dur, start, end int) bool {
	return t < end && t+dur > start
}

// AvailableSlots computes the bookable HH:MM slot starts for a date, given the
// clinic settings plus the blocked-slot times and active-booking times already
// recorded for that date. This is the administrative variant: it places no
// restriction on past dates so historical days stay inspectable.
//
// A non-empty message accompanies an empty result when the computation
// short-circuited; callers surface it verbatim.
func AvailableSlots(date time.Time, cfg *settings.ClinicSettings, blockedTimes, bookedTimes []string) ([]string, string) {
	return availableSlots(date, cfg, blockedTimes, bookedTimes, nil)
}

// AvailableSlotsAfter is the public variant of AvailableSlots: dates strictly
// before today (day granularity) yield an empty result with a past-date
// message. The non-working-day check still takes precedence.
func AvailableSlotsAfter(today, date time.Time, cfg *settings.ClinicSettings, blockedTimes, bookedTimes []string) ([]string, string) {
	return availableSlots(date, cfg, blockedTimes, bookedTimes, &today)
}

func availableSlots(date time.Time, cfg *settings.ClinicSettings, blockedTimes, bookedTimes []string, today *time.Time) ([]string, string) {
	if cfg == nil {
		return []string{}, MsgNotConfigured
	}
	if !cfg.IsActive {
		return []string{}, MsgClosed
	}
	if !cfg.WorksOn(date.Weekday()) {
		return []string{}, fmt.Sprintf("Clinic is closed on %ss", date.Weekday())
	}
	if today != nil && beforeDay(date, *today) {
		return []string{}, MsgPastDate
	}

	open, err := settings.ParseClock(cfg.OpeningTime)
	if err != nil {
		return []string{}, MsgNotConfigured
	}
	clos, err := settings.ParseClock(cfg.ClosingTime)
	if err != nil {
		return []string{}, MsgNotConfigured
	}

	breakStart, breakEnd := -1, -1
	if cfg.BreakStart != nil && cfg.BreakEnd != nil {
		if bs, err := settings.ParseClock(*cfg.BreakStart); err == nil {
			breakStart = bs
		}
		if be, err := settings.ParseClock(*cfg.BreakEnd); err == nil {
			breakEnd = be
		}
	}

	type span struct{ start, end int }
	var periods []span
	for _, bp := range cfg.BlockedPeriods {
		ps, err1 := settings.ParseClock(bp.Start)
		pe, err2 := settings.ParseClock(bp.End)
		if err1 != nil || err2 != nil {
			continue
		}
		periods = append(periods, span{ps, pe})
	}

	taken := make(map[string]bool, len(blockedTimes)+len(bookedTimes))
	for _, t := range blockedTimes {
		taken[t] = true
	}
	for _, t := range bookedTimes {
		taken[t] = true
	}

	// A non-positive duration cannot come through Validate, but a hand-edited
	// row would spin the loop below forever.
	dur := cfg.TimeSlotDuration
	if dur <= 0 {
		return []string{}, MsgNotConfigured
	}
	slots := []string{}
	for t := open; t+dur <= clos; t += dur {
		if breakStart >= 0 && breakEnd >= 0 && overlaps(t, dur, breakStart, breakEnd) {
			continue
		}
		blocked := false
		for _, p := range periods {
			if overlaps(t, dur, p.start, p.end) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}
		hhmm := settings.FormatClock(t)
		if taken[hhmm] {
			continue
		}
		slots = append(slots, hhmm)
	}
	return slots, ""
}

// beforeDay compares two instants at calendar-day granularity.
func beforeDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
