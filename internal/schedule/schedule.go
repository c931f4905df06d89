// Package schedule holds the calendar model: weekly working hours keyed by
// weekday, "HH:MM" clock values, and the interval arithmetic the
// availability engine is built on. Everything here is pure.
package schedule

import (
	"errors"
	"fmt"
	"time"
)

// WorkingHours maps a weekday to its schedule. Weekdays without an entry
// are treated the same as disabled days.
type WorkingHours map[time.Weekday]DaySchedule

// DaySchedule describes one weekday of an employee's recurring calendar.
// Clock values use 24h "HH:MM". BreakStart/BreakEnd are optional; both
// empty means no break.
type DaySchedule struct {
	Enabled    bool
	Start      string
	End        string
	BreakStart string
	BreakEnd   string
}

var errNoBreak = errors.New("no break configured")

// Validate reports whether the day is internally consistent: Start < End,
// and the break window (if any) lies within [Start, End]. Callers fail
// closed on error: a malformed day yields no slots.
func (d DaySchedule) Validate() error {
	start, err := ParseClock(d.Start)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	end, err := ParseClock(d.End)
	if err != nil {
		return fmt.Errorf("end: %w", err)
	}
	if start >= end {
		return fmt.Errorf("start %q must be before end %q", d.Start, d.End)
	}

	bs, be, err := d.breakMinutes()
	if errors.Is(err, errNoBreak) {
		return nil
	}
	if err != nil {
		return err
	}
	if bs >= be {
		return fmt.Errorf("break start %q must be before break end %q", d.BreakStart, d.BreakEnd)
	}
	if bs < start || be > end {
		return fmt.Errorf("break %q-%q outside working window %q-%q", d.BreakStart, d.BreakEnd, d.Start, d.End)
	}
	return nil
}

// BreakWindow composes the day's break into concrete timestamps on date.
// ok is false when no break is configured.
func (d DaySchedule) BreakWindow(date time.Time) (start, end time.Time, ok bool) {
	bs, be, err := d.breakMinutes()
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return AtMinute(date, bs), AtMinute(date, be), true
}

func (d DaySchedule) breakMinutes() (int, int, error) {
	if d.BreakStart == "" && d.BreakEnd == "" {
		return 0, 0, errNoBreak
	}
	bs, err := ParseClock(d.BreakStart)
	if err != nil {
		return 0, 0, fmt.Errorf("break start: %w", err)
	}
	be, err := ParseClock(d.BreakEnd)
	if err != nil {
		return 0, 0, fmt.Errorf("break end: %w", err)
	}
	return bs, be, nil
}

// ParseClock converts "HH:MM" to minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes since midnight back to "HH:MM".
func FormatClock(mins int) string {
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// At composes a date and an "HH:MM" clock value into a timestamp in the
// date's location.
func At(date time.Time, clock string) (time.Time, error) {
	mins, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return AtMinute(date, mins), nil
}

// AtMinute is At for an already-parsed minutes-since-midnight value.
func AtMinute(date time.Time, mins int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, mins/60, mins%60, 0, 0, date.Location())
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect: s1 < e2 && s2 < e1. A slot ending exactly when a booking
// starts does not overlap it.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}
