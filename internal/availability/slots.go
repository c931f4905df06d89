// Package availability computes conflict-free appointment start times for
// an employee/service/date from weekly working hours, breaks, buffers,
// advance-notice policy, existing bookings, and ad-hoc blocks.
package availability

import (
	"time"

	"github.com/md-rashed-zaman/bookable/internal/model"
	"github.com/md-rashed-zaman/bookable/internal/schedule"
)

// Slot is one candidate start time at policy-defined spacing. Time is the
// "HH:MM" rendering of Start used by booking UIs and by the confirmation
// guard's string match.
type Slot struct {
	Time      string
	Start     time.Time
	Available bool
}

type busyInterval struct {
	start time.Time
	end   time.Time
}

// dayBusy assembles the busy set for one employee/day: {pending,confirmed}
// appointments with the tenant buffer appended to their end, plus schedule
// blocks verbatim. The buffer is asymmetric on purpose: it extends only
// existing bookings, so a new slot may end exactly when a later booking
// begins.
func dayBusy(appointments []model.Appointment, blocks []model.ScheduleBlock, buffer time.Duration) []busyInterval {
	busy := make([]busyInterval, 0, len(appointments)+len(blocks))
	for _, a := range appointments {
		if a.Status != model.StatusPending && a.Status != model.StatusConfirmed {
			continue
		}
		busy = append(busy, busyInterval{start: a.StartTime, end: a.EndTime.Add(buffer)})
	}
	for _, b := range blocks {
		busy = append(busy, busyInterval{start: b.StartTime, end: b.EndTime})
	}
	return busy
}

func overlapsAny(start, end time.Time, busy []busyInterval) bool {
	for _, b := range busy {
		if schedule.Overlaps(start, end, b.start, b.end) {
			return true
		}
	}
	return false
}

// DaySlots returns every candidate slot for the employee/service/date,
// stepped by the policy interval across the weekday's working window, each
// flagged available or not. A disabled or absent weekday yields nil, not a
// list of unavailable slots. A malformed schedule or policy also yields
// nil: availability fails closed.
func DaySlots(emp model.Employee, svc model.Service, date time.Time, appointments []model.Appointment, blocks []model.ScheduleBlock, policy model.TenantPolicy, now time.Time) []Slot {
	walk := slotWalk(emp, svc, date, appointments, blocks, policy, now)
	if walk == nil {
		return nil
	}

	var slots []Slot
	walk(func(s Slot) bool {
		slots = append(slots, s)
		return true
	})
	return slots
}

// anyAvailable is the fast-exit variant used by date-range scans: it stops
// walking the day at the first available slot.
func anyAvailable(emp model.Employee, svc model.Service, date time.Time, appointments []model.Appointment, blocks []model.ScheduleBlock, policy model.TenantPolicy, now time.Time) bool {
	walk := slotWalk(emp, svc, date, appointments, blocks, policy, now)
	if walk == nil {
		return false
	}

	found := false
	walk(func(s Slot) bool {
		if s.Available {
			found = true
			return false
		}
		return true
	})
	return found
}

// slotWalk validates inputs and returns a function that walks the day's
// candidate slots in order, calling yield for each until it returns false.
// A nil return means the day produces no slots at all.
func slotWalk(emp model.Employee, svc model.Service, date time.Time, appointments []model.Appointment, blocks []model.ScheduleBlock, policy model.TenantPolicy, now time.Time) func(yield func(Slot) bool) {
	if !emp.IsActive || !svc.IsActive || svc.DurationMins <= 0 || !policy.Valid() {
		return nil
	}

	day, ok := emp.WorkingHours[date.Weekday()]
	if !ok || !day.Enabled {
		return nil
	}
	if err := day.Validate(); err != nil {
		return nil
	}

	workStart, err := schedule.At(date, day.Start)
	if err != nil {
		return nil
	}
	workEnd, err := schedule.At(date, day.End)
	if err != nil {
		return nil
	}

	duration := time.Duration(svc.DurationMins) * time.Minute
	step := time.Duration(policy.SlotIntervalMins) * time.Minute
	minDate := now.Add(time.Duration(policy.MinAdvanceHours) * time.Hour)
	buffer := time.Duration(policy.BufferMins) * time.Minute

	busy := dayBusy(appointments, blocks, buffer)
	breakStart, breakEnd, hasBreak := day.BreakWindow(date)

	return func(yield func(Slot) bool) {
		for cursor := workStart; cursor.Before(workEnd); cursor = cursor.Add(step) {
			slotEnd := cursor.Add(duration)
			if slotEnd.After(workEnd) {
				// Never emit a truncated tail slot.
				return
			}

			available := !cursor.Before(minDate) &&
				!(hasBreak && schedule.Overlaps(cursor, slotEnd, breakStart, breakEnd)) &&
				!overlapsAny(cursor, slotEnd, busy)

			if !yield(Slot{Time: cursor.Format("15:04"), Start: cursor, Available: available}) {
				return
			}
		}
	}
}
