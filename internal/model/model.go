package model

import (
	"time"

	"github.com/md-rashed-zaman/bookable/internal/schedule"
)

// Appointment statuses. The availability engine only ever reads rows in
// StatusPending or StatusConfirmed; the remaining states exist so external
// writers can move appointments through their lifecycle without the core
// misreading them as conflicts.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

type Employee struct {
	ID           string
	TenantID     string
	Name         string
	IsActive     bool
	WorkingHours schedule.WorkingHours
}

type Service struct {
	ID           string
	TenantID     string
	Name         string
	IsActive     bool
	DurationMins int
}

// TenantPolicy is the per-tenant booking configuration, read once per
// availability computation and passed by value into the pure functions.
type TenantPolicy struct {
	SlotIntervalMins int
	MinAdvanceHours  int
	MaxAdvanceDays   int
	BufferMins       int
}

func (p TenantPolicy) Valid() bool {
	return p.SlotIntervalMins > 0 && p.MinAdvanceHours >= 0 && p.MaxAdvanceDays > 0 && p.BufferMins >= 0
}

type Appointment struct {
	ID          string
	TenantID    string
	EmployeeID  string
	ServiceID   string
	ClientName  string
	ClientPhone string
	StartTime   time.Time
	EndTime     time.Time
	Status      string
	CreatedAt   time.Time
}

// ScheduleBlock is an ad-hoc unavailability window, independent of the
// recurring weekly working hours.
type ScheduleBlock struct {
	ID         string
	EmployeeID string
	StartTime  time.Time
	EndTime    time.Time
	Reason     string
}
