package availability

import (
	"context"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/bookable/internal/model"
	"github.com/md-rashed-zaman/bookable/internal/storage"
)

// ScheduleStore reads the employee calendar: the employee row with its
// weekly working hours, and ad-hoc unavailability blocks touching a date.
type ScheduleStore interface {
	Employee(ctx context.Context, employeeID string) (model.Employee, error)
	BlocksOn(ctx context.Context, employeeID string, date time.Time) ([]model.ScheduleBlock, error)
}

// CatalogStore reads services and the tenant booking policy.
type CatalogStore interface {
	Service(ctx context.Context, serviceID string) (model.Service, error)
	Policy(ctx context.Context, tenantID string) (model.TenantPolicy, error)
}

// AppointmentStore reads an employee's appointments for a day, already
// filtered to the pending/confirmed statuses that count as conflicts.
type AppointmentStore interface {
	DayAppointments(ctx context.Context, employeeID string, date time.Time) ([]model.Appointment, error)
}

// Service answers availability queries by assembling read models and
// running the pure slot generator. It holds no mutable state; distinct
// queries are safe to run concurrently.
type Service struct {
	schedules    ScheduleStore
	catalog      CatalogStore
	appointments AppointmentStore
	logger       *slog.Logger
	now          func() time.Time
}

func NewService(schedules ScheduleStore, catalog CatalogStore, appointments AppointmentStore, logger *slog.Logger) *Service {
	return &Service{
		schedules:    schedules,
		catalog:      catalog,
		appointments: appointments,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock overrides the wall clock, for deterministic tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type dayInputs struct {
	emp    model.Employee
	svc    model.Service
	policy model.TenantPolicy
}

// load resolves the employee, service, and policy. A missing or inactive
// employee/service is normal "no availability", reported as ok=false with a
// nil error.
func (s *Service) load(ctx context.Context, employeeID, serviceID string) (dayInputs, bool, error) {
	emp, err := s.schedules.Employee(ctx, employeeID)
	if storage.IsNotFound(err) {
		return dayInputs{}, false, nil
	}
	if err != nil {
		return dayInputs{}, false, err
	}
	svc, err := s.catalog.Service(ctx, serviceID)
	if storage.IsNotFound(err) {
		return dayInputs{}, false, nil
	}
	if err != nil {
		return dayInputs{}, false, err
	}
	if !emp.IsActive || !svc.IsActive {
		return dayInputs{}, false, nil
	}
	policy, err := s.catalog.Policy(ctx, emp.TenantID)
	if storage.IsNotFound(err) {
		s.logger.Warn("tenant policy missing, failing closed", "tenant_id", emp.TenantID)
		return dayInputs{}, false, nil
	}
	if err != nil {
		return dayInputs{}, false, err
	}
	if !policy.Valid() {
		s.logger.Warn("invalid tenant policy, failing closed", "tenant_id", emp.TenantID)
		return dayInputs{}, false, nil
	}
	return dayInputs{emp: emp, svc: svc, policy: policy}, true, nil
}

// DaySlots returns the full candidate list for one employee/service/date,
// used for single-day rendering.
func (s *Service) DaySlots(ctx context.Context, employeeID, serviceID string, date time.Time) ([]Slot, error) {
	in, ok, err := s.load(ctx, employeeID, serviceID)
	if err != nil || !ok {
		return nil, err
	}

	// Disabled weekday: skip the conflict reads entirely.
	if day, present := in.emp.WorkingHours[date.Weekday()]; !present || !day.Enabled {
		return nil, nil
	}

	appts, blocks, err := s.dayConflicts(ctx, employeeID, date)
	if err != nil {
		return nil, err
	}
	return DaySlots(in.emp, in.svc, date, appts, blocks, in.policy, s.now()), nil
}

// AvailableDates reports which dates in [from, to] (inclusive) have at
// least one available slot. The range is clamped to the tenant's maximum
// advance window; each day stops scanning at its first available slot.
func (s *Service) AvailableDates(ctx context.Context, employeeID, serviceID string, from, to time.Time) ([]time.Time, error) {
	in, ok, err := s.load(ctx, employeeID, serviceID)
	if err != nil || !ok {
		return nil, err
	}

	now := s.now()
	horizon := now.AddDate(0, 0, in.policy.MaxAdvanceDays)
	if to.After(horizon) {
		to = horizon
	}

	var dates []time.Time
	for date := truncateToDay(from); !date.After(truncateToDay(to)); date = date.AddDate(0, 0, 1) {
		day, present := in.emp.WorkingHours[date.Weekday()]
		if !present || !day.Enabled {
			continue
		}
		appts, blocks, err := s.dayConflicts(ctx, employeeID, date)
		if err != nil {
			return nil, err
		}
		if anyAvailable(in.emp, in.svc, date, appts, blocks, in.policy, now) {
			dates = append(dates, date)
		}
	}
	return dates, nil
}

// ConfirmSlot re-checks one candidate start immediately before commit by
// regenerating its day and matching the formatted time. It narrows the
// booking race but does not close it; the appointment store's exclusion
// constraint is the correctness mechanism.
func (s *Service) ConfirmSlot(ctx context.Context, employeeID, serviceID string, start time.Time) (bool, error) {
	slots, err := s.DaySlots(ctx, employeeID, serviceID, truncateToDay(start))
	if err != nil {
		return false, err
	}
	want := start.Format("15:04")
	for _, slot := range slots {
		if slot.Time == want {
			return slot.Available, nil
		}
	}
	return false, nil
}

func (s *Service) dayConflicts(ctx context.Context, employeeID string, date time.Time) ([]model.Appointment, []model.ScheduleBlock, error) {
	appts, err := s.appointments.DayAppointments(ctx, employeeID, date)
	if err != nil {
		return nil, nil, err
	}
	blocks, err := s.schedules.BlocksOn(ctx, employeeID, date)
	if err != nil {
		return nil, nil, err
	}
	return appts, blocks, nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
