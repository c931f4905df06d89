// Package booking is the commit path: a best-effort slot re-check followed
// by the insert whose exclusion constraint is the real double-booking
// defence.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/bookable/internal/model"
	"github.com/md-rashed-zaman/bookable/internal/storage"
)

// ErrSlotTaken means the requested slot is no longer available, whether
// caught by the guard or by the persistence constraint. Callers match it
// with errors.Is to show a distinct outcome instead of a generic failure.
var ErrSlotTaken = errors.New("slot no longer available")

// Guard re-checks one candidate slot immediately before commit.
type Guard interface {
	ConfirmSlot(ctx context.Context, employeeID, serviceID string, start time.Time) (bool, error)
}

// Catalog resolves the service so the appointment end time can be derived
// from its duration.
type Catalog interface {
	Service(ctx context.Context, serviceID string) (model.Service, error)
}

// Creator inserts the appointment; a constraint violation on overlapping
// (employee, time-range) must surface as a storage conflict.
type Creator interface {
	Create(ctx context.Context, appt *model.Appointment) (string, error)
}

type Service struct {
	guard   Guard
	catalog Catalog
	store   Creator
	logger  *slog.Logger
}

func NewService(guard Guard, catalog Catalog, store Creator, logger *slog.Logger) *Service {
	return &Service{guard: guard, catalog: catalog, store: store, logger: logger}
}

type Request struct {
	EmployeeID  string
	ServiceID   string
	ClientName  string
	ClientPhone string
	Start       time.Time
}

// Book commits a slot. Two concurrent bookings for the same slot can both
// pass the guard; exactly one survives the insert, the other gets
// ErrSlotTaken from the constraint.
func (s *Service) Book(ctx context.Context, req Request) (string, error) {
	ok, err := s.guard.ConfirmSlot(ctx, req.EmployeeID, req.ServiceID, req.Start)
	if err != nil {
		return "", fmt.Errorf("confirm slot: %w", err)
	}
	if !ok {
		return "", ErrSlotTaken
	}

	svc, err := s.catalog.Service(ctx, req.ServiceID)
	if err != nil {
		return "", fmt.Errorf("resolve service: %w", err)
	}

	id, err := s.store.Create(ctx, &model.Appointment{
		TenantID:    svc.TenantID,
		EmployeeID:  req.EmployeeID,
		ServiceID:   req.ServiceID,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		StartTime:   req.Start,
		EndTime:     req.Start.Add(time.Duration(svc.DurationMins) * time.Minute),
		Status:      model.StatusPending,
	})
	if storage.IsConflict(err) {
		s.logger.Info("booking lost the race for a slot",
			"employee_id", req.EmployeeID, "start", req.Start)
		return "", ErrSlotTaken
	}
	if err != nil {
		return "", err
	}
	return id, nil
}
