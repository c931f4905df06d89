// Package reminder selects appointments due for a time-based reminder and
// dispatches each at most once, driven by an imprecise external trigger.
package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/bookable/internal/notify"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Kind identifies a reminder threshold. One notification marker exists per
// (appointment, kind); a marker row means "already sent".
type Kind string

const (
	Kind24h Kind = "24h"
	Kind1h  Kind = "1h"
)

func (k Kind) Offset() time.Duration {
	switch k {
	case Kind24h:
		return 24 * time.Hour
	case Kind1h:
		return time.Hour
	default:
		return 0
	}
}

// Tolerance is the margin around each threshold within which a tick still
// treats an appointment as due. It matches the nominal 5-minute trigger
// period: an appointment missed inside one window is a permanent, accepted
// loss for that threshold.
const Tolerance = 5 * time.Minute

// Kinds lists the thresholds every tick evaluates, furthest out first.
var Kinds = []Kind{Kind24h, Kind1h}

// DueAppointment is the reminder read model: the appointment joined with
// the relations a dispatch needs.
type DueAppointment struct {
	AppointmentID string
	StartTime     time.Time
	ClientName    string
	ClientPhone   string
	EmployeeName  string
	ServiceName   string
	TenantName    string
	TenantChannel string
}

// Store is the persistence surface of the scheduler. MarkSent must be an
// atomic insert-if-absent: it is the exactly-once gate, not the WasSent
// pre-filter.
type Store interface {
	DueBetween(ctx context.Context, from, to time.Time) ([]DueAppointment, error)
	WasSent(ctx context.Context, appointmentID string, kind Kind) (bool, error)
	MarkSent(ctx context.Context, appointmentID string, kind Kind, sentAt time.Time) (bool, error)
}

type Scheduler struct {
	store       Store
	sender      notify.Sender
	logger      *slog.Logger
	sendTimeout time.Duration
}

type Config struct {
	// SendTimeout bounds one dispatch call so a slow channel never stalls
	// the rest of the batch.
	SendTimeout time.Duration
}

func NewScheduler(store Store, sender notify.Sender, logger *slog.Logger, cfg Config) *Scheduler {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	return &Scheduler{
		store:       store,
		sender:      sender,
		logger:      logger,
		sendTimeout: cfg.SendTimeout,
	}
}

// Summary is what one tick did, for logging and deterministic tests.
type Summary struct {
	Selected int
	Sent     int
	Skipped  int
	Failed   int
}

// Tick evaluates every threshold against now and dispatches due reminders.
// now is supplied by the caller; the scheduler owns no timer. Partial
// progress is always correctly marked because the idempotency marker is
// written per item immediately after a successful send, never at batch
// end.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) Summary {
	ctx, span := otel.Tracer("reminder").Start(ctx, "reminder.tick")
	defer span.End()

	var sum Summary
	for _, kind := range Kinds {
		from := now.Add(kind.Offset() - Tolerance)
		to := now.Add(kind.Offset() + Tolerance)

		due, err := s.store.DueBetween(ctx, from, to)
		if err != nil {
			s.logger.Error("due scan failed", "kind", kind, "err", err)
			span.RecordError(err)
			continue
		}
		sum.Selected += len(due)

		for _, d := range due {
			s.process(ctx, kind, d, &sum)
		}
	}

	span.SetAttributes(
		attribute.Int("reminder.selected", sum.Selected),
		attribute.Int("reminder.sent", sum.Sent),
		attribute.Int("reminder.failed", sum.Failed),
	)
	return sum
}

func (s *Scheduler) process(ctx context.Context, kind Kind, d DueAppointment, sum *Summary) {
	sent, err := s.store.WasSent(ctx, d.AppointmentID, kind)
	if err != nil {
		s.logger.Error("sent-marker lookup failed", "appointment_id", d.AppointmentID, "kind", kind, "err", err)
		sum.Failed++
		return
	}
	if sent {
		sum.Skipped++
		return
	}

	if reason := missingRelation(d); reason != "" {
		s.logger.Warn("reminder skipped, incomplete relations",
			"appointment_id", d.AppointmentID, "kind", kind, "missing", reason)
		sum.Skipped++
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	err = s.sender.Send(sendCtx, notify.Reminder{
		AppointmentID: d.AppointmentID,
		Kind:          string(kind),
		StartTime:     d.StartTime,
		ClientName:    d.ClientName,
		ClientPhone:   d.ClientPhone,
		EmployeeName:  d.EmployeeName,
		ServiceName:   d.ServiceName,
		TenantName:    d.TenantName,
		Channel:       d.TenantChannel,
	})
	cancel()
	if err != nil {
		// The appointment stays eligible while its tolerance window is
		// open; the next tick retries.
		s.logger.Error("reminder dispatch failed",
			"appointment_id", d.AppointmentID, "kind", kind, "provider", s.sender.ProviderID(), "err", err)
		sum.Failed++
		return
	}

	inserted, err := s.store.MarkSent(ctx, d.AppointmentID, kind, time.Now().UTC())
	if err != nil {
		// The send happened but the marker did not land; the next tick may
		// resend. This is the at-least-once edge the marker cannot close.
		s.logger.Error("sent-marker insert failed", "appointment_id", d.AppointmentID, "kind", kind, "err", err)
		sum.Failed++
		return
	}
	if !inserted {
		// A concurrent invocation already recorded the send. The invariant
		// (at most once) holds, so this counts as success.
		s.logger.Info("duplicate sent-marker ignored", "appointment_id", d.AppointmentID, "kind", kind)
	}
	sum.Sent++
	s.logger.Info("reminder sent",
		"appointment_id", d.AppointmentID, "kind", kind, "provider", s.sender.ProviderID())
}

func missingRelation(d DueAppointment) string {
	switch {
	case d.ClientPhone == "":
		return "client_phone"
	case d.EmployeeName == "":
		return "employee"
	case d.ServiceName == "":
		return "service"
	case d.TenantChannel == "":
		return "tenant_channel"
	}
	return ""
}
