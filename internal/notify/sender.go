// Package notify abstracts the notification channel. The reminder
// scheduler only knows Send; the transport behind it is interchangeable.
package notify

import (
	"context"
	"time"
)

// Reminder is the appointment context handed to a channel for rendering.
type Reminder struct {
	AppointmentID string
	Kind          string
	StartTime     time.Time
	ClientName    string
	ClientPhone   string
	EmployeeName  string
	ServiceName   string
	TenantName    string
	Channel       string
}

type Sender interface {
	Send(ctx context.Context, r Reminder) error
	ProviderID() string
}

// NoopSender accepts everything. Used in dev and as the fallback when no
// channel is configured.
type NoopSender struct{}

func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

func (s *NoopSender) ProviderID() string {
	return "noop"
}

func (s *NoopSender) Send(_ context.Context, _ Reminder) error {
	return nil
}
