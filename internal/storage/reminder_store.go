package storage

import (
	"context"
	"time"

	"github.com/md-rashed-zaman/bookable/internal/reminder"
	"github.com/md-rashed-zaman/bookable/libs/db"
)

// ReminderStore backs the reminder scheduler: the due-appointment scan and
// the append-only notification idempotency log.
type ReminderStore struct {
	pool *db.Pool
}

func NewReminderStore(pool *db.Pool) *ReminderStore {
	return &ReminderStore{pool: pool}
}

// DueBetween returns pending/confirmed appointments starting inside
// [from, to], joined with the relations a dispatch needs. Missing
// relations come back as empty strings; the scheduler decides whether to
// skip.
func (s *ReminderStore) DueBetween(ctx context.Context, from, to time.Time) ([]reminder.DueAppointment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id::text,
			a.start_time,
			COALESCE(a.client_name, ''),
			COALESCE(a.client_phone, ''),
			COALESCE(e.name, ''),
			COALESCE(s.name, ''),
			COALESCE(t.name, ''),
			COALESCE(t.messaging_channel, '')
		FROM appointments a
		LEFT JOIN employees e ON e.id = a.employee_id
		LEFT JOIN services s ON s.id = a.service_id
		LEFT JOIN tenants t ON t.id = a.tenant_id
		WHERE a.status IN ('pending', 'confirmed')
			AND a.start_time >= $1
			AND a.start_time <= $2
		ORDER BY a.start_time ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []reminder.DueAppointment
	for rows.Next() {
		var d reminder.DueAppointment
		if err := rows.Scan(&d.AppointmentID, &d.StartTime, &d.ClientName, &d.ClientPhone,
			&d.EmployeeName, &d.ServiceName, &d.TenantName, &d.TenantChannel); err != nil {
			return nil, err
		}
		due = append(due, d)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return due, nil
}

func (s *ReminderStore) WasSent(ctx context.Context, appointmentID string, kind reminder.Kind) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE appointment_id = $1 AND kind = $2
		)
	`, appointmentID, string(kind)).Scan(&exists)
	return exists, err
}

// MarkSent appends the idempotency marker. The unique constraint on
// (appointment_id, kind) makes this the atomic duplicate-prevention gate:
// a duplicate insert reports inserted=false with no error, because the
// desired invariant already holds.
func (s *ReminderStore) MarkSent(ctx context.Context, appointmentID string, kind reminder.Kind, sentAt time.Time) (bool, error) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (appointment_id, kind, sent_at)
		VALUES ($1, $2, $3)
	`, appointmentID, string(kind), sentAt)
	if err == nil {
		return true, nil
	}
	if IsDuplicate(err) {
		return false, nil
	}
	return false, err
}
