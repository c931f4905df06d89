package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/bookable/internal/model"
	"github.com/md-rashed-zaman/bookable/libs/db"
)

// AppointmentRepository reads the conflict set for availability and writes
// new bookings. The appointments table carries an exclusion constraint
// over (employee_id, tstzrange(start_time, end_time)) for the
// pending/confirmed statuses; Create surfaces its violation so callers can
// report "slot no longer available" instead of a generic failure.
type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

// DayAppointments returns the employee's appointments overlapping the
// date, filtered to the statuses that count as conflicts.
func (r *AppointmentRepository) DayAppointments(ctx context.Context, employeeID string, date time.Time) ([]model.Appointment, error) {
	y, m, d := date.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows, err := r.pool.Query(ctx, `
		SELECT id::text, tenant_id::text, employee_id::text, service_id::text,
			client_name, client_phone, start_time, end_time, status, created_at
		FROM appointments
		WHERE employee_id = $1
			AND status IN ('pending', 'confirmed')
			AND start_time < $3
			AND end_time > $2
		ORDER BY start_time ASC
	`, employeeID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.TenantID, &a.EmployeeID, &a.ServiceID,
			&a.ClientName, &a.ClientPhone, &a.StartTime, &a.EndTime, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

func (r *AppointmentRepository) Create(ctx context.Context, appt *model.Appointment) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments
			(id, tenant_id, employee_id, service_id, client_name, client_phone, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, id, appt.TenantID, appt.EmployeeID, appt.ServiceID, appt.ClientName, appt.ClientPhone,
		appt.StartTime, appt.EndTime, appt.Status)
	if err != nil {
		return "", err
	}
	return id, nil
}
