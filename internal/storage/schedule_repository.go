package storage

import (
	"context"
	"time"

	"github.com/md-rashed-zaman/bookable/internal/model"
	"github.com/md-rashed-zaman/bookable/internal/schedule"
	"github.com/md-rashed-zaman/bookable/libs/db"
)

// ScheduleRepository reads the employee calendar: the employee row, its
// weekly working hours, and ad-hoc schedule blocks. All of it is edited
// externally; this repository is read-only.
type ScheduleRepository struct {
	pool *db.Pool
}

func NewScheduleRepository(pool *db.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

func (r *ScheduleRepository) Employee(ctx context.Context, employeeID string) (model.Employee, error) {
	var emp model.Employee
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, tenant_id::text, name, is_active
		FROM employees
		WHERE id = $1
	`, employeeID).Scan(&emp.ID, &emp.TenantID, &emp.Name, &emp.IsActive)
	if err != nil {
		return model.Employee{}, err
	}

	hours, err := r.workingHours(ctx, employeeID)
	if err != nil {
		return model.Employee{}, err
	}
	emp.WorkingHours = hours
	return emp, nil
}

func (r *ScheduleRepository) workingHours(ctx context.Context, employeeID string) (schedule.WorkingHours, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, enabled, start_clock, end_clock,
			COALESCE(break_start_clock, ''), COALESCE(break_end_clock, '')
		FROM employee_working_hours
		WHERE employee_id = $1
		ORDER BY weekday ASC
	`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hours := schedule.WorkingHours{}
	for rows.Next() {
		var weekday int
		var day schedule.DaySchedule
		if err := rows.Scan(&weekday, &day.Enabled, &day.Start, &day.End, &day.BreakStart, &day.BreakEnd); err != nil {
			return nil, err
		}
		hours[time.Weekday(weekday)] = day
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return hours, nil
}

// BlocksOn returns the employee's schedule blocks overlapping the given
// date (half-open day window in the date's location).
func (r *ScheduleRepository) BlocksOn(ctx context.Context, employeeID string, date time.Time) ([]model.ScheduleBlock, error) {
	y, m, d := date.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows, err := r.pool.Query(ctx, `
		SELECT id::text, employee_id::text, start_time, end_time, COALESCE(reason, '')
		FROM schedule_blocks
		WHERE employee_id = $1
			AND start_time < $3
			AND end_time > $2
		ORDER BY start_time ASC
	`, employeeID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []model.ScheduleBlock
	for rows.Next() {
		var b model.ScheduleBlock
		if err := rows.Scan(&b.ID, &b.EmployeeID, &b.StartTime, &b.EndTime, &b.Reason); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return blocks, nil
}
