package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create inserts a record; a second active record for the same employee-day yields ErrAttendanceExists
	Create(ctx context.Context, a Attendance) (Attendance, error)

	// GetActive returns the non-cancelled record for the employee-day, or nil
	GetActive(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)

	// Cancel moves an active record to cancelled
	Cancel(ctx context.Context, id string, at time.Time) error

	// CountLateMarks counts submitted records in [from, to] with late_entry or early_exit
	CountLateMarks(ctx context.Context, employeeID string, from, to time.Time) (int, error)

	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)
}

// RunRepository stores manual processing runs.
type RunRepository interface {
	Create(ctx context.Context, run ProcessingRun) (ProcessingRun, error)
	Finish(ctx context.Context, run ProcessingRun) error

	// GetCompleted returns the last completed run for the scope, or nil
	GetCompleted(ctx context.Context, companyID string, date time.Time, employeeID *string) (*ProcessingRun, error)
}
