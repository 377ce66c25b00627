package checkin

import (
	"context"
	"time"
)

type CheckinRepository interface {
	// Create returns ErrDuplicateCheckin when an event of the same type exists at the same instant
	Create(ctx context.Context, c Checkin) (Checkin, error)
	GetByID(ctx context.Context, id string, companyID string) (Checkin, error)

	// ListForDay returns the employee's events in [date, date+1) ordered by time
	ListForDay(ctx context.Context, employeeID string, date time.Time) ([]Checkin, error)

	// ExistsOnDay reports a non-rejected event of logType in [date, date+1),
	// other than excludeID when it is set
	ExistsOnDay(ctx context.Context, employeeID string, date time.Time, logType LogType, excludeID string) (bool, error)
	// ListByEmployee covers the days from through to inclusive
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]Checkin, error)
	ListPendingForApprover(ctx context.Context, managerEmployeeID string) ([]Checkin, error)

	// Approve sets approved and optionally replaces the recorded time
	Approve(ctx context.Context, id string, approverUserID string, at time.Time, newTime *time.Time) error
	Reject(ctx context.Context, id string, approverUserID string, at time.Time) error
}
