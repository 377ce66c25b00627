package overtime

import (
	"context"
	"time"
)

type AllowedOvertimeRepository interface {
	// Create returns ErrOvertimeExists when the employee already has an entry for the date
	Create(ctx context.Context, entry AllowedOvertime) (AllowedOvertime, error)

	// GetByEmployeeAndDate returns nil when no entry exists
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*AllowedOvertime, error)

	List(ctx context.Context, filter ListFilter) ([]AllowedOvertime, error)
	Delete(ctx context.Context, id string, companyID string) error
}
