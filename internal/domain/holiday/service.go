package holiday

import (
	"context"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/employee"
)

// Service resolves holiday calendars, falling back from the employee's own list to the company default.
type Service interface {
	IsHolidayForEmployee(ctx context.Context, emp employee.Employee, date time.Time) (bool, error)
	IsCompanyHoliday(ctx context.Context, companyID string, date time.Time) (bool, error)
}
