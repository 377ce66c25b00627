package holiday

import (
	"context"
	"time"
)

type Holiday struct {
	ListID      string
	Date        time.Time
	Description string
	WeeklyOff   bool
}

type HolidayRepository interface {
	IsHoliday(ctx context.Context, listID string, date time.Time) (bool, error)

	// GetCompanyDefaultListID returns nil when the company has no default list
	GetCompanyDefaultListID(ctx context.Context, companyID string) (*string, error)
}
