package holiday

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/holiday"
)

type HolidayServiceImpl struct {
	repo holiday.HolidayRepository
}

func NewHolidayService(repo holiday.HolidayRepository) *HolidayServiceImpl {
	return &HolidayServiceImpl{repo: repo}
}

// IsHolidayForEmployee checks the employee's own list, falling back to the company default.
func (s *HolidayServiceImpl) IsHolidayForEmployee(ctx context.Context, emp employee.Employee, date time.Time) (bool, error) {
	if emp.HolidayListID != nil && *emp.HolidayListID != "" {
		return s.isHoliday(ctx, *emp.HolidayListID, date)
	}
	return s.IsCompanyHoliday(ctx, emp.CompanyID, date)
}

// IsCompanyHoliday checks the company's default list. A company without one has no holidays.
func (s *HolidayServiceImpl) IsCompanyHoliday(ctx context.Context, companyID string, date time.Time) (bool, error) {
	listID, err := s.repo.GetCompanyDefaultListID(ctx, companyID)
	if err != nil {
		return false, fmt.Errorf("failed to get default holiday list: %w", err)
	}
	if listID == nil {
		return false, nil
	}
	return s.isHoliday(ctx, *listID, date)
}

func (s *HolidayServiceImpl) isHoliday(ctx context.Context, listID string, date time.Time) (bool, error) {
	ok, err := s.repo.IsHoliday(ctx, listID, date)
	if err != nil {
		return false, fmt.Errorf("failed to check holiday list %s: %w", listID, err)
	}
	return ok, nil
}
