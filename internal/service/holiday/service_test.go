package holiday

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/employee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHolidayRepo struct {
	defaults map[string]string
	days     map[string]bool
}

func (f *fakeHolidayRepo) IsHoliday(_ context.Context, listID string, date time.Time) (bool, error) {
	return f.days[listID+"|"+date.Format("2006-01-02")], nil
}

func (f *fakeHolidayRepo) GetCompanyDefaultListID(_ context.Context, companyID string) (*string, error) {
	id, ok := f.defaults[companyID]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func TestHolidayService_FallsBackToCompanyList(t *testing.T) {
	ctx := context.Background()
	repo := &fakeHolidayRepo{
		defaults: map[string]string{"company-1": "hl-company"},
		days: map[string]bool{
			"hl-company|2026-01-26": true,
			"hl-site|2026-03-04":    true,
		},
	}
	svc := NewHolidayService(repo)
	own := "hl-site"

	withOwn := employee.Employee{CompanyID: "company-1", HolidayListID: &own}
	withoutOwn := employee.Employee{CompanyID: "company-1"}
	republicDay := time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC)
	holi := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	got, err := svc.IsHolidayForEmployee(ctx, withOwn, republicDay)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = svc.IsHolidayForEmployee(ctx, withOwn, holi)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = svc.IsHolidayForEmployee(ctx, withoutOwn, republicDay)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestHolidayService_CompanyWithoutDefaultList(t *testing.T) {
	svc := NewHolidayService(&fakeHolidayRepo{})

	got, err := svc.IsCompanyHoliday(context.Background(), "company-2", time.Now())

	require.NoError(t, err)
	assert.False(t, got)
}
