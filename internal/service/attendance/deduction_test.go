package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/employee"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLateMarks(t *testing.T, repo *fakeAttendances, employeeID string, month time.Month, count int) {
	t.Helper()
	for day := 1; day <= count; day++ {
		_, err := repo.Create(context.Background(), attendance.Attendance{
			CompanyID:  testCompany,
			EmployeeID: employeeID,
			Date:       time.Date(2026, month, day, 0, 0, 0, 0, time.UTC),
			Status:     attendance.StatusPresent,
			LateEntry:  true,
			DocStatus:  attendance.DocStatusSubmitted,
		})
		require.NoError(t, err)
	}
}

func TestDeductionService_ProcessMonth(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(
		staff("emp-1", employee.StaffTypeEmployee, "Head Office"),
		staff("emp-2", employee.StaffTypeEmployee, "Head Office"),
		staff("emp-3", employee.StaffTypeEmployee, "Head Office"),
		staff("emp-4", employee.StaffTypeEmployee, "Warehouse"),
	)
	cfg := headOfficeConfig()
	leaveType := "lt-casual"
	cfg.LeaveTypeForDeduction = &leaveType
	cfg.LateCountForHalfDay = 3
	cfg.LateCountForFullDay = 5
	f.shifts = newFakeShifts(cfg)

	seedLateMarks(t, f.attendances, "emp-1", time.February, 7)
	seedLateMarks(t, f.attendances, "emp-2", time.February, 3)
	seedLateMarks(t, f.attendances, "emp-3", time.February, 2)
	seedLateMarks(t, f.attendances, "emp-4", time.February, 9)

	leaves := &fakeLeaves{}
	svc := NewDeductionService(f.employees, f.attendances, f.shifts, leaves, time.UTC)

	result, err := svc.ProcessMonth(ctx, testCompany, time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, "2026-02", result.Month)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 0, result.Errors)

	require.Len(t, leaves.requests, 2)
	assert.Equal(t, "emp-1", leaves.requests[0].EmployeeID)
	assert.True(t, decimal.NewFromInt(2).Equal(leaves.requests[0].Days))
	assert.Equal(t, 7, leaves.requests[0].LateMarks)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), leaves.requests[0].Date)
	assert.Equal(t, leaveType, leaves.requests[0].LeaveTypeID)
	assert.True(t, decimal.NewFromFloat(0.5).Equal(leaves.requests[1].Days))
}

func TestDeductionService_RunMonthlyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newProcessorFixture(staff("emp-1", employee.StaffTypeEmployee, "Head Office"))
	cfg := headOfficeConfig()
	leaveType := "lt-casual"
	cfg.LeaveTypeForDeduction = &leaveType
	f.shifts = newFakeShifts(cfg)
	seedLateMarks(t, f.attendances, "emp-1", time.February, 5)

	leaves := &fakeLeaves{}
	svc := NewDeductionService(f.employees, f.attendances, f.shifts, leaves, time.UTC)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC) }

	require.NoError(t, svc.RunMonthly(ctx))
	require.NoError(t, svc.RunMonthly(ctx))

	require.Len(t, leaves.requests, 1)
	assert.True(t, decimal.NewFromInt(1).Equal(leaves.requests[0].Days))
}
