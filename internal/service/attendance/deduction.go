package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/master/location"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/timeutil"
)

type DeductionServiceImpl struct {
	employees   employee.EmployeeRepository
	attendances attendance.AttendanceRepository
	shifts      location.ShiftConfigRepository
	leaves      leave.LeaveService
	loc         *time.Location
	now         func() time.Time
}

func NewDeductionService(
	employees employee.EmployeeRepository,
	attendances attendance.AttendanceRepository,
	shifts location.ShiftConfigRepository,
	leaves leave.LeaveService,
	loc *time.Location,
) *DeductionServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	return &DeductionServiceImpl{
		employees:   employees,
		attendances: attendances,
		shifts:      shifts,
		leaves:      leaves,
		loc:         loc,
		now:         time.Now,
	}
}

// RunMonthly implements attendance.DeductionService.
func (s *DeductionServiceImpl) RunMonthly(ctx context.Context) error {
	previous := timeutil.StartOfMonth(s.now().In(s.loc)).AddDate(0, -1, 0)

	companyIDs, err := s.employees.ListCompanyIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	var errs []error
	for _, companyID := range companyIDs {
		result, err := s.ProcessMonth(ctx, companyID, previous)
		if err != nil {
			errs = append(errs, fmt.Errorf("company %s: %w", companyID, err))
			continue
		}
		slog.Info("Cron: monthly late deduction processed",
			"company_id", companyID,
			"month", result.Month,
			"created", result.Created,
			"skipped", result.Skipped,
			"errors", result.Errors,
		)
	}
	return errors.Join(errs...)
}

// ProcessMonth implements attendance.DeductionService.
func (s *DeductionServiceImpl) ProcessMonth(ctx context.Context, companyID string, month time.Time) (attendance.DeductionResult, error) {
	from := timeutil.StartOfMonth(month)
	to := timeutil.EndOfMonth(month)
	result := attendance.DeductionResult{Month: from.Format("2006-01")}

	employees, err := s.employees.ListActiveByCompany(ctx, companyID)
	if err != nil {
		return result, fmt.Errorf("failed to list employees: %w", err)
	}

	configs := make(map[string]*location.ShiftConfig)
	for _, emp := range employees {
		cfg, ok := configs[emp.Location]
		if !ok {
			cfg, err = s.shiftConfig(ctx, companyID, emp.Location)
			if err != nil {
				return result, err
			}
			configs[emp.Location] = cfg
		}
		if cfg == nil || cfg.LeaveTypeForDeduction == nil {
			result.Skipped++
			continue
		}

		created, err := s.deduct(ctx, emp, *cfg, from, to)
		switch {
		case err != nil:
			slog.Error("Cron: late deduction failed", "employee_id", emp.ID, "month", result.Month, "error", err)
			result.Errors++
		case created:
			result.Created++
		default:
			result.Skipped++
		}
	}

	return result, nil
}

func (s *DeductionServiceImpl) deduct(ctx context.Context, emp employee.Employee, cfg location.ShiftConfig, from, to time.Time) (bool, error) {
	marks, err := s.attendances.CountLateMarks(ctx, emp.ID, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to count late marks: %w", err)
	}

	half, full := cfg.DeductionThresholds()
	days := DeductionDays(marks, half, full)
	if days.IsZero() {
		return false, nil
	}

	app, err := s.leaves.CreateAutoDeduction(ctx, leave.AutoDeductionRequest{
		CompanyID:   emp.CompanyID,
		EmployeeID:  emp.ID,
		LeaveTypeID: *cfg.LeaveTypeForDeduction,
		Date:        to,
		Days:        days,
		LateMarks:   marks,
	})
	if err != nil {
		return false, err
	}
	if app == nil {
		return false, nil
	}

	metrics.LeaveDeductions.Inc()
	return true, nil
}

func (s *DeductionServiceImpl) shiftConfig(ctx context.Context, companyID, loc string) (*location.ShiftConfig, error) {
	if loc == "" {
		return nil, nil
	}
	cfg, err := s.shifts.Get(ctx, companyID, loc)
	if err != nil {
		if errors.Is(err, location.ErrShiftConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shift config: %w", err)
	}
	return &cfg, nil
}
