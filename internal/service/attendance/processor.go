package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/master/location"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/master/overtime"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/timeutil"
	"golang.org/x/sync/errgroup"
)

// Options tunes the processor.
type Options struct {
	DriverLocations []string
	Concurrency     int
	Location        *time.Location
}

type ProcessorImpl struct {
	tx          database.Transactor
	employees   employee.EmployeeRepository
	checkins    checkin.CheckinRepository
	attendances attendance.AttendanceRepository
	shifts      location.ShiftConfigRepository
	overtimes   overtime.AllowedOvertimeRepository
	holidays    holiday.Service
	opts        Options
	now         func() time.Time
}

func NewProcessor(
	tx database.Transactor,
	employees employee.EmployeeRepository,
	checkins checkin.CheckinRepository,
	attendances attendance.AttendanceRepository,
	shifts location.ShiftConfigRepository,
	overtimes overtime.AllowedOvertimeRepository,
	holidays holiday.Service,
	opts Options,
) *ProcessorImpl {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &ProcessorImpl{
		tx:          tx,
		employees:   employees,
		checkins:    checkins,
		attendances: attendances,
		shifts:      shifts,
		overtimes:   overtimes,
		holidays:    holidays,
		opts:        opts,
		now:         time.Now,
	}
}

// ProcessEmployeeDay implements attendance.Processor.
func (p *ProcessorImpl) ProcessEmployeeDay(ctx context.Context, pc attendance.ProcessContext, employeeID string) (attendance.Decision, error) {
	emp, err := p.employees.GetByID(ctx, employeeID)
	if err != nil {
		return attendance.Decision{}, err
	}
	if emp.CompanyID != pc.Actor.CompanyID {
		return attendance.Decision{}, employee.ErrEmployeeNotFound
	}
	return p.processEmployee(ctx, pc, emp)
}

func (p *ProcessorImpl) processEmployee(ctx context.Context, pc attendance.ProcessContext, emp employee.Employee) (attendance.Decision, error) {
	date := timeutil.DateOf(pc.Date.In(p.opts.Location))

	var decision attendance.Decision
	err := p.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := p.attendances.GetActive(ctx, emp.ID, date)
		if err != nil {
			return fmt.Errorf("failed to get attendance: %w", err)
		}
		if existing != nil {
			if existing.LeaveApplicationID != nil {
				decision = attendance.Skip("Attendance linked to leave application")
				return nil
			}
			if err := p.attendances.Cancel(ctx, existing.ID, p.now()); err != nil {
				return fmt.Errorf("failed to cancel attendance: %w", err)
			}
		}

		decision, err = p.decide(ctx, emp, date)
		if err != nil {
			return err
		}
		if decision.Outcome == attendance.OutcomeSkipped {
			return nil
		}

		_, err = p.attendances.Create(ctx, attendance.Attendance{
			CompanyID:    emp.CompanyID,
			EmployeeID:   emp.ID,
			Date:         date,
			Status:       decision.Status,
			LateEntry:    decision.LateEntry,
			EarlyExit:    decision.EarlyExit,
			WorkingHours: decision.WorkingHours,
			Remarks:      decision.Remarks,
			DocStatus:    attendance.DocStatusSubmitted,
			ProcessedBy:  pc.Actor.UserID,
		})
		return err
	})
	if err != nil {
		metrics.AttendanceOutcomes.WithLabelValues(string(attendance.OutcomeError)).Inc()
		return attendance.Decision{}, err
	}

	metrics.AttendanceOutcomes.WithLabelValues(string(decision.Outcome)).Inc()
	return decision, nil
}

// ProcessCompany implements attendance.Processor.
func (p *ProcessorImpl) ProcessCompany(ctx context.Context, pc attendance.ProcessContext) (attendance.BatchResult, error) {
	if pc.Actor.CompanyID == "" {
		return attendance.BatchResult{}, user.ErrCompanyIDRequired
	}

	employees, err := p.employees.ListActiveByCompany(ctx, pc.Actor.CompanyID)
	if err != nil {
		return attendance.BatchResult{}, fmt.Errorf("failed to list employees: %w", err)
	}

	result := attendance.BatchResult{Date: timeutil.DateOf(pc.Date.In(p.opts.Location)).Format("2006-01-02")}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)

	for _, emp := range employees {
		g.Go(func() error {
			line := attendance.EmployeeResult{EmployeeID: emp.ID}

			decision, err := p.processEmployee(gctx, pc, emp)
			if err != nil {
				slog.Error("Attendance: failed to process employee", "employee_id", emp.ID, "date", result.Date, "error", err)
				line.Outcome = attendance.OutcomeError
				line.Error = err.Error()
			} else {
				line.Outcome = decision.Outcome
				line.Status = decision.Status
				line.Remarks = decision.Remarks
			}

			mu.Lock()
			result.Add(line)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return result, nil
}

// RunDaily implements attendance.Processor. Companies whose default calendar
// marks yesterday as a holiday are left untouched.
func (p *ProcessorImpl) RunDaily(ctx context.Context) error {
	yesterday := timeutil.DateOf(p.now().In(p.opts.Location)).AddDate(0, 0, -1)

	companyIDs, err := p.employees.ListCompanyIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	var errs []error
	for _, companyID := range companyIDs {
		onHoliday, err := p.holidays.IsCompanyHoliday(ctx, companyID, yesterday)
		if err != nil {
			errs = append(errs, fmt.Errorf("company %s: %w", companyID, err))
			continue
		}
		if onHoliday {
			slog.Info("Cron: skipping daily attendance on holiday", "company_id", companyID, "date", yesterday.Format("2006-01-02"))
			continue
		}

		result, err := p.ProcessCompany(ctx, attendance.ProcessContext{Actor: user.SystemActor(companyID), Date: yesterday})
		if err != nil {
			errs = append(errs, fmt.Errorf("company %s: %w", companyID, err))
			continue
		}
		slog.Info("Cron: daily attendance processed",
			"company_id", companyID,
			"date", result.Date,
			"total", result.Total,
			"processed", result.Processed,
			"absent", result.Absent,
			"skipped", result.Skipped,
			"errors", result.Errors,
		)
	}

	return errors.Join(errs...)
}
