package attendance

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/master/location"
)

const (
	skipPendingApproval = "Pending check-in approval"
	skipHoliday         = "Holiday without allowed overtime"
)

// decide routes an employee-day to the policy of its staff type and location.
func (p *ProcessorImpl) decide(ctx context.Context, emp employee.Employee, date time.Time) (attendance.Decision, error) {
	events, err := p.checkins.ListForDay(ctx, emp.ID, date)
	if err != nil {
		return attendance.Decision{}, fmt.Errorf("failed to list check-ins: %w", err)
	}
	events = inLocation(withoutRejected(events), p.opts.Location)

	if PendingApproval(events) {
		return attendance.Skip(skipPendingApproval), nil
	}

	w := ExtractWindow(events)

	switch {
	case emp.IsWorker() && emp.AtSite():
		return WorkerAtSite(events), nil

	case emp.IsWorker():
		onHoliday, err := p.holidays.IsHolidayForEmployee(ctx, emp, date)
		if err != nil {
			return attendance.Decision{}, fmt.Errorf("failed to resolve holiday: %w", err)
		}
		if onHoliday {
			ot, err := p.overtimes.GetByEmployeeAndDate(ctx, emp.ID, date)
			if err != nil {
				return attendance.Decision{}, fmt.Errorf("failed to get allowed overtime: %w", err)
			}
			if ot == nil || !ot.OvertimeAllowed {
				return attendance.Skip(skipHoliday), nil
			}
		}
		return WorkerOffSite(w), nil

	case emp.IsDriver() && slices.Contains(p.opts.DriverLocations, emp.Location):
		return Driver(w, date, emp.Location), nil
	}

	if emp.NoCheckIn {
		return NoCheckInRequired(), nil
	}

	if len(events) == 0 {
		return attendance.Absent("No check-in and check-out records"), nil
	}

	if emp.Location != "" && !emp.AtSite() && !w.Complete() {
		return attendance.Absent("Missing check-in or check-out (Non-Worker)"), nil
	}

	cfg, err := p.shiftConfig(ctx, emp)
	if err != nil {
		return attendance.Decision{}, err
	}

	marks := 0
	if from, to, ok := lateMarkRange(date); ok {
		marks, err = p.attendances.CountLateMarks(ctx, emp.ID, from, to)
		if err != nil {
			return attendance.Decision{}, fmt.Errorf("failed to count late marks: %w", err)
		}
	}

	ev := Evaluate(EvaluationInput{Window: w, Config: cfg, LateMarks: marks})
	return FromEvaluation(ev, WorkingHours(w)), nil
}

// shiftConfig returns nil when the employee's location has no configuration.
func (p *ProcessorImpl) shiftConfig(ctx context.Context, emp employee.Employee) (*location.ShiftConfig, error) {
	if emp.Location == "" {
		return nil, nil
	}
	cfg, err := p.shifts.Get(ctx, emp.CompanyID, emp.Location)
	if err != nil {
		if errors.Is(err, location.ErrShiftConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shift config: %w", err)
	}
	return &cfg, nil
}
