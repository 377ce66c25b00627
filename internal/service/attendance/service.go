package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/timeutil"
)

type AttendanceServiceImpl struct {
	attendances attendance.AttendanceRepository
	runs        attendance.RunRepository
	processor   attendance.Processor
	loc         *time.Location
	now         func() time.Time
}

func NewAttendanceService(
	attendances attendance.AttendanceRepository,
	runs attendance.RunRepository,
	processor attendance.Processor,
	loc *time.Location,
) *AttendanceServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		attendances: attendances,
		runs:        runs,
		processor:   processor,
		loc:         loc,
		now:         time.Now,
	}
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, actor user.Actor, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if actor.EmployeeID == "" {
		return attendance.ListAttendanceResponse{}, user.ErrEmployeeIDRequired
	}

	employeeID := actor.EmployeeID
	return s.ListAttendance(ctx, actor, attendance.AttendanceFilter{
		EmployeeID: &employeeID,
		From:       filter.From,
		To:         filter.To,
		Page:       filter.Page,
		Limit:      filter.Limit,
	})
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, actor user.Actor, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if actor.CompanyID == "" {
		return attendance.ListAttendanceResponse{}, user.ErrCompanyIDRequired
	}
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	filter.CompanyID = actor.CompanyID

	records, total, err := s.attendances.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, a := range records {
		responses = append(responses, attendance.NewAttendanceResponse(a))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Attendances: responses,
	}, nil
}

// Process implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Process(ctx context.Context, actor user.Actor, req attendance.ProcessRequest) (attendance.ProcessResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ProcessResponse{}, err
	}
	if actor.CompanyID == "" {
		return attendance.ProcessResponse{}, user.ErrCompanyIDRequired
	}

	parsed := req.ParsedDate()
	date := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, s.loc)
	today := timeutil.DateOf(s.now().In(s.loc))
	if date.After(today) {
		return attendance.ProcessResponse{}, attendance.ErrFutureDate
	}

	if !req.Force {
		done, err := s.runs.GetCompleted(ctx, actor.CompanyID, date, req.EmployeeID)
		if err != nil {
			return attendance.ProcessResponse{}, fmt.Errorf("failed to check previous runs: %w", err)
		}
		if done != nil {
			return attendance.ProcessResponse{}, attendance.ErrRunAlreadyComplete
		}
	}

	run, err := s.runs.Create(ctx, attendance.ProcessingRun{
		CompanyID:  actor.CompanyID,
		Date:       date,
		EmployeeID: req.EmployeeID,
		Status:     attendance.RunStatusProcessing,
		StartedBy:  actor.UserID,
		StartedAt:  s.now(),
	})
	if err != nil {
		return attendance.ProcessResponse{}, fmt.Errorf("failed to create processing run: %w", err)
	}

	pc := attendance.ProcessContext{Actor: actor, Date: date}
	result, procErr := s.run(ctx, pc, req.EmployeeID)

	finished := s.now()
	run.FinishedAt = &finished
	run.Result = result
	run.Status = attendance.RunStatusCompleted
	if procErr != nil {
		msg := procErr.Error()
		run.Status = attendance.RunStatusFailed
		run.Error = &msg
	}
	if err := s.runs.Finish(ctx, run); err != nil {
		slog.Error("Attendance: failed to finish processing run", "run_id", run.ID, "error", err)
	}
	if procErr != nil {
		return attendance.ProcessResponse{}, procErr
	}

	return attendance.ProcessResponse{RunID: run.ID, Status: run.Status, Result: result}, nil
}

func (s *AttendanceServiceImpl) run(ctx context.Context, pc attendance.ProcessContext, employeeID *string) (attendance.BatchResult, error) {
	if employeeID == nil {
		return s.processor.ProcessCompany(ctx, pc)
	}

	result := attendance.BatchResult{Date: pc.Date.Format("2006-01-02")}
	decision, err := s.processor.ProcessEmployeeDay(ctx, pc, *employeeID)
	if err != nil {
		return result, err
	}
	result.Add(attendance.EmployeeResult{
		EmployeeID: *employeeID,
		Outcome:    decision.Outcome,
		Status:     decision.Status,
		Remarks:    decision.Remarks,
	})
	return result, nil
}
