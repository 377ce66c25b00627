package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/timeutil"
	"github.com/shopspring/decimal"
)

type LeaveServiceImpl struct {
	tx            database.Transactor
	types         leave.LeaveTypeRepository
	allocations   leave.LeaveAllocationRepository
	applications  leave.LeaveApplicationRepository
	employees     employee.EmployeeRepository
	attendances   attendance.AttendanceRepository
	notifications notification.Service
	now           func() time.Time
}

func NewLeaveService(
	tx database.Transactor,
	types leave.LeaveTypeRepository,
	allocations leave.LeaveAllocationRepository,
	applications leave.LeaveApplicationRepository,
	employees employee.EmployeeRepository,
	attendances attendance.AttendanceRepository,
	notifications notification.Service,
) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		tx:            tx,
		types:         types,
		allocations:   allocations,
		applications:  applications,
		employees:     employees,
		attendances:   attendances,
		notifications: notifications,
		now:           time.Now,
	}
}

// Apply implements leave.LeaveService.
func (s *LeaveServiceImpl) Apply(ctx context.Context, actor user.Actor, req leave.ApplyLeaveRequest) (leave.LeaveApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	if actor.EmployeeID == "" {
		return leave.LeaveApplicationResponse{}, user.ErrEmployeeIDRequired
	}

	emp, err := s.employees.GetByID(ctx, actor.EmployeeID)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	leaveType, err := s.types.GetByID(ctx, req.LeaveTypeID, actor.CompanyID)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	if !leaveType.IsActive {
		return leave.LeaveApplicationResponse{}, leave.ErrLeaveTypeNotFound
	}
	if req.HalfDay && !leaveType.AllowHalfDay {
		return leave.LeaveApplicationResponse{}, leave.ErrHalfDayNotAllowed
	}

	from, to := req.Range()
	overlap, err := s.applications.HasOverlap(ctx, emp.ID, from, to)
	if err != nil {
		return leave.LeaveApplicationResponse{}, fmt.Errorf("failed to check overlapping leave: %w", err)
	}
	if overlap {
		return leave.LeaveApplicationResponse{}, leave.ErrOverlappingApplication
	}

	days := leave.CountDays(from, to, req.HalfDay)
	if err := s.ensureBalance(ctx, emp.ID, leaveType.ID, from, days); err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	app, err := s.applications.Create(ctx, leave.LeaveApplication{
		CompanyID:   emp.CompanyID,
		EmployeeID:  emp.ID,
		LeaveTypeID: leaveType.ID,
		FromDate:    from,
		ToDate:      to,
		HalfDay:     req.HalfDay,
		TotalDays:   days,
		Description: req.Description,
		Status:      leave.StatusOpen,
		CreatedBy:   actor.UserID,
	})
	if err != nil {
		return leave.LeaveApplicationResponse{}, fmt.Errorf("failed to create leave application: %w", err)
	}

	if emp.ReportsTo != nil {
		if manager, err := s.employees.GetByID(ctx, *emp.ReportsTo); err == nil && manager.UserID != nil {
			s.notify(ctx, app, *manager.UserID, notification.TypeLeaveRequest, "Leave request",
				fmt.Sprintf("%s applied for %s day(s) of %s from %s", emp.FullName, days, leaveType.Name, from.Format("02 Jan 2006")))
		}
	}

	return leave.NewLeaveApplicationResponse(app), nil
}

func (s *LeaveServiceImpl) ensureBalance(ctx context.Context, employeeID, leaveTypeID string, asOf time.Time, days decimal.Decimal) error {
	balance, err := s.GetBalance(ctx, employeeID, leaveTypeID, asOf)
	if err != nil {
		return err
	}
	if days.GreaterThan(balance) {
		return leave.ErrInsufficientBalance
	}
	return nil
}

// Approve implements leave.LeaveService. Approval materializes an On Leave
// attendance record for every covered day, superseding derived records.
func (s *LeaveServiceImpl) Approve(ctx context.Context, actor user.Actor, id string) (leave.LeaveApplicationResponse, error) {
	app, emp, err := s.decidable(ctx, actor, id)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	if err := s.ensureBalance(ctx, app.EmployeeID, app.LeaveTypeID, app.FromDate, app.TotalDays); err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	decidedAt := s.now()
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.applications.UpdateStatus(ctx, app.ID, leave.StatusApproved, &actor.UserID, decidedAt); err != nil {
			return fmt.Errorf("failed to approve leave application: %w", err)
		}
		return s.materialize(ctx, actor, app)
	})
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	app.Status = leave.StatusApproved
	app.ApproverUserID = &actor.UserID
	app.DecidedAt = &decidedAt

	if emp.UserID != nil {
		s.notify(ctx, app, *emp.UserID, notification.TypeLeaveApproved, "Leave approved",
			fmt.Sprintf("Your leave from %s to %s was approved", app.FromDate.Format("02 Jan 2006"), app.ToDate.Format("02 Jan 2006")))
	}
	return leave.NewLeaveApplicationResponse(app), nil
}

func (s *LeaveServiceImpl) materialize(ctx context.Context, actor user.Actor, app leave.LeaveApplication) error {
	status := attendance.StatusOnLeave
	if app.HalfDay {
		status = attendance.StatusHalfDay
	}

	for _, day := range app.Days() {
		existing, err := s.attendances.GetActive(ctx, app.EmployeeID, day)
		if err != nil {
			return fmt.Errorf("failed to get attendance: %w", err)
		}
		if existing != nil {
			if err := s.attendances.Cancel(ctx, existing.ID, s.now()); err != nil {
				return fmt.Errorf("failed to cancel attendance: %w", err)
			}
		}

		appID := app.ID
		_, err = s.attendances.Create(ctx, attendance.Attendance{
			CompanyID:          app.CompanyID,
			EmployeeID:         app.EmployeeID,
			Date:               day,
			Status:             status,
			WorkingHours:       decimal.Zero,
			Remarks:            "Leave application " + app.ID,
			LeaveApplicationID: &appID,
			DocStatus:          attendance.DocStatusSubmitted,
			ProcessedBy:        actor.UserID,
		})
		if err != nil {
			return fmt.Errorf("failed to create leave attendance for %s: %w", day.Format("2006-01-02"), err)
		}
	}
	return nil
}

// Reject implements leave.LeaveService.
func (s *LeaveServiceImpl) Reject(ctx context.Context, actor user.Actor, id string) (leave.LeaveApplicationResponse, error) {
	app, emp, err := s.decidable(ctx, actor, id)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	decidedAt := s.now()
	if err := s.applications.UpdateStatus(ctx, app.ID, leave.StatusRejected, &actor.UserID, decidedAt); err != nil {
		return leave.LeaveApplicationResponse{}, fmt.Errorf("failed to reject leave application: %w", err)
	}
	app.Status = leave.StatusRejected
	app.ApproverUserID = &actor.UserID
	app.DecidedAt = &decidedAt

	if emp.UserID != nil {
		s.notify(ctx, app, *emp.UserID, notification.TypeLeaveRejected, "Leave rejected",
			fmt.Sprintf("Your leave from %s to %s was rejected", app.FromDate.Format("02 Jan 2006"), app.ToDate.Format("02 Jan 2006")))
	}
	return leave.NewLeaveApplicationResponse(app), nil
}

// decidable loads an open application the actor may approve or reject.
func (s *LeaveServiceImpl) decidable(ctx context.Context, actor user.Actor, id string) (leave.LeaveApplication, employee.Employee, error) {
	if !actor.IsManager() {
		return leave.LeaveApplication{}, employee.Employee{}, leave.ErrNotApprover
	}

	app, err := s.applications.GetByID(ctx, id, actor.CompanyID)
	if err != nil {
		return leave.LeaveApplication{}, employee.Employee{}, err
	}
	if !app.IsOpen() {
		return leave.LeaveApplication{}, employee.Employee{}, leave.ErrAlreadyProcessed
	}

	emp, err := s.employees.GetByID(ctx, app.EmployeeID)
	if err != nil {
		return leave.LeaveApplication{}, employee.Employee{}, err
	}
	if !actor.IsAdmin() && (emp.ReportsTo == nil || *emp.ReportsTo != actor.EmployeeID) {
		return leave.LeaveApplication{}, employee.Employee{}, leave.ErrNotApprover
	}
	return app, emp, nil
}

// Cancel implements leave.LeaveService. Attendance linked to an approved
// application is cancelled with it.
func (s *LeaveServiceImpl) Cancel(ctx context.Context, actor user.Actor, id string) (leave.LeaveApplicationResponse, error) {
	app, err := s.applications.GetByID(ctx, id, actor.CompanyID)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	if app.EmployeeID != actor.EmployeeID && !actor.IsAdmin() {
		return leave.LeaveApplicationResponse{}, employee.ErrUnauthorized
	}
	if app.Status != leave.StatusOpen && app.Status != leave.StatusApproved {
		return leave.LeaveApplicationResponse{}, leave.ErrAlreadyProcessed
	}

	now := s.now()
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.applications.UpdateStatus(ctx, app.ID, leave.StatusCancelled, app.ApproverUserID, now); err != nil {
			return fmt.Errorf("failed to cancel leave application: %w", err)
		}
		if app.Status != leave.StatusApproved {
			return nil
		}
		for _, day := range app.Days() {
			existing, err := s.attendances.GetActive(ctx, app.EmployeeID, day)
			if err != nil {
				return fmt.Errorf("failed to get attendance: %w", err)
			}
			if existing == nil || existing.LeaveApplicationID == nil || *existing.LeaveApplicationID != app.ID {
				continue
			}
			if err := s.attendances.Cancel(ctx, existing.ID, now); err != nil {
				return fmt.Errorf("failed to cancel attendance: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	app.Status = leave.StatusCancelled
	return leave.NewLeaveApplicationResponse(app), nil
}

// ListMy implements leave.LeaveService.
func (s *LeaveServiceImpl) ListMy(ctx context.Context, actor user.Actor, filter leave.MyLeaveFilter) ([]leave.LeaveApplicationResponse, error) {
	if actor.EmployeeID == "" {
		return nil, user.ErrEmployeeIDRequired
	}
	apps, err := s.applications.ListByEmployee(ctx, actor.EmployeeID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave applications: %w", err)
	}

	out := make([]leave.LeaveApplicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, leave.NewLeaveApplicationResponse(a))
	}
	return out, nil
}

// GetBalance implements leave.LeaveService.
func (s *LeaveServiceImpl) GetBalance(ctx context.Context, employeeID, leaveTypeID string, asOf time.Time) (decimal.Decimal, error) {
	alloc, err := s.allocations.GetCovering(ctx, employeeID, leaveTypeID, timeutil.DateOf(asOf))
	if err != nil {
		return decimal.Zero, err
	}
	used, err := s.applications.SumApprovedDays(ctx, employeeID, leaveTypeID, alloc.FromDate, alloc.ToDate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum approved leave: %w", err)
	}
	return alloc.Allocated.Sub(used), nil
}

// CreateAutoDeduction implements leave.LeaveService. It returns nil when a
// deduction for the same employee, date and leave type already exists.
func (s *LeaveServiceImpl) CreateAutoDeduction(ctx context.Context, req leave.AutoDeductionRequest) (*leave.LeaveApplication, error) {
	date := timeutil.DateOf(req.Date)

	exists, err := s.applications.ExistsAutoDeduction(ctx, req.EmployeeID, date, req.LeaveTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing deduction: %w", err)
	}
	if exists {
		return nil, nil
	}

	app, err := s.applications.Create(ctx, leave.LeaveApplication{
		CompanyID:     req.CompanyID,
		EmployeeID:    req.EmployeeID,
		LeaveTypeID:   req.LeaveTypeID,
		FromDate:      date,
		ToDate:        date,
		HalfDay:       req.Days.Equal(decimal.NewFromFloat(0.5)),
		TotalDays:     req.Days,
		Description:   fmt.Sprintf("%s for %d late marks in %s", leave.AutoDeductionMarker, req.LateMarks, date.Format("January 2006")),
		Status:        leave.StatusApproved,
		AutoDeduction: true,
		CreatedBy:     "system",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create deduction: %w", err)
	}

	if emp, err := s.employees.GetByID(ctx, req.EmployeeID); err == nil && emp.UserID != nil {
		s.notify(ctx, app, *emp.UserID, notification.TypeLeaveAutoDeducted, "Leave deducted", app.Description)
	}
	return &app, nil
}

func (s *LeaveServiceImpl) notify(ctx context.Context, app leave.LeaveApplication, recipient string, kind notification.NotificationType, title, message string) {
	err := s.notifications.QueueNotification(ctx, notification.CreateNotificationRequest{
		CompanyID:   app.CompanyID,
		RecipientID: recipient,
		Type:        kind,
		Title:       title,
		Message:     message,
		Data:        map[string]interface{}{"leave_application_id": app.ID},
	})
	if err != nil {
		slog.Error("Leave: failed to queue notification", "leave_application_id", app.ID, "type", kind, "error", err)
	}
}
