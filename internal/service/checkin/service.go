package checkin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/checkin"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/master/location"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/master/overtime"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
)

const autoCheckoutReason = "Auto checkout at 9:00 PM for Site location employee"

// futureTolerance absorbs clock drift between the device and the server.
const futureTolerance = 2 * time.Minute

type CheckinServiceImpl struct {
	checkins      checkin.CheckinRepository
	employees     employee.EmployeeRepository
	shifts        location.ShiftConfigRepository
	overtimes     overtime.AllowedOvertimeRepository
	holidays      holiday.Service
	processor     attendance.Processor
	notifications notification.Service
	loc           *time.Location
	now           func() time.Time
}

func NewCheckinService(
	checkins checkin.CheckinRepository,
	employees employee.EmployeeRepository,
	shifts location.ShiftConfigRepository,
	overtimes overtime.AllowedOvertimeRepository,
	holidays holiday.Service,
	processor attendance.Processor,
	notifications notification.Service,
	loc *time.Location,
) *CheckinServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	return &CheckinServiceImpl{
		checkins:      checkins,
		employees:     employees,
		shifts:        shifts,
		overtimes:     overtimes,
		holidays:      holidays,
		processor:     processor,
		notifications: notifications,
		loc:           loc,
		now:           time.Now,
	}
}

// Create implements checkin.CheckinService.
func (s *CheckinServiceImpl) Create(ctx context.Context, actor user.Actor, req checkin.CreateCheckinRequest) (checkin.CheckinResponse, error) {
	if err := req.Validate(); err != nil {
		return checkin.CheckinResponse{}, err
	}
	if actor.EmployeeID == "" {
		return checkin.CheckinResponse{}, user.ErrEmployeeIDRequired
	}

	emp, err := s.employees.GetByID(ctx, actor.EmployeeID)
	if err != nil {
		return checkin.CheckinResponse{}, err
	}
	if emp.CompanyID != actor.CompanyID {
		return checkin.CheckinResponse{}, employee.ErrUnauthorized
	}

	now := s.now().In(s.loc)
	at := now
	if t := req.ParsedTime(); t != nil {
		if t.After(now.Add(futureTolerance)) {
			return checkin.CheckinResponse{}, checkin.ErrCheckinInTheFuture
		}
		at = t.In(s.loc)
	}

	var message string
	if emp.IsWorker() && !emp.AtSite() {
		at, message, err = s.adjustWorkerTime(ctx, emp, req.LogType, at)
		if err != nil {
			return checkin.CheckinResponse{}, err
		}
	}

	exists, err := s.checkins.ExistsOnDay(ctx, emp.ID, timeutil.DateOf(at), req.LogType, "")
	if err != nil {
		return checkin.CheckinResponse{}, fmt.Errorf("failed to check duplicate check-in: %w", err)
	}
	if exists {
		return checkin.CheckinResponse{}, checkin.ErrDuplicateCheckin
	}

	c := checkin.Checkin{
		CompanyID:  emp.CompanyID,
		EmployeeID: emp.ID,
		Time:       at,
		LogType:    req.LogType,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Location:   req.Location,
		Source:     checkin.SourceMobile,
	}
	if req.Reason != nil && !validator.IsEmpty(*req.Reason) {
		reason := strings.TrimSpace(*req.Reason)
		c.Reason = &reason
		if emp.ReportsTo != nil {
			c.ApprovalRequired = true
			c.RequestedFrom = emp.ReportsTo
		}
	}

	created, err := s.checkins.Create(ctx, c)
	if err != nil {
		return checkin.CheckinResponse{}, err
	}

	if created.ApprovalRequired {
		s.notifyManager(ctx, emp, created)
	}

	resp := checkin.NewCheckinResponse(created)
	resp.Message = message
	return resp, nil
}

// adjustWorkerTime clamps off-shift times for Workers away from Site and
// rejects holiday check-ins without allowed overtime.
func (s *CheckinServiceImpl) adjustWorkerTime(ctx context.Context, emp employee.Employee, logType checkin.LogType, at time.Time) (time.Time, string, error) {
	cfg, err := s.shifts.Get(ctx, emp.CompanyID, emp.Location)
	if err != nil {
		if errors.Is(err, location.ErrShiftConfigNotFound) {
			return at, "", nil
		}
		return at, "", fmt.Errorf("failed to get shift config: %w", err)
	}

	date := timeutil.DateOf(at)
	ot, err := s.overtimes.GetByEmployeeAndDate(ctx, emp.ID, date)
	if err != nil {
		return at, "", fmt.Errorf("failed to get allowed overtime: %w", err)
	}

	onHoliday, err := s.holidays.IsHolidayForEmployee(ctx, emp, date)
	if err != nil {
		return at, "", fmt.Errorf("failed to resolve holiday: %w", err)
	}
	if onHoliday && (ot == nil || !ot.OvertimeAllowed) {
		return at, "", checkin.ErrOnLeaveToday
	}

	clock := timeutil.Of(at)
	switch {
	case logType == checkin.LogTypeIn && cfg.ShiftStart != nil && clock < *cfg.ShiftStart:
		if ot == nil || !ot.EarlyEntryAllowed {
			return cfg.ShiftStart.On(date), fmt.Sprintf("Early check-in not allowed. Check-in recorded at %s", cfg.ShiftStart.Kitchen()), nil
		}
	case logType == checkin.LogTypeOut && cfg.ShiftEnd != nil && clock > *cfg.ShiftEnd:
		if ot == nil || !ot.LateExitAllowed {
			return cfg.ShiftEnd.On(date), fmt.Sprintf("Late check-out not allowed. Check-out recorded at %s", cfg.ShiftEnd.Kitchen()), nil
		}
	}
	return at, "", nil
}

func (s *CheckinServiceImpl) notifyManager(ctx context.Context, emp employee.Employee, c checkin.Checkin) {
	manager, err := s.employees.GetByID(ctx, *c.RequestedFrom)
	if err != nil || manager.UserID == nil {
		slog.Warn("Checkin: approval requested from manager without user", "checkin_id", c.ID, "manager_id", *c.RequestedFrom, "error", err)
		return
	}

	err = s.notifications.QueueNotification(ctx, notification.CreateNotificationRequest{
		CompanyID:   emp.CompanyID,
		RecipientID: *manager.UserID,
		SenderID:    emp.UserID,
		Type:        notification.TypeCheckinApprovalRequested,
		Title:       "Check-in approval requested",
		Message:     fmt.Sprintf("%s requested approval for a %s at %s", emp.FullName, c.LogType, c.Time.Format("02 Jan 2006 03:04 PM")),
		Data:        map[string]interface{}{"checkin_id": c.ID, "employee_id": emp.ID},
	})
	if err != nil {
		slog.Error("Checkin: failed to queue approval notification", "checkin_id", c.ID, "error", err)
	}
}

// ListMy implements checkin.CheckinService.
func (s *CheckinServiceImpl) ListMy(ctx context.Context, actor user.Actor, filter checkin.ListCheckinFilter) ([]checkin.CheckinResponse, error) {
	if actor.EmployeeID == "" {
		return nil, user.ErrEmployeeIDRequired
	}

	today := timeutil.DateOf(s.now().In(s.loc))
	from, to := today, today
	if filter.From != nil {
		d, ok := validator.IsValidDate(*filter.From)
		if !ok {
			return nil, validator.ValidationErrors{{Field: "from", Message: "from must be in YYYY-MM-DD format"}}
		}
		from = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)
	}
	if filter.To != nil {
		d, ok := validator.IsValidDate(*filter.To)
		if !ok {
			return nil, validator.ValidationErrors{{Field: "to", Message: "to must be in YYYY-MM-DD format"}}
		}
		to = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)
	}

	events, err := s.checkins.ListByEmployee(ctx, actor.EmployeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	return toResponses(events), nil
}

// ListPending implements checkin.CheckinService.
func (s *CheckinServiceImpl) ListPending(ctx context.Context, actor user.Actor) ([]checkin.CheckinResponse, error) {
	if actor.EmployeeID == "" {
		return nil, user.ErrEmployeeIDRequired
	}
	events, err := s.checkins.ListPendingForApprover(ctx, actor.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending check-ins: %w", err)
	}
	return toResponses(events), nil
}

// Approve implements checkin.CheckinService. A time override goes through
// the same clamping and duplicate rules as Create. When it moves the event to
// another day, both days are reprocessed.
func (s *CheckinServiceImpl) Approve(ctx context.Context, actor user.Actor, req checkin.ApproveCheckinRequest) (checkin.ApprovalResponse, error) {
	if err := req.Validate(); err != nil {
		return checkin.ApprovalResponse{}, err
	}

	c, err := s.decidable(ctx, actor, req.ID)
	if err != nil {
		return checkin.ApprovalResponse{}, err
	}
	originalDate := timeutil.DateOf(c.Time)

	decidedAt := s.now()
	var newTime *time.Time
	var message string
	if t := req.ParsedTime(); t != nil {
		adjusted, msg, err := s.overrideTime(ctx, c, t.In(s.loc))
		if err != nil {
			return checkin.ApprovalResponse{}, err
		}
		newTime, message = &adjusted, msg
	}
	if err := s.checkins.Approve(ctx, c.ID, actor.UserID, decidedAt, newTime); err != nil {
		return checkin.ApprovalResponse{}, fmt.Errorf("failed to approve check-in: %w", err)
	}

	c.Approved = true
	c.ApproverUserID = &actor.UserID
	c.ApprovedAt = &decidedAt
	if newTime != nil {
		c.Time = *newTime
	}

	resp := checkin.ApprovalResponse{Checkin: checkin.NewCheckinResponse(c)}

	decision, err := s.processor.ProcessEmployeeDay(ctx, attendance.ProcessContext{Actor: actor, Date: c.Time}, c.EmployeeID)
	switch {
	case err != nil:
		slog.Error("Checkin: attendance reprocessing failed after approval", "checkin_id", c.ID, "employee_id", c.EmployeeID, "error", err)
		resp.Checkin.Message = "Check-in approved successfully"
		resp.Warning = "attendance processing failed, please check the logs"
	case decision.Outcome == attendance.OutcomeSkipped:
		resp.Checkin.Message = "Check-in approved successfully. Attendance not processed: " + decision.Remarks
	default:
		resp.Checkin.Message = "Check-in approved and attendance processed successfully"
		resp.AttendanceStatus = string(decision.Status)
	}
	if message != "" {
		resp.Checkin.Message += ". " + message
	}

	if !timeutil.SameDay(originalDate, c.Time) {
		if _, err := s.processor.ProcessEmployeeDay(ctx, attendance.ProcessContext{Actor: actor, Date: originalDate}, c.EmployeeID); err != nil {
			slog.Error("Checkin: reprocessing the original day failed after approval", "checkin_id", c.ID, "employee_id", c.EmployeeID, "date", originalDate.Format("2006-01-02"), "error", err)
			resp.Warning = "attendance processing failed, please check the logs"
		}
	}

	s.notifyEmployee(ctx, c, notification.TypeCheckinApproved, "Check-in approved",
		fmt.Sprintf("Your %s at %s was approved", c.LogType, c.Time.Format("02 Jan 2006 03:04 PM")))
	return resp, nil
}

// overrideTime validates an approver's replacement time for c.
func (s *CheckinServiceImpl) overrideTime(ctx context.Context, c checkin.Checkin, at time.Time) (time.Time, string, error) {
	if at.After(s.now().In(s.loc).Add(futureTolerance)) {
		return at, "", checkin.ErrCheckinInTheFuture
	}

	emp, err := s.employees.GetByID(ctx, c.EmployeeID)
	if err != nil {
		return at, "", err
	}

	var message string
	if emp.IsWorker() && !emp.AtSite() {
		at, message, err = s.adjustWorkerTime(ctx, emp, c.LogType, at)
		if err != nil {
			return at, "", err
		}
	}

	exists, err := s.checkins.ExistsOnDay(ctx, emp.ID, timeutil.DateOf(at), c.LogType, c.ID)
	if err != nil {
		return at, "", fmt.Errorf("failed to check duplicate check-in: %w", err)
	}
	if exists {
		return at, "", checkin.ErrDuplicateCheckin
	}
	return at, message, nil
}

// Reject implements checkin.CheckinService.
func (s *CheckinServiceImpl) Reject(ctx context.Context, actor user.Actor, id string) (checkin.CheckinResponse, error) {
	c, err := s.decidable(ctx, actor, id)
	if err != nil {
		return checkin.CheckinResponse{}, err
	}

	if err := s.checkins.Reject(ctx, c.ID, actor.UserID, s.now()); err != nil {
		return checkin.CheckinResponse{}, fmt.Errorf("failed to reject check-in: %w", err)
	}
	c.Rejected = true

	s.notifyEmployee(ctx, c, notification.TypeCheckinRejected, "Check-in rejected",
		fmt.Sprintf("Your %s at %s was rejected", c.LogType, c.Time.Format("02 Jan 2006 03:04 PM")))
	return checkin.NewCheckinResponse(c), nil
}

// decidable loads a check-in the actor may approve or reject.
func (s *CheckinServiceImpl) decidable(ctx context.Context, actor user.Actor, id string) (checkin.Checkin, error) {
	c, err := s.checkins.GetByID(ctx, id, actor.CompanyID)
	if err != nil {
		return checkin.Checkin{}, err
	}
	c.Time = c.Time.In(s.loc)
	if !c.ApprovalRequired {
		return checkin.Checkin{}, checkin.ErrApprovalNotNeeded
	}
	if c.Approved || c.Rejected {
		return checkin.Checkin{}, checkin.ErrAlreadyDecided
	}
	if actor.IsAdmin() {
		return c, nil
	}
	if c.RequestedFrom == nil || actor.EmployeeID == "" || *c.RequestedFrom != actor.EmployeeID {
		return checkin.Checkin{}, checkin.ErrNotApprover
	}
	return c, nil
}

func (s *CheckinServiceImpl) notifyEmployee(ctx context.Context, c checkin.Checkin, kind notification.NotificationType, title, message string) {
	emp, err := s.employees.GetByID(ctx, c.EmployeeID)
	if err != nil || emp.UserID == nil {
		return
	}
	err = s.notifications.QueueNotification(ctx, notification.CreateNotificationRequest{
		CompanyID:   c.CompanyID,
		RecipientID: *emp.UserID,
		Type:        kind,
		Title:       title,
		Message:     message,
		Data:        map[string]interface{}{"checkin_id": c.ID},
	})
	if err != nil {
		slog.Error("Checkin: failed to queue notification", "checkin_id", c.ID, "type", kind, "error", err)
	}
}

// AutoCheckout implements checkin.CheckinService. A Site employee whose last
// IN today has no later OUT gets an OUT at the current time.
func (s *CheckinServiceImpl) AutoCheckout(ctx context.Context) (int, error) {
	now := s.now().In(s.loc)
	today := timeutil.DateOf(now)

	employees, err := s.employees.ListActiveByLocation(ctx, employee.LocationSite)
	if err != nil {
		return 0, fmt.Errorf("failed to list site employees: %w", err)
	}

	count := 0
	reason := autoCheckoutReason
	for _, emp := range employees {
		events, err := s.checkins.ListForDay(ctx, emp.ID, today)
		if err != nil {
			slog.Error("Cron: auto checkout failed to list check-ins", "employee_id", emp.ID, "error", err)
			continue
		}
		if !openSession(events) {
			continue
		}

		created, err := s.checkins.Create(ctx, checkin.Checkin{
			CompanyID:  emp.CompanyID,
			EmployeeID: emp.ID,
			Time:       now,
			LogType:    checkin.LogTypeOut,
			Reason:     &reason,
			Source:     checkin.SourceAuto,
		})
		if err != nil {
			slog.Error("Cron: auto checkout failed", "employee_id", emp.ID, "error", err)
			continue
		}
		count++
		slog.Info("Cron: auto checkout created", "employee_id", emp.ID)
		s.notifyEmployee(ctx, created, notification.TypeCheckinAutoCheckout, "Checked out automatically", autoCheckoutReason)
	}

	return count, nil
}

// openSession reports whether the last IN of the day has no later OUT.
func openSession(events []checkin.Checkin) bool {
	var lastIn, lastOut *time.Time
	for i := range events {
		t := events[i].Time
		switch events[i].LogType {
		case checkin.LogTypeIn:
			if lastIn == nil || t.After(*lastIn) {
				lastIn = &t
			}
		case checkin.LogTypeOut:
			if lastOut == nil || t.After(*lastOut) {
				lastOut = &t
			}
		}
	}
	return lastIn != nil && (lastOut == nil || lastIn.After(*lastOut))
}

func toResponses(events []checkin.Checkin) []checkin.CheckinResponse {
	out := make([]checkin.CheckinResponse, 0, len(events))
	for _, c := range events {
		out = append(out, checkin.NewCheckinResponse(c))
	}
	return out
}
