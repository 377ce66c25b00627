package leave

import "errors"

var (
	ErrLeaveApplicationNotFound = errors.New("leave application not found")
	ErrLeaveTypeNotFound        = errors.New("leave type not found")
	ErrNoAllocation             = errors.New("no leave allocation covers this date")
	ErrInsufficientBalance      = errors.New("insufficient leave balance")
	ErrAlreadyProcessed         = errors.New("leave application already processed")
	ErrNotApprover              = errors.New("only a manager can decide leave applications")
	ErrOverlappingApplication   = errors.New("an open or approved leave application already covers these dates")
	ErrHalfDayNotAllowed        = errors.New("half day is only allowed for single-day applications")
)
