package checkin

import "errors"

var (
	ErrCheckinNotFound    = errors.New("check-in not found")
	ErrDuplicateCheckin   = errors.New("a check-in of this type already exists for this day")
	ErrOnLeaveToday       = errors.New("you are on leave today")
	ErrAlreadyDecided     = errors.New("check-in has already been approved or rejected")
	ErrApprovalNotNeeded  = errors.New("check-in does not require approval")
	ErrNotApprover        = errors.New("only the reporting manager or an admin can decide this check-in")
	ErrInvalidLogType     = errors.New("log_type must be IN or OUT")
	ErrCheckinInTheFuture = errors.New("check-in time cannot be in the future")
)
