package attendance

import "errors"

// Attendance domain errors
var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrAttendanceExists   = errors.New("an active attendance record already exists for this employee and date")
	ErrNotCancellable     = errors.New("attendance record is not active")
	ErrUnauthorized       = errors.New("unauthorized to access this attendance record")
	ErrRunAlreadyComplete = errors.New("attendance processing for this date has already completed")
	ErrRunNotFound        = errors.New("attendance processing run not found")
	ErrFutureDate         = errors.New("attendance cannot be processed for a future date")
)
