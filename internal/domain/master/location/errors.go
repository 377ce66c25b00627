package location

import "errors"

var (
	ErrShiftConfigNotFound = errors.New("location shift configuration not found")
	ErrInvalidShiftWindow  = errors.New("shift end must be after shift start")
)
