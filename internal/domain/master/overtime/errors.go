package overtime

import "errors"

var (
	ErrOvertimeExists   = errors.New("an Allowed Overtime entry already exists")
	ErrOvertimeNotFound = errors.New("allowed overtime entry not found")
)
