package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrUnauthorized     = errors.New("unauthorized to access this employee")
	ErrNoManager        = errors.New("employee has no reporting manager")
)
