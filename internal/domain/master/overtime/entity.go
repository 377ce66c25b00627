package overtime

import "time"

// AllowedOvertime authorizes exceptions to the shift rules for one employee-day.
type AllowedOvertime struct {
	ID                string
	CompanyID         string
	EmployeeID        string
	Date              time.Time
	OvertimeAllowed   bool
	EarlyEntryAllowed bool
	LateExitAllowed   bool
	CreatedBy         string
	CreatedAt         time.Time
}
