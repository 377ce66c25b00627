package overtime

import (
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
)

type CreateAllowedOvertimeRequest struct {
	CompanyID         string `json:"-"` // From JWT
	CreatedBy         string `json:"-"` // From JWT
	EmployeeID        string `json:"employee_id"`
	Date              string `json:"date"`
	OvertimeAllowed   bool   `json:"overtime_allowed"`
	EarlyEntryAllowed bool   `json:"early_entry_allowed"`
	LateExitAllowed   bool   `json:"late_exit_allowed"`

	parsedDate time.Time
}

func (r *CreateAllowedOvertimeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date is required"})
	} else if d, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
	} else {
		r.parsedDate = d
	}

	if !r.OvertimeAllowed && !r.EarlyEntryAllowed && !r.LateExitAllowed {
		errs = append(errs, validator.ValidationError{Field: "overtime_allowed", Message: "at least one allowance must be set"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ParsedDate is set by a successful Validate.
func (r *CreateAllowedOvertimeRequest) ParsedDate() time.Time {
	return r.parsedDate
}

type ListFilter struct {
	CompanyID  string
	EmployeeID *string
	From       *time.Time
	To         *time.Time
}

type AllowedOvertimeResponse struct {
	ID                string `json:"id"`
	EmployeeID        string `json:"employee_id"`
	Date              string `json:"date"`
	OvertimeAllowed   bool   `json:"overtime_allowed"`
	EarlyEntryAllowed bool   `json:"early_entry_allowed"`
	LateExitAllowed   bool   `json:"late_exit_allowed"`
	CreatedBy         string `json:"created_by"`
}

func NewAllowedOvertimeResponse(a AllowedOvertime) AllowedOvertimeResponse {
	return AllowedOvertimeResponse{
		ID:                a.ID,
		EmployeeID:        a.EmployeeID,
		Date:              a.Date.Format("2006-01-02"),
		OvertimeAllowed:   a.OvertimeAllowed,
		EarlyEntryAllowed: a.EarlyEntryAllowed,
		LateExitAllowed:   a.LateExitAllowed,
		CreatedBy:         a.CreatedBy,
	}
}
