package leave

import (
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type ApplyLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id"`
	FromDate    string `json:"from_date"`
	ToDate      string `json:"to_date"`
	HalfDay     bool   `json:"half_day"`
	Description string `json:"description"`

	from, to time.Time
}

func (r *ApplyLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{Field: "leave_type_id", Message: "leave_type_id is required"})
	}

	from, fromOK := validator.IsValidDate(r.FromDate)
	if !fromOK {
		errs = append(errs, validator.ValidationError{Field: "from_date", Message: "from_date must be in YYYY-MM-DD format"})
	}
	to, toOK := validator.IsValidDate(r.ToDate)
	if !toOK {
		errs = append(errs, validator.ValidationError{Field: "to_date", Message: "to_date must be in YYYY-MM-DD format"})
	}
	if fromOK && toOK {
		if to.Before(from) {
			errs = append(errs, validator.ValidationError{Field: "to_date", Message: "to_date must not be before from_date"})
		}
		if r.HalfDay && !to.Equal(from) {
			errs = append(errs, validator.ValidationError{Field: "half_day", Message: ErrHalfDayNotAllowed.Error()})
		}
		r.from, r.to = from, to
	}

	if len(r.Description) > 1000 {
		errs = append(errs, validator.ValidationError{Field: "description", Message: "description must not exceed 1000 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Range is set by a successful Validate.
func (r *ApplyLeaveRequest) Range() (time.Time, time.Time) {
	return r.from, r.to
}

type MyLeaveFilter struct {
	Status *ApplicationStatus
	Year   *int
}

// AutoDeductionRequest describes a late-mark leave deduction.
type AutoDeductionRequest struct {
	CompanyID   string
	EmployeeID  string
	LeaveTypeID string
	Date        time.Time
	Days        decimal.Decimal
	LateMarks   int
}

type LeaveApplicationResponse struct {
	ID            string            `json:"id"`
	EmployeeID    string            `json:"employee_id"`
	LeaveTypeID   string            `json:"leave_type_id"`
	FromDate      string            `json:"from_date"`
	ToDate        string            `json:"to_date"`
	HalfDay       bool              `json:"half_day"`
	TotalDays     string            `json:"total_days"`
	Description   string            `json:"description"`
	Status        ApplicationStatus `json:"status"`
	AutoDeduction bool              `json:"auto_deduction"`
}

type BalanceResponse struct {
	EmployeeID  string `json:"employee_id"`
	LeaveTypeID string `json:"leave_type_id"`
	AsOf        string `json:"as_of"`
	Balance     string `json:"balance"`
}

func NewLeaveApplicationResponse(a LeaveApplication) LeaveApplicationResponse {
	return LeaveApplicationResponse{
		ID:            a.ID,
		EmployeeID:    a.EmployeeID,
		LeaveTypeID:   a.LeaveTypeID,
		FromDate:      a.FromDate.Format("2006-01-02"),
		ToDate:        a.ToDate.Format("2006-01-02"),
		HalfDay:       a.HalfDay,
		TotalDays:     a.TotalDays.String(),
		Description:   a.Description,
		Status:        a.Status,
		AutoDeduction: a.AutoDeduction,
	}
}
