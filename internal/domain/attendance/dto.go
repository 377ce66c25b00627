package attendance

import (
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
)

type AttendanceFilter struct {
	CompanyID  string  `json:"-"`
	EmployeeID *string `json:"employee_id"`
	Status     *string `json:"status"`
	From       *string `json:"from"`
	To         *string `json:"to"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.From != nil {
		if _, ok := validator.IsValidDate(*f.From); !ok {
			errs = append(errs, validator.ValidationError{Field: "from", Message: "from must be in YYYY-MM-DD format"})
		}
	}
	if f.To != nil {
		if _, ok := validator.IsValidDate(*f.To); !ok {
			errs = append(errs, validator.ValidationError{Field: "to", Message: "to must be in YYYY-MM-DD format"})
		}
	}
	if f.Status != nil {
		switch Status(*f.Status) {
		case StatusPresent, StatusAbsent, StatusHalfDay, StatusOnLeave:
		default:
			errs = append(errs, validator.ValidationError{Field: "status", Message: "invalid status"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MyAttendanceFilter struct {
	From  *string `json:"from"`
	To    *string `json:"to"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}

type ProcessRequest struct {
	Date       string  `json:"date"`
	EmployeeID *string `json:"employee_id,omitempty"`
	Force      bool    `json:"force"`

	parsedDate time.Time
}

func (r *ProcessRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date is required"})
	} else if d, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
	} else {
		r.parsedDate = d
	}
	if r.EmployeeID != nil && validator.IsEmpty(*r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must not be blank"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *ProcessRequest) ParsedDate() time.Time {
	return r.parsedDate
}

type ProcessResponse struct {
	RunID  string      `json:"run_id"`
	Status RunStatus   `json:"status"`
	Result BatchResult `json:"result"`
}

type AttendanceResponse struct {
	ID                 string  `json:"id"`
	EmployeeID         string  `json:"employee_id"`
	Date               string  `json:"date"`
	Status             Status  `json:"status"`
	LateEntry          bool    `json:"late_entry"`
	EarlyExit          bool    `json:"early_exit"`
	WorkingHours       string  `json:"working_hours"`
	Remarks            string  `json:"remarks"`
	LeaveApplicationID *string `json:"leave_application_id,omitempty"`
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}

func NewAttendanceResponse(a Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:                 a.ID,
		EmployeeID:         a.EmployeeID,
		Date:               a.Date.Format("2006-01-02"),
		Status:             a.Status,
		LateEntry:          a.LateEntry,
		EarlyExit:          a.EarlyExit,
		WorkingHours:       a.WorkingHours.StringFixed(2),
		Remarks:            a.Remarks,
		LeaveApplicationID: a.LeaveApplicationID,
	}
}
