package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeaveType entity
type LeaveType struct {
	ID           string
	CompanyID    string
	Name         string
	AllowHalfDay bool
	IsActive     bool
}

// LeaveAllocation grants days of a leave type over a period.
type LeaveAllocation struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string
	FromDate    time.Time
	ToDate      time.Time
	Allocated   decimal.Decimal
}

type ApplicationStatus string

const (
	StatusOpen      ApplicationStatus = "open"
	StatusApproved  ApplicationStatus = "approved"
	StatusRejected  ApplicationStatus = "rejected"
	StatusCancelled ApplicationStatus = "cancelled"
)

// AutoDeductionMarker prefixes the description of leave created for late marks.
const AutoDeductionMarker = "Auto-deducted"

// LeaveApplication entity
type LeaveApplication struct {
	ID             string
	CompanyID      string
	EmployeeID     string
	LeaveTypeID    string
	FromDate       time.Time
	ToDate         time.Time
	HalfDay        bool
	TotalDays      decimal.Decimal
	Description    string
	Status         ApplicationStatus
	AutoDeduction  bool
	ApproverUserID *string
	DecidedAt      *time.Time
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsOpen reports whether the application still waits on a decision.
func (a LeaveApplication) IsOpen() bool {
	return a.Status == StatusOpen
}

// Days lists the calendar days the application covers.
func (a LeaveApplication) Days() []time.Time {
	var days []time.Time
	for d := a.FromDate; !d.After(a.ToDate); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// CountDays returns the leave days between from and to inclusive.
func CountDays(from, to time.Time, halfDay bool) decimal.Decimal {
	if halfDay {
		return decimal.NewFromFloat(0.5)
	}
	days := int64(to.Sub(from).Hours()/24) + 1
	return decimal.NewFromInt(days)
}
