package checkin

import "time"

type LogType string

const (
	LogTypeIn  LogType = "IN"
	LogTypeOut LogType = "OUT"
)

type Source string

const (
	SourceMobile Source = "mobile"
	SourceAuto   Source = "auto"
)

// Checkin is one physical check-in or check-out tap.
type Checkin struct {
	ID               string
	CompanyID        string
	EmployeeID       string
	Time             time.Time
	LogType          LogType
	ApprovalRequired bool
	Approved         bool
	Rejected         bool
	RequestedFrom    *string // manager employee ID
	ApproverUserID   *string
	ApprovedAt       *time.Time
	Reason           *string
	Latitude         *float64
	Longitude        *float64
	Location         *string
	Source           Source
	CreatedAt        time.Time
}

// PendingApproval reports whether the event still waits on a manager.
func (c Checkin) PendingApproval() bool {
	return c.ApprovalRequired && !c.Approved && !c.Rejected
}
