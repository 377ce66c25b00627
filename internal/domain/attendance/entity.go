package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	StatusHalfDay Status = "Half Day"
	StatusOnLeave Status = "On Leave"
)

type DocStatus string

const (
	DocStatusDraft     DocStatus = "draft"
	DocStatusSubmitted DocStatus = "submitted"
	DocStatusCancelled DocStatus = "cancelled"
)

// Attendance is the derived record of one employee-day. At most one
// non-cancelled record exists per (employee, date).
type Attendance struct {
	ID                 string
	CompanyID          string
	EmployeeID         string
	Date               time.Time
	Status             Status
	LateEntry          bool
	EarlyExit          bool
	WorkingHours       decimal.Decimal
	Remarks            string
	LeaveApplicationID *string
	DocStatus          DocStatus
	ProcessedBy        string
	CreatedAt          time.Time
	CancelledAt        *time.Time
}

// IsLateMark reports whether the day counts towards the monthly late-mark total.
func (a Attendance) IsLateMark() bool {
	return a.DocStatus == DocStatusSubmitted && (a.LateEntry || a.EarlyExit)
}

// Outcome is the result of evaluating one employee-day.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeAbsent    Outcome = "absent"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeError     Outcome = "error"
)

// Decision is what the attendance engine concluded for an employee-day.
type Decision struct {
	Outcome      Outcome
	Status       Status
	LateEntry    bool
	EarlyExit    bool
	WorkingHours decimal.Decimal
	Remarks      string
}

// Skip builds a decision that leaves the day unprocessed.
func Skip(reason string) Decision {
	return Decision{Outcome: OutcomeSkipped, WorkingHours: decimal.Zero, Remarks: reason}
}

// Absent builds an absent decision with zero hours.
func Absent(remarks string) Decision {
	return Decision{Outcome: OutcomeAbsent, Status: StatusAbsent, WorkingHours: decimal.Zero, Remarks: remarks}
}

// Present builds a present decision.
func Present(hours decimal.Decimal, remarks string) Decision {
	return Decision{Outcome: OutcomeProcessed, Status: StatusPresent, WorkingHours: hours, Remarks: remarks}
}

type RunStatus string

const (
	RunStatusProcessing RunStatus = "Processing"
	RunStatusCompleted  RunStatus = "Completed"
	RunStatusFailed     RunStatus = "Failed"
)

// ProcessingRun records a manual attendance processing request.
type ProcessingRun struct {
	ID         string
	CompanyID  string
	Date       time.Time
	EmployeeID *string
	Status     RunStatus
	Result     BatchResult
	Error      *string
	StartedBy  string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// EmployeeResult is one line of a batch processing log.
type EmployeeResult struct {
	EmployeeID string  `json:"employee_id"`
	Outcome    Outcome `json:"outcome"`
	Status     Status  `json:"status,omitempty"`
	Remarks    string  `json:"remarks,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// BatchResult counts the outcomes of a sweep over many employees.
type BatchResult struct {
	Date      string           `json:"date"`
	Total     int              `json:"total"`
	Processed int              `json:"processed"`
	Absent    int              `json:"absent"`
	Skipped   int              `json:"skipped"`
	Errors    int              `json:"errors"`
	Log       []EmployeeResult `json:"log,omitempty"`
}

// Add counts one employee result.
func (b *BatchResult) Add(r EmployeeResult) {
	b.Total++
	switch r.Outcome {
	case OutcomeProcessed:
		b.Processed++
	case OutcomeAbsent:
		b.Absent++
	case OutcomeSkipped:
		b.Skipped++
	case OutcomeError:
		b.Errors++
	}
	b.Log = append(b.Log, r)
}
