package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusPosted    Status = "posted"
	StatusCancelled Status = "cancelled"
)

// Expense is a claim raised by an employee against a business line.
type Expense struct {
	ID                 string
	CompanyID          string
	EmployeeID         string
	EmployeeName       string // read-only, joined from employees
	ApproverEmployeeID *string
	DateOfEntry        time.Time
	DateOfExpense      time.Time
	ExpenseType        string
	BusinessLine       string
	SalesOrder         *string
	Amount             decimal.Decimal
	AmountApproved     *decimal.Decimal
	Details            string
	Purpose            string
	InvoicePath        *string
	Status             Status
	DecidedBy          *string
	DecidedAt          *time.Time
	JournalEntryID     *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (e Expense) IsPending() bool {
	return e.Status == StatusPending
}

// CanBeApprovedBy reports whether the approver employee is the assigned manager.
func (e Expense) CanBeApprovedBy(employeeID string) bool {
	return e.ApproverEmployeeID != nil && *e.ApproverEmployeeID == employeeID
}

// JournalEntry books an approved expense: debit the expense account and
// credit the employee payable account by the approved amount.
type JournalEntry struct {
	ID             string
	CompanyID      string
	ExpenseID      string
	EmployeeID     string
	PostingDate    time.Time
	ExpenseAccount string
	PayableAccount string
	Amount         decimal.Decimal
	Remark         string
	Cancelled      bool
	CreatedBy      string
	CreatedAt      time.Time
}

// Accounts is the ledger pair an expense type and business line post to.
type Accounts struct {
	ExpenseAccount string
	PayableAccount string
}

type ExpenseType struct {
	CompanyID string
	Name      string
}
