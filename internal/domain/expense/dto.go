package expense

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// InvoiceExtensions lists the accepted invoice upload types.
var InvoiceExtensions = []string{".jpg", ".jpeg", ".png", ".pdf"}

type CreateExpenseRequest struct {
	DateOfExpense string          `json:"date_of_expense"`
	ExpenseType   string          `json:"expense_type"`
	BusinessLine  string          `json:"business_line"`
	SalesOrder    string          `json:"sales_order"`
	Amount        decimal.Decimal `json:"amount"`
	Details       string          `json:"details_of_expense"`
	Purpose       string          `json:"purpose"`

	// Invoice is optional; InvoiceName carries the uploaded file name
	Invoice     io.Reader `json:"-"`
	InvoiceName string    `json:"-"`

	date time.Time
}

func (r *CreateExpenseRequest) Validate() error {
	var errs validator.ValidationErrors

	date, ok := validator.IsValidDate(r.DateOfExpense)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "date_of_expense", Message: "date_of_expense must be in YYYY-MM-DD format"})
	}
	r.date = date

	if validator.IsEmpty(r.ExpenseType) {
		errs = append(errs, validator.ValidationError{Field: "expense_type", Message: "expense_type is required"})
	}
	if validator.IsEmpty(r.BusinessLine) {
		errs = append(errs, validator.ValidationError{Field: "business_line", Message: "business_line is required"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "amount must be greater than zero"})
	}
	if len(r.Details) > 1000 {
		errs = append(errs, validator.ValidationError{Field: "details_of_expense", Message: "details_of_expense must not exceed 1000 characters"})
	}
	if len(r.Purpose) > 500 {
		errs = append(errs, validator.ValidationError{Field: "purpose", Message: "purpose must not exceed 500 characters"})
	}
	if r.Invoice != nil && !validator.IsInSlice(strings.ToLower(filepath.Ext(r.InvoiceName)), InvoiceExtensions) {
		errs = append(errs, validator.ValidationError{Field: "invoice", Message: ErrInvoiceTypeNotAllowed.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Date is set by a successful Validate.
func (r *CreateExpenseRequest) Date() time.Time {
	return r.date
}

type ApproveExpenseRequest struct {
	AmountApproved decimal.Decimal `json:"amount_approved"`
}

func (r *ApproveExpenseRequest) Validate() error {
	if !r.AmountApproved.IsPositive() {
		return validator.ValidationErrors{{Field: "amount_approved", Message: ErrAmountApprovedRequired.Error()}}
	}
	return nil
}

type ExpenseFilter struct {
	Status *Status
	Page   int
	Limit  int
}

// Normalize clamps paging to page >= 1 and 1 <= limit <= 100, defaulting limit to 10.
func (f *ExpenseFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
}

func (f ExpenseFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// ListQuery scopes a repository listing. Nil pointers do not filter.
type ListQuery struct {
	CompanyID          string
	EmployeeID         *string
	ApproverEmployeeID *string
	Status             *Status
	Limit              int
	Offset             int
}

type ExpenseResponse struct {
	ID             string  `json:"id"`
	EmployeeID     string  `json:"sent_by"`
	EmployeeName   string  `json:"employee_name,omitempty"`
	DateOfEntry    string  `json:"date_of_entry"`
	DateOfExpense  string  `json:"date_of_expense"`
	ExpenseType    string  `json:"expense_type"`
	BusinessLine   string  `json:"business_line"`
	SalesOrder     *string `json:"sales_order,omitempty"`
	Amount         string  `json:"amount"`
	AmountApproved *string `json:"amount_approved,omitempty"`
	Details        string  `json:"details_of_expense"`
	Purpose        string  `json:"purpose"`
	HasInvoice     bool    `json:"has_invoice"`
	Status         Status  `json:"status"`
	JournalEntryID *string `json:"journal_entry_id,omitempty"`
}

type ExpenseListResponse struct {
	Expenses []ExpenseResponse
	Page     int
	Limit    int
	Total    int64
}

// TotalPages rounds up Total over Limit.
func (r ExpenseListResponse) TotalPages() int {
	if r.Limit == 0 {
		return 0
	}
	return int((r.Total + int64(r.Limit) - 1) / int64(r.Limit))
}

type JournalEntryResponse struct {
	ID             string `json:"id"`
	ExpenseID      string `json:"expense_id"`
	PostingDate    string `json:"posting_date"`
	ExpenseAccount string `json:"expense_account"`
	PayableAccount string `json:"payable_account"`
	Amount         string `json:"amount"`
	Remark         string `json:"remark"`
}

type PostExpenseResponse struct {
	Expense      ExpenseResponse      `json:"expense"`
	JournalEntry JournalEntryResponse `json:"journal_entry"`
}

func NewExpenseResponse(e Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ID:             e.ID,
		EmployeeID:     e.EmployeeID,
		EmployeeName:   e.EmployeeName,
		DateOfEntry:    e.DateOfEntry.Format("2006-01-02"),
		DateOfExpense:  e.DateOfExpense.Format("2006-01-02"),
		ExpenseType:    e.ExpenseType,
		BusinessLine:   e.BusinessLine,
		SalesOrder:     e.SalesOrder,
		Amount:         e.Amount.StringFixed(2),
		Details:        e.Details,
		Purpose:        e.Purpose,
		HasInvoice:     e.InvoicePath != nil,
		Status:         e.Status,
		JournalEntryID: e.JournalEntryID,
	}
	if e.AmountApproved != nil {
		approved := e.AmountApproved.StringFixed(2)
		resp.AmountApproved = &approved
	}
	return resp
}

func NewJournalEntryResponse(j JournalEntry) JournalEntryResponse {
	return JournalEntryResponse{
		ID:             j.ID,
		ExpenseID:      j.ExpenseID,
		PostingDate:    j.PostingDate.Format("2006-01-02"),
		ExpenseAccount: j.ExpenseAccount,
		PayableAccount: j.PayableAccount,
		Amount:         j.Amount.StringFixed(2),
		Remark:         j.Remark,
	}
}
