package expense

import "errors"

var (
	ErrExpenseNotFound           = errors.New("expense not found")
	ErrExpenseTypeNotFound       = errors.New("expense type not found")
	ErrAlreadyApproved           = errors.New("expense is already approved")
	ErrAlreadyProcessed          = errors.New("expense already processed")
	ErrNotApprover               = errors.New("only the assigned manager can approve this expense")
	ErrNotApproved               = errors.New("expense cannot be submitted without manager approval")
	ErrAmountApprovedRequired    = errors.New("amount approved must be greater than zero")
	ErrExpenseAccountNotSet      = errors.New("expense account not configured for selected expense type and business line")
	ErrPayableAccountNotSet      = errors.New("payroll payable account not configured on business line")
	ErrInvoiceTypeNotAllowed     = errors.New("invoice must be a jpg, jpeg, png or pdf file")
	ErrInvoiceNotFound           = errors.New("expense has no invoice")
	ErrExpenseDateInTheFuture    = errors.New("date of expense cannot be in the future")
	ErrNotPermittedToViewExpense = errors.New("not permitted to read this expense")
)
