package expense

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseRepository - interface for expenses table
type ExpenseRepository interface {
	Create(ctx context.Context, e Expense) (Expense, error)
	GetByID(ctx context.Context, id string, companyID string) (Expense, error)

	// List returns one page of q ordered by most recently updated, with the total match count
	List(ctx context.Context, q ListQuery) ([]Expense, int64, error)

	Approve(ctx context.Context, id string, amountApproved decimal.Decimal, decidedBy string, at time.Time) error
	UpdateStatus(ctx context.Context, id string, status Status, decidedBy *string, at time.Time) error
	SetJournalEntry(ctx context.Context, id string, journalEntryID string, at time.Time) error
}

// JournalEntryRepository - interface for expense_journal_entries table
type JournalEntryRepository interface {
	Create(ctx context.Context, j JournalEntry) (JournalEntry, error)
	CancelByExpense(ctx context.Context, expenseID string) error
}

// ExpenseTypeRepository - interface for expense_types and the account mappings
type ExpenseTypeRepository interface {
	ListByCompany(ctx context.Context, companyID string) ([]ExpenseType, error)
	Exists(ctx context.Context, companyID, name string) (bool, error)

	// ResolveAccounts returns ErrExpenseAccountNotSet or ErrPayableAccountNotSet when a side is missing
	ResolveAccounts(ctx context.Context, companyID, expenseType, businessLine string) (Accounts, error)
}
