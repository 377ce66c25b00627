package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/expense"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const expenseColumns = `x.id, x.company_id, x.employee_id, e.full_name, x.approver_employee_id, x.date_of_entry,
	x.date_of_expense, x.expense_type, x.business_line, x.sales_order, x.amount, x.amount_approved, x.details,
	x.purpose, x.invoice_path, x.status, x.decided_by, x.decided_at, x.journal_entry_id, x.created_at, x.updated_at`

const expenseFrom = `expenses x JOIN employees e ON e.id = x.employee_id`

type expenseRepositoryImpl struct {
	db *database.DB
}

func NewExpenseRepository(db *database.DB) expense.ExpenseRepository {
	return &expenseRepositoryImpl{db: db}
}

func scanExpense(row pgx.Row) (expense.Expense, error) {
	var x expense.Expense
	err := row.Scan(
		&x.ID, &x.CompanyID, &x.EmployeeID, &x.EmployeeName, &x.ApproverEmployeeID, &x.DateOfEntry,
		&x.DateOfExpense, &x.ExpenseType, &x.BusinessLine, &x.SalesOrder, &x.Amount, &x.AmountApproved, &x.Details,
		&x.Purpose, &x.InvoicePath, &x.Status, &x.DecidedBy, &x.DecidedAt, &x.JournalEntryID, &x.CreatedAt, &x.UpdatedAt,
	)
	return x, err
}

// Create implements expense.ExpenseRepository.
func (r *expenseRepositoryImpl) Create(ctx context.Context, x expense.Expense) (expense.Expense, error) {
	q := GetQuerier(ctx, r.db)

	if x.ID == "" {
		x.ID = newID()
	}

	query := `
		INSERT INTO expenses (
			id, company_id, employee_id, approver_employee_id, date_of_entry, date_of_expense, expense_type,
			business_line, sales_order, amount, details, purpose, invoice_path, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		x.ID, x.CompanyID, x.EmployeeID, x.ApproverEmployeeID, dateOnly(x.DateOfEntry), dateOnly(x.DateOfExpense),
		x.ExpenseType, x.BusinessLine, x.SalesOrder, x.Amount, x.Details, x.Purpose, x.InvoicePath, x.Status,
	).Scan(&x.CreatedAt, &x.UpdatedAt)
	if err != nil {
		return expense.Expense{}, fmt.Errorf("failed to create expense: %w", err)
	}

	return x, nil
}

// GetByID implements expense.ExpenseRepository.
func (r *expenseRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (expense.Expense, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + expenseColumns + ` FROM ` + expenseFrom + ` WHERE x.id = $1 AND x.company_id = $2`

	x, err := scanExpense(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return expense.Expense{}, expense.ErrExpenseNotFound
		}
		return expense.Expense{}, fmt.Errorf("failed to get expense %s: %w", id, err)
	}

	return x, nil
}

// List implements expense.ExpenseRepository.
func (r *expenseRepositoryImpl) List(ctx context.Context, lq expense.ListQuery) ([]expense.Expense, int64, error) {
	q := GetQuerier(ctx, r.db)

	whereClauses := []string{"x.company_id = $1"}
	args := []interface{}{lq.CompanyID}
	argIdx := 2

	if lq.EmployeeID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("x.employee_id = $%d", argIdx))
		args = append(args, *lq.EmployeeID)
		argIdx++
	}
	if lq.ApproverEmployeeID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("x.approver_employee_id = $%d", argIdx))
		args = append(args, *lq.ApproverEmployeeID)
		argIdx++
	}
	if lq.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("x.status = $%d", argIdx))
		args = append(args, *lq.Status)
		argIdx++
	}

	where := strings.Join(whereClauses, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM expenses x WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY x.updated_at DESC, x.id DESC
		LIMIT $%d OFFSET $%d
	`, expenseColumns, expenseFrom, where, argIdx, argIdx+1)
	args = append(args, lq.Limit, lq.Offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var out []expense.Expense
	for rows.Next() {
		x, err := scanExpense(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		out = append(out, x)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return out, total, nil
}

// Approve implements expense.ExpenseRepository.
func (r *expenseRepositoryImpl) Approve(ctx context.Context, id string, amountApproved decimal.Decimal, decidedBy string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE expenses
		SET status = $2, amount_approved = $3, decided_by = $4, decided_at = $5, updated_at = $5
		WHERE id = $1 AND status = $6
	`

	tag, err := q.Exec(ctx, query, id, expense.StatusApproved, amountApproved, decidedBy, at, expense.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to approve expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return expense.ErrAlreadyProcessed
	}
	return nil
}

// UpdateStatus implements expense.ExpenseRepository.
func (r *expenseRepositoryImpl) UpdateStatus(ctx context.Context, id string, status expense.Status, decidedBy *string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE expenses SET status = $2, decided_by = $3, decided_at = $4, updated_at = $4 WHERE id = $1`

	tag, err := q.Exec(ctx, query, id, status, decidedBy, at)
	if err != nil {
		return fmt.Errorf("failed to update expense status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return expense.ErrExpenseNotFound
	}
	return nil
}

// SetJournalEntry implements expense.ExpenseRepository. The expense moves to posted.
func (r *expenseRepositoryImpl) SetJournalEntry(ctx context.Context, id string, journalEntryID string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE expenses SET status = $2, journal_entry_id = $3, updated_at = $4
		WHERE id = $1 AND status = $5
	`

	tag, err := q.Exec(ctx, query, id, expense.StatusPosted, journalEntryID, at, expense.StatusApproved)
	if err != nil {
		return fmt.Errorf("failed to link journal entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return expense.ErrAlreadyProcessed
	}
	return nil
}

type journalEntryRepositoryImpl struct {
	db *database.DB
}

func NewJournalEntryRepository(db *database.DB) expense.JournalEntryRepository {
	return &journalEntryRepositoryImpl{db: db}
}

// Create implements expense.JournalEntryRepository.
func (r *journalEntryRepositoryImpl) Create(ctx context.Context, j expense.JournalEntry) (expense.JournalEntry, error) {
	q := GetQuerier(ctx, r.db)

	if j.ID == "" {
		j.ID = newID()
	}

	query := `
		INSERT INTO expense_journal_entries (
			id, company_id, expense_id, employee_id, posting_date, expense_account, payable_account,
			amount, remark, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		j.ID, j.CompanyID, j.ExpenseID, j.EmployeeID, dateOnly(j.PostingDate), j.ExpenseAccount, j.PayableAccount,
		j.Amount, j.Remark, j.CreatedBy,
	).Scan(&j.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return expense.JournalEntry{}, expense.ErrAlreadyProcessed
		}
		return expense.JournalEntry{}, fmt.Errorf("failed to create journal entry: %w", err)
	}

	return j, nil
}

// CancelByExpense implements expense.JournalEntryRepository.
func (r *journalEntryRepositoryImpl) CancelByExpense(ctx context.Context, expenseID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `UPDATE expense_journal_entries SET cancelled = TRUE WHERE expense_id = $1 AND NOT cancelled`, expenseID); err != nil {
		return fmt.Errorf("failed to cancel journal entries: %w", err)
	}
	return nil
}

type expenseTypeRepositoryImpl struct {
	db *database.DB
}

func NewExpenseTypeRepository(db *database.DB) expense.ExpenseTypeRepository {
	return &expenseTypeRepositoryImpl{db: db}
}

// ListByCompany implements expense.ExpenseTypeRepository.
func (r *expenseTypeRepositoryImpl) ListByCompany(ctx context.Context, companyID string) ([]expense.ExpenseType, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT company_id, name FROM expense_types WHERE company_id = $1 ORDER BY name`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense types: %w", err)
	}

	types, err := pgx.CollectRows(rows, pgx.RowToStructByPos[expense.ExpenseType])
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense types: %w", err)
	}
	return types, nil
}

// Exists implements expense.ExpenseTypeRepository.
func (r *expenseTypeRepositoryImpl) Exists(ctx context.Context, companyID, name string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM expense_types WHERE company_id = $1 AND name = $2)`, companyID, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check expense type: %w", err)
	}
	return exists, nil
}

// ResolveAccounts implements expense.ExpenseTypeRepository.
func (r *expenseTypeRepositoryImpl) ResolveAccounts(ctx context.Context, companyID, expenseType, businessLine string) (expense.Accounts, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			(SELECT expense_account FROM expense_type_accounts
			 WHERE company_id = $1 AND expense_type = $2 AND business_line = $3),
			(SELECT payroll_payable_account FROM business_lines
			 WHERE company_id = $1 AND name = $3)
	`

	var expenseAccount, payableAccount *string
	if err := q.QueryRow(ctx, query, companyID, expenseType, businessLine).Scan(&expenseAccount, &payableAccount); err != nil {
		return expense.Accounts{}, fmt.Errorf("failed to resolve expense accounts: %w", err)
	}
	if expenseAccount == nil || *expenseAccount == "" {
		return expense.Accounts{}, expense.ErrExpenseAccountNotSet
	}
	if payableAccount == nil || *payableAccount == "" {
		return expense.Accounts{}, expense.ErrPayableAccountNotSet
	}

	return expense.Accounts{ExpenseAccount: *expenseAccount, PayableAccount: *payableAccount}, nil
}
