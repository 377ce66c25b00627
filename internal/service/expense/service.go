package expense

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/expense"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/timeutil"
	"github.com/google/uuid"
)

type ExpenseServiceImpl struct {
	tx            database.Transactor
	expenses      expense.ExpenseRepository
	journals      expense.JournalEntryRepository
	types         expense.ExpenseTypeRepository
	employees     employee.EmployeeRepository
	files         storage.FileStorage
	notifications notification.Service
	loc           *time.Location
	now           func() time.Time
}

func NewExpenseService(
	tx database.Transactor,
	expenses expense.ExpenseRepository,
	journals expense.JournalEntryRepository,
	types expense.ExpenseTypeRepository,
	employees employee.EmployeeRepository,
	files storage.FileStorage,
	notifications notification.Service,
	loc *time.Location,
) *ExpenseServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	return &ExpenseServiceImpl{
		tx:            tx,
		expenses:      expenses,
		journals:      journals,
		types:         types,
		employees:     employees,
		files:         files,
		notifications: notifications,
		loc:           loc,
		now:           time.Now,
	}
}

// Create implements expense.ExpenseService. The claim is routed to the
// employee's manager, and the invoice is stored before the row is written.
func (s *ExpenseServiceImpl) Create(ctx context.Context, actor user.Actor, req expense.CreateExpenseRequest) (expense.ExpenseResponse, error) {
	if err := req.Validate(); err != nil {
		return expense.ExpenseResponse{}, err
	}
	if actor.EmployeeID == "" {
		return expense.ExpenseResponse{}, user.ErrEmployeeIDRequired
	}

	emp, err := s.employees.GetByID(ctx, actor.EmployeeID)
	if err != nil {
		return expense.ExpenseResponse{}, err
	}

	today := timeutil.DateOf(s.now().In(s.loc))
	if req.Date().After(today) {
		return expense.ExpenseResponse{}, expense.ErrExpenseDateInTheFuture
	}

	exists, err := s.types.Exists(ctx, emp.CompanyID, req.ExpenseType)
	if err != nil {
		return expense.ExpenseResponse{}, fmt.Errorf("failed to check expense type: %w", err)
	}
	if !exists {
		return expense.ExpenseResponse{}, expense.ErrExpenseTypeNotFound
	}

	var invoicePath *string
	if req.Invoice != nil {
		stored, err := s.storeInvoice(ctx, emp.ID, req.Invoice, req.InvoiceName)
		if err != nil {
			return expense.ExpenseResponse{}, err
		}
		invoicePath = &stored
	}

	var salesOrder *string
	if so := strings.TrimSpace(req.SalesOrder); so != "" {
		salesOrder = &so
	}

	created, err := s.expenses.Create(ctx, expense.Expense{
		CompanyID:          emp.CompanyID,
		EmployeeID:         emp.ID,
		EmployeeName:       emp.FullName,
		ApproverEmployeeID: emp.ReportsTo,
		DateOfEntry:        today,
		DateOfExpense:      req.Date(),
		ExpenseType:        req.ExpenseType,
		BusinessLine:       req.BusinessLine,
		SalesOrder:         salesOrder,
		Amount:             req.Amount,
		Details:            req.Details,
		Purpose:            req.Purpose,
		InvoicePath:        invoicePath,
		Status:             expense.StatusPending,
	})
	if err != nil {
		if invoicePath != nil {
			if delErr := s.files.Delete(ctx, *invoicePath); delErr != nil {
				slog.Warn("Expense: failed to remove orphaned invoice", "path", *invoicePath, "error", delErr)
			}
		}
		return expense.ExpenseResponse{}, fmt.Errorf("failed to create expense: %w", err)
	}

	if emp.ReportsTo != nil {
		if manager, err := s.employees.GetByID(ctx, *emp.ReportsTo); err == nil && manager.UserID != nil {
			s.notify(ctx, created, *manager.UserID, notification.TypeExpenseSubmitted, "Expense claim",
				fmt.Sprintf("%s claimed %s for %s", emp.FullName, created.Amount.StringFixed(2), created.ExpenseType))
		}
	}

	return expense.NewExpenseResponse(created), nil
}

// storeInvoice writes the upload to expenses/{employee}/{uuid}{ext}.
func (s *ExpenseServiceImpl) storeInvoice(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	key := path.Join("expenses", employeeID, id.String()+ext)

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	stored, err := s.files.Upload(ctx, file, key, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload invoice: %w", err)
	}
	return stored, nil
}

// Get implements expense.ExpenseService.
func (s *ExpenseServiceImpl) Get(ctx context.Context, actor user.Actor, id string) (expense.ExpenseResponse, error) {
	e, err := s.readable(ctx, actor, id)
	if err != nil {
		return expense.ExpenseResponse{}, err
	}
	return expense.NewExpenseResponse(e), nil
}

// readable loads an expense visible to the actor: its owner, its approver or an admin.
func (s *ExpenseServiceImpl) readable(ctx context.Context, actor user.Actor, id string) (expense.Expense, error) {
	e, err := s.expenses.GetByID(ctx, id, actor.CompanyID)
	if err != nil {
		return expense.Expense{}, err
	}
	if e.EmployeeID != actor.EmployeeID && !e.CanBeApprovedBy(actor.EmployeeID) && !actor.IsAdmin() {
		return expense.Expense{}, expense.ErrNotPermittedToViewExpense
	}
	return e, nil
}

// ListMy implements expense.ExpenseService.
func (s *ExpenseServiceImpl) ListMy(ctx context.Context, actor user.Actor, filter expense.ExpenseFilter) (expense.ExpenseListResponse, error) {
	if actor.EmployeeID == "" {
		return expense.ExpenseListResponse{}, user.ErrEmployeeIDRequired
	}
	employeeID := actor.EmployeeID
	return s.list(ctx, filter, expense.ListQuery{
		CompanyID:  actor.CompanyID,
		EmployeeID: &employeeID,
		Status:     filter.Status,
	})
}

// ListPending implements expense.ExpenseService.
func (s *ExpenseServiceImpl) ListPending(ctx context.Context, actor user.Actor, filter expense.ExpenseFilter) (expense.ExpenseListResponse, error) {
	if !actor.IsManager() {
		return expense.ExpenseListResponse{}, expense.ErrNotApprover
	}
	pending := expense.StatusPending
	q := expense.ListQuery{CompanyID: actor.CompanyID, Status: &pending}
	if !actor.IsAdmin() {
		approver := actor.EmployeeID
		q.ApproverEmployeeID = &approver
	}
	return s.list(ctx, filter, q)
}

func (s *ExpenseServiceImpl) list(ctx context.Context, filter expense.ExpenseFilter, q expense.ListQuery) (expense.ExpenseListResponse, error) {
	filter.Normalize()
	q.Limit = filter.Limit
	q.Offset = filter.Offset()

	rows, total, err := s.expenses.List(ctx, q)
	if err != nil {
		return expense.ExpenseListResponse{}, fmt.Errorf("failed to list expenses: %w", err)
	}

	out := make([]expense.ExpenseResponse, 0, len(rows))
	for _, e := range rows {
		out = append(out, expense.NewExpenseResponse(e))
	}
	return expense.ExpenseListResponse{Expenses: out, Page: filter.Page, Limit: filter.Limit, Total: total}, nil
}

// Approve implements expense.ExpenseService.
func (s *ExpenseServiceImpl) Approve(ctx context.Context, actor user.Actor, id string, req expense.ApproveExpenseRequest) (expense.ExpenseResponse, error) {
	if err := req.Validate(); err != nil {
		return expense.ExpenseResponse{}, err
	}

	e, err := s.decidable(ctx, actor, id)
	if err != nil {
		return expense.ExpenseResponse{}, err
	}

	decidedAt := s.now()
	if err := s.expenses.Approve(ctx, e.ID, req.AmountApproved, actor.UserID, decidedAt); err != nil {
		return expense.ExpenseResponse{}, fmt.Errorf("failed to approve expense: %w", err)
	}
	e.Status = expense.StatusApproved
	e.AmountApproved = &req.AmountApproved
	e.DecidedBy = &actor.UserID
	e.DecidedAt = &decidedAt

	s.notifyOwner(ctx, e, notification.TypeExpenseApproved, "Expense approved",
		fmt.Sprintf("Your %s claim of %s was approved for %s", e.ExpenseType, e.Amount.StringFixed(2), req.AmountApproved.StringFixed(2)))
	return expense.NewExpenseResponse(e), nil
}

// Reject implements expense.ExpenseService.
func (s *ExpenseServiceImpl) Reject(ctx context.Context, actor user.Actor, id string) (expense.ExpenseResponse, error) {
	e, err := s.decidable(ctx, actor, id)
	if err != nil {
		return expense.ExpenseResponse{}, err
	}

	decidedAt := s.now()
	if err := s.expenses.UpdateStatus(ctx, e.ID, expense.StatusRejected, &actor.UserID, decidedAt); err != nil {
		return expense.ExpenseResponse{}, fmt.Errorf("failed to reject expense: %w", err)
	}
	e.Status = expense.StatusRejected
	e.DecidedBy = &actor.UserID
	e.DecidedAt = &decidedAt

	s.notifyOwner(ctx, e, notification.TypeExpenseRejected, "Expense rejected",
		fmt.Sprintf("Your %s claim of %s was rejected", e.ExpenseType, e.Amount.StringFixed(2)))
	return expense.NewExpenseResponse(e), nil
}

// decidable loads a pending expense the actor may approve or reject.
func (s *ExpenseServiceImpl) decidable(ctx context.Context, actor user.Actor, id string) (expense.Expense, error) {
	e, err := s.expenses.GetByID(ctx, id, actor.CompanyID)
	if err != nil {
		return expense.Expense{}, err
	}
	if !actor.IsAdmin() && !e.CanBeApprovedBy(actor.EmployeeID) {
		return expense.Expense{}, expense.ErrNotApprover
	}
	switch e.Status {
	case expense.StatusPending:
		return e, nil
	case expense.StatusApproved, expense.StatusPosted:
		return expense.Expense{}, expense.ErrAlreadyApproved
	default:
		return expense.Expense{}, expense.ErrAlreadyProcessed
	}
}

// Post implements expense.ExpenseService.
func (s *ExpenseServiceImpl) Post(ctx context.Context, actor user.Actor, id string) (expense.PostExpenseResponse, error) {
	if !actor.IsAdmin() {
		return expense.PostExpenseResponse{}, user.ErrAdminPrivilegeRequired
	}

	e, err := s.expenses.GetByID(ctx, id, actor.CompanyID)
	if err != nil {
		return expense.PostExpenseResponse{}, err
	}
	switch e.Status {
	case expense.StatusApproved:
	case expense.StatusPosted:
		return expense.PostExpenseResponse{}, expense.ErrAlreadyProcessed
	default:
		return expense.PostExpenseResponse{}, expense.ErrNotApproved
	}
	if e.AmountApproved == nil || !e.AmountApproved.IsPositive() {
		return expense.PostExpenseResponse{}, expense.ErrAmountApprovedRequired
	}

	accounts, err := s.types.ResolveAccounts(ctx, e.CompanyID, e.ExpenseType, e.BusinessLine)
	if err != nil {
		return expense.PostExpenseResponse{}, err
	}

	remark := e.Details
	if remark == "" {
		remark = e.Purpose
	}

	var entry expense.JournalEntry
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		entry, err = s.journals.Create(ctx, expense.JournalEntry{
			CompanyID:      e.CompanyID,
			ExpenseID:      e.ID,
			EmployeeID:     e.EmployeeID,
			PostingDate:    e.DateOfExpense,
			ExpenseAccount: accounts.ExpenseAccount,
			PayableAccount: accounts.PayableAccount,
			Amount:         *e.AmountApproved,
			Remark:         remark,
			CreatedBy:      actor.UserID,
		})
		if err != nil {
			return fmt.Errorf("failed to create journal entry: %w", err)
		}
		return s.expenses.SetJournalEntry(ctx, e.ID, entry.ID, s.now())
	})
	if err != nil {
		return expense.PostExpenseResponse{}, err
	}

	e.Status = expense.StatusPosted
	e.JournalEntryID = &entry.ID
	return expense.PostExpenseResponse{
		Expense:      expense.NewExpenseResponse(e),
		JournalEntry: expense.NewJournalEntryResponse(entry),
	}, nil
}

// Cancel implements expense.ExpenseService. Owners may withdraw a pending
// claim; admins may cancel any live claim.
func (s *ExpenseServiceImpl) Cancel(ctx context.Context, actor user.Actor, id string) (expense.ExpenseResponse, error) {
	e, err := s.expenses.GetByID(ctx, id, actor.CompanyID)
	if err != nil {
		return expense.ExpenseResponse{}, err
	}
	if e.EmployeeID != actor.EmployeeID && !actor.IsAdmin() {
		return expense.ExpenseResponse{}, employee.ErrUnauthorized
	}
	switch e.Status {
	case expense.StatusPending:
	case expense.StatusApproved, expense.StatusPosted:
		if !actor.IsAdmin() {
			return expense.ExpenseResponse{}, expense.ErrAlreadyProcessed
		}
	default:
		return expense.ExpenseResponse{}, expense.ErrAlreadyProcessed
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.expenses.UpdateStatus(ctx, e.ID, expense.StatusCancelled, e.DecidedBy, s.now()); err != nil {
			return fmt.Errorf("failed to cancel expense: %w", err)
		}
		if e.Status != expense.StatusPosted {
			return nil
		}
		if err := s.journals.CancelByExpense(ctx, e.ID); err != nil {
			return fmt.Errorf("failed to cancel journal entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return expense.ExpenseResponse{}, err
	}

	e.Status = expense.StatusCancelled
	return expense.NewExpenseResponse(e), nil
}

// OpenInvoice implements expense.ExpenseService. It returns the stored file
// and its base name.
func (s *ExpenseServiceImpl) OpenInvoice(ctx context.Context, actor user.Actor, id string) (io.ReadCloser, string, error) {
	e, err := s.readable(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	if e.InvoicePath == nil {
		return nil, "", expense.ErrInvoiceNotFound
	}

	rc, err := s.files.Download(ctx, *e.InvoicePath)
	if err != nil {
		return nil, "", err
	}
	return rc, path.Base(*e.InvoicePath), nil
}

// ListTypes implements expense.ExpenseService.
func (s *ExpenseServiceImpl) ListTypes(ctx context.Context, actor user.Actor) ([]string, error) {
	types, err := s.types.ListByCompany(ctx, actor.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense types: %w", err)
	}
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.Name)
	}
	return names, nil
}

func (s *ExpenseServiceImpl) notifyOwner(ctx context.Context, e expense.Expense, kind notification.NotificationType, title, message string) {
	emp, err := s.employees.GetByID(ctx, e.EmployeeID)
	if err != nil || emp.UserID == nil {
		return
	}
	s.notify(ctx, e, *emp.UserID, kind, title, message)
}

func (s *ExpenseServiceImpl) notify(ctx context.Context, e expense.Expense, recipient string, kind notification.NotificationType, title, message string) {
	err := s.notifications.QueueNotification(ctx, notification.CreateNotificationRequest{
		CompanyID:   e.CompanyID,
		RecipientID: recipient,
		Type:        kind,
		Title:       title,
		Message:     message,
		Data:        map[string]interface{}{"expense_id": e.ID},
	})
	if err != nil {
		slog.Error("Expense: failed to queue notification", "expense_id", e.ID, "type", kind, "error", err)
	}
}
