package expense

import (
	"context"
	"io"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
)

type ExpenseService interface {
	Create(ctx context.Context, actor user.Actor, req CreateExpenseRequest) (ExpenseResponse, error)
	Get(ctx context.Context, actor user.Actor, id string) (ExpenseResponse, error)
	ListMy(ctx context.Context, actor user.Actor, filter ExpenseFilter) (ExpenseListResponse, error)

	// ListPending returns pending expenses assigned to the actor, or all of the company for admins
	ListPending(ctx context.Context, actor user.Actor, filter ExpenseFilter) (ExpenseListResponse, error)

	Approve(ctx context.Context, actor user.Actor, id string, req ApproveExpenseRequest) (ExpenseResponse, error)
	Reject(ctx context.Context, actor user.Actor, id string) (ExpenseResponse, error)

	// Post books the journal entry of an approved expense
	Post(ctx context.Context, actor user.Actor, id string) (PostExpenseResponse, error)

	// Cancel withdraws an expense and reverses its journal entry if posted
	Cancel(ctx context.Context, actor user.Actor, id string) (ExpenseResponse, error)

	OpenInvoice(ctx context.Context, actor user.Actor, id string) (io.ReadCloser, string, error)
	ListTypes(ctx context.Context, actor user.Actor) ([]string, error)
}
