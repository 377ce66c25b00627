package leave

import (
	"context"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

type LeaveService interface {
	Apply(ctx context.Context, actor user.Actor, req ApplyLeaveRequest) (LeaveApplicationResponse, error)
	Approve(ctx context.Context, actor user.Actor, id string) (LeaveApplicationResponse, error)
	Reject(ctx context.Context, actor user.Actor, id string) (LeaveApplicationResponse, error)
	Cancel(ctx context.Context, actor user.Actor, id string) (LeaveApplicationResponse, error)
	ListMy(ctx context.Context, actor user.Actor, filter MyLeaveFilter) ([]LeaveApplicationResponse, error)

	// GetBalance returns allocated minus approved days for the allocation covering asOf
	GetBalance(ctx context.Context, employeeID, leaveTypeID string, asOf time.Time) (decimal.Decimal, error)

	// CreateAutoDeduction stores an approved deduction for late marks, unless one already exists
	CreateAutoDeduction(ctx context.Context, req AutoDeductionRequest) (*LeaveApplication, error)
}
