package checkin

import (
	"context"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
)

type CheckinService interface {
	// Create validates, adjusts and stores a check-in for the actor's employee
	Create(ctx context.Context, actor user.Actor, req CreateCheckinRequest) (CheckinResponse, error)

	ListMy(ctx context.Context, actor user.Actor, filter ListCheckinFilter) ([]CheckinResponse, error)
	ListPending(ctx context.Context, actor user.Actor) ([]CheckinResponse, error)

	// Approve always succeeds once the approval is stored; reprocessing problems are returned as a warning
	Approve(ctx context.Context, actor user.Actor, req ApproveCheckinRequest) (ApprovalResponse, error)
	Reject(ctx context.Context, actor user.Actor, id string) (CheckinResponse, error)

	// AutoCheckout closes open Site sessions for the day
	AutoCheckout(ctx context.Context) (int, error)
}
