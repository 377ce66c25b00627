package erpsync

import (
	"context"
	"time"
)

type PeerRepository interface {
	Create(ctx context.Context, p Peer) (Peer, error)
	Update(ctx context.Context, p Peer) (Peer, error)
	GetByID(ctx context.Context, id string) (Peer, error)
	GetByInboundKey(ctx context.Context, key string) (Peer, error)
	List(ctx context.Context) ([]Peer, error)
	ListEnabled(ctx context.Context) ([]Peer, error)
	TouchLastPull(ctx context.Context, id string, at time.Time) error
}

type QueueRepository interface {
	Create(ctx context.Context, item QueueItem) (QueueItem, error)
	GetByID(ctx context.Context, id string) (QueueItem, error)

	// Claim moves a Pending item to Processing and stamps last_attempt_time.
	// It returns ErrNotClaimable when the item is in any other state.
	Claim(ctx context.Context, id string, at time.Time) (QueueItem, error)

	MarkCompleted(ctx context.Context, id string, at time.Time) error

	// MarkFailedAttempt stores the new retry count and error with the resulting status
	MarkFailedAttempt(ctx context.Context, id string, retryCount int, status Status, errorLog string, at time.Time) error

	// ResetForRetry puts a Failed item back to Pending
	ResetForRetry(ctx context.Context, id string, at time.Time) error

	// RequeueStale puts Processing items last attempted before cutoff back to Pending
	RequeueStale(ctx context.Context, cutoff time.Time, at time.Time) (int, error)

	// ListDispatchable returns Pending items below max retries, oldest first
	ListDispatchable(ctx context.Context, limit int) ([]QueueItem, error)

	List(ctx context.Context, filter QueueFilter) ([]QueueItem, error)
}

// RecordRepository stores synced records, upserting by business key.
// The upserts report whether a new row was inserted.
type RecordRepository interface {
	UpsertEmployeePull(ctx context.Context, e EmployeePull) (EmployeePull, bool, error)
	UpsertSalesOrderPull(ctx context.Context, s SalesOrderPull) (SalesOrderPull, bool, error)
	UpsertLeaderLocation(ctx context.Context, l LeaderLocation) (LeaderLocation, bool, error)

	// GetEmployeePull returns ErrLeaderNotFound when no record exists
	GetEmployeePull(ctx context.Context, employee, company string) (EmployeePull, error)
	ListEmployeePulls(ctx context.Context, origin string) ([]EmployeePull, error)
	ListSalesOrderPulls(ctx context.Context, origin string) ([]SalesOrderPull, error)
}
