package erpsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/erpsync"
	"github.com/cmlabs-hris/ess-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/queue"
)

// MessageType tags queue messages carrying a sync queue item ID.
const MessageType = "sync_item"

const publishTimeout = 5 * time.Second

// EngineOptions tune the outbound queue.
type EngineOptions struct {
	MaxRetries int
	SweepBatch int

	// StaleAfter is how long an item may stay Processing before the sweep
	// assumes its worker died and makes it Pending again.
	StaleAfter time.Duration

	// AlertUserID receives a notification when an item fails for good. Empty disables it.
	AlertUserID    string
	AlertCompanyID string
}

type EngineImpl struct {
	peers         erpsync.PeerRepository
	items         erpsync.QueueRepository
	transport     erpsync.Transport
	dispatch      queue.Queue
	notifications notification.Service
	opts          EngineOptions
	now           func() time.Time
}

func NewEngine(
	peers erpsync.PeerRepository,
	items erpsync.QueueRepository,
	transport erpsync.Transport,
	dispatch queue.Queue,
	notifications notification.Service,
	opts EngineOptions,
) *EngineImpl {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 3
	}
	if opts.SweepBatch < 1 {
		opts.SweepBatch = 100
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = time.Minute
	}
	return &EngineImpl{
		peers:         peers,
		items:         items,
		transport:     transport,
		dispatch:      dispatch,
		notifications: notifications,
		opts:          opts,
		now:           time.Now,
	}
}

// EnqueueRecord creates a Pending item for every enabled peer that syncs docType and dispatches it.
func (e *EngineImpl) EnqueueRecord(ctx context.Context, docType erpsync.DocType, key string, action erpsync.Action, record any) ([]erpsync.QueueItem, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s %s: %w", docType, key, err)
	}

	peers, err := e.peers.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync peers: %w", err)
	}

	var created []erpsync.QueueItem
	for _, peer := range peers {
		if !peer.Syncs(docType) {
			continue
		}
		item, err := e.items.Create(ctx, erpsync.QueueItem{
			PeerID:      peer.ID,
			DocType:     docType,
			DocumentKey: key,
			Action:      action,
			Status:      erpsync.StatusPending,
			MaxRetries:  e.opts.MaxRetries,
			Payload:     payload,
		})
		if err != nil {
			return created, fmt.Errorf("failed to queue %s %s for peer %s: %w", docType, key, peer.Name, err)
		}
		metrics.SyncTransitions.WithLabelValues(string(docType), string(erpsync.StatusPending)).Inc()
		created = append(created, item)
		e.publish(ctx, item.ID)
	}
	return created, nil
}

// publish hands an item to the workers. A lost message is picked up by the next sweep.
func (e *EngineImpl) publish(ctx context.Context, itemID string) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := e.dispatch.Publish(ctx, queue.Message{Type: MessageType, Body: []byte(itemID)}); err != nil {
		slog.Warn("Sync: dispatch failed, leaving item for sweep", "item_id", itemID, "error", err)
	}
}

// Process claims a Pending item and attempts delivery once.
func (e *EngineImpl) Process(ctx context.Context, itemID string) (erpsync.QueueItem, error) {
	item, err := e.items.Claim(ctx, itemID, e.now())
	if err != nil {
		return erpsync.QueueItem{}, err
	}
	metrics.SyncTransitions.WithLabelValues(string(item.DocType), string(erpsync.StatusProcessing)).Inc()

	peer, err := e.peers.GetByID(ctx, item.PeerID)
	if err != nil {
		if errors.Is(err, erpsync.ErrPeerNotFound) {
			return e.fail(ctx, item, item.RetryCount, err.Error())
		}
		return e.attemptFailed(ctx, item, err)
	}
	if !peer.Enabled {
		return e.fail(ctx, item, item.RetryCount, erpsync.ErrPeerDisabled.Error())
	}

	if err := e.transport.Send(ctx, peer, item.DocType, item.Payload); err != nil {
		return e.attemptFailed(ctx, item, err)
	}

	at := e.now()
	if err := e.items.MarkCompleted(ctx, item.ID, at); err != nil {
		return item, fmt.Errorf("failed to complete sync item %s: %w", item.ID, err)
	}
	metrics.SyncTransitions.WithLabelValues(string(item.DocType), string(erpsync.StatusCompleted)).Inc()

	item.Status = erpsync.StatusCompleted
	item.ErrorLog = nil
	item.UpdatedAt = at
	return item, nil
}

// attemptFailed counts a failed delivery and either re-dispatches or gives up.
func (e *EngineImpl) attemptFailed(ctx context.Context, item erpsync.QueueItem, cause error) (erpsync.QueueItem, error) {
	retries := item.RetryCount + 1
	if retries >= item.MaxRetries {
		return e.fail(ctx, item, retries, cause.Error())
	}

	msg := cause.Error()
	if err := e.items.MarkFailedAttempt(ctx, item.ID, retries, erpsync.StatusPending, msg, e.now()); err != nil {
		return item, fmt.Errorf("failed to record sync attempt for %s: %w", item.ID, err)
	}
	metrics.SyncTransitions.WithLabelValues(string(item.DocType), string(erpsync.StatusPending)).Inc()
	slog.Warn("Sync: delivery failed, retrying",
		"item_id", item.ID, "doctype", item.DocType, "retry_count", retries, "error", msg)

	item.Status = erpsync.StatusPending
	item.RetryCount = retries
	item.ErrorLog = &msg
	e.publish(ctx, item.ID)
	return item, nil
}

func (e *EngineImpl) fail(ctx context.Context, item erpsync.QueueItem, retries int, msg string) (erpsync.QueueItem, error) {
	if err := e.items.MarkFailedAttempt(ctx, item.ID, retries, erpsync.StatusFailed, msg, e.now()); err != nil {
		return item, fmt.Errorf("failed to record sync failure for %s: %w", item.ID, err)
	}
	metrics.SyncTransitions.WithLabelValues(string(item.DocType), string(erpsync.StatusFailed)).Inc()
	slog.Error("Sync: item failed",
		"item_id", item.ID, "doctype", item.DocType, "document_key", item.DocumentKey, "retry_count", retries, "error", msg)

	item.Status = erpsync.StatusFailed
	item.RetryCount = retries
	item.ErrorLog = &msg
	e.alert(ctx, item)
	return item, nil
}

func (e *EngineImpl) alert(ctx context.Context, item erpsync.QueueItem) {
	if e.notifications == nil || e.opts.AlertUserID == "" {
		return
	}
	err := e.notifications.QueueNotification(ctx, notification.CreateNotificationRequest{
		CompanyID:   e.opts.AlertCompanyID,
		RecipientID: e.opts.AlertUserID,
		Type:        notification.TypeSyncFailed,
		Title:       "Sync failed",
		Message:     fmt.Sprintf("Sync of %s %s failed: %s", item.DocType, item.DocumentKey, *item.ErrorLog),
		Data: map[string]interface{}{
			"queue_item_id": item.ID,
			"peer_id":       item.PeerID,
		},
	})
	if err != nil {
		slog.Warn("Sync: failed to queue failure notification", "item_id", item.ID, "error", err)
	}
}

// Retry puts a Failed item below its retry limit back in the queue.
func (e *EngineImpl) Retry(ctx context.Context, itemID string) (erpsync.QueueItem, error) {
	item, err := e.items.GetByID(ctx, itemID)
	if err != nil {
		return erpsync.QueueItem{}, err
	}
	if !item.CanRetryManually() {
		return item, erpsync.ErrRetryNotAllowed
	}

	at := e.now()
	if err := e.items.ResetForRetry(ctx, item.ID, at); err != nil {
		return item, fmt.Errorf("failed to reset sync item %s: %w", item.ID, err)
	}
	metrics.SyncTransitions.WithLabelValues(string(item.DocType), string(erpsync.StatusPending)).Inc()

	item.Status = erpsync.StatusPending
	item.UpdatedAt = at
	e.publish(ctx, item.ID)
	return item, nil
}

// Sweep recovers stale Processing items, then re-dispatches up to SweepBatch
// Pending items.
func (e *EngineImpl) Sweep(ctx context.Context) (int, error) {
	now := e.now()
	stale, err := e.items.RequeueStale(ctx, now.Add(-e.opts.StaleAfter), now)
	if err != nil {
		return 0, fmt.Errorf("failed to requeue stale sync items: %w", err)
	}
	if stale > 0 {
		slog.Warn("Cron: requeued sync items stuck in processing", "count", stale)
	}

	items, err := e.items.ListDispatchable(ctx, e.opts.SweepBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending sync items: %w", err)
	}
	for _, item := range items {
		e.publish(ctx, item.ID)
	}
	if len(items) > 0 {
		slog.Info("Cron: queued pending sync items", "count", len(items))
	}
	return len(items), nil
}

// Run processes dispatched items until ctx is cancelled.
func (e *EngineImpl) Run(ctx context.Context) error {
	messages, err := e.dispatch.Consume(ctx)
	if err != nil {
		return fmt.Errorf("failed to consume sync queue: %w", err)
	}

	slog.Info("Sync: worker started")
	for msg := range messages {
		if msg.Type != MessageType {
			continue
		}
		id := string(msg.Body)
		if _, err := e.Process(ctx, id); err != nil {
			if errors.Is(err, erpsync.ErrNotClaimable) {
				slog.Debug("Sync: item already handled", "item_id", id)
				continue
			}
			slog.Error("Sync: failed to process item", "item_id", id, "error", err)
		}
	}
	slog.Info("Sync: worker stopped")
	return ctx.Err()
}

func (e *EngineImpl) List(ctx context.Context, filter erpsync.QueueFilter) ([]erpsync.QueueItemResponse, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	items, err := e.items.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]erpsync.QueueItemResponse, len(items))
	for i, item := range items {
		out[i] = erpsync.NewQueueItemResponse(item)
	}
	return out, nil
}
