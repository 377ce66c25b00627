package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/erpsync"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const queueItemColumns = `id, peer_id, doctype, document_key, action, status, retry_count, max_retries,
	payload, last_attempt_time, error_log, created_at, updated_at`

type syncQueueRepository struct {
	db *database.DB
}

func NewSyncQueueRepository(db *database.DB) erpsync.QueueRepository {
	return &syncQueueRepository{db: db}
}

func scanQueueItem(row pgx.Row) (erpsync.QueueItem, error) {
	var (
		item    erpsync.QueueItem
		payload []byte
	)
	err := row.Scan(
		&item.ID, &item.PeerID, &item.DocType, &item.DocumentKey, &item.Action, &item.Status,
		&item.RetryCount, &item.MaxRetries, &payload, &item.LastAttemptAt, &item.ErrorLog,
		&item.CreatedAt, &item.UpdatedAt,
	)
	item.Payload = payload
	return item, err
}

func (r *syncQueueRepository) list(ctx context.Context, query string, args ...interface{}) ([]erpsync.QueueItem, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync queue: %w", err)
	}
	defer rows.Close()

	var items []erpsync.QueueItem
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync queue item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sync queue: %w", err)
	}

	return items, nil
}

// Create implements erpsync.QueueRepository.
func (r *syncQueueRepository) Create(ctx context.Context, item erpsync.QueueItem) (erpsync.QueueItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO sync_queue (id, peer_id, doctype, document_key, action, status, retry_count, max_retries, payload)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + queueItemColumns

	created, err := scanQueueItem(q.QueryRow(ctx, query,
		item.PeerID, item.DocType, item.DocumentKey, item.Action, item.Status,
		item.RetryCount, item.MaxRetries, []byte(item.Payload),
	))
	if err != nil {
		return erpsync.QueueItem{}, fmt.Errorf("failed to create sync queue item: %w", err)
	}

	return created, nil
}

// GetByID implements erpsync.QueueRepository.
func (r *syncQueueRepository) GetByID(ctx context.Context, id string) (erpsync.QueueItem, error) {
	q := GetQuerier(ctx, r.db)

	item, err := scanQueueItem(q.QueryRow(ctx, `SELECT `+queueItemColumns+` FROM sync_queue WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return erpsync.QueueItem{}, erpsync.ErrQueueItemNotFound
		}
		return erpsync.QueueItem{}, fmt.Errorf("failed to get sync queue item %s: %w", id, err)
	}

	return item, nil
}

// Claim implements erpsync.QueueRepository.
func (r *syncQueueRepository) Claim(ctx context.Context, id string, at time.Time) (erpsync.QueueItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE sync_queue
		SET status = $1, last_attempt_time = $2, updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING ` + queueItemColumns

	item, err := scanQueueItem(q.QueryRow(ctx, query, erpsync.StatusProcessing, at, id, erpsync.StatusPending))
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return erpsync.QueueItem{}, getErr
			}
			return erpsync.QueueItem{}, erpsync.ErrNotClaimable
		}
		return erpsync.QueueItem{}, fmt.Errorf("failed to claim sync queue item %s: %w", id, err)
	}

	return item, nil
}

// MarkCompleted implements erpsync.QueueRepository.
func (r *syncQueueRepository) MarkCompleted(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE sync_queue SET status = $1, error_log = NULL, updated_at = $2 WHERE id = $3`

	if _, err := q.Exec(ctx, query, erpsync.StatusCompleted, at, id); err != nil {
		return fmt.Errorf("failed to complete sync queue item %s: %w", id, err)
	}

	return nil
}

// MarkFailedAttempt implements erpsync.QueueRepository.
func (r *syncQueueRepository) MarkFailedAttempt(ctx context.Context, id string, retryCount int, status erpsync.Status, errorLog string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE sync_queue
		SET status = $1, retry_count = $2, error_log = $3, updated_at = $4
		WHERE id = $5
	`

	if _, err := q.Exec(ctx, query, status, retryCount, errorLog, at, id); err != nil {
		return fmt.Errorf("failed to record sync attempt for %s: %w", id, err)
	}

	return nil
}

// ResetForRetry implements erpsync.QueueRepository.
func (r *syncQueueRepository) ResetForRetry(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE sync_queue SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`

	tag, err := q.Exec(ctx, query, erpsync.StatusPending, at, id, erpsync.StatusFailed)
	if err != nil {
		return fmt.Errorf("failed to reset sync queue item %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return erpsync.ErrRetryNotAllowed
	}

	return nil
}

// RequeueStale implements erpsync.QueueRepository.
func (r *syncQueueRepository) RequeueStale(ctx context.Context, cutoff time.Time, at time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE sync_queue
		SET status = $1, updated_at = $2
		WHERE status = $3 AND last_attempt_time < $4
	`

	tag, err := q.Exec(ctx, query, erpsync.StatusPending, at, erpsync.StatusProcessing, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to requeue stale sync items: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// ListDispatchable implements erpsync.QueueRepository.
func (r *syncQueueRepository) ListDispatchable(ctx context.Context, limit int) ([]erpsync.QueueItem, error) {
	query := `
		SELECT ` + queueItemColumns + `
		FROM sync_queue
		WHERE status = $1 AND retry_count < max_retries
		ORDER BY created_at
		LIMIT $2
	`
	return r.list(ctx, query, erpsync.StatusPending, limit)
}

// List implements erpsync.QueueRepository.
func (r *syncQueueRepository) List(ctx context.Context, filter erpsync.QueueFilter) ([]erpsync.QueueItem, error) {
	var whereClauses []string
	var args []interface{}
	argIdx := 1

	if filter.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.DocType != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("doctype = $%d", argIdx))
		args = append(args, *filter.DocType)
		argIdx++
	}
	if filter.PeerID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("peer_id = $%d", argIdx))
		args = append(args, *filter.PeerID)
		argIdx++
	}

	where := ""
	if len(whereClauses) > 0 {
		where = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM sync_queue
		%s
		ORDER BY created_at DESC
		LIMIT $%d
	`, queueItemColumns, where, argIdx)
	args = append(args, filter.Limit)

	return r.list(ctx, query, args...)
}
