package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const notificationColumns = `id, company_id, recipient_id, sender_id, type, title, message, data, is_read, read_at, created_at`

// notificationColumnCount is the number of placeholders per row in CreateBatch.
const notificationColumnCount = 10

type notificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

func notificationArgs(n *notification.Notification) ([]interface{}, error) {
	if n.ID == "" {
		n.ID = newID()
	}
	dataJSON, err := json.Marshal(n.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification data: %w", err)
	}
	return []interface{}{
		n.ID,
		nullString(n.CompanyID),
		n.RecipientID,
		n.SenderID,
		string(n.Type),
		n.Title,
		n.Message,
		dataJSON,
		n.IsRead,
		n.CreatedAt,
	}, nil
}

// Create creates a new notification
func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	q := GetQuerier(ctx, r.db)

	args, err := notificationArgs(n)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO notifications (id, company_id, recipient_id, sender_id, type, title, message, data, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// CreateBatch inserts all notifications with one multi-row statement
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	valueStrings := make([]string, 0, len(notifications))
	valueArgs := make([]interface{}, 0, len(notifications)*notificationColumnCount)

	for i, n := range notifications {
		args, err := notificationArgs(n)
		if err != nil {
			return err
		}

		base := i * notificationColumnCount
		placeholders := make([]string, notificationColumnCount)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ", ")+")")
		valueArgs = append(valueArgs, args...)
	}

	query := fmt.Sprintf(`
		INSERT INTO notifications (id, company_id, recipient_id, sender_id, type, title, message, data, is_read, created_at)
		VALUES %s
	`, strings.Join(valueStrings, ", "))

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to batch create notifications: %w", err)
	}

	return nil
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var (
		n         notification.Notification
		companyID *string
		dataJSON  []byte
		notifType string
	)

	if err := row.Scan(
		&n.ID,
		&companyID,
		&n.RecipientID,
		&n.SenderID,
		&notifType,
		&n.Title,
		&n.Message,
		&dataJSON,
		&n.IsRead,
		&n.ReadAt,
		&n.CreatedAt,
	); err != nil {
		return nil, err
	}

	if companyID != nil {
		n.CompanyID = *companyID
	}
	n.Type = notification.NotificationType(notifType)
	if dataJSON != nil {
		if err := json.Unmarshal(dataJSON, &n.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification data: %w", err)
		}
	}

	return &n, nil
}

// GetByUserID retrieves notifications for a user with pagination
func (r *notificationRepository) GetByUserID(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	q := GetQuerier(ctx, r.db)

	offset := (page - 1) * pageSize

	whereClause := "recipient_id = $1"
	args := []interface{}{userID}
	argIndex := 2

	if unreadOnly {
		whereClause += " AND is_read = false"
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM notifications WHERE %s", whereClause)
	var total int
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM notifications
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, notificationColumns, whereClause, argIndex, argIndex+1)

	args = append(args, pageSize, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, total, nil
}

// GetUnreadCount returns the count of unread notifications for a user
func (r *notificationRepository) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = false`
	var count int
	if err := q.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// MarkAsRead marks specific notifications as read
func (r *notificationRepository) MarkAsRead(ctx context.Context, ids []string, userID string) error {
	if len(ids) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids)+2)
	args[0] = time.Now()
	args[1] = userID

	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+3)
		args[i+2] = id
	}

	query := fmt.Sprintf(`
		UPDATE notifications
		SET is_read = true, read_at = $1
		WHERE recipient_id = $2 AND id IN (%s)
	`, strings.Join(placeholders, ", "))

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}

	return nil
}

// MarkAllAsRead marks all notifications as read for a user
func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notifications
		SET is_read = true, read_at = $1
		WHERE recipient_id = $2 AND is_read = false
	`

	if _, err := q.Exec(ctx, query, time.Now(), userID); err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}

	return nil
}

// UpsertPreference creates or updates a notification preference
func (r *notificationRepository) UpsertPreference(ctx context.Context, pref *notification.NotificationPreference) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO notification_preferences (user_id, notification_type, push_enabled, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, notification_type)
		DO UPDATE SET push_enabled = EXCLUDED.push_enabled, updated_at = EXCLUDED.updated_at
	`

	pref.UpdatedAt = time.Now()
	_, err := q.Exec(ctx, query,
		pref.UserID,
		string(pref.NotificationType),
		pref.PushEnabled,
		pref.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert preference: %w", err)
	}

	return nil
}

// IsNotificationEnabled checks if push notifications are enabled for a user and type
func (r *notificationRepository) IsNotificationEnabled(ctx context.Context, userID string, notifType notification.NotificationType) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT push_enabled
		FROM notification_preferences
		WHERE user_id = $1 AND notification_type = $2
	`

	var enabled bool
	err := q.QueryRow(ctx, query, userID, string(notifType)).Scan(&enabled)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Default to enabled if no preference exists
			return true, nil
		}
		return false, fmt.Errorf("failed to check notification enabled: %w", err)
	}

	return enabled, nil
}
