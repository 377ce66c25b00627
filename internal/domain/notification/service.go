package notification

import (
	"context"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
)

// Service defines the notification service interface
type Service interface {
	// Queue notification (async processing via background workers)
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error

	GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*NotificationListResponse, error)
	MarkAsRead(ctx context.Context, userID string, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, userID string) error
	UpdatePreference(ctx context.Context, userID string, req UpdatePreferenceRequest) error

	// Subscribe streams notifications for a user until cleanup is called
	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())

	Stop()
}

// Broadcaster fans an announcement out to employees through QueueNotification
type Broadcaster interface {
	Broadcast(ctx context.Context, actor user.Actor, req BroadcastRequest) (BroadcastResponse, error)
}
