package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeCheckinApprovalRequested NotificationType = "checkin_approval_requested"
	TypeCheckinApproved          NotificationType = "checkin_approved"
	TypeCheckinRejected          NotificationType = "checkin_rejected"
	TypeCheckinAutoCheckout      NotificationType = "checkin_auto_checkout"
	TypeLeaveRequest             NotificationType = "leave_request"
	TypeLeaveApproved            NotificationType = "leave_approved"
	TypeLeaveRejected            NotificationType = "leave_rejected"
	TypeLeaveAutoDeducted        NotificationType = "leave_auto_deducted"
	TypeExpenseSubmitted         NotificationType = "expense_submitted"
	TypeExpenseApproved          NotificationType = "expense_approved"
	TypeExpenseRejected          NotificationType = "expense_rejected"
	TypeSyncFailed               NotificationType = "sync_failed"
	TypeBroadcast                NotificationType = "broadcast"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeCheckinApprovalRequested,
		TypeCheckinApproved,
		TypeCheckinRejected,
		TypeCheckinAutoCheckout,
		TypeLeaveRequest,
		TypeLeaveApproved,
		TypeLeaveRejected,
		TypeLeaveAutoDeducted,
		TypeExpenseSubmitted,
		TypeExpenseApproved,
		TypeExpenseRejected,
		TypeSyncFailed,
		TypeBroadcast,
	}
}

// Notification represents a notification entity
type Notification struct {
	ID          string
	CompanyID   string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// NotificationPreference represents user preference for a notification type
type NotificationPreference struct {
	UserID           string
	NotificationType NotificationType
	PushEnabled      bool
	UpdatedAt        time.Time
}
