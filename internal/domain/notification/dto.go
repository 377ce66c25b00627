package notification

import (
	"time"

	"github.com/cmlabs-hris/ess-backend-go/internal/pkg/validator"
)

// CreateNotificationRequest represents a request to create a notification
type CreateNotificationRequest struct {
	CompanyID   string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
}

// MarkAsReadRequest represents a request to mark notifications as read
type MarkAsReadRequest struct {
	NotificationIDs []string `json:"notification_ids"`
}

func (r *MarkAsReadRequest) Validate() error {
	if len(r.NotificationIDs) == 0 {
		return validator.ValidationErrors{{Field: "notification_ids", Message: "at least one notification id is required"}}
	}
	return nil
}

// UpdatePreferenceRequest represents a request to update notification preference
type UpdatePreferenceRequest struct {
	NotificationType NotificationType `json:"notification_type"`
	PushEnabled      bool             `json:"push_enabled"`
}

func (r *UpdatePreferenceRequest) Validate() error {
	for _, t := range AllNotificationTypes() {
		if t == r.NotificationType {
			return nil
		}
	}
	return validator.ValidationErrors{{Field: "notification_type", Message: ErrInvalidNotificationType.Error()}}
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        string                 `json:"id"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	IsRead    bool                   `json:"is_read"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NotificationListResponse represents a paginated list of notifications
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
	UnreadCount   int                    `json:"unread_count"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
}

// SSETokenResponse represents the SSE token response
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// SSEEvent represents a Server-Sent Event
type SSEEvent struct {
	Event string               `json:"event"`
	Data  NotificationResponse `json:"data"`
}

// BroadcastTarget selects who receives a broadcast.
type BroadcastTarget string

const (
	BroadcastSingleUser    BroadcastTarget = "single_user"
	BroadcastMultipleUsers BroadcastTarget = "multiple_users"
	BroadcastAllUsers      BroadcastTarget = "all_users"
	BroadcastLocation      BroadcastTarget = "location"
)

// BroadcastRequest is an admin announcement to a group of employees.
type BroadcastRequest struct {
	Title       string          `json:"title"`
	Message     string          `json:"message"`
	SendFor     BroadcastTarget `json:"send_for"`
	EmployeeIDs []string        `json:"employee_ids"`
	Location    string          `json:"location"`
}

func (r *BroadcastRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "title is required"})
	} else if len(r.Title) > 140 {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "title must not exceed 140 characters"})
	}
	if validator.IsEmpty(r.Message) {
		errs = append(errs, validator.ValidationError{Field: "message", Message: "message is required"})
	} else if len(r.Message) > 1000 {
		errs = append(errs, validator.ValidationError{Field: "message", Message: "message must not exceed 1000 characters"})
	}

	switch r.SendFor {
	case BroadcastSingleUser:
		if len(r.EmployeeIDs) != 1 {
			errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "exactly one employee id is required"})
		}
	case BroadcastMultipleUsers:
		if len(r.EmployeeIDs) == 0 {
			errs = append(errs, validator.ValidationError{Field: "employee_ids", Message: "at least one employee id is required"})
		}
	case BroadcastLocation:
		if validator.IsEmpty(r.Location) {
			errs = append(errs, validator.ValidationError{Field: "location", Message: "location is required"})
		}
	case BroadcastAllUsers:
	default:
		errs = append(errs, validator.ValidationError{Field: "send_for", Message: "send_for must be one of single_user, multiple_users, all_users, location"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BroadcastResponse struct {
	Queued  int `json:"queued"`
	Skipped int `json:"skipped"`
}
