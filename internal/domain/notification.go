package domain

import "time"

// NotificationType mirrors the event kind that produced the notification.
type NotificationType string

const (
	NotificationCreate NotificationType = "create"
	NotificationUpdate NotificationType = "update"
)

// Notification records a successfully delivered email. It is written only by
// the event consumer, never by a client request, and never mutated.
type Notification struct {
	ID        int64            `json:"id"`
	OrderID   int64            `json:"order_id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}
