package models

import "time"

// NotificationType grades a notification.
type NotificationType string

const (
	NotificationCritical NotificationType = "critical"
	NotificationWarning  NotificationType = "warning"
	NotificationInfo     NotificationType = "info"
	NotificationSuccess  NotificationType = "success"
)

// Notification is derived from a record snapshot and never persisted.
// IDs are deterministic so read state can be carried across derivations.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
	ActionURL string           `json:"actionUrl,omitempty"`
}
