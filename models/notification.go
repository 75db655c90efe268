package models

type NotificationType string

const (
	NotifySuccess NotificationType = "success"
	NotifyError   NotificationType = "error"
	NotifyWarning NotificationType = "warning"
	NotifyInfo    NotificationType = "info"
)

// DefaultNotificationDuration is how long a toast stays on screen
// before the client auto-dismisses it, in milliseconds.
const DefaultNotificationDuration = 3000

// Notification is a transient, auto-dismissing toast pushed to the
// user's websocket room. Nothing here is fatal or persistent; a
// notification the user never sees is simply lost.
type Notification struct {
	ID         string           `json:"id"`
	Type       NotificationType `json:"type"`
	Title      string           `json:"title"`
	Message    string           `json:"message,omitempty"`
	DurationMS int              `json:"duration_ms"`
}
