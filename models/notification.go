package models

type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
	NotificationInfo    NotificationLevel = "info"
)

// Notification is a transient, user-visible message (a toast).
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}
