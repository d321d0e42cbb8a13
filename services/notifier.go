package services

import (
	"sync"

	"storefront/models"

	"go.uber.org/zap"
)

// Notifier delivers transient user-visible messages.
type Notifier interface {
	Notify(level models.NotificationLevel, message string)
}

// NotificationBuffer collects notifications raised while serving one request
// so they can be returned with the response.
type NotificationBuffer struct {
	mu    sync.Mutex
	items []models.Notification
}

func NewNotificationBuffer() *NotificationBuffer {
	return &NotificationBuffer{}
}

func (b *NotificationBuffer) Notify(level models.NotificationLevel, message string) {
	zap.L().Debug("notification", zap.String("level", string(level)), zap.String("message", message))

	b.mu.Lock()
	b.items = append(b.items, models.Notification{Level: level, Message: message})
	b.mu.Unlock()
}

// Items returns the notifications collected so far, never nil.
func (b *NotificationBuffer) Items() []models.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Notification, len(b.items))
	copy(out, b.items)
	return out
}

type discardNotifier struct{}

func (discardNotifier) Notify(models.NotificationLevel, string) {}
