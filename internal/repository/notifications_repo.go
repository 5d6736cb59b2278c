package repository

import (
	"context"

	"school-inventory/internal/domain"
)

// NotificationRepository stores per-user inbox rows and notification
// settings.
type NotificationRepository interface {
	InsertNotifications(ctx context.Context, rows []*domain.Notification) error
	ListNotifications(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error

	// ListRecipients returns the user ids whose settings have the given
	// preference enabled.
	ListRecipients(ctx context.Context, pref domain.NotificationPreference) ([]string, error)

	GetSettings(ctx context.Context, userID string) (*domain.NotificationSettings, error)
	UpsertSettings(ctx context.Context, s *domain.NotificationSettings) error
}
