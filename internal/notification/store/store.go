// Package store persists admin notification records.
package store

import (
	"context"

	"dupguard/internal/notification/models"
	id "dupguard/pkg/domain"
)

// Store is the notification persistence contract. Records are append-only;
// MarkRead is the single permitted mutation.
type Store interface {
	Create(ctx context.Context, n *models.Notification) error
	// List returns notifications newest-first. unreadOnly filters to unread.
	List(ctx context.Context, unreadOnly bool, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, notificationID id.NotificationID) error
}
