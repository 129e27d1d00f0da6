package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"dupguard/internal/notification/models"
	id "dupguard/pkg/domain"
	"dupguard/pkg/platform/sentinel"
)

// InMemory implements Store with a mutex-guarded map.
type InMemory struct {
	mu            sync.RWMutex
	notifications map[id.NotificationID]*models.Notification
}

// NewInMemory creates an empty in-memory notification store.
func NewInMemory() *InMemory {
	return &InMemory{notifications: make(map[id.NotificationID]*models.Notification)}
}

func (s *InMemory) Create(_ context.Context, n *models.Notification) error {
	if n == nil {
		return fmt.Errorf("notification is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notifications[n.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *n
	s.notifications[n.ID] = &cp
	return nil
}

func (s *InMemory) List(_ context.Context, unreadOnly bool, limit int) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if unreadOnly && n.Read {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemory) MarkRead(_ context.Context, notificationID id.NotificationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[notificationID]
	if !ok {
		return sentinel.ErrNotFound
	}
	n.Read = true
	return nil
}
