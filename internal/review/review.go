// Package review generates demo reviews for provider accounts on a fixed
// interval. It exists to keep demo environments lively; production runs with
// it disabled. The scheduler owns one repeating task per provider and is
// fully context-driven: no package-level state, no global ticker.
package review

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	id "dupguard/pkg/domain"
)

// Review is a demo review record.
type Review struct {
	ID        uuid.UUID
	AccountID id.AccountID
	Author    string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// Store persists generated reviews.
type Store interface {
	Append(ctx context.Context, r *Review) error
	ListByAccount(ctx context.Context, accountID id.AccountID) ([]*Review, error)
}

// InMemory implements Store with a mutex-guarded slice per account.
type InMemory struct {
	mu      sync.RWMutex
	reviews map[id.AccountID][]*Review
}

func NewInMemory() *InMemory {
	return &InMemory{reviews: make(map[id.AccountID][]*Review)}
}

func (s *InMemory) Append(_ context.Context, r *Review) error {
	if r == nil {
		return fmt.Errorf("review is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *r
	s.reviews[r.AccountID] = append(s.reviews[r.AccountID], &cp)
	return nil
}

func (s *InMemory) ListByAccount(_ context.Context, accountID id.AccountID) ([]*Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.reviews[accountID]
	out := make([]*Review, 0, len(stored))
	for _, r := range stored {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
