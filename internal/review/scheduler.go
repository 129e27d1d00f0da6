package review

import (
	"context"
	"log/slog"
	"sync"
	"time"

	id "dupguard/pkg/domain"
)

// Scheduler runs one repeating demo-review task per provider. Tasks are
// bounded by the context passed to Start and by Stop/StopAll; Close waits for
// all task goroutines to exit.
type Scheduler struct {
	store    Store
	gen      *Generator
	interval time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	tasks map[id.AccountID]context.CancelFunc
	wg    sync.WaitGroup
}

func NewScheduler(store Store, gen *Generator, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:    store,
		gen:      gen,
		interval: interval,
		logger:   logger,
		tasks:    make(map[id.AccountID]context.CancelFunc),
	}
}

// Start launches the repeating task for a provider. Starting an already
// scheduled provider is a no-op.
func (s *Scheduler) Start(ctx context.Context, accountID id.AccountID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, running := s.tasks[accountID]; running {
		return
	}

	taskCtx, cancel := context.WithCancel(ctx)
	s.tasks[accountID] = cancel

	s.wg.Add(1)
	go s.run(taskCtx, accountID)
}

// Stop cancels the task for one provider. Unknown providers are a no-op.
func (s *Scheduler) Stop(accountID id.AccountID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cancel, ok := s.tasks[accountID]; ok {
		cancel()
		delete(s.tasks, accountID)
	}
}

// StopAll cancels every task. The goroutines drain on Close.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for accountID, cancel := range s.tasks {
		cancel()
		delete(s.tasks, accountID)
	}
}

// Close stops everything and blocks until all task goroutines have exited.
func (s *Scheduler) Close() {
	s.StopAll()
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context, accountID id.AccountID) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			review := s.gen.Generate(accountID)
			if err := s.store.Append(ctx, review); err != nil {
				s.logger.WarnContext(ctx, "failed to store demo review",
					"account_id", accountID.String(),
					"error", err,
				)
			}
		}
	}
}
