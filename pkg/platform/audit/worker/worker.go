// Package worker moves audit events from the in-process channel to the
// configured sinks.
package worker

import (
	"context"
	"log/slog"

	"dupguard/pkg/platform/audit"
)

// ChannelPublisher is the in-process audit.Publisher. Emit is non-blocking:
// when the buffer is full the event is dropped and counted, never stalling
// the request path for a side channel.
type ChannelPublisher struct {
	inbox  chan audit.Event
	logger *slog.Logger
}

// NewChannelPublisher creates a publisher with the given buffer size.
func NewChannelPublisher(buffer int, logger *slog.Logger) *ChannelPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &ChannelPublisher{
		inbox:  make(chan audit.Event, buffer),
		logger: logger,
	}
}

func (p *ChannelPublisher) Emit(ctx context.Context, event audit.Event) {
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event", "action", event.Action)
	}
}

// Inbox exposes the receive side for the worker.
func (p *ChannelPublisher) Inbox() <-chan audit.Event { return p.inbox }

// Worker consumes audit events from a channel and fans them out to sinks.
// A sink failure is logged and does not stop the worker; audit is a
// best-effort side channel.
type Worker struct {
	inbox  <-chan audit.Event
	sinks  []audit.Sink
	logger *slog.Logger
}

func New(inbox <-chan audit.Event, logger *slog.Logger, sinks ...audit.Sink) *Worker {
	return &Worker{inbox: inbox, sinks: sinks, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			for _, sink := range w.sinks {
				if err := sink.Write(ctx, event); err != nil {
					w.logger.ErrorContext(ctx, "audit sink write failed",
						"action", event.Action,
						"error", err,
					)
				}
			}
		}
	}
}

// SlogSink writes audit events to the structured log. Always configured so
// events are observable even without a broker.
type SlogSink struct {
	Logger *slog.Logger
}

func (s SlogSink) Write(ctx context.Context, event audit.Event) error {
	s.Logger.InfoContext(ctx, "audit",
		"action", event.Action,
		"account_id", event.AccountID,
		"duplicate_account_id", event.DuplicateAccountID,
		"field", event.Field,
		"reason", event.Reason,
		"request_id", event.RequestID,
		"client_ip", event.ClientIP,
		"device", event.Device,
	)
	return nil
}
