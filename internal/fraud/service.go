package fraud

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"dupguard/internal/account/models"
	"dupguard/internal/account/store"
	"dupguard/internal/fraud/metrics"
	nstore "dupguard/internal/notification/store"
	"dupguard/pkg/platform/audit"
	"dupguard/pkg/requestcontext"
)

// Service orchestrates the detection workflow:
//
//	CHECKING_BANK -> CHECKING_PHONE -> CHECKING_KTP
//	   (no match: DONE)
//	   (match: DECIDING -> DEACTIVATING -> NOTIFYING -> DONE)
//
// Checks run sequentially in fixed priority order and short-circuit on the
// first match; there is no aggregation of simultaneous matches. Only the
// check phase surfaces errors to the caller. Deactivation failure stops the
// workflow before notification; notification failure never affects the
// terminal state.
type Service struct {
	matcher  *Matcher
	executor *Executor
	notifier *Notifier
	guard    Guard
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    audit.Publisher
	tracer   trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

func WithGuard(g Guard) Option {
	return func(s *Service) { s.guard = g }
}

// New wires the workflow over the two stores.
func New(accounts store.Store, notifications nstore.Store, opts ...Option) (*Service, error) {
	if accounts == nil {
		return nil, errors.New("account store is required")
	}
	if notifications == nil {
		return nil, errors.New("notification store is required")
	}

	svc := &Service{
		logger: slog.New(slog.DiscardHandler),
		guard:  NopGuard{},
		audit:  audit.NopPublisher{},
		tracer: otel.Tracer("dupguard/fraud"),
	}
	for _, opt := range opts {
		opt(svc)
	}

	svc.matcher = NewMatcher(accounts)
	svc.executor = NewExecutor(accounts, svc.logger)
	svc.notifier = NewNotifier(notifications, svc.logger)
	return svc, nil
}

// HandleDuplicateDetection runs the full state machine for one candidate.
// It returns an error only when the check phase itself fails (store query
// error): an inability to verify must not pass as "verified clean".
func (s *Service) HandleDuplicateDetection(ctx context.Context, candidate *models.Account) error {
	if candidate == nil {
		return errors.New("candidate account is required")
	}

	ctx, span := s.tracer.Start(ctx, "fraud.HandleDuplicateDetection",
		trace.WithAttributes(
			attribute.String("account.id", candidate.ID.String()),
			attribute.String("account.kind", string(candidate.Kind)),
		))
	defer span.End()

	release, acquired := s.guard.Acquire(ctx, Fingerprint(candidate))
	if !acquired {
		// Another run is checking the same sensitive fields right now.
		// Treat as contention, not as clean: the caller's write already
		// happened, and the concurrent holder will see it.
		s.logger.WarnContext(ctx, "duplicate check skipped, fingerprint locked",
			"account_id", candidate.ID.String(),
		)
		if s.metrics != nil {
			s.metrics.GuardContentionTotal.Inc()
		}
		return nil
	}
	defer release()

	result, err := s.runChecks(ctx, candidate)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ObserveOutcome("error")
		}
		span.RecordError(err)
		return err
	}

	if !result.HasDuplicate {
		if s.metrics != nil {
			s.metrics.ObserveOutcome("clean")
		}
		return nil
	}

	s.observeDuplicate(ctx, candidate, result)

	// DECIDING
	result.ShouldDeactivate = Decide(candidate, result.Matched)
	if !result.ShouldDeactivate {
		// Candidate is the older (or same-age) record; this workflow takes
		// no action in that branch. Logged so operators can review the
		// still-live newer duplicate.
		s.logger.WarnContext(ctx, "duplicate found but candidate is not newer, no action taken",
			"account_id", candidate.ID.String(),
			"duplicate_account_id", result.Matched.ID.String(),
			"field", string(result.Field),
		)
		if s.metrics != nil {
			s.metrics.OlderCandidateSkipsTotal.Inc()
		}
		return nil
	}

	// DEACTIVATING: failure surfaces and the workflow stops here.
	if err := s.executor.Deactivate(ctx, candidate, result.Matched, result.Field); err != nil {
		span.RecordError(err)
		return err
	}
	if s.metrics != nil {
		s.metrics.DeactivationsTotal.Inc()
	}
	s.audit.Emit(ctx, s.event(ctx, audit.ActionAccountDeactivated, candidate, result))

	// NOTIFYING: best effort, terminal state is DONE regardless.
	if err := s.notifier.NotifyAdmin(ctx, candidate, result); err != nil {
		if s.metrics != nil {
			s.metrics.NotificationFailures.Inc()
		}
	} else {
		s.audit.Emit(ctx, s.event(ctx, audit.ActionAdminNotified, candidate, result))
	}
	return nil
}

// runChecks walks the matchers in priority order, short-circuiting on the
// first match. Each matcher is individually gated on field presence, so a
// candidate with no bank details enters directly at the phone check.
func (s *Service) runChecks(ctx context.Context, candidate *models.Account) (*CheckResult, error) {
	checks := []func(context.Context, *models.Account) (*CheckResult, error){
		s.matcher.CheckBankDuplicate,
		s.matcher.CheckWhatsappDuplicate,
		s.matcher.CheckKtpDuplicate,
	}
	for _, check := range checks {
		result, err := check(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if result.HasDuplicate {
			return result, nil
		}
	}
	return NoDuplicate(), nil
}

func (s *Service) observeDuplicate(ctx context.Context, candidate *models.Account, result *CheckResult) {
	s.logger.InfoContext(ctx, "duplicate account detected",
		"account_id", candidate.ID.String(),
		"duplicate_account_id", result.Matched.ID.String(),
		"field", string(result.Field),
	)
	if s.metrics != nil {
		s.metrics.ObserveOutcome("duplicate")
		s.metrics.ObserveDuplicate(string(result.Field))
	}
	s.audit.Emit(ctx, s.event(ctx, audit.ActionDuplicateDetected, candidate, result))
}

func (s *Service) event(ctx context.Context, action audit.Action, candidate *models.Account, result *CheckResult) audit.Event {
	event := audit.Event{
		Action:             action,
		Timestamp:          time.Now(),
		AccountID:          candidate.ID.String(),
		DuplicateAccountID: result.Matched.ID.String(),
		Field:              string(result.Field),
		RequestID:          requestcontext.RequestID(ctx),
	}
	if action == audit.ActionAccountDeactivated {
		event.Reason = DeactivationReason(result.Field, result.Matched)
	}
	if result.Field == FieldKtp && candidate.KtpNumber != "" {
		sum := sha256.Sum256([]byte(candidate.KtpNumber))
		event.KtpHash = hex.EncodeToString(sum[:])
	}
	return event
}
