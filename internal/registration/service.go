// Package registration is the collaborator that owns provider account
// creation and profile updates. After a write that touches critical fields
// (bank details, WhatsApp, KTP) it hands the fresh snapshot to the fraud
// workflow; that check is explicitly non-blocking for the caller's own
// request.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mssola/useragent"

	"dupguard/internal/account/models"
	"dupguard/internal/account/store"
	id "dupguard/pkg/domain"
	derrors "dupguard/pkg/domain-errors"
	"dupguard/pkg/platform/audit"
	"dupguard/pkg/platform/sentinel"
	"dupguard/pkg/requestcontext"
)

// DuplicateChecker is the fraud workflow entry point.
type DuplicateChecker interface {
	HandleDuplicateDetection(ctx context.Context, candidate *models.Account) error
}

// NewAccount carries the fields a registration may set.
type NewAccount struct {
	Kind              models.Kind
	Name              string
	BankName          string
	BankAccountNumber string
	WhatsappNumber    string
	KtpNumber         string
}

type Service struct {
	accounts store.Store
	checker  DuplicateChecker
	logger   *slog.Logger
	audit    audit.Publisher
	now      func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

// New wires the registration service. checker may be nil only in tests that
// don't exercise the duplicate path.
func New(accounts store.Store, checker DuplicateChecker, opts ...Option) (*Service, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account store is required")
	}
	svc := &Service{
		accounts: accounts,
		checker:  checker,
		logger:   slog.New(slog.DiscardHandler),
		audit:    audit.NopPublisher{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Register creates a provider account. When the registration already carries
// critical fields the duplicate check runs immediately after the create.
func (s *Service) Register(ctx context.Context, req NewAccount) (*models.Account, error) {
	if !req.Kind.Valid() {
		return nil, derrors.New(derrors.CodeInvalidInput, "unknown provider kind")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, derrors.New(derrors.CodeInvalidInput, "name is required")
	}

	account := &models.Account{
		ID:                id.NewAccountID(),
		Kind:              req.Kind,
		Name:              strings.TrimSpace(req.Name),
		CreatedAt:         s.now(),
		IsActive:          true,
		BankName:          req.BankName,
		BankAccountNumber: req.BankAccountNumber,
		WhatsappNumber:    req.WhatsappNumber,
		KtpNumber:         req.KtpNumber,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, derrors.Wrap(err, derrors.CodeInternal, "create account")
	}

	s.audit.Emit(ctx, s.event(ctx, audit.ActionRegistrationCreated, account.ID))

	if account.HasBankDetails() || account.HasWhatsapp() || account.HasKtp() {
		s.runDuplicateCheck(ctx, account)
	}

	// Return the stored snapshot: the check may have deactivated it.
	return s.refresh(ctx, account)
}

// UpdateProfile applies a partial update. When the update touches any
// critical field the duplicate check runs against the post-update snapshot;
// a check failure is logged and never fails the user's own update.
func (s *Service) UpdateProfile(ctx context.Context, accountID id.AccountID, update store.ProfileUpdate) (*models.Account, error) {
	account, err := s.accounts.UpdateProfile(ctx, accountID, update)
	if err != nil {
		return nil, derrors.Wrap(err, storeCode(err), "update account profile")
	}

	s.audit.Emit(ctx, s.event(ctx, audit.ActionRegistrationUpdated, account.ID))

	if update.TouchesCriticalFields() {
		s.runDuplicateCheck(ctx, account)
		return s.refresh(ctx, account)
	}
	return account, nil
}

// runDuplicateCheck is the non-blocking hook: failures inside the fraud
// workflow never surface to the registrant.
func (s *Service) runDuplicateCheck(ctx context.Context, account *models.Account) {
	if s.checker == nil {
		return
	}
	if err := s.checker.HandleDuplicateDetection(ctx, account); err != nil {
		s.logger.ErrorContext(ctx, "duplicate check failed (non-blocking)",
			"account_id", account.ID.String(),
			"error", err,
		)
	}
}

func (s *Service) refresh(ctx context.Context, account *models.Account) (*models.Account, error) {
	fresh, err := s.accounts.FindByID(ctx, account.ID)
	if err != nil {
		// The write already succeeded; fall back to the pre-check snapshot.
		s.logger.WarnContext(ctx, "failed to reload account after duplicate check", "error", err)
		return account, nil
	}
	return fresh, nil
}

func (s *Service) event(ctx context.Context, action audit.Action, accountID id.AccountID) audit.Event {
	return audit.Event{
		Action:    action,
		Timestamp: s.now(),
		AccountID: accountID.String(),
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		Device:    deviceSummary(requestcontext.UserAgent(ctx)),
	}
}

// deviceSummary renders a compact browser-on-OS label for audit trails.
func deviceSummary(rawUA string) string {
	if rawUA == "" {
		return ""
	}
	ua := useragent.New(rawUA)
	name, version := ua.Browser()
	os := ua.OS()
	switch {
	case name == "" && os == "":
		return ""
	case os == "":
		return fmt.Sprintf("%s %s", name, version)
	default:
		return fmt.Sprintf("%s %s on %s", name, version, os)
	}
}

func storeCode(err error) derrors.Code {
	if errors.Is(err, sentinel.ErrNotFound) {
		return derrors.CodeNotFound
	}
	return derrors.CodeInternal
}
