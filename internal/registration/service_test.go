package registration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"dupguard/internal/account/models"
	"dupguard/internal/account/store"
	"dupguard/pkg/platform/audit"
	"dupguard/pkg/requestcontext"
)

// stubChecker records invocations and can mutate the store the way the real
// fraud workflow does.
type stubChecker struct {
	calls   int
	onCheck func(ctx context.Context, candidate *models.Account) error
}

func (c *stubChecker) HandleDuplicateDetection(ctx context.Context, candidate *models.Account) error {
	c.calls++
	if c.onCheck != nil {
		return c.onCheck(ctx, candidate)
	}
	return nil
}

type RegistrationSuite struct {
	suite.Suite
	ctx      context.Context
	accounts *store.InMemory
	checker  *stubChecker
	service  *Service
}

func (s *RegistrationSuite) SetupTest() {
	s.ctx = context.Background()
	s.accounts = store.NewInMemory()
	s.checker = &stubChecker{}

	svc, err := New(s.accounts, s.checker)
	s.Require().NoError(err)
	s.service = svc
}

func TestRegistrationSuite(t *testing.T) {
	suite.Run(t, new(RegistrationSuite))
}

func (s *RegistrationSuite) TestRegisterValidation() {
	_, err := s.service.Register(s.ctx, NewAccount{Kind: "unknown", Name: "X"})
	s.Error(err)

	_, err = s.service.Register(s.ctx, NewAccount{Kind: models.KindProviderIndividual, Name: "   "})
	s.Error(err)
}

func (s *RegistrationSuite) TestRegisterWithoutCriticalFieldsSkipsCheck() {
	account, err := s.service.Register(s.ctx, NewAccount{
		Kind: models.KindProviderPlace,
		Name: "Lotus Spa",
	})
	s.Require().NoError(err)
	s.True(account.IsActive)
	s.Zero(s.checker.calls, "no sensitive fields, no check")
}

func (s *RegistrationSuite) TestRegisterWithCriticalFieldsRunsCheck() {
	_, err := s.service.Register(s.ctx, NewAccount{
		Kind:      models.KindProviderIndividual,
		Name:      "Sari",
		KtpNumber: "3173014567890001",
	})
	s.Require().NoError(err)
	s.Equal(1, s.checker.calls)
}

// The returned snapshot reflects what the check did to the account.
func (s *RegistrationSuite) TestRegisterReturnsPostCheckSnapshot() {
	s.checker.onCheck = func(ctx context.Context, candidate *models.Account) error {
		return s.accounts.Deactivate(ctx, candidate.ID, models.Deactivation{
			Reason:            "duplicate bank details",
			LinkedDuplicateID: candidate.ID,
		})
	}

	account, err := s.service.Register(s.ctx, NewAccount{
		Kind:              models.KindProviderIndividual,
		Name:              "Sari",
		BankName:          "BCA",
		BankAccountNumber: "1234567890",
	})
	s.Require().NoError(err)
	s.False(account.IsActive)
	s.Equal("duplicate bank details", account.DeactivationReason)
}

// A check failure never fails the registrant's own request.
func (s *RegistrationSuite) TestCheckFailureIsNonBlocking() {
	s.checker.onCheck = func(context.Context, *models.Account) error {
		return errors.New("store unreachable")
	}

	account, err := s.service.Register(s.ctx, NewAccount{
		Kind:      models.KindProviderIndividual,
		Name:      "Sari",
		KtpNumber: "3173014567890001",
	})
	s.Require().NoError(err)
	s.True(account.IsActive)
}

func (s *RegistrationSuite) TestUpdateProfileTriggersCheckOnCriticalFields() {
	account, err := s.service.Register(s.ctx, NewAccount{
		Kind: models.KindProviderIndividual,
		Name: "Sari",
	})
	s.Require().NoError(err)
	s.Zero(s.checker.calls)

	number := "6281234567890"
	_, err = s.service.UpdateProfile(s.ctx, account.ID, store.ProfileUpdate{WhatsappNumber: &number})
	s.Require().NoError(err)
	s.Equal(1, s.checker.calls)
}

func (s *RegistrationSuite) TestUpdateProfileSkipsCheckOnNameOnly() {
	account, err := s.service.Register(s.ctx, NewAccount{
		Kind: models.KindProviderIndividual,
		Name: "Sari",
	})
	s.Require().NoError(err)

	name := "Sari Wellness"
	updated, err := s.service.UpdateProfile(s.ctx, account.ID, store.ProfileUpdate{Name: &name})
	s.Require().NoError(err)
	s.Equal("Sari Wellness", updated.Name)
	s.Zero(s.checker.calls, "name is not a critical field")
}

func (s *RegistrationSuite) TestUpdateProfileSeesPostUpdateSnapshot() {
	account, err := s.service.Register(s.ctx, NewAccount{
		Kind: models.KindProviderIndividual,
		Name: "Sari",
	})
	s.Require().NoError(err)

	var checked *models.Account
	s.checker.onCheck = func(_ context.Context, candidate *models.Account) error {
		checked = candidate
		return nil
	}

	ktp := "3173014567890001"
	_, err = s.service.UpdateProfile(s.ctx, account.ID, store.ProfileUpdate{KtpNumber: &ktp})
	s.Require().NoError(err)
	s.Require().NotNil(checked)
	s.Equal(ktp, checked.KtpNumber, "check runs against the post-update snapshot")
}

// capturingPublisher records emitted audit events for assertions.
type capturingPublisher struct {
	events []audit.Event
}

func (p *capturingPublisher) Emit(_ context.Context, event audit.Event) {
	p.events = append(p.events, event)
}

// Audit events carry the caller attribution the middleware stamped into the
// context: request ID, client IP, and a device summary.
func (s *RegistrationSuite) TestAuditEventsCarryCallerAttribution() {
	publisher := &capturingPublisher{}
	svc, err := New(s.accounts, s.checker, WithAuditPublisher(publisher))
	s.Require().NoError(err)

	const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	ctx := requestcontext.WithRequestID(s.ctx, "req-123")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.7", chromeUA)

	account, err := svc.Register(ctx, NewAccount{
		Kind: models.KindProviderIndividual,
		Name: "Sari",
	})
	s.Require().NoError(err)

	s.Require().Len(publisher.events, 1)
	event := publisher.events[0]
	s.Equal(audit.ActionRegistrationCreated, event.Action)
	s.Equal(account.ID.String(), event.AccountID)
	s.Equal("req-123", event.RequestID)
	s.Equal("203.0.113.7", event.ClientIP)
	s.Contains(event.Device, "Chrome")
}

func (s *RegistrationSuite) TestDeviceSummary() {
	const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	s.Contains(deviceSummary(chromeUA), "Chrome")
	s.Contains(deviceSummary(chromeUA), "on Windows")
	s.Empty(deviceSummary(""))
}
