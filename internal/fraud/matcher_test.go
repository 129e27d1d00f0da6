package fraud

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"dupguard/internal/account/models"
	"dupguard/internal/account/store"
	id "dupguard/pkg/domain"
)

// spyStore counts finder calls so tests can assert which checks ran.
type spyStore struct {
	store.Store
	bankCalls     int
	whatsappCalls int
	ktpCalls      int
}

func (s *spyStore) FindByBankDetails(ctx context.Context, bankName, accountNumber string, exclude id.AccountID) (*models.Account, error) {
	s.bankCalls++
	return s.Store.FindByBankDetails(ctx, bankName, accountNumber, exclude)
}

func (s *spyStore) FindByWhatsappFragment(ctx context.Context, fragment string, exclude id.AccountID) (*models.Account, error) {
	s.whatsappCalls++
	return s.Store.FindByWhatsappFragment(ctx, fragment, exclude)
}

func (s *spyStore) FindByKtpNumber(ctx context.Context, ktpNumber string, exclude id.AccountID) (*models.Account, error) {
	s.ktpCalls++
	return s.Store.FindByKtpNumber(ctx, ktpNumber, exclude)
}

type MatcherSuite struct {
	suite.Suite
	ctx      context.Context
	accounts *store.InMemory
	spy      *spyStore
	matcher  *Matcher
}

func (s *MatcherSuite) SetupTest() {
	s.ctx = context.Background()
	s.accounts = store.NewInMemory()
	s.spy = &spyStore{Store: s.accounts}
	s.matcher = NewMatcher(s.spy)
}

func TestMatcherSuite(t *testing.T) {
	suite.Run(t, new(MatcherSuite))
}

func (s *MatcherSuite) seed(mutate func(*models.Account)) *models.Account {
	account := &models.Account{
		ID:        id.AccountID(uuid.New()),
		Kind:      models.KindProviderIndividual,
		Name:      "Existing",
		CreatedAt: time.Now().Add(-24 * time.Hour),
		IsActive:  true,
	}
	mutate(account)
	s.Require().NoError(s.accounts.Create(s.ctx, account))
	return account
}

func (s *MatcherSuite) candidate(mutate func(*models.Account)) *models.Account {
	account := &models.Account{
		ID:        id.AccountID(uuid.New()),
		Kind:      models.KindProviderIndividual,
		Name:      "Candidate",
		CreatedAt: time.Now(),
		IsActive:  true,
	}
	mutate(account)
	return account
}

// Empty candidate fields must skip the check entirely: no false match and no
// store query issued.
func (s *MatcherSuite) TestEmptyFieldsNeverMatch() {
	s.seed(func(a *models.Account) {
		a.BankName = ""
		a.BankAccountNumber = ""
		a.WhatsappNumber = ""
		a.KtpNumber = ""
	})

	candidate := s.candidate(func(a *models.Account) {})

	s.Run("bank check skipped", func() {
		result, err := s.matcher.CheckBankDuplicate(s.ctx, candidate)
		s.Require().NoError(err)
		s.False(result.HasDuplicate)
		s.Zero(s.spy.bankCalls)
	})

	s.Run("bank check skipped with only one field set", func() {
		partial := s.candidate(func(a *models.Account) { a.BankName = "BCA" })
		result, err := s.matcher.CheckBankDuplicate(s.ctx, partial)
		s.Require().NoError(err)
		s.False(result.HasDuplicate)
		s.Zero(s.spy.bankCalls)
	})

	s.Run("whatsapp check skipped", func() {
		result, err := s.matcher.CheckWhatsappDuplicate(s.ctx, candidate)
		s.Require().NoError(err)
		s.False(result.HasDuplicate)
		s.Zero(s.spy.whatsappCalls)
	})

	s.Run("ktp check skipped", func() {
		result, err := s.matcher.CheckKtpDuplicate(s.ctx, candidate)
		s.Require().NoError(err)
		s.False(result.HasDuplicate)
		s.Zero(s.spy.ktpCalls)
	})
}

// A candidate can never be reported as a duplicate of itself.
func (s *MatcherSuite) TestSelfExclusion() {
	self := s.seed(func(a *models.Account) {
		a.BankName = "BCA"
		a.BankAccountNumber = "1234567890"
		a.WhatsappNumber = "+62 812-3456-7890"
		a.KtpNumber = "3173014567890001"
	})

	result, err := s.matcher.CheckBankDuplicate(s.ctx, self)
	s.Require().NoError(err)
	s.False(result.HasDuplicate)

	result, err = s.matcher.CheckWhatsappDuplicate(s.ctx, self)
	s.Require().NoError(err)
	s.False(result.HasDuplicate)

	result, err = s.matcher.CheckKtpDuplicate(s.ctx, self)
	s.Require().NoError(err)
	s.False(result.HasDuplicate)
}

func (s *MatcherSuite) TestBankMatching() {
	existing := s.seed(func(a *models.Account) {
		a.BankName = "BCA"
		a.BankAccountNumber = "1234567890"
	})

	s.Run("equal bank name and number match", func() {
		candidate := s.candidate(func(a *models.Account) {
			a.BankName = "BCA"
			a.BankAccountNumber = "1234567890"
		})
		result, err := s.matcher.CheckBankDuplicate(s.ctx, candidate)
		s.Require().NoError(err)
		s.True(result.HasDuplicate)
		s.Equal(FieldBank, result.Field)
		s.Equal(existing.ID, result.Matched.ID)
	})

	s.Run("same bank different number does not match", func() {
		candidate := s.candidate(func(a *models.Account) {
			a.BankName = "BCA"
			a.BankAccountNumber = "9999999999"
		})
		result, err := s.matcher.CheckBankDuplicate(s.ctx, candidate)
		s.Require().NoError(err)
		s.False(result.HasDuplicate)
	})
}

// Punctuated and bare forms of the same number must match after
// normalization.
func (s *MatcherSuite) TestWhatsappNormalizedMatching() {
	existing := s.seed(func(a *models.Account) {
		a.WhatsappNumber = "+62 812-3456-7890"
	})

	candidate := s.candidate(func(a *models.Account) {
		a.WhatsappNumber = "6281234567890"
	})
	result, err := s.matcher.CheckWhatsappDuplicate(s.ctx, candidate)
	s.Require().NoError(err)
	s.True(result.HasDuplicate)
	s.Equal(FieldWhatsapp, result.Field)
	s.Equal(existing.ID, result.Matched.ID)
}

func (s *MatcherSuite) TestKtpExactMatching() {
	existing := s.seed(func(a *models.Account) {
		a.KtpNumber = "3173014567890001"
	})

	s.Run("exact match", func() {
		candidate := s.candidate(func(a *models.Account) {
			a.KtpNumber = "3173014567890001"
		})
		result, err := s.matcher.CheckKtpDuplicate(s.ctx, candidate)
		s.Require().NoError(err)
		s.True(result.HasDuplicate)
		s.Equal(FieldKtp, result.Field)
		s.Equal(existing.ID, result.Matched.ID)
	})

	s.Run("ktp comparison is exact, not normalized", func() {
		candidate := s.candidate(func(a *models.Account) {
			a.KtpNumber = "3173-0145-6789-0001"
		})
		result, err := s.matcher.CheckKtpDuplicate(s.ctx, candidate)
		s.Require().NoError(err)
		s.False(result.HasDuplicate)
	})
}
