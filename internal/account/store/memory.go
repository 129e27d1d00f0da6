package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"dupguard/internal/account/models"
	id "dupguard/pkg/domain"
	"dupguard/pkg/phone"
	"dupguard/pkg/platform/sentinel"
)

// InMemory implements Store with a mutex-guarded map. Records are copied on
// the way in and out so callers never alias store state.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[id.AccountID]*models.Account
}

// NewInMemory creates an empty in-memory account store.
func NewInMemory() *InMemory {
	return &InMemory{accounts: make(map[id.AccountID]*models.Account)}
}

func (s *InMemory) Create(_ context.Context, account *models.Account) error {
	if account == nil {
		return fmt.Errorf("account is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *account
	s.accounts[account.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, accountID id.AccountID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *account
	return &cp, nil
}

func (s *InMemory) UpdateProfile(_ context.Context, accountID id.AccountID, update ProfileUpdate) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if update.Name != nil {
		account.Name = *update.Name
	}
	if update.BankName != nil {
		account.BankName = *update.BankName
	}
	if update.BankAccountNumber != nil {
		account.BankAccountNumber = *update.BankAccountNumber
	}
	if update.WhatsappNumber != nil {
		account.WhatsappNumber = *update.WhatsappNumber
	}
	if update.KtpNumber != nil {
		account.KtpNumber = *update.KtpNumber
	}
	cp := *account
	return &cp, nil
}

func (s *InMemory) FindByBankDetails(_ context.Context, bankName, accountNumber string, exclude id.AccountID) (*models.Account, error) {
	return s.findFirst(exclude, func(a *models.Account) bool {
		return a.BankName == bankName && a.BankAccountNumber == accountNumber
	})
}

func (s *InMemory) FindByWhatsappFragment(_ context.Context, fragment string, exclude id.AccountID) (*models.Account, error) {
	return s.findFirst(exclude, func(a *models.Account) bool {
		return a.WhatsappNumber != "" && strings.Contains(phone.Normalize(a.WhatsappNumber), fragment)
	})
}

func (s *InMemory) FindByKtpNumber(_ context.Context, ktpNumber string, exclude id.AccountID) (*models.Account, error) {
	return s.findFirst(exclude, func(a *models.Account) bool {
		return a.KtpNumber == ktpNumber
	})
}

// findFirst scans accounts in creation order so "first match" is stable
// across runs, mirroring the created-at ordering the Postgres store queries
// with.
func (s *InMemory) findFirst(exclude id.AccountID, match func(*models.Account) bool) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := make([]*models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		ordered = append(ordered, a)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	for _, a := range ordered {
		if a.ID == exclude {
			continue
		}
		if match(a) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *InMemory) Deactivate(_ context.Context, accountID id.AccountID, d models.Deactivation) error {
	if d.Reason == "" {
		return fmt.Errorf("deactivation reason is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return sentinel.ErrNotFound
	}
	linked := d.LinkedDuplicateID
	account.IsActive = false
	account.DeactivationReason = d.Reason
	account.FlaggedForReview = true
	account.LinkedDuplicateID = &linked
	return nil
}

func (s *InMemory) FlagForReview(_ context.Context, accountID id.AccountID, linked id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return sentinel.ErrNotFound
	}
	account.FlaggedForReview = true
	account.LinkedDuplicateID = &linked
	return nil
}
