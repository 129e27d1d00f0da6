package fraud

import (
	"context"
	"fmt"

	"dupguard/internal/account/models"
	"dupguard/internal/account/store"
	"dupguard/pkg/phone"
)

// Matcher runs the three duplicate checks against the account store. Each
// check is a pure read: it is gated on the candidate's relevant fields being
// populated (empty-vs-empty must never match), excludes the candidate's own
// id, and propagates store failures unchanged. An inability to verify is
// never treated as "verified clean".
type Matcher struct {
	accounts store.Store
}

// NewMatcher builds a matcher over the given account store.
func NewMatcher(accounts store.Store) *Matcher {
	return &Matcher{accounts: accounts}
}

// CheckBankDuplicate matches on exactly equal bank name AND account number.
// Skipped unless both candidate fields are populated.
func (m *Matcher) CheckBankDuplicate(ctx context.Context, candidate *models.Account) (*CheckResult, error) {
	if !candidate.HasBankDetails() {
		return NoDuplicate(), nil
	}
	matched, err := m.accounts.FindByBankDetails(ctx, candidate.BankName, candidate.BankAccountNumber, candidate.ID)
	if err != nil {
		return nil, fmt.Errorf("bank duplicate check: %w", err)
	}
	if matched == nil {
		return NoDuplicate(), nil
	}
	return duplicateOf(FieldBank, matched), nil
}

// CheckWhatsappDuplicate normalizes the candidate's phone and matches
// records whose normalized phone contains it.
func (m *Matcher) CheckWhatsappDuplicate(ctx context.Context, candidate *models.Account) (*CheckResult, error) {
	if !candidate.HasWhatsapp() {
		return NoDuplicate(), nil
	}
	fragment := phone.Normalize(candidate.WhatsappNumber)
	if fragment == "" {
		return NoDuplicate(), nil
	}
	matched, err := m.accounts.FindByWhatsappFragment(ctx, fragment, candidate.ID)
	if err != nil {
		return nil, fmt.Errorf("whatsapp duplicate check: %w", err)
	}
	if matched == nil {
		return NoDuplicate(), nil
	}
	return duplicateOf(FieldWhatsapp, matched), nil
}

// CheckKtpDuplicate matches on exactly equal national-ID number.
func (m *Matcher) CheckKtpDuplicate(ctx context.Context, candidate *models.Account) (*CheckResult, error) {
	if !candidate.HasKtp() {
		return NoDuplicate(), nil
	}
	matched, err := m.accounts.FindByKtpNumber(ctx, candidate.KtpNumber, candidate.ID)
	if err != nil {
		return nil, fmt.Errorf("ktp duplicate check: %w", err)
	}
	if matched == nil {
		return NoDuplicate(), nil
	}
	return duplicateOf(FieldKtp, matched), nil
}
