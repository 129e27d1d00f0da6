// Package store persists provider account records. Two implementations share
// the Store contract: InMemory for tests and single-node dev, Postgres for
// durable deployments. Stores are pure I/O; the fraud rules live in the
// service layer.
package store

import (
	"context"

	"dupguard/internal/account/models"
	id "dupguard/pkg/domain"
)

// ProfileUpdate carries the partial-field update the registration
// collaborator applies. Nil means "leave unchanged"; identity and creation
// timestamp are never updatable.
type ProfileUpdate struct {
	Name              *string
	BankName          *string
	BankAccountNumber *string
	WhatsappNumber    *string
	KtpNumber         *string
}

// TouchesCriticalFields reports whether the update writes any of the
// sensitive fields that gate the duplicate check.
func (u ProfileUpdate) TouchesCriticalFields() bool {
	return u.BankName != nil || u.BankAccountNumber != nil ||
		u.WhatsappNumber != nil || u.KtpNumber != nil
}

// Store is the account persistence contract. The three finder methods are
// the matcher queries: each excludes the given account id so a record can
// never match itself, and each returns (nil, nil) when nothing matches.
// Query failures must surface unchanged; callers treat them as fail-closed.
type Store interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error)
	UpdateProfile(ctx context.Context, accountID id.AccountID, update ProfileUpdate) (*models.Account, error)

	// FindByBankDetails matches on exactly equal bank name AND account number.
	FindByBankDetails(ctx context.Context, bankName, accountNumber string, exclude id.AccountID) (*models.Account, error)
	// FindByWhatsappFragment matches records whose normalized phone contains
	// the given normalized fragment.
	FindByWhatsappFragment(ctx context.Context, fragment string, exclude id.AccountID) (*models.Account, error)
	// FindByKtpNumber matches on exactly equal national-ID number.
	FindByKtpNumber(ctx context.Context, ktpNumber string, exclude id.AccountID) (*models.Account, error)

	// Deactivate marks the account inactive with a mandatory reason, flags it
	// for review and links the matched duplicate.
	Deactivate(ctx context.Context, accountID id.AccountID, d models.Deactivation) error
	// FlagForReview flags the account and records a back-reference to its
	// duplicate without touching IsActive.
	FlagForReview(ctx context.Context, accountID id.AccountID, linked id.AccountID) error
}
