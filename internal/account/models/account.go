package models

import (
	"time"

	id "dupguard/pkg/domain"
)

// Kind distinguishes the two provider entity kinds that share the account
// shape. Matching only ever touches the shared sensitive-field subset, so
// both kinds flow through the same fraud pipeline.
type Kind string

const (
	KindProviderIndividual Kind = "provider-individual"
	KindProviderPlace      Kind = "provider-place"
)

// Valid reports whether k is one of the known provider kinds.
func (k Kind) Valid() bool {
	return k == KindProviderIndividual || k == KindProviderPlace
}

// Account is a provider account record. Identity and CreatedAt are immutable
// once created; the fraud pipeline mutates only the lifecycle block.
type Account struct {
	ID        id.AccountID
	Kind      Kind
	Name      string
	CreatedAt time.Time

	// Sensitive fields used for duplicate matching. All optional,
	// free-format strings; WhatsappNumber is compared on its normalized
	// form, the others as exact strings.
	BankName          string
	BankAccountNumber string
	WhatsappNumber    string
	KtpNumber         string

	// Lifecycle flags mutated by the fraud pipeline.
	// IsActive=false implies DeactivationReason is non-empty.
	IsActive           bool
	FlaggedForReview   bool
	DeactivationReason string
	LinkedDuplicateID  *id.AccountID
}

// HasBankDetails reports whether both bank fields are populated. The bank
// matcher is gated on this; empty-vs-empty must never count as a match.
func (a *Account) HasBankDetails() bool {
	return a.BankName != "" && a.BankAccountNumber != ""
}

// HasWhatsapp reports whether the phone field is populated.
func (a *Account) HasWhatsapp() bool {
	return a.WhatsappNumber != ""
}

// HasKtp reports whether the national-ID field is populated.
func (a *Account) HasKtp() bool {
	return a.KtpNumber != ""
}

// Deactivation captures the single lifecycle write applied to the newer
// account of a duplicate pair.
type Deactivation struct {
	Reason            string
	LinkedDuplicateID id.AccountID
}
