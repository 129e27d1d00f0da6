// Package fraud implements the duplicate-account detection and deactivation
// workflow: three field matchers run in fixed priority order, the first match
// drives a newer-account deactivation and a best-effort admin notification.
package fraud

import (
	"dupguard/internal/account/models"
)

// Field names the sensitive-field group that triggered a match.
type Field string

const (
	FieldBank     Field = "bank"
	FieldWhatsapp Field = "whatsapp"
	FieldKtp      Field = "ktp"
)

// CheckResult is the ephemeral outcome of one detection run. Matched points
// at the pre-existing record; ShouldDeactivate is filled in by the decision
// policy, not the matchers.
type CheckResult struct {
	HasDuplicate     bool
	Field            Field
	Matched          *models.Account
	ShouldDeactivate bool
}

// NoDuplicate is the zero result for a clean candidate.
func NoDuplicate() *CheckResult {
	return &CheckResult{}
}

func duplicateOf(field Field, matched *models.Account) *CheckResult {
	return &CheckResult{
		HasDuplicate: true,
		Field:        field,
		Matched:      matched,
	}
}
