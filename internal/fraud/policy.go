package fraud

import (
	"dupguard/internal/account/models"
)

// Decide applies the deactivation policy to a confirmed duplicate pair:
// only a candidate with a strictly later creation timestamp is deactivated.
// An exactly equal timestamp counts as "not newer", so ties never deactivate.
//
// When the candidate is the older record this workflow takes no action at
// all; the newer pre-existing account stays live. The orchestrator logs that
// branch so operators can review it.
func Decide(candidate, matched *models.Account) bool {
	return candidate.CreatedAt.After(matched.CreatedAt)
}
