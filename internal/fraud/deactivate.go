package fraud

import (
	"context"
	"fmt"
	"log/slog"

	"dupguard/internal/account/models"
	"dupguard/internal/account/store"
)

// Executor performs the lifecycle writes for a confirmed duplicate: the
// newer account is deactivated, the older one is flagged for manual review.
// The two writes are independent remote updates with no atomicity; a failed
// flag write after a successful deactivation is logged and accepted.
type Executor struct {
	accounts store.Store
	logger   *slog.Logger
}

// NewExecutor builds an executor over the given account store.
func NewExecutor(accounts store.Store, logger *slog.Logger) *Executor {
	return &Executor{accounts: accounts, logger: logger}
}

// Deactivate applies the asymmetric pair of writes. candidate must be the
// strictly newer account per the decision policy.
//
// Failure semantics: a failed deactivation surfaces to the caller and stops
// the workflow. A failed flag write on the matched account does not: the
// important write already landed, so the error is logged for manual ops
// review and the workflow continues.
func (e *Executor) Deactivate(ctx context.Context, candidate, matched *models.Account, field Field) error {
	reason := DeactivationReason(field, matched)

	if err := e.accounts.Deactivate(ctx, candidate.ID, models.Deactivation{
		Reason:            reason,
		LinkedDuplicateID: matched.ID,
	}); err != nil {
		return fmt.Errorf("deactivate account %s: %w", candidate.ID, err)
	}

	e.logger.InfoContext(ctx, "account deactivated",
		"account_id", candidate.ID.String(),
		"duplicate_account_id", matched.ID.String(),
		"field", string(field),
	)

	if err := e.accounts.FlagForReview(ctx, matched.ID, candidate.ID); err != nil {
		e.logger.ErrorContext(ctx, "failed to flag matched account for review",
			"account_id", matched.ID.String(),
			"linked_account_id", candidate.ID.String(),
			"error", err,
		)
	}
	return nil
}

// DeactivationReason composes the human-readable reason stored on the
// deactivated account.
func DeactivationReason(field Field, matched *models.Account) string {
	return fmt.Sprintf("Duplicate account detected: %s matches existing account %s (%s)",
		fieldLabel(field), matched.Name, matched.ID)
}

func fieldLabel(field Field) string {
	switch field {
	case FieldBank:
		return "bank details"
	case FieldWhatsapp:
		return "WhatsApp number"
	case FieldKtp:
		return "KTP number"
	default:
		return string(field)
	}
}
