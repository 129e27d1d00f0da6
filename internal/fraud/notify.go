package fraud

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	accountmodels "dupguard/internal/account/models"
	"dupguard/internal/notification/models"
	"dupguard/internal/notification/store"
	id "dupguard/pkg/domain"
)

// Notifier persists the human-readable duplicate report for the admin
// review queue. Notification is a best-effort side channel: a failed write
// is logged and swallowed, never failing or rolling back the workflow.
type Notifier struct {
	notifications store.Store
	logger        *slog.Logger
	now           func() time.Time
}

// NewNotifier builds a notifier over the given notification store.
func NewNotifier(notifications store.Store, logger *slog.Logger) *Notifier {
	return &Notifier{
		notifications: notifications,
		logger:        logger,
		now:           time.Now,
	}
}

// NotifyAdmin composes and persists the report. The returned error is for
// the orchestrator's metrics only; callers must not fail on it.
func (n *Notifier) NotifyAdmin(ctx context.Context, candidate *accountmodels.Account, result *CheckResult) error {
	record := &models.Notification{
		ID:                 id.NewNotificationID(),
		Severity:           models.SeverityCritical,
		TargetRole:         "admin",
		Report:             ComposeReport(candidate, result),
		AccountID:          candidate.ID,
		DuplicateAccountID: result.Matched.ID,
		TriggeredBy:        string(result.Field),
		CreatedAt:          n.now(),
	}

	if err := n.notifications.Create(ctx, record); err != nil {
		n.logger.ErrorContext(ctx, "admin notification failed",
			"account_id", candidate.ID.String(),
			"duplicate_account_id", result.Matched.ID.String(),
			"error", err,
		)
		return fmt.Errorf("notify admin: %w", err)
	}
	return nil
}

// ComposeReport renders the fixed multi-line report naming the matched field
// group, both accounts, and the action taken.
func ComposeReport(candidate *accountmodels.Account, result *CheckResult) string {
	action := "No action taken: candidate account is not newer than the existing account."
	if result.ShouldDeactivate {
		action = "Action taken: candidate account deactivated; existing account flagged for manual review."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Duplicate account detected (matched on %s).\n\n", fieldLabel(result.Field))
	fmt.Fprintf(&b, "Candidate account:\n")
	fmt.Fprintf(&b, "  Name:    %s\n", candidate.Name)
	fmt.Fprintf(&b, "  ID:      %s\n", candidate.ID)
	fmt.Fprintf(&b, "  Kind:    %s\n", candidate.Kind)
	fmt.Fprintf(&b, "  Created: %s\n\n", candidate.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Existing account:\n")
	fmt.Fprintf(&b, "  Name:    %s\n", result.Matched.Name)
	fmt.Fprintf(&b, "  ID:      %s\n", result.Matched.ID)
	fmt.Fprintf(&b, "  Kind:    %s\n", result.Matched.Kind)
	fmt.Fprintf(&b, "  Created: %s\n\n", result.Matched.CreatedAt.UTC().Format(time.RFC3339))
	b.WriteString(action)
	return b.String()
}
