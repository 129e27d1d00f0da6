package models

import (
	"time"

	id "dupguard/pkg/domain"
)

// Severity ranks admin notifications for the review queue.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Notification is an append-only admin notification record. Only the Read
// flag ever mutates after creation, and only through the admin surface.
type Notification struct {
	ID       id.NotificationID
	Severity Severity
	// TargetRole scopes who sees the notification; the fraud pipeline
	// always targets "admin".
	TargetRole string
	// Report is the human-readable multi-line text composed by the notifier.
	Report string
	// AccountID is the candidate whose check triggered the notification;
	// DuplicateAccountID is the matched pre-existing record.
	AccountID          id.AccountID
	DuplicateAccountID id.AccountID
	// TriggeredBy names the field group that matched (bank, whatsapp, ktp).
	TriggeredBy string
	CreatedAt   time.Time
	Read        bool
}
