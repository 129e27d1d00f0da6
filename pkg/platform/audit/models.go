// Package audit defines the audit event model and the channel-fed pipeline
// that decouples domain code from whatever sink is configured.
package audit

import (
	"context"
	"time"
)

// Action names the auditable actions the fraud pipeline emits.
type Action string

const (
	ActionRegistrationCreated Action = "registration_created"
	ActionRegistrationUpdated Action = "registration_updated"
	ActionDuplicateDetected   Action = "duplicate_detected"
	ActionAccountDeactivated  Action = "account_deactivated"
	ActionAdminNotified       Action = "admin_notified"
	ActionNotificationRead    Action = "notification_read"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	// AccountID / DuplicateAccountID are string forms of the typed IDs so
	// the event serializes without importing domain types.
	AccountID          string `json:"account_id,omitempty"`
	DuplicateAccountID string `json:"duplicate_account_id,omitempty"`
	// Field names the sensitive-field group involved (bank, whatsapp, ktp).
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
	// RequestID correlates the event with the HTTP request that caused it.
	RequestID string `json:"request_id,omitempty"`
	// ClientIP and Device attribute the caller, stamped by the request-meta
	// middleware at the trust boundary. Best effort.
	ClientIP string `json:"client_ip,omitempty"`
	Device   string `json:"device,omitempty"`
	// KtpHash is a SHA-256 hash of the national-ID involved, for compliance
	// traceability without storing raw PII.
	KtpHash string `json:"ktp_hash,omitempty"`
	// NotificationID / AdminSubject attribute admin surface actions.
	NotificationID string `json:"notification_id,omitempty"`
	AdminSubject   string `json:"admin_subject,omitempty"`
}

// Publisher accepts events from domain code. Emit must never block the
// caller's request for long and must never fail the caller's operation.
type Publisher interface {
	Emit(ctx context.Context, event Event)
}

// Sink receives events from the worker. Implementations: slog sink, Kafka
// producer.
type Sink interface {
	Write(ctx context.Context, event Event) error
}

// NopPublisher drops all events. Default for services constructed without
// an audit pipeline (tests, dev mode).
type NopPublisher struct{}

func (NopPublisher) Emit(context.Context, Event) {}
