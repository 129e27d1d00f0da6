// Package domain defines typed identifiers shared across the service. Typed
// UUIDs make cross-entity assignment a compile error: an AccountID can never
// be passed where a NotificationID is expected.
package domain

import (
	"fmt"

	"github.com/google/uuid"

	derrors "dupguard/pkg/domain-errors"
)

// AccountID identifies a provider account record.
type AccountID uuid.UUID

// NotificationID identifies an admin notification record.
type NotificationID uuid.UUID

func NewAccountID() AccountID           { return AccountID(uuid.New()) }
func NewNotificationID() NotificationID { return NotificationID(uuid.New()) }

func (a AccountID) String() string      { return uuid.UUID(a).String() }
func (n NotificationID) String() string { return uuid.UUID(n).String() }

func (a AccountID) IsZero() bool      { return uuid.UUID(a) == uuid.Nil }
func (n NotificationID) IsZero() bool { return uuid.UUID(n) == uuid.Nil }

// ParseAccountID enforces the trust-boundary invariant: IDs must be valid,
// non-empty, non-nil UUIDs.
func ParseAccountID(s string) (AccountID, error) {
	u, err := parseUUID(s, "account id")
	return AccountID(u), err
}

// ParseNotificationID enforces the same invariant for notification IDs.
func ParseNotificationID(s string) (NotificationID, error) {
	u, err := parseUUID(s, "notification id")
	return NotificationID(u), err
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, derrors.New(derrors.CodeInvalidInput, what+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, derrors.Wrap(err, derrors.CodeInvalidInput, fmt.Sprintf("invalid %s", what))
	}
	if u == uuid.Nil {
		return uuid.Nil, derrors.New(derrors.CodeInvalidInput, what+" must not be the nil UUID")
	}
	return u, nil
}
