package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "dupguard/pkg/domain-errors"
)

// TestParseAccountID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs".
func TestParseAccountID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseAccountID("")
		require.Error(t, err)
		assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseAccountID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseAccountID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, derrors.HasCode(err, derrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseAccountID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, AccountID(valid), id)
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// If this compiles, the invariant holds; the runtime check below is belt and braces.
func TestTypeDistinction(t *testing.T) {
	accountID := AccountID(uuid.New())
	notificationID := NotificationID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ AccountID = notificationID   // compile error
	// var _ NotificationID = accountID   // compile error

	assert.NotEqual(t, uuid.UUID(accountID), uuid.UUID(notificationID))
}
