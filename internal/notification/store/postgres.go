package store

import (
	"context"
	"database/sql"
	"fmt"

	"dupguard/internal/notification/models"
	id "dupguard/pkg/domain"
	"dupguard/pkg/platform/sentinel"
)

// Schema creates the notifications table.
const Schema = `
CREATE TABLE IF NOT EXISTS admin_notifications (
	id                   UUID PRIMARY KEY,
	severity             TEXT NOT NULL,
	target_role          TEXT NOT NULL,
	report               TEXT NOT NULL,
	account_id           UUID NOT NULL,
	duplicate_account_id UUID NOT NULL,
	triggered_by         TEXT NOT NULL,
	created_at           TIMESTAMPTZ NOT NULL,
	read                 BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_admin_notifications_unread ON admin_notifications (read, created_at DESC);
`

// PostgresStore persists notifications in PostgreSQL. Pure I/O.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed notification store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema applies the table definition. Idempotent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure notifications schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, n *models.Notification) error {
	if n == nil {
		return fmt.Errorf("notification is required")
	}
	query := `
		INSERT INTO admin_notifications
			(id, severity, target_role, report, account_id, duplicate_account_id, triggered_by, created_at, read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		n.ID.String(),
		string(n.Severity),
		n.TargetRole,
		n.Report,
		n.AccountID.String(),
		n.DuplicateAccountID.String(),
		n.TriggeredBy,
		n.CreatedAt,
		n.Read,
	)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, unreadOnly bool, limit int) ([]*models.Notification, error) {
	query := `
		SELECT id, severity, target_role, report, account_id, duplicate_account_id, triggered_by, created_at, read
		FROM admin_notifications
		WHERE ($1 = FALSE OR read = FALSE)
		ORDER BY created_at DESC
		LIMIT $2
	`
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, query, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) MarkRead(ctx context.Context, notificationID id.NotificationID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE admin_notifications SET read = TRUE WHERE id = $1`,
		notificationID.String(),
	)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	var (
		n            models.Notification
		rawID        string
		rawSeverity  string
		rawAccount   string
		rawDuplicate string
	)
	err := row.Scan(
		&rawID,
		&rawSeverity,
		&n.TargetRole,
		&n.Report,
		&rawAccount,
		&rawDuplicate,
		&n.TriggeredBy,
		&n.CreatedAt,
		&n.Read,
	)
	if err != nil {
		return nil, err
	}

	notificationID, err := id.ParseNotificationID(rawID)
	if err != nil {
		return nil, err
	}
	accountID, err := id.ParseAccountID(rawAccount)
	if err != nil {
		return nil, err
	}
	duplicateID, err := id.ParseAccountID(rawDuplicate)
	if err != nil {
		return nil, err
	}

	n.ID = notificationID
	n.Severity = models.Severity(rawSeverity)
	n.AccountID = accountID
	n.DuplicateAccountID = duplicateID
	return &n, nil
}
