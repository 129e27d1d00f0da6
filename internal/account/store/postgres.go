package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dupguard/internal/account/models"
	id "dupguard/pkg/domain"
	"dupguard/pkg/phone"
	"dupguard/pkg/platform/sentinel"
)

// Schema creates the accounts table. whatsapp_normalized is maintained on
// every write so the substring matcher stays an indexable LIKE instead of
// normalizing per-row at query time.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id                  UUID PRIMARY KEY,
	kind                TEXT NOT NULL,
	name                TEXT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL,
	bank_name           TEXT NOT NULL DEFAULT '',
	bank_account_number TEXT NOT NULL DEFAULT '',
	whatsapp_number     TEXT NOT NULL DEFAULT '',
	whatsapp_normalized TEXT NOT NULL DEFAULT '',
	ktp_number          TEXT NOT NULL DEFAULT '',
	is_active           BOOLEAN NOT NULL DEFAULT TRUE,
	flagged_for_review  BOOLEAN NOT NULL DEFAULT FALSE,
	deactivation_reason TEXT NOT NULL DEFAULT '',
	linked_duplicate_id UUID
);
CREATE INDEX IF NOT EXISTS idx_accounts_bank ON accounts (bank_name, bank_account_number);
CREATE INDEX IF NOT EXISTS idx_accounts_ktp ON accounts (ktp_number);
`

// PostgresStore persists accounts in PostgreSQL.
// This store is pure I/O; all duplicate-detection logic belongs in the
// fraud service.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed account store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema applies the table definition. Idempotent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure accounts schema: %w", err)
	}
	return nil
}

const accountColumns = `id, kind, name, created_at, bank_name, bank_account_number,
	whatsapp_number, ktp_number, is_active, flagged_for_review, deactivation_reason, linked_duplicate_id`

func (s *PostgresStore) Create(ctx context.Context, account *models.Account) error {
	if account == nil {
		return fmt.Errorf("account is required")
	}
	query := `
		INSERT INTO accounts (id, kind, name, created_at, bank_name, bank_account_number,
			whatsapp_number, whatsapp_normalized, ktp_number, is_active, flagged_for_review,
			deactivation_reason, linked_duplicate_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		account.ID.String(),
		string(account.Kind),
		account.Name,
		account.CreatedAt,
		account.BankName,
		account.BankAccountNumber,
		account.WhatsappNumber,
		phone.Normalize(account.WhatsappNumber),
		account.KtpNumber,
		account.IsActive,
		account.FlaggedForReview,
		account.DeactivationReason,
		nullableID(account.LinkedDuplicateID),
	)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	account, err := scanAccount(s.db.QueryRowContext(ctx, query, accountID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	return account, nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, accountID id.AccountID, update ProfileUpdate) (*models.Account, error) {
	query := `
		UPDATE accounts SET
			name = COALESCE($2, name),
			bank_name = COALESCE($3, bank_name),
			bank_account_number = COALESCE($4, bank_account_number),
			whatsapp_number = COALESCE($5, whatsapp_number),
			whatsapp_normalized = COALESCE($6, whatsapp_normalized),
			ktp_number = COALESCE($7, ktp_number)
		WHERE id = $1
		RETURNING ` + accountColumns
	var normalized *string
	if update.WhatsappNumber != nil {
		n := phone.Normalize(*update.WhatsappNumber)
		normalized = &n
	}
	account, err := scanAccount(s.db.QueryRowContext(ctx, query,
		accountID.String(),
		update.Name,
		update.BankName,
		update.BankAccountNumber,
		update.WhatsappNumber,
		normalized,
		update.KtpNumber,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("update account profile: %w", err)
	}
	return account, nil
}

func (s *PostgresStore) FindByBankDetails(ctx context.Context, bankName, accountNumber string, exclude id.AccountID) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE bank_name = $1 AND bank_account_number = $2 AND id <> $3
		ORDER BY created_at ASC
		LIMIT 1
	`
	return s.findOne(ctx, query, bankName, accountNumber, exclude.String())
}

func (s *PostgresStore) FindByWhatsappFragment(ctx context.Context, fragment string, exclude id.AccountID) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE whatsapp_normalized <> '' AND whatsapp_normalized LIKE '%' || $1 || '%' AND id <> $2
		ORDER BY created_at ASC
		LIMIT 1
	`
	return s.findOne(ctx, query, fragment, exclude.String())
}

func (s *PostgresStore) FindByKtpNumber(ctx context.Context, ktpNumber string, exclude id.AccountID) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE ktp_number = $1 AND id <> $2
		ORDER BY created_at ASC
		LIMIT 1
	`
	return s.findOne(ctx, query, ktpNumber, exclude.String())
}

func (s *PostgresStore) findOne(ctx context.Context, query string, args ...any) (*models.Account, error) {
	account, err := scanAccount(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

func (s *PostgresStore) Deactivate(ctx context.Context, accountID id.AccountID, d models.Deactivation) error {
	if d.Reason == "" {
		return fmt.Errorf("deactivation reason is required")
	}
	query := `
		UPDATE accounts SET
			is_active = FALSE,
			deactivation_reason = $2,
			flagged_for_review = TRUE,
			linked_duplicate_id = $3
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, accountID.String(), d.Reason, d.LinkedDuplicateID.String())
	if err != nil {
		return fmt.Errorf("deactivate account: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) FlagForReview(ctx context.Context, accountID id.AccountID, linked id.AccountID) error {
	query := `
		UPDATE accounts SET
			flagged_for_review = TRUE,
			linked_duplicate_id = $2
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, accountID.String(), linked.String())
	if err != nil {
		return fmt.Errorf("flag account for review: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
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

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		account   models.Account
		rawID     string
		rawKind   string
		rawLinked sql.NullString
	)
	err := row.Scan(
		&rawID,
		&rawKind,
		&account.Name,
		&account.CreatedAt,
		&account.BankName,
		&account.BankAccountNumber,
		&account.WhatsappNumber,
		&account.KtpNumber,
		&account.IsActive,
		&account.FlaggedForReview,
		&account.DeactivationReason,
		&rawLinked,
	)
	if err != nil {
		return nil, err
	}

	accountID, err := id.ParseAccountID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan account id: %w", err)
	}
	account.ID = accountID
	account.Kind = models.Kind(rawKind)

	if rawLinked.Valid {
		linked, err := id.ParseAccountID(rawLinked.String)
		if err != nil {
			return nil, fmt.Errorf("scan linked duplicate id: %w", err)
		}
		account.LinkedDuplicateID = &linked
	}
	return &account, nil
}

func nullableID(accountID *id.AccountID) any {
	if accountID == nil {
		return nil
	}
	return accountID.String()
}
