package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/debt-manager/internal/common"
	"github.com/Veraticus/debt-manager/internal/model"
	"github.com/shopspring/decimal"
)

const accountColumns = `id, name, credit_limit, used_amount, created_at, updated_at`

// CreateAccount inserts a new credit account.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.CreditAccount) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}
	return s.createAccountTx(ctx, s.db, account)
}

func (s *SQLiteStorage) createAccountTx(ctx context.Context, q queryable, account *model.CreditAccount) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO accounts (id, name, credit_limit, used_amount)
		VALUES (?, ?, ?, ?)
	`, account.ID, account.Name, account.CreditLimit, account.UsedAmount)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("account %s: %w", account.ID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	created, err := s.getAccountTx(ctx, q, account.ID)
	if err != nil {
		return err
	}
	account.CreatedAt = created.CreatedAt
	account.UpdatedAt = created.UpdatedAt
	return nil
}

// GetAccount retrieves a credit account by ID.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id string) (*model.CreditAccount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getAccountTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getAccountTx(ctx context.Context, q queryable, id string) (*model.CreditAccount, error) {
	row := q.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccounts returns every credit account ordered by name.
func (s *SQLiteStorage) GetAccounts(ctx context.Context) ([]model.CreditAccount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getAccountsTx(ctx, s.db)
}

func (s *SQLiteStorage) getAccountsTx(ctx context.Context, q queryable) ([]model.CreditAccount, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+accountColumns+" FROM accounts ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.CreditAccount
	for rows.Next() {
		account, scanErr := scanAccount(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// UpdateAccountUsed overwrites the stored running balance of an account.
func (s *SQLiteStorage) UpdateAccountUsed(ctx context.Context, id string, used decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.updateAccountUsedTx(ctx, s.db, id, used)
}

func (s *SQLiteStorage) updateAccountUsedTx(ctx context.Context, q queryable, id string, used decimal.Decimal) error {
	result, err := q.ExecContext(ctx, "UPDATE accounts SET used_amount = ? WHERE id = ?", used, id)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", id, err)
	}
	return expectOneRow(result, "account", id)
}

// DeleteAccount removes an account. Its ledger entries are kept.
func (s *SQLiteStorage) DeleteAccount(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.deleteAccountTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteAccountTx(ctx context.Context, q queryable, id string) error {
	result, err := q.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete account %s: %w", id, err)
	}
	return expectOneRow(result, "account", id)
}

func scanAccount(row rowScanner) (model.CreditAccount, error) {
	var account model.CreditAccount
	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.CreditLimit,
		&account.UsedAmount,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return account, err
	}
	if err != nil {
		return account, fmt.Errorf("failed to scan account: %w", err)
	}
	return account, nil
}
