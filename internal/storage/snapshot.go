package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/debt-manager/internal/service"
)

// LoadSnapshot reads accounts, limits and the full ledger inside one read
// transaction so usage is never aggregated against a torn view.
func (s *SQLiteStorage) LoadSnapshot(ctx context.Context) (*service.Snapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	return s.loadSnapshotTx(ctx, tx)
}

func (s *SQLiteStorage) loadSnapshotTx(ctx context.Context, q queryable) (*service.Snapshot, error) {
	accounts, err := s.getAccountsTx(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("snapshot accounts: %w", err)
	}
	limits, err := s.getLimitsTx(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("snapshot limits: %w", err)
	}
	transactions, err := s.getTransactionsTx(ctx, q, service.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("snapshot transactions: %w", err)
	}

	return &service.Snapshot{
		TakenAt:      time.Now(),
		Accounts:     accounts,
		Limits:       limits,
		Transactions: transactions,
	}, nil
}
