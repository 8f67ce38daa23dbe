package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/debt-manager/internal/common"
	"github.com/Veraticus/debt-manager/internal/model"
	"github.com/shopspring/decimal"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath, WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

// Helper function to create test transactions.
func createTestTransactions(accountID string, count int) []model.Transaction {
	txns := make([]model.Transaction, count)
	baseTime := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < count; i++ {
		kind := model.KindWithdrawal
		if i%3 == 2 {
			kind = model.KindPayment
		}
		txns[i] = model.Transaction{
			ID:          fmt.Sprintf("%s-txn-%d", accountID, i+1),
			AccountID:   accountID,
			Kind:        kind,
			Amount:      float64(i+1) * 10.50,
			Category:    "business",
			Description: fmt.Sprintf("Entry #%d", i+1),
			OccurredAt:  baseTime.Add(time.Duration(i) * 24 * time.Hour),
		}
		txns[i].Hash = txns[i].GenerateHash()
	}
	return txns
}

func createTestLimit(id string) *model.CreditLimit {
	return &model.CreditLimit{
		ID:             id,
		Name:           "Limit " + id,
		LimitAmount:    decimal.RequireFromString("1500.50"),
		LimitType:      model.LimitMonthly,
		StartDate:      time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		AlertThreshold: 75,
		Category:       "business",
	}
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	if !errors.Is(err, ErrEmptyString) {
		t.Fatalf("expected ErrEmptyString, got %v", err)
	}
}

func TestNewSQLiteStorage_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "debt.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer func() { _ = store.Close() }()

	if store.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", store.Path(), dbPath)
	}
}

func TestSQLiteStorage_TransactionCommit(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	account := &model.CreditAccount{ID: "acc-1", Name: "Visa", CreditLimit: decimal.NewFromInt(5000)}
	if err := tx.CreateAccount(ctx, account); err != nil {
		t.Fatalf("Failed to create account in transaction: %v", err)
	}
	if _, err := tx.SaveTransactions(ctx, createTestTransactions("acc-1", 2)); err != nil {
		t.Fatalf("Failed to save transactions in transaction: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}

	if _, err := store.GetAccount(ctx, "acc-1"); err != nil {
		t.Errorf("Account not visible after commit: %v", err)
	}
	count, err := store.GetTransactionCount(ctx)
	if err != nil {
		t.Fatalf("Failed to count transactions: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 transactions after commit, got %d", count)
	}
}

func TestSQLiteStorage_TransactionRollback(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	if err := tx.CreateLimit(ctx, createTestLimit("lim-1")); err != nil {
		t.Fatalf("Failed to create limit in transaction: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Failed to rollback: %v", err)
	}

	_, err = store.GetLimit(ctx, "lim-1")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after rollback, got %v", err)
	}
}

func TestSQLiteStorage_TransactionRestrictions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.BeginTx(ctx); err == nil {
		t.Error("Expected nested transaction to fail")
	}
	if err := tx.Migrate(ctx); err == nil {
		t.Error("Expected migrate inside transaction to fail")
	}
	if err := tx.Close(); err == nil {
		t.Error("Expected close on transaction to fail")
	}
}
