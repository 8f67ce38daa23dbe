package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/debt-manager/internal/model"
	"github.com/Veraticus/debt-manager/internal/testutil/ledger"
)

func TestSQLiteStorage_LoadSnapshot(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	fixture, err := ledger.NewBuilder(t).
		WithAccount("acc-1", "Visa", 2000).
		WithAccountUsed("acc-2", "Amex", 1000, 50).
		WithLimit("lim-1", "Groceries", 400, model.LimitMonthly, jan, ledger.ForCategory("groceries")).
		WithWithdrawal("acc-1", 42.10, jan.Add(36*time.Hour), "groceries").
		WithPayment("acc-1", 20, jan.Add(48*time.Hour)).
		WithWithdrawal("acc-2", 50, jan.Add(12*time.Hour)).
		Seed(ctx, store)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if snap.TakenAt.IsZero() {
		t.Error("TakenAt not set")
	}
	if len(snap.Accounts) != len(fixture.Accounts) {
		t.Errorf("accounts = %d, want %d", len(snap.Accounts), len(fixture.Accounts))
	}
	if len(snap.Limits) != 1 || snap.Limits[0].Category != "groceries" {
		t.Errorf("unexpected limits: %+v", snap.Limits)
	}
	if len(snap.Transactions) != 3 {
		t.Fatalf("transactions = %d, want 3", len(snap.Transactions))
	}
	if snap.Transactions[0].AccountID != "acc-2" {
		t.Errorf("expected oldest transaction first, got %+v", snap.Transactions[0])
	}
}

func TestSQLiteStorage_LoadSnapshotInsideTransaction(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx() error: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.SaveTransactions(ctx, createTestTransactions("acc-1", 2)); err != nil {
		t.Fatalf("SaveTransactions() error: %v", err)
	}

	snap, err := tx.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot() error: %v", err)
	}
	if len(snap.Transactions) != 2 {
		t.Errorf("snapshot should see uncommitted rows in its own transaction, got %d", len(snap.Transactions))
	}
}
