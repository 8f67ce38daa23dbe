// Package testutil provides test utilities for the debt manager: an in-memory
// database and a fluent ledger builder for seeding it.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/debt-manager/internal/storage"
	"github.com/Veraticus/debt-manager/internal/testutil/ledger"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	Ledger  ledger.Fixture
}

// SetupTestDB creates a migrated in-memory database. When configure is not
// nil, the builder it returns is used to seed the database.
//
// Example:
//
//	db := testutil.SetupTestDB(t, func(b *ledger.Builder) *ledger.Builder {
//		return b.WithAccount("acc-1", "Visa", 5000).
//			WithWithdrawal("acc-1", 120, day(2024, 1, 5))
//	})
func SetupTestDB(t *testing.T, configure func(*ledger.Builder) *ledger.Builder) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:", storage.WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	db := &TestDB{
		Storage: store,
	}

	if configure != nil {
		fixture, err := configure(ledger.NewBuilder(t)).Seed(ctx, store)
		if err != nil {
			t.Fatalf("failed to seed ledger: %v", err)
		}
		db.Ledger = fixture
	}

	return db
}
