package report

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/debt-manager/internal/testutil"
	"github.com/Veraticus/debt-manager/internal/testutil/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDrift(b *ledger.Builder) *ledger.Builder {
	at := day(2024, time.April, 2)
	return b.
		WithAccountUsed("acc-amex", "Amex", 1000, 300).
		WithAccountUsed("acc-visa", "Visa", 2000, 0).
		WithWithdrawal("acc-amex", 400, at).
		WithPayment("acc-amex", 100, at.Add(time.Hour)).
		WithWithdrawal("acc-visa", 250.75, at).
		WithPayment("acc-visa", 300, at.Add(2*time.Hour))
}

func TestReconcileAccounts(t *testing.T) {
	fixture := seedDrift(ledger.NewBuilder(t)).Build()

	results := ReconcileAccounts(fixture.Accounts, fixture.Transactions)
	require.Len(t, results, 2)

	amex := results[0]
	assert.Equal(t, "acc-amex", amex.Account.ID)
	assert.True(t, decimal.NewFromInt(300).Equal(amex.DerivedUsed))
	assert.True(t, amex.InSync())
	assert.True(t, decimal.NewFromInt(700).Equal(amex.AvailableCredit))

	visa := results[1]
	assert.True(t, decimal.RequireFromString("-49.25").Equal(visa.DerivedUsed), "got %s", visa.DerivedUsed)
	assert.False(t, visa.InSync())
	assert.True(t, decimal.RequireFromString("-49.25").Equal(visa.Drift))
	assert.True(t, decimal.RequireFromString("2049.25").Equal(visa.AvailableCredit))
}

func TestReporter_ReconcileDryRun(t *testing.T) {
	db := testutil.SetupTestDB(t, seedDrift)
	ctx := context.Background()

	results, err := NewReporter(db.Storage).Reconcile(ctx, false)
	require.NoError(t, err)
	require.Len(t, results, 2)

	visa, err := db.Storage.GetAccount(ctx, "acc-visa")
	require.NoError(t, err)
	assert.True(t, visa.UsedAmount.IsZero(), "dry run must not write, got %s", visa.UsedAmount)
}

func TestReporter_ReconcileApply(t *testing.T) {
	db := testutil.SetupTestDB(t, seedDrift)
	ctx := context.Background()
	reporter := NewReporter(db.Storage)

	results, err := reporter.Reconcile(ctx, true)
	require.NoError(t, err)
	require.Len(t, results, 2)

	visa, err := db.Storage.GetAccount(ctx, "acc-visa")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("-49.25").Equal(visa.UsedAmount), "got %s", visa.UsedAmount)

	again, err := reporter.Reconcile(ctx, false)
	require.NoError(t, err)
	for _, r := range again {
		assert.True(t, r.InSync(), "account %s still drifts by %s", r.Account.ID, r.Drift)
	}
}
