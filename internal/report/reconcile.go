package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/debt-manager/internal/model"
	"github.com/Veraticus/debt-manager/internal/usage"
	"github.com/shopspring/decimal"
)

// Reconciliation compares an account's stored used amount with the amount
// derived from its ledger.
type Reconciliation struct {
	StoredUsed      decimal.Decimal
	DerivedUsed     decimal.Decimal
	Drift           decimal.Decimal // DerivedUsed - StoredUsed
	AvailableCredit decimal.Decimal // Based on DerivedUsed
	Account         model.CreditAccount
}

// InSync reports whether the stored figure matches the ledger.
func (r Reconciliation) InSync() bool {
	return r.Drift.IsZero()
}

// ReconcileAccounts derives each account's usage from txns.
func ReconcileAccounts(accounts []model.CreditAccount, txns []model.Transaction) []Reconciliation {
	results := make([]Reconciliation, 0, len(accounts))
	for _, account := range accounts {
		derived := usage.DeriveAccountUsage(account.ID, txns)
		results = append(results, Reconciliation{
			Account:         account,
			StoredUsed:      account.UsedAmount,
			DerivedUsed:     derived,
			Drift:           derived.Sub(account.UsedAmount),
			AvailableCredit: usage.AvailableCredit(account.CreditLimit, derived),
		})
	}
	return results
}

// Reconcile derives every account's used amount from the ledger. With apply,
// drifted stored values are rewritten in the same transaction the snapshot
// was read in.
func (r *Reporter) Reconcile(ctx context.Context, apply bool) ([]Reconciliation, error) {
	if !apply {
		snapshot, err := r.store.LoadSnapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		return ReconcileAccounts(snapshot.Accounts, snapshot.Transactions), nil
	}

	tx, err := r.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	snapshot, err := tx.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	results := ReconcileAccounts(snapshot.Accounts, snapshot.Transactions)
	updated := 0
	for _, result := range results {
		if result.InSync() {
			continue
		}
		if err := tx.UpdateAccountUsed(ctx, result.Account.ID, result.DerivedUsed); err != nil {
			return nil, fmt.Errorf("failed to update account %s: %w", result.Account.ID, err)
		}
		slog.Info("Corrected stored usage",
			"account", result.Account.ID,
			"stored", result.StoredUsed.String(),
			"derived", result.DerivedUsed.String())
		updated++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reconciliation: %w", err)
	}

	slog.Info("Reconciliation applied", "accounts", len(results), "updated", updated)
	return results, nil
}
