// Package ledger provides a fluent builder for seeding accounts, credit
// limits and transactions in tests.
package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/debt-manager/internal/model"
	"github.com/Veraticus/debt-manager/internal/service"
	"github.com/shopspring/decimal"
)

// Fixture is what a Builder seeded.
type Fixture struct {
	Accounts     []model.CreditAccount
	Limits       []model.CreditLimit
	Transactions []model.Transaction
}

// Builder accumulates ledger data to seed into a storage.
type Builder struct {
	t       *testing.T
	fixture Fixture
	nextTxn int
}

// NewBuilder starts an empty builder.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t}
}

// WithAccount adds a credit account with no stored usage.
func (b *Builder) WithAccount(id, name string, creditLimit float64) *Builder {
	return b.WithAccountUsed(id, name, creditLimit, 0)
}

// WithAccountUsed adds a credit account with a stored used amount.
func (b *Builder) WithAccountUsed(id, name string, creditLimit, used float64) *Builder {
	b.fixture.Accounts = append(b.fixture.Accounts, model.CreditAccount{
		ID:          id,
		Name:        name,
		CreditLimit: decimal.NewFromFloat(creditLimit),
		UsedAmount:  decimal.NewFromFloat(used),
	})
	return b
}

// WithLimit adds a credit limit. Options adjust the defaults before seeding.
func (b *Builder) WithLimit(id, name string, amount float64, limitType model.LimitType, start time.Time, opts ...LimitOption) *Builder {
	limit := model.CreditLimit{
		ID:             id,
		Name:           name,
		LimitAmount:    decimal.NewFromFloat(amount),
		LimitType:      limitType,
		StartDate:      start,
		AlertThreshold: model.DefaultAlertThreshold,
	}
	for _, opt := range opts {
		opt(&limit)
	}
	b.fixture.Limits = append(b.fixture.Limits, limit)
	return b
}

// WithWithdrawal records a withdrawal.
func (b *Builder) WithWithdrawal(accountID string, amount float64, at time.Time, category ...string) *Builder {
	return b.withTransaction(accountID, model.KindWithdrawal, amount, at, category)
}

// WithPayment records a payment.
func (b *Builder) WithPayment(accountID string, amount float64, at time.Time, category ...string) *Builder {
	return b.withTransaction(accountID, model.KindPayment, amount, at, category)
}

func (b *Builder) withTransaction(accountID string, kind model.TransactionKind, amount float64, at time.Time, category []string) *Builder {
	b.nextTxn++
	txn := model.Transaction{
		ID:          fmt.Sprintf("txn-%03d", b.nextTxn),
		AccountID:   accountID,
		Kind:        kind,
		Amount:      amount,
		OccurredAt:  at,
		Description: fmt.Sprintf("%s #%d", kind, b.nextTxn),
	}
	if len(category) > 0 {
		txn.Category = category[0]
	}
	txn.Hash = txn.GenerateHash()
	b.fixture.Transactions = append(b.fixture.Transactions, txn)
	return b
}

// Build returns the accumulated fixture without touching storage.
func (b *Builder) Build() Fixture {
	return b.fixture
}

// Seed writes the fixture into store and returns it.
func (b *Builder) Seed(ctx context.Context, store service.Storage) (Fixture, error) {
	b.t.Helper()

	for i := range b.fixture.Accounts {
		if err := store.CreateAccount(ctx, &b.fixture.Accounts[i]); err != nil {
			return Fixture{}, fmt.Errorf("seed account %s: %w", b.fixture.Accounts[i].ID, err)
		}
	}
	for i := range b.fixture.Limits {
		if err := store.CreateLimit(ctx, &b.fixture.Limits[i]); err != nil {
			return Fixture{}, fmt.Errorf("seed limit %s: %w", b.fixture.Limits[i].ID, err)
		}
	}
	if len(b.fixture.Transactions) > 0 {
		if _, err := store.SaveTransactions(ctx, b.fixture.Transactions); err != nil {
			return Fixture{}, fmt.Errorf("seed transactions: %w", err)
		}
	}

	return b.fixture, nil
}

// LimitOption adjusts a limit before it is seeded.
type LimitOption func(*model.CreditLimit)

// EndingOn sets an explicit end date.
func EndingOn(end time.Time) LimitOption {
	return func(l *model.CreditLimit) { l.EndDate = &end }
}

// ForCategory restricts the limit to one category.
func ForCategory(category string) LimitOption {
	return func(l *model.CreditLimit) { l.Category = category }
}

// WithThreshold sets the alert threshold percentage.
func WithThreshold(threshold float64) LimitOption {
	return func(l *model.CreditLimit) { l.AlertThreshold = threshold }
}
