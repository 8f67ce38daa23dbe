// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/debt-manager/internal/model"
	"github.com/shopspring/decimal"
)

// TransactionFilter defines filtering options for transaction queries.
// Zero values leave a dimension unfiltered; EndDate is exclusive.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	AccountID string
	Category  string
	Kind      model.TransactionKind
	Limit     int
	Offset    int
}

// Snapshot is a consistent read of everything the usage engine needs.
type Snapshot struct {
	TakenAt      time.Time
	Accounts     []model.CreditAccount
	Limits       []model.CreditLimit
	Transactions []model.Transaction
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Ledger operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactionCount(ctx context.Context) (int, error)

	// Account operations
	CreateAccount(ctx context.Context, account *model.CreditAccount) error
	GetAccount(ctx context.Context, id string) (*model.CreditAccount, error)
	GetAccounts(ctx context.Context) ([]model.CreditAccount, error)
	UpdateAccountUsed(ctx context.Context, id string, used decimal.Decimal) error
	DeleteAccount(ctx context.Context, id string) error

	// Credit limit operations
	CreateLimit(ctx context.Context, limit *model.CreditLimit) error
	GetLimit(ctx context.Context, id string) (*model.CreditLimit, error)
	GetLimits(ctx context.Context) ([]model.CreditLimit, error)
	UpdateLimit(ctx context.Context, limit *model.CreditLimit) error
	DeleteLimit(ctx context.Context, id string) error

	// LoadSnapshot reads accounts, limits and transactions in one read transaction.
	LoadSnapshot(ctx context.Context) (*Snapshot, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}
