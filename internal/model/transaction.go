// Package model holds the ledger, account and credit limit types shared across
// the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// TransactionKind says which way a ledger entry moves an account balance.
type TransactionKind string

const (
	// KindWithdrawal draws on credit and increases the used amount.
	KindWithdrawal TransactionKind = "withdrawal"
	// KindPayment repays credit and decreases the used amount.
	KindPayment TransactionKind = "payment"
)

// Valid reports whether k is a known transaction kind.
func (k TransactionKind) Valid() bool {
	return k == KindWithdrawal || k == KindPayment
}

// Transaction is a single immutable ledger entry against a credit account.
// Corrections are recorded as new offsetting transactions.
type Transaction struct {
	OccurredAt  time.Time // Attribution time used for limit windows
	RecordedAt  time.Time // When the entry was written
	ID          string
	AccountID   string
	Kind        TransactionKind
	Category    string
	Description string
	Hash        string
	Amount      float64
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s:%s",
		t.OccurredAt.Format("2006-01-02"),
		t.Amount,
		t.Kind,
		t.Description,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
