package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/debt-manager/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidLimit       = errors.New("invalid credit limit")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i, txn := range transactions {
		if err := validateTransaction(&txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single ledger entry. The ledger only
// accepts well formed rows even though the usage engine tolerates bad ones.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.AccountID == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	if !txn.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidTransaction, txn.Kind)
	}
	if txn.OccurredAt.IsZero() {
		return fmt.Errorf("%w: missing occurrence time", ErrInvalidTransaction)
	}
	if math.IsNaN(txn.Amount) || math.IsInf(txn.Amount, 0) {
		return fmt.Errorf("%w: amount is not finite", ErrInvalidTransaction)
	}
	if txn.Amount < 0 {
		return fmt.Errorf("%w: amount cannot be negative", ErrInvalidTransaction)
	}
	return nil
}

// validateAccount validates a credit account.
func validateAccount(account *model.CreditAccount) error {
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if strings.TrimSpace(account.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidAccount)
	}
	if strings.TrimSpace(account.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidAccount)
	}
	if account.CreditLimit.IsNegative() {
		return fmt.Errorf("%w: credit limit cannot be negative", ErrInvalidAccount)
	}
	return nil
}

// validateLimit validates a credit limit before it is persisted.
func validateLimit(limit *model.CreditLimit) error {
	if limit == nil {
		return fmt.Errorf("%w: limit", ErrNilParameter)
	}
	if strings.TrimSpace(limit.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidLimit)
	}
	if strings.TrimSpace(limit.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidLimit)
	}
	if !limit.LimitAmount.IsPositive() {
		return fmt.Errorf("%w: limit amount must be positive", ErrInvalidLimit)
	}
	if !limit.LimitType.Valid() {
		return fmt.Errorf("%w: unknown limit type %q", ErrInvalidLimit, limit.LimitType)
	}
	if limit.StartDate.IsZero() {
		return fmt.Errorf("%w: missing start date", ErrInvalidLimit)
	}
	if limit.AlertThreshold < 0 {
		return fmt.Errorf("%w: alert threshold cannot be negative", ErrInvalidLimit)
	}
	return nil
}
