package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditAccount is a line of credit whose usage is recorded in the ledger.
// UsedAmount is a stored running balance and may drift from the ledger.
type CreditAccount struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreditLimit decimal.Decimal
	UsedAmount  decimal.Decimal
	ID          string
	Name        string
}
