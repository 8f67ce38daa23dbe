package usage

import (
	"fmt"
	"math"
	"time"

	"github.com/Veraticus/debt-manager/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CheckTransaction reports why tx cannot be aggregated, or nil.
// Aggregation skips such rows instead of failing; callers may use this to
// log or count them.
func CheckTransaction(tx model.Transaction) error {
	switch {
	case math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0):
		return fmt.Errorf("%w: %s has non-finite amount", ErrMalformedTransaction, tx.ID)
	case tx.Amount < 0:
		return fmt.Errorf("%w: %s has negative amount", ErrMalformedTransaction, tx.ID)
	case tx.OccurredAt.IsZero():
		return fmt.Errorf("%w: %s has no occurrence time", ErrMalformedTransaction, tx.ID)
	}
	return nil
}

// ComputeUsage sums the transactions that fall in window and match the
// limit's category, and derives available amount, utilization and status.
//
// Every qualifying transaction adds to usage regardless of kind. Neither the
// available amount nor the utilization is clamped, so an over-limit state
// shows up as a negative available amount and a percentage above 100.
func ComputeUsage(limit *model.CreditLimit, window model.Window, txns []model.Transaction) model.UsageResult {
	used := decimal.Zero
	var counted, skipped int

	for _, tx := range txns {
		if CheckTransaction(tx) != nil {
			skipped++
			continue
		}
		if !window.Contains(tx.OccurredAt) {
			continue
		}
		if limit.Category != "" && tx.Category != limit.Category {
			continue
		}
		used = used.Add(decimal.NewFromFloat(tx.Amount))
		counted++
	}

	result := model.UsageResult{
		UsedAmount:      used,
		AvailableAmount: limit.LimitAmount.Sub(used),
		Counted:         counted,
		Skipped:         skipped,
	}
	result.UtilizationPercentage = Utilization(used, limit.LimitAmount)
	result.Status = StatusFor(used, limit.LimitAmount, limit.Threshold())

	return result
}

// Utilization returns used as a rounded whole percentage of limit.
// A non-positive limit yields 0.
func Utilization(used, limit decimal.Decimal) int64 {
	if !limit.IsPositive() {
		return 0
	}
	return used.Div(limit).Mul(hundred).Round(0).IntPart()
}

// StatusFor maps usage against a limit onto a status tier. Danger follows the
// rounded percentage, so a limit shown at 100% is always danger. The warning
// tier compares the exact ratio, so 799 of 1000 stays below an 80% threshold
// even though it displays as 80%.
func StatusFor(used, limit decimal.Decimal, threshold float64) model.Status {
	if !limit.IsPositive() {
		return model.StatusNormal
	}
	pct := used.Mul(hundred)
	switch {
	case Utilization(used, limit) >= 100:
		return model.StatusDanger
	case pct.GreaterThanOrEqual(limit.Mul(decimal.NewFromFloat(threshold))):
		return model.StatusWarning
	default:
		return model.StatusNormal
	}
}

// Evaluate resolves the limit's window at now and computes its usage.
// Invalid limits are returned as *InvalidLimitError.
func Evaluate(limit *model.CreditLimit, now time.Time, txns []model.Transaction) (model.Window, model.UsageResult, error) {
	window, err := ResolveWindow(limit, now)
	if err != nil {
		return model.Window{}, model.UsageResult{}, err
	}
	return window, ComputeUsage(limit, window, txns), nil
}

// DeriveAccountUsage recomputes an account's used amount from its ledger:
// withdrawals add, payments subtract. Entries for other accounts, with an
// unknown kind, or with a non-finite or negative amount are ignored. The
// result is not clamped; a negative value is a credit balance.
func DeriveAccountUsage(accountID string, txns []model.Transaction) decimal.Decimal {
	used := decimal.Zero
	for _, tx := range txns {
		if tx.AccountID != accountID {
			continue
		}
		if math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) || tx.Amount < 0 {
			continue
		}
		amount := decimal.NewFromFloat(tx.Amount)
		switch tx.Kind {
		case model.KindWithdrawal:
			used = used.Add(amount)
		case model.KindPayment:
			used = used.Sub(amount)
		}
	}
	return used
}

// AvailableCredit is the unclamped headroom left on an account.
func AvailableCredit(creditLimit, used decimal.Decimal) decimal.Decimal {
	return creditLimit.Sub(used)
}
