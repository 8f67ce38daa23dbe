// Package usage derives credit limit usage and account balances from ledger
// transactions. Every function is pure: no I/O, no retained state.
package usage

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrInvalidLimit marks a structurally invalid limit definition.
	ErrInvalidLimit = errors.New("invalid limit")
	// ErrMalformedTransaction marks a ledger row that cannot be aggregated.
	ErrMalformedTransaction = errors.New("malformed transaction")
)

// InvalidLimitError reports a limit definition that cannot be evaluated.
// It matches ErrInvalidLimit with errors.Is.
type InvalidLimitError struct {
	LimitID string
	Field   string
	Reason  string
}

func (e *InvalidLimitError) Error() string {
	if e.LimitID != "" {
		return fmt.Sprintf("invalid limit %s: %s %s", e.LimitID, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid limit: %s %s", e.Field, e.Reason)
}

// Is lets errors.Is match ErrInvalidLimit.
func (e *InvalidLimitError) Is(target error) bool {
	return target == ErrInvalidLimit
}
