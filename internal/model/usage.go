package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the coarse risk tier of a limit's utilization.
type Status string

const (
	// StatusNormal means utilization is below the alert threshold.
	StatusNormal Status = "normal"
	// StatusWarning means utilization reached the alert threshold.
	StatusWarning Status = "warning"
	// StatusDanger means the limit is fully used or exceeded.
	StatusDanger Status = "danger"
)

// Window is the half-open interval [Start, End) a limit is evaluated over.
type Window struct {
	Start time.Time
	End   time.Time
}

// Empty reports whether no instant can fall inside the window.
func (w Window) Empty() bool {
	return !w.End.After(w.Start)
}

// Contains reports whether t lies in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// UsageResult is the derived usage of one limit over one window.
type UsageResult struct {
	UsedAmount            decimal.Decimal
	AvailableAmount       decimal.Decimal
	Status                Status
	UtilizationPercentage int64
	Counted               int // Transactions that contributed to UsedAmount
	Skipped               int // Malformed transactions that were ignored
}
