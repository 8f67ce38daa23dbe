package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LimitType is the period over which a credit limit accrues usage.
type LimitType string

const (
	// LimitDaily resets every 24 hours.
	LimitDaily LimitType = "daily"
	// LimitWeekly resets every 7 days.
	LimitWeekly LimitType = "weekly"
	// LimitMonthly resets on the first of each month.
	LimitMonthly LimitType = "monthly"
	// LimitYearly resets on January 1.
	LimitYearly LimitType = "yearly"
	// LimitCustom runs from the start date up to now.
	LimitCustom LimitType = "custom"
)

// DefaultAlertThreshold is the utilization percentage at which a limit is
// flagged as a warning when no threshold is configured.
const DefaultAlertThreshold = 80.0

// LimitTypes lists every supported limit type in display order.
var LimitTypes = []LimitType{LimitDaily, LimitWeekly, LimitMonthly, LimitYearly, LimitCustom}

// Valid reports whether t is a known limit type.
func (t LimitType) Valid() bool {
	for _, lt := range LimitTypes {
		if t == lt {
			return true
		}
	}
	return false
}

// CreditLimit is a spending ceiling that applies to ledger transactions in
// a time window, optionally restricted to one category.
type CreditLimit struct {
	StartDate      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	EndDate        *time.Time // Inclusive calendar day; nil derives the end from LimitType
	LimitAmount    decimal.Decimal
	ID             string
	Name           string
	LimitType      LimitType
	Category       string // Empty means every category counts
	AlertThreshold float64
}

// Threshold returns the effective alert threshold percentage.
func (l *CreditLimit) Threshold() float64 {
	if l.AlertThreshold <= 0 {
		return DefaultAlertThreshold
	}
	return l.AlertThreshold
}
