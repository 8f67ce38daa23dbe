// Package report turns a ledger snapshot into limit statuses, alerts,
// summaries and account reconciliations.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Veraticus/debt-manager/internal/model"
	"github.com/Veraticus/debt-manager/internal/service"
	"github.com/Veraticus/debt-manager/internal/usage"
	"github.com/shopspring/decimal"
)

// LimitStatus is the evaluated state of one credit limit.
type LimitStatus struct {
	Window model.Window
	Usage  model.UsageResult
	Limit  model.CreditLimit
}

// Summary aggregates a set of limit statuses.
type Summary struct {
	ByStatus       map[model.Status]int
	TotalLimit     decimal.Decimal
	TotalUsed      decimal.Decimal
	TotalAvailable decimal.Decimal
	Utilization    int64
	Limits         int
}

// Reporter evaluates limits and accounts against stored ledger data.
type Reporter struct {
	store service.Storage
}

// NewReporter creates a reporter reading from store.
func NewReporter(store service.Storage) *Reporter {
	return &Reporter{store: store}
}

// LimitStatuses evaluates every stored limit at now against one snapshot.
func (r *Reporter) LimitStatuses(ctx context.Context, now time.Time) ([]LimitStatus, error) {
	snapshot, err := r.store.LoadSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return EvaluateLimits(snapshot.Limits, snapshot.Transactions, now)
}

// EvaluateLimits resolves and computes usage for each limit, ordered by name.
// An invalid limit stops evaluation; the returned error wraps the
// *usage.InvalidLimitError.
func EvaluateLimits(limits []model.CreditLimit, txns []model.Transaction, now time.Time) ([]LimitStatus, error) {
	logMalformed(txns)

	statuses := make([]LimitStatus, 0, len(limits))
	for i := range limits {
		limit := limits[i]
		window, result, err := usage.Evaluate(&limit, now, txns)
		if err != nil {
			return nil, fmt.Errorf("limit %q: %w", limit.Name, err)
		}
		statuses = append(statuses, LimitStatus{
			Limit:  limit,
			Window: window,
			Usage:  result,
		})
	}

	sort.SliceStable(statuses, func(i, j int) bool {
		return statuses[i].Limit.Name < statuses[j].Limit.Name
	})

	return statuses, nil
}

// Alerts returns the statuses at warning or danger, most utilized first.
func Alerts(statuses []LimitStatus) []LimitStatus {
	var alerts []LimitStatus
	for _, status := range statuses {
		if status.Usage.Status == model.StatusWarning || status.Usage.Status == model.StatusDanger {
			alerts = append(alerts, status)
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Usage.UtilizationPercentage != alerts[j].Usage.UtilizationPercentage {
			return alerts[i].Usage.UtilizationPercentage > alerts[j].Usage.UtilizationPercentage
		}
		return alerts[i].Limit.Name < alerts[j].Limit.Name
	})

	return alerts
}

// Summarize totals limits and usage across statuses.
func Summarize(statuses []LimitStatus) Summary {
	summary := Summary{
		ByStatus:   make(map[model.Status]int),
		TotalLimit: decimal.Zero,
		TotalUsed:  decimal.Zero,
		Limits:     len(statuses),
	}

	for _, status := range statuses {
		summary.TotalLimit = summary.TotalLimit.Add(status.Limit.LimitAmount)
		summary.TotalUsed = summary.TotalUsed.Add(status.Usage.UsedAmount)
		summary.ByStatus[status.Usage.Status]++
	}

	summary.TotalAvailable = summary.TotalLimit.Sub(summary.TotalUsed)
	summary.Utilization = usage.Utilization(summary.TotalUsed, summary.TotalLimit)

	return summary
}

// logMalformed reports the number of ledger rows aggregation will skip.
func logMalformed(txns []model.Transaction) {
	skipped := 0
	for _, tx := range txns {
		if err := usage.CheckTransaction(tx); err != nil {
			skipped++
			slog.Debug("Skipping malformed transaction", "error", err)
		}
	}
	if skipped > 0 {
		slog.Warn("Malformed transactions excluded from usage",
			"skipped", skipped,
			"total", len(txns))
	}
}
