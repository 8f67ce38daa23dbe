package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Veraticus/debt-manager/internal/common"
	"github.com/Veraticus/debt-manager/internal/config"
	"github.com/Veraticus/debt-manager/internal/model"
	"github.com/Veraticus/debt-manager/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// loadConfig reads the merged flag, env, file and default settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("invalid configuration", err)
	}
	return cfg, nil
}

// initStorage opens the configured database and brings its schema up to
// date. Lock contention from a concurrent writer is retried.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath, storage.WithLocation(cfg.Location))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := common.WithRetry(ctx, func() error {
		return store.Migrate(ctx)
	}, common.RetryOptions{}); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// openLedger is the usual preamble: config, then storage.
func openLedger(ctx context.Context) (*storage.SQLiteStorage, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

// evaluationTime is the evaluation instant in the configured timezone.
func evaluationTime(cfg *config.Config) time.Time {
	return time.Now().In(cfg.Location)
}

// parseAmount parses a money amount, rejecting negatives.
func parseAmount(flag, value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, common.NewUserError(fmt.Sprintf("--%s must be a number, got %q", flag, value), err)
	}
	if amount.IsNegative() {
		return decimal.Zero, common.NewUserError(fmt.Sprintf("--%s cannot be negative", flag), nil)
	}
	return amount, nil
}

var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseTime parses a date or timestamp in loc. Empty input yields fallback.
func parseTime(flag, value string, loc *time.Location, fallback time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, common.NewUserError(fmt.Sprintf("--%s: cannot parse %q as a date (use YYYY-MM-DD)", flag, value), nil)
}

// parseKind accepts withdrawal/payment and their short forms.
func parseKind(value string) (model.TransactionKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "withdrawal", "w", "charge", "debit":
		return model.KindWithdrawal, nil
	case "payment", "p", "credit":
		return model.KindPayment, nil
	}
	return "", common.NewUserError(fmt.Sprintf("unknown transaction kind %q (use withdrawal or payment)", value), nil)
}

// parseLimitType validates a limit type name.
func parseLimitType(value string) (model.LimitType, error) {
	lt := model.LimitType(strings.ToLower(strings.TrimSpace(value)))
	if lt.Valid() {
		return lt, nil
	}
	names := make([]string, len(model.LimitTypes))
	for i, t := range model.LimitTypes {
		names[i] = string(t)
	}
	return "", common.NewUserError(fmt.Sprintf("unknown limit type %q (use one of %s)", value, strings.Join(names, ", ")), nil)
}

func writeLine(w io.Writer, line string) {
	_, _ = fmt.Fprintln(w, line)
}
