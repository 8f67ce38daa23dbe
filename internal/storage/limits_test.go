package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/debt-manager/internal/common"
	"github.com/Veraticus/debt-manager/internal/model"
	"github.com/Veraticus/debt-manager/internal/usage"
	"github.com/shopspring/decimal"
)

func TestSQLiteStorage_LimitRoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	limit := createTestLimit("lim-1")
	if err := store.CreateLimit(ctx, limit); err != nil {
		t.Fatalf("CreateLimit() error: %v", err)
	}

	got, err := store.GetLimit(ctx, "lim-1")
	if err != nil {
		t.Fatalf("GetLimit() error: %v", err)
	}
	if got.Name != limit.Name || got.LimitType != model.LimitMonthly || got.Category != "business" {
		t.Errorf("unexpected limit: %+v", got)
	}
	if !got.LimitAmount.Equal(limit.LimitAmount) {
		t.Errorf("LimitAmount = %s, want %s", got.LimitAmount, limit.LimitAmount)
	}
	if !got.StartDate.Equal(limit.StartDate) {
		t.Errorf("StartDate = %v, want %v", got.StartDate, limit.StartDate)
	}
	if got.EndDate != nil {
		t.Errorf("EndDate = %v, want nil", got.EndDate)
	}
	if got.AlertThreshold != 75 {
		t.Errorf("AlertThreshold = %v, want 75", got.AlertThreshold)
	}
}

func TestSQLiteStorage_UpdateLimit(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	limit := createTestLimit("lim-1")
	if err := store.CreateLimit(ctx, limit); err != nil {
		t.Fatalf("CreateLimit() error: %v", err)
	}

	end := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	limit.EndDate = &end
	limit.LimitType = model.LimitCustom
	limit.LimitAmount = decimal.NewFromInt(900)
	if err := store.UpdateLimit(ctx, limit); err != nil {
		t.Fatalf("UpdateLimit() error: %v", err)
	}

	got, err := store.GetLimit(ctx, "lim-1")
	if err != nil {
		t.Fatalf("GetLimit() error: %v", err)
	}
	if got.EndDate == nil || !got.EndDate.Equal(end) {
		t.Errorf("EndDate = %v, want %v", got.EndDate, end)
	}
	if got.LimitType != model.LimitCustom || !got.LimitAmount.Equal(decimal.NewFromInt(900)) {
		t.Errorf("update not persisted: %+v", got)
	}

	missing := createTestLimit("nope")
	if err := store.UpdateLimit(ctx, missing); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound updating missing limit, got %v", err)
	}
}

func TestSQLiteStorage_LimitValidation(t *testing.T) {
	tests := []struct {
		mutate func(*model.CreditLimit)
		name   string
	}{
		{name: "zero amount", mutate: func(l *model.CreditLimit) { l.LimitAmount = decimal.Zero }},
		{name: "negative amount", mutate: func(l *model.CreditLimit) { l.LimitAmount = decimal.NewFromInt(-5) }},
		{name: "unknown type", mutate: func(l *model.CreditLimit) { l.LimitType = "fortnightly" }},
		{name: "missing start", mutate: func(l *model.CreditLimit) { l.StartDate = time.Time{} }},
		{name: "missing name", mutate: func(l *model.CreditLimit) { l.Name = " " }},
		{name: "negative threshold", mutate: func(l *model.CreditLimit) { l.AlertThreshold = -1 }},
	}

	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit := createTestLimit("lim-" + tt.name)
			tt.mutate(limit)
			if err := store.CreateLimit(ctx, limit); !errors.Is(err, ErrInvalidLimit) {
				t.Errorf("CreateLimit() error = %v, want ErrInvalidLimit", err)
			}
		})
	}
}

func TestSQLiteStorage_DeleteLimit(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.CreateLimit(ctx, createTestLimit("lim-1")); err != nil {
		t.Fatalf("CreateLimit() error: %v", err)
	}
	if err := store.CreateLimit(ctx, createTestLimit("lim-1")); !errors.Is(err, common.ErrDuplicateEntry) {
		t.Errorf("expected ErrDuplicateEntry, got %v", err)
	}
	if err := store.DeleteLimit(ctx, "lim-1"); err != nil {
		t.Fatalf("DeleteLimit() error: %v", err)
	}
	if err := store.DeleteLimit(ctx, "lim-1"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}

	limits, err := store.GetLimits(ctx)
	if err != nil {
		t.Fatalf("GetLimits() error: %v", err)
	}
	if len(limits) != 0 {
		t.Errorf("expected no limits, got %d", len(limits))
	}
}

func TestSQLiteStorage_LimitEndDateKeepsCalendarDay(t *testing.T) {
	zones := []*time.Location{
		time.FixedZone("UTC+3", 3*60*60),
		time.FixedZone("UTC-5", -5*60*60),
		time.FixedZone("UTC+14", 14*60*60),
	}

	for _, loc := range zones {
		t.Run(loc.String(), func(t *testing.T) {
			store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "tz.db"), WithLocation(loc))
			if err != nil {
				t.Fatalf("NewSQLiteStorage() error: %v", err)
			}
			defer func() { _ = store.Close() }()
			ctx := context.Background()
			if err := store.Migrate(ctx); err != nil {
				t.Fatalf("Migrate() error: %v", err)
			}

			start := time.Date(2024, time.May, 1, 0, 0, 0, 0, loc)
			end := time.Date(2024, time.May, 14, 0, 0, 0, 0, loc)
			limit := &model.CreditLimit{
				ID:          "trip",
				Name:        "Trip",
				LimitAmount: decimal.NewFromInt(500),
				LimitType:   model.LimitCustom,
				StartDate:   start,
				EndDate:     &end,
			}
			if err := store.CreateLimit(ctx, limit); err != nil {
				t.Fatalf("CreateLimit() error: %v", err)
			}

			got, err := store.GetLimit(ctx, "trip")
			if err != nil {
				t.Fatalf("GetLimit() error: %v", err)
			}
			if got.EndDate == nil || !got.EndDate.Equal(end) {
				t.Fatalf("EndDate = %v, want %v", got.EndDate, end)
			}
			if got.EndDate.Format("2006-01-02") != "2024-05-14" || got.StartDate.Format("2006-01-02") != "2024-05-01" {
				t.Errorf("dates shifted: start %v end %v", got.StartDate, got.EndDate)
			}

			window, err := usage.ResolveWindow(got, time.Date(2024, time.June, 1, 0, 0, 0, 0, loc))
			if err != nil {
				t.Fatalf("ResolveWindow() error: %v", err)
			}
			txns := []model.Transaction{
				{ID: "noon", AccountID: "acc-1", Kind: model.KindWithdrawal, Amount: 100, OccurredAt: time.Date(2024, time.May, 14, 12, 0, 0, 0, loc)},
				{ID: "late", AccountID: "acc-1", Kind: model.KindWithdrawal, Amount: 50, OccurredAt: time.Date(2024, time.May, 14, 23, 59, 0, 0, loc)},
				{ID: "after", AccountID: "acc-1", Kind: model.KindWithdrawal, Amount: 25, OccurredAt: time.Date(2024, time.May, 15, 0, 0, 0, 0, loc)},
			}
			result := usage.ComputeUsage(got, window, txns)
			if !result.UsedAmount.Equal(decimal.NewFromInt(150)) {
				t.Errorf("UsedAmount = %s, want 150 (whole end day, nothing after)", result.UsedAmount)
			}

			limits, err := store.GetLimits(ctx)
			if err != nil {
				t.Fatalf("GetLimits() error: %v", err)
			}
			if len(limits) != 1 {
				t.Fatalf("expected 1 limit, got %d", len(limits))
			}
			if !limits[0].EndDate.Equal(end) {
				t.Errorf("GetLimits() end date = %v, want %v", limits[0].EndDate, end)
			}
		})
	}
}
