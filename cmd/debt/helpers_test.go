package main

import (
	"testing"
	"time"

	"github.com/Veraticus/debt-manager/internal/common"
	"github.com/Veraticus/debt-manager/internal/model"
	"github.com/Veraticus/debt-manager/internal/usage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "integer", value: "500", want: "500"},
		{name: "decimal with spaces", value: " 12.34 ", want: "12.34"},
		{name: "zero", value: "0", want: "0"},
		{name: "negative", value: "-1", wantErr: true},
		{name: "garbage", value: "ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmount("amount", tt.value)
			if tt.wantErr {
				var userErr *common.UserError
				assert.ErrorAs(t, err, &userErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := map[string]model.TransactionKind{
		"withdrawal": model.KindWithdrawal,
		"W":          model.KindWithdrawal,
		"charge":     model.KindWithdrawal,
		"payment":    model.KindPayment,
		" Payment ":  model.KindPayment,
	}
	for in, want := range tests {
		got, err := parseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseKind("refund")
	assert.Error(t, err)
}

func TestParseLimitType(t *testing.T) {
	got, err := parseLimitType("Weekly")
	require.NoError(t, err)
	assert.Equal(t, model.LimitWeekly, got)

	_, err = parseLimitType("fortnightly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily, weekly, monthly, yearly, custom")
}

func TestParseTime(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	fallback := time.Date(2024, 2, 2, 0, 0, 0, 0, loc)

	got, err := parseTime("at", "", loc, fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, got)

	got, err = parseTime("at", "2024-03-04 10:30", loc, fallback)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 10, 30, 0, 0, loc), got)

	_, err = parseTime("at", "yesterday", loc, fallback)
	assert.Error(t, err)
}

func TestBuildLimit(t *testing.T) {
	base := limitInput{
		name:      "Groceries",
		amount:    "600",
		limitType: "monthly",
		start:     "2024-01-01",
		threshold: 75,
	}

	limit, err := buildLimit(time.UTC, base)
	require.NoError(t, err)
	assert.NotEmpty(t, limit.ID)
	assert.Equal(t, model.LimitMonthly, limit.LimitType)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), limit.StartDate)
	assert.Nil(t, limit.EndDate)
	assert.Equal(t, 75.0, limit.AlertThreshold)

	withEnd := base
	withEnd.end = "2024-01-31"
	limit, err = buildLimit(time.UTC, withEnd)
	require.NoError(t, err)
	require.NotNil(t, limit.EndDate)
	assert.Equal(t, 31, limit.EndDate.Day())

	tests := []struct {
		mutate func(*limitInput)
		name   string
	}{
		{name: "zero amount", mutate: func(in *limitInput) { in.amount = "0" }},
		{name: "bad type", mutate: func(in *limitInput) { in.limitType = "hourly" }},
		{name: "bad start", mutate: func(in *limitInput) { in.start = "01/02/2024" }},
		{name: "end before start", mutate: func(in *limitInput) { in.end = "2023-12-31" }},
		{name: "negative alert", mutate: func(in *limitInput) { in.threshold = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := buildLimit(time.UTC, in)
			assert.Error(t, err)
		})
	}
}

func TestBuildLimit_ZeroAmountIsInvalidLimit(t *testing.T) {
	in := limitInput{name: "x", amount: "0", limitType: "daily", start: "2024-01-01"}
	_, err := buildLimit(time.UTC, in)
	assert.ErrorIs(t, err, usage.ErrInvalidLimit)
}
