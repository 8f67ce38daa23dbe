package cli

import (
	"strings"
	"testing"

	"github.com/Veraticus/debt-manager/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{name: "zero", amount: "0", want: "$0.00"},
		{name: "positive", amount: "1234.5", want: "$1234.50"},
		{name: "negative", amount: "-12.5", want: "-$12.50"},
		{name: "rounds", amount: "0.005", want: "$0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestFormatStatus(t *testing.T) {
	for _, status := range []model.Status{model.StatusNormal, model.StatusWarning, model.StatusDanger} {
		t.Run(string(status), func(t *testing.T) {
			assert.Contains(t, FormatStatus(status), strings.ToUpper(string(status)))
		})
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "120%", FormatPercent(120))
	assert.Equal(t, "0%", FormatPercent(0))
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]string{"NAME", "USED"},
		[][]string{
			{"Travel", "$10.00"},
			{"Groceries and household", "$1200.00"},
		},
	)

	lines := strings.Split(out, "\n")
	assert.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, out, "Groceries and household")
	assert.Contains(t, out, "$1200.00")
}

func TestFormatMessages(t *testing.T) {
	assert.Contains(t, FormatSuccess("saved"), "saved")
	assert.Contains(t, FormatError("failed"), "failed")
	assert.Contains(t, FormatWarning("careful"), "careful")
	assert.Contains(t, FormatInfo("note"), "note")
	assert.Contains(t, FormatTitle("Limits"), "Limits")
	assert.Contains(t, RenderBox("Summary", "body"), "body")
}
