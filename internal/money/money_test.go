package money

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func TestTax(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name  string
		gross string
		want  string
	}{
		{"round amount", "50000", "3500"},
		{"exact cents", "100", "7"},
		{"half up", "10.07", "0.70"}, // 0.7049 rounds down
		{"half up boundary", "10.50", "0.74"},
		{"zero", "0", "0"},
		{"negative gross", "-100", "-7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gross := decimal.RequireFromString(tt.gross)
			want := decimal.RequireFromString(tt.want)
			assert.True(t, rules.Tax(gross).Equal(want),
				"Tax(%s) = %s, want %s", tt.gross, rules.Tax(gross), tt.want)
		})
	}
}

func TestPercentOf(t *testing.T) {
	total := decimal.NewFromInt(1000000)
	pct := decimal.NewFromInt(20)
	assert.True(t, PercentOf(total, pct).Equal(decimal.NewFromInt(200000)))

	odd := decimal.RequireFromString("333.335")
	assert.True(t, PercentOf(odd, decimal.NewFromInt(10)).Equal(decimal.RequireFromString("33.33")))
}

func TestAfterCutoff(t *testing.T) {
	rules := DefaultRules()

	assert.False(t, rules.AfterCutoff(date(2026, time.March, 19)))
	assert.True(t, rules.AfterCutoff(date(2026, time.March, 20)))
	assert.True(t, rules.AfterCutoff(date(2026, time.March, 31)))

	custom := Rules{TaxRatePercent: decimal.NewFromInt(7), CutoffDay: 15}
	assert.False(t, custom.AfterCutoff(date(2026, time.March, 14)))
	assert.True(t, custom.AfterCutoff(date(2026, time.March, 15)))
}

func TestRefundDate(t *testing.T) {
	rules := DefaultRules()

	got := rules.RefundDate(date(2026, time.March, 25))
	require.Equal(t, 2026, got.Year())
	require.Equal(t, time.April, got.Month())
	require.Equal(t, 20, got.Day())

	// Year rollover.
	got = rules.RefundDate(date(2026, time.December, 21))
	require.Equal(t, 2027, got.Year())
	require.Equal(t, time.January, got.Month())
	require.Equal(t, 20, got.Day())

	// End-of-month termination must not skip a month.
	got = rules.RefundDate(date(2026, time.January, 31))
	require.Equal(t, time.February, got.Month())
	require.Equal(t, 20, got.Day())
}

func TestPeriodOf(t *testing.T) {
	tests := []struct {
		month   time.Month
		quarter int
	}{
		{time.January, 1}, {time.March, 1},
		{time.April, 2}, {time.June, 2},
		{time.July, 3}, {time.September, 3},
		{time.October, 4}, {time.December, 4},
	}
	for _, tt := range tests {
		year, month, quarter := PeriodOf(date(2026, tt.month, 10))
		assert.Equal(t, 2026, year)
		assert.Equal(t, int(tt.month), month)
		assert.Equal(t, tt.quarter, quarter, "month %s", tt.month)
	}
}
