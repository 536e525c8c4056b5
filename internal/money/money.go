// Package money holds the exact-decimal tax and rounding primitives shared by
// the termination calculator and the settlement services. All amounts are
// decimal; rounding (half-up, 2 places) happens only where a rate is applied.
package money

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rules carries the tax parameters that used to be implicit constants:
// the withholding rate applied to gross compensation and the monthly
// tax-declaration cutoff day.
type Rules struct {
	TaxRatePercent decimal.Decimal
	CutoffDay      int
}

// DefaultRules matches the platform's statutory values: 7% withholding,
// declaration cutoff on the 20th.
func DefaultRules() Rules {
	return Rules{
		TaxRatePercent: decimal.NewFromInt(7),
		CutoffDay:      20,
	}
}

var oneHundred = decimal.NewFromInt(100)

// Round2 rounds half-up to 2 decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Tax computes the withheld tax on a gross amount, rounded half-up to 2
// places at the point the rate is applied.
func (r Rules) Tax(gross decimal.Decimal) decimal.Decimal {
	return Round2(gross.Mul(r.TaxRatePercent).Div(oneHundred))
}

// PercentOf computes pct% of total, rounded half-up to 2 places.
func PercentOf(total, pct decimal.Decimal) decimal.Decimal {
	return Round2(total.Mul(pct).Div(oneHundred))
}

// AfterCutoff reports whether t falls on or after the monthly cutoff day.
func (r Rules) AfterCutoff(t time.Time) bool {
	return t.Day() >= r.CutoffDay
}

// RefundDate returns the deferred-refund date for a termination at t: the
// cutoff day of the following month.
func (r Rules) RefundDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, r.CutoffDay, 0, 0, 0, 0, t.Location())
}

// PeriodOf returns the tax period (year, month, quarter) that t belongs to.
func PeriodOf(t time.Time) (year, month, quarter int) {
	year = t.Year()
	month = int(t.Month())
	quarter = (month-1)/3 + 1
	return year, month, quarter
}
