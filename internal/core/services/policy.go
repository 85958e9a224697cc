package services

import "github.com/shopspring/decimal"

// Policy carries the platform-wide financial policy inputs. Values come from
// configuration so posting logic never hardcodes a rate.
type Policy struct {
	WithholdingTaxRate decimal.Decimal // Fraction of gross interest withheld, e.g. 0.10
	VATRate            decimal.Decimal // Fraction applied to VATable fee lines, e.g. 0.0075
	FxFallbackRate     decimal.Decimal // NGN per USD used when no stored rate exists
	DayCount           int             // Days per year for interest accrual
}

// DayCountOrDefault guards against a zero-valued config.
func (p Policy) DayCountOrDefault() int {
	if p.DayCount <= 0 {
		return 365
	}
	return p.DayCount
}
