package utils

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMinorUnits renders an amount held in minor units (kobo, cents) as a
// display string for the given ISO currency code, e.g. 150000 NGN -> "₦1,500.00".
func FormatMinorUnits(amount decimal.Decimal, currencyCode string) string {
	return money.New(amount.IntPart(), currencyCode).Display()
}
