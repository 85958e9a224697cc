package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// VariablePosition is a unit-based holding aggregated from the variable ledger.
type VariablePosition struct {
	PortfolioID string          `json:"portfolioID"`
	Product     Product         `json:"product"`
	NetUnits    decimal.Decimal `json:"netUnits"`
	NetAmount   decimal.Decimal `json:"netAmount"` // Net invested consideration, minor units
	VWAC        decimal.Decimal `json:"vwac"`      // Weighted-average cost per unit
}

// AssetValuation is one priced line of a portfolio valuation.
type AssetValuation struct {
	Product               Product         `json:"product"`
	Category              ProductCategory `json:"category"`
	InvestedAmount        decimal.Decimal `json:"investedAmount"`
	CurrentValue          decimal.Decimal `json:"currentValue"`
	CurrentPrice          decimal.Decimal `json:"currentPrice,omitempty"`
	VWAC                  decimal.Decimal `json:"vwac,omitempty"`
	NetUnits              decimal.Decimal `json:"netUnits,omitempty"`
	Performance           decimal.Decimal `json:"performance"`
	HoldingDays           int             `json:"holdingDays,omitempty"`
	AnnualizedPerformance decimal.Decimal `json:"annualizedPerformance,omitempty"`
}

// PortfolioValuation aggregates a portfolio's priced positions per currency.
// USD totals are also rolled up into the NGN figure via the rate provider at
// reporting time.
type PortfolioValuation struct {
	PortfolioID    string           `json:"portfolioID"`
	TotalValueNGN  decimal.Decimal  `json:"totalValueNGN"`
	TotalValueUSD  decimal.Decimal  `json:"totalValueUSD"`
	PerformanceNGN decimal.Decimal  `json:"performanceNGN"`
	PerformanceUSD decimal.Decimal  `json:"performanceUSD"`
	Assets         []AssetValuation `json:"assets"`
	AsOf           time.Time        `json:"asOf"`
}

// ExchangeRate is a stored conversion rate effective from a given date.
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"` // Primary Key (UUID)
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	DateEffective    time.Time       `json:"dateEffective"`
	AuditFields
}
