package dto

import (
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/a7a6j4/pieV1/internal/utils"
	"github.com/shopspring/decimal"
)

// AssetValuationResponse is one priced line of a portfolio valuation.
type AssetValuationResponse struct {
	ProductID             string          `json:"productID"`
	Title                 string          `json:"title"`
	Category              string          `json:"category"`
	CurrencyCode          string          `json:"currencyCode"`
	InvestedAmount        decimal.Decimal `json:"investedAmount"`
	CurrentValue          decimal.Decimal `json:"currentValue"`
	CurrentValueDisplay   string          `json:"currentValueDisplay"`
	CurrentPrice          decimal.Decimal `json:"currentPrice,omitempty"`
	VWAC                  decimal.Decimal `json:"vwac,omitempty"`
	NetUnits              decimal.Decimal `json:"netUnits,omitempty"`
	Performance           decimal.Decimal `json:"performance"`
	AnnualizedPerformance decimal.Decimal `json:"annualizedPerformance,omitempty"`
}

// PortfolioValuationResponse defines the data returned for a portfolio valuation.
type PortfolioValuationResponse struct {
	PortfolioID           string                   `json:"portfolioID"`
	TotalValueNGN         decimal.Decimal          `json:"totalValueNGN"`
	TotalValueNGNDisplay  string                   `json:"totalValueNGNDisplay"`
	TotalValueUSD         decimal.Decimal          `json:"totalValueUSD"`
	TotalValueUSDDisplay  string                   `json:"totalValueUSDDisplay"`
	PerformanceNGN        decimal.Decimal          `json:"performanceNGN"`
	PerformanceUSD        decimal.Decimal          `json:"performanceUSD"`
	Assets                []AssetValuationResponse `json:"assets"`
	AsOf                  time.Time                `json:"asOf"`
}

// ToAssetValuationResponse converts a domain.AssetValuation to its DTO.
func ToAssetValuationResponse(a *domain.AssetValuation) AssetValuationResponse {
	return AssetValuationResponse{
		ProductID:             a.Product.ProductID,
		Title:                 a.Product.Title,
		Category:              string(a.Category),
		CurrencyCode:          a.Product.CurrencyCode,
		InvestedAmount:        a.InvestedAmount,
		CurrentValue:          a.CurrentValue,
		CurrentValueDisplay:   utils.FormatMinorUnits(a.CurrentValue, a.Product.CurrencyCode),
		CurrentPrice:          a.CurrentPrice,
		VWAC:                  a.VWAC,
		NetUnits:              a.NetUnits,
		Performance:           a.Performance,
		AnnualizedPerformance: a.AnnualizedPerformance,
	}
}

// ToPortfolioValuationResponse converts a domain.PortfolioValuation to its DTO.
func ToPortfolioValuationResponse(v *domain.PortfolioValuation) PortfolioValuationResponse {
	assets := make([]AssetValuationResponse, len(v.Assets))
	for i, a := range v.Assets {
		assets[i] = ToAssetValuationResponse(&a)
	}
	return PortfolioValuationResponse{
		PortfolioID:          v.PortfolioID,
		TotalValueNGN:        v.TotalValueNGN,
		TotalValueNGNDisplay: utils.FormatMinorUnits(v.TotalValueNGN, "NGN"),
		TotalValueUSD:        v.TotalValueUSD,
		TotalValueUSDDisplay: utils.FormatMinorUnits(v.TotalValueUSD, "USD"),
		PerformanceNGN:       v.PerformanceNGN,
		PerformanceUSD:       v.PerformanceUSD,
		Assets:               assets,
		AsOf:                 v.AsOf,
	}
}

// CreateExchangeRateRequest defines the data needed to store a conversion rate.
type CreateExchangeRateRequest struct {
	FromCurrencyCode string          `json:"fromCurrencyCode" binding:"required,oneof=NGN USD"`
	ToCurrencyCode   string          `json:"toCurrencyCode" binding:"required,oneof=NGN USD,nefield=FromCurrencyCode"`
	Rate             decimal.Decimal `json:"rate" binding:"required"`
	DateEffective    time.Time       `json:"dateEffective" binding:"required"`
}

// ExchangeRateResponse defines the data returned for an exchange rate.
type ExchangeRateResponse struct {
	ExchangeRateID   string          `json:"exchangeRateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	DateEffective    time.Time       `json:"dateEffective"`
}

// RateQuoteResponse defines the data returned for a rate lookup.
type RateQuoteResponse struct {
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	AsOf             time.Time       `json:"asOf"`
}

// ToExchangeRateResponse converts a domain.ExchangeRate to its DTO.
func ToExchangeRateResponse(r *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ExchangeRateID:   r.ExchangeRateID,
		FromCurrencyCode: r.FromCurrencyCode,
		ToCurrencyCode:   r.ToCurrencyCode,
		Rate:             r.Rate,
		DateEffective:    r.DateEffective,
	}
}
