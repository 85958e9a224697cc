package services

import (
	"context"
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RateProvider supplies currency conversion rates. Implementations may read
// stored rates, call an external source, or fall back to a configured default.
type RateProvider interface {
	// Rate returns the conversion rate from one currency to another as of a date.
	Rate(ctx context.Context, fromCurrency string, toCurrency string, asOf time.Time) (decimal.Decimal, error)
}

// RateRecorder stores conversion rate observations for later lookups.
type RateRecorder interface {
	// RecordRate persists a new rate effective from a given date.
	RecordRate(ctx context.Context, fromCurrency string, toCurrency string, rate decimal.Decimal, dateEffective time.Time, userID string) (*domain.ExchangeRate, error)
}

// ExchangeRateSvcFacade combines rate lookup and rate administration.
type ExchangeRateSvcFacade interface {
	RateProvider
	RateRecorder
}

// PriceProvider supplies product prices for valuation.
type PriceProvider interface {
	// PriceAsOf returns the latest known price observation on or before a date.
	PriceAsOf(ctx context.Context, product *domain.Product, asOf time.Time) (*domain.PricePoint, error)
}

// SettlementInstruction is the payload handed to the settlement gateway for
// one pending order leg.
type SettlementInstruction struct {
	TransactionID string // Doubles as the idempotency key
	PortfolioID   string
	ProductID     string
	Type          domain.TransactionType
	Amount        decimal.Decimal
	CurrencyCode  string
}

// SettlementGateway submits order legs to the execution venue. Submissions
// are idempotent on the transaction ID: redelivering an instruction that was
// already accepted must be a no-op.
type SettlementGateway interface {
	Submit(ctx context.Context, instruction SettlementInstruction) error
}
