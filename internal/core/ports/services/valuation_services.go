package services

import (
	"context"
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
)

// ValuationSvc defines read-only portfolio valuation operations.
// Valuations are always computed on demand from the position ledgers and the
// latest available prices; nothing here writes.
type ValuationSvc interface {
	// ValuePortfolio prices every position in a portfolio and aggregates
	// totals and performance per currency.
	ValuePortfolio(ctx context.Context, portfolioID string, asOf time.Time) (*domain.PortfolioValuation, error)

	// ValueUserHoldings values all of a user's portfolios and sums the result.
	ValueUserHoldings(ctx context.Context, userID string, asOf time.Time) ([]domain.PortfolioValuation, error)
}
