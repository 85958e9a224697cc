package services

import (
	"context"
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/a7a6j4/pieV1/internal/dto"
	"github.com/shopspring/decimal"
)

// PortfolioReaderSvc defines read operations for portfolios and positions
type PortfolioReaderSvc interface {
	// GetPortfolioByID retrieves a specific portfolio.
	GetPortfolioByID(ctx context.Context, portfolioID string) (*domain.Portfolio, error)

	// ListPortfoliosByUser retrieves all portfolios belonging to a user.
	ListPortfoliosByUser(ctx context.Context, userID string) ([]domain.Portfolio, error)

	// GetVariablePosition replays the unit ledger for one product and returns
	// net units, net invested amount and weighted-average cost.
	GetVariablePosition(ctx context.Context, portfolioID string, productID string, asOf time.Time) (*domain.VariablePosition, error)

	// ListVariablePositions replays the unit ledger for every held product.
	ListVariablePositions(ctx context.Context, portfolioID string, asOf time.Time) ([]domain.VariablePosition, error)

	// ListDeposits retrieves a portfolio's fixed-income placements.
	ListDeposits(ctx context.Context, portfolioID string, includeClosed bool) ([]domain.PortfolioDeposit, error)

	// GetDepositValue reconstructs a deposit's value as of a date, accruing
	// interest and withholding tax day by day from the effective date.
	GetDepositValue(ctx context.Context, depositID string, asOf time.Time) (*domain.DepositValue, error)
}

// PortfolioWriterSvc defines write operations for portfolios
type PortfolioWriterSvc interface {
	// CreatePortfolio opens a new portfolio for a user.
	CreatePortfolio(ctx context.Context, req dto.CreatePortfolioRequest, creatorUserID string) (*domain.Portfolio, error)

	// SetPortfolioActive toggles a portfolio's active flag.
	SetPortfolioActive(ctx context.Context, portfolioID string, active bool, requestingUserID string) error
}

// DepositCalculatorSvc defines the interest arithmetic shared by valuation and
// liquidation.
type DepositCalculatorSvc interface {
	// AccrueInterest computes gross interest, withholding tax and net interest
	// for a principal at an annualized rate over a number of days.
	AccrueInterest(ctx context.Context, principal decimal.Decimal, rate decimal.Decimal, days int, taxable bool) (gross, tax, net decimal.Decimal)
}

// PortfolioSvcFacade combines all portfolio service interfaces
// This is a facade for clients that need access to all operations
type PortfolioSvcFacade interface {
	PortfolioReaderSvc
	PortfolioWriterSvc
	DepositCalculatorSvc
}
