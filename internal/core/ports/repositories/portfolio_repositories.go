package repositories

import (
	"context"
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PortfolioReader defines read operations for portfolio data
type PortfolioReader interface {
	// FindPortfolioByID retrieves a specific portfolio by its unique identifier.
	FindPortfolioByID(ctx context.Context, portfolioID string) (*domain.Portfolio, error)

	// ListPortfoliosByUser retrieves all portfolios belonging to a user.
	ListPortfoliosByUser(ctx context.Context, userID string) ([]domain.Portfolio, error)
}

// PortfolioWriter defines write operations for portfolio data
type PortfolioWriter interface {
	// SavePortfolio persists a new portfolio.
	SavePortfolio(ctx context.Context, portfolio domain.Portfolio) error

	// SetPortfolioActive toggles a portfolio's active flag.
	SetPortfolioActive(ctx context.Context, portfolioID string, active bool, userID string, now time.Time) error

	// FindPortfolioForUpdate selects a portfolio and locks its row until the transaction ends.
	FindPortfolioForUpdate(ctx context.Context, tx pgx.Tx, portfolioID string) (*domain.Portfolio, error)
}

// VariableLedgerReader defines read operations for the unit-based position ledger
type VariableLedgerReader interface {
	// ListVariableMovements retrieves a portfolio's movements for one product,
	// ordered by date, up to a cutoff.
	ListVariableMovements(ctx context.Context, portfolioID string, productID string, asOf time.Time) ([]domain.VariableMovement, error)

	// ListHeldProductIDs retrieves the distinct product IDs with ledger activity
	// in a portfolio.
	ListHeldProductIDs(ctx context.Context, portfolioID string) ([]string, error)
}

// VariableLedgerWriter defines write operations for the unit-based position ledger
type VariableLedgerWriter interface {
	// SaveVariableMovementInTx appends one ledger row inside the caller's transaction.
	SaveVariableMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.VariableMovement) error

	// SumVariableUnitsInTx derives the net units held for one product within the
	// caller's transaction.
	SumVariableUnitsInTx(ctx context.Context, tx pgx.Tx, portfolioID string, productID string) (decimal.Decimal, error)
}

// DepositReader defines read operations for fixed-income placements
type DepositReader interface {
	// FindDepositByID retrieves a specific deposit.
	FindDepositByID(ctx context.Context, depositID string) (*domain.PortfolioDeposit, error)

	// ListDepositsByPortfolio retrieves a portfolio's deposits, open ones first.
	ListDepositsByPortfolio(ctx context.Context, portfolioID string, includeClosed bool) ([]domain.PortfolioDeposit, error)

	// ListDepositMovements retrieves a deposit's ledger rows ordered by date.
	ListDepositMovements(ctx context.Context, depositID string) ([]domain.DepositMovement, error)

	// ListMaturedOpenDeposits retrieves deposits past maturity that are not yet closed.
	ListMaturedOpenDeposits(ctx context.Context, asOf time.Time) ([]domain.PortfolioDeposit, error)
}

// DepositWriter defines write operations for fixed-income placements
type DepositWriter interface {
	// SaveDepositInTx persists a new deposit inside the caller's transaction.
	SaveDepositInTx(ctx context.Context, tx pgx.Tx, deposit domain.PortfolioDeposit) error

	// SaveDepositMovementInTx appends one deposit ledger row inside the caller's transaction.
	SaveDepositMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.DepositMovement) error

	// FindDepositForUpdate selects a deposit and locks its row until the transaction ends.
	FindDepositForUpdate(ctx context.Context, tx pgx.Tx, depositID string) (*domain.PortfolioDeposit, error)

	// CloseDepositInTx marks a deposit closed inside the caller's transaction.
	CloseDepositInTx(ctx context.Context, tx pgx.Tx, depositID string, matured bool, closedDate time.Time, userID string) error
}

// PortfolioTransactionReader defines read operations for order legs and batches
type PortfolioTransactionReader interface {
	// FindPortfolioTransactionByID retrieves a specific order leg.
	FindPortfolioTransactionByID(ctx context.Context, transactionID string) (*domain.PortfolioTransaction, error)

	// ListTransactionsByPortfolio retrieves a page of a portfolio's order legs.
	ListTransactionsByPortfolio(ctx context.Context, portfolioID string, limit int, offset int) ([]domain.PortfolioTransaction, error)

	// FindBatchByID retrieves a batch header.
	FindBatchByID(ctx context.Context, batchID string) (*domain.TransactionBatch, error)

	// ListTransactionsByBatch retrieves all legs of a batch.
	ListTransactionsByBatch(ctx context.Context, batchID string) ([]domain.PortfolioTransaction, error)
}

// PortfolioTransactionWriter defines write operations for order legs and batches
type PortfolioTransactionWriter interface {
	// SaveBatchInTx persists a batch header inside the caller's transaction.
	SaveBatchInTx(ctx context.Context, tx pgx.Tx, batch domain.TransactionBatch) error

	// SavePortfolioTransactionInTx persists an order leg inside the caller's transaction.
	SavePortfolioTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.PortfolioTransaction) error

	// FindPortfolioTransactionForUpdate selects an order leg and locks its row.
	FindPortfolioTransactionForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.PortfolioTransaction, error)

	// UpdatePortfolioTransactionInTx updates a leg's status and journal linkage.
	UpdatePortfolioTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string, status domain.TransactionStatus, journalID *string, userID string, now time.Time) error
}

// PortfolioRepositoryFacade combines all portfolio-related repository interfaces
// This is a facade for clients that need access to all operations
type PortfolioRepositoryFacade interface {
	PortfolioReader
	PortfolioWriter
	VariableLedgerReader
	VariableLedgerWriter
	DepositReader
	DepositWriter
	PortfolioTransactionReader
	PortfolioTransactionWriter
}

// PortfolioRepositoryWithTx extends PortfolioRepositoryFacade with transaction capabilities
type PortfolioRepositoryWithTx interface {
	PortfolioRepositoryFacade
	TransactionManager
}
