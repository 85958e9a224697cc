package services

import (
	"context"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/a7a6j4/pieV1/internal/dto"
)

// OrderReaderSvc defines read operations for orders and batches
type OrderReaderSvc interface {
	// GetTransactionByID retrieves a specific order leg.
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.PortfolioTransaction, error)

	// GetBatch retrieves a batch with its legs and aggregate status.
	GetBatch(ctx context.Context, batchID string) (*dto.BatchResponse, error)

	// ListTransactionsByPortfolio retrieves a page of a portfolio's order legs.
	ListTransactionsByPortfolio(ctx context.Context, portfolioID string, limit int, offset int) ([]domain.PortfolioTransaction, error)
}

// OrderWriterSvc defines the order lifecycle operations
type OrderWriterSvc interface {
	// PlaceOrder validates an order's legs, debits the funding wallet, posts the
	// initiation journals and enqueues settlement tasks, all atomically.
	PlaceOrder(ctx context.Context, portfolioID string, req dto.PlaceOrderRequest, requestingUserID string) (*dto.BatchResponse, error)

	// CompleteTransaction settles a pending leg: appends position ledger rows,
	// posts the settlement journal and marks the leg COMPLETED.
	CompleteTransaction(ctx context.Context, transactionID string, req dto.SettleTransactionRequest, requestingUserID string) (*domain.PortfolioTransaction, error)

	// FailTransaction marks a pending leg FAILED and refunds the funding wallet.
	FailTransaction(ctx context.Context, transactionID string, req dto.FailTransactionRequest, requestingUserID string) (*domain.PortfolioTransaction, error)

	// LiquidateDeposit closes a fixed-income placement, credits principal and
	// net interest to the wallet and applies the early-exit penalty when the
	// deposit has not matured.
	LiquidateDeposit(ctx context.Context, depositID string, req dto.LiquidateDepositRequest, requestingUserID string) (*domain.PortfolioTransaction, error)
}

// OrderSvcFacade combines all order service interfaces
// This is a facade for clients that need access to all operations
type OrderSvcFacade interface {
	OrderReaderSvc
	OrderWriterSvc
}
