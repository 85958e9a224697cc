package repositories

import (
	"context"
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletReader defines read operations for wallet data
type WalletReader interface {
	// FindWalletByID retrieves a specific wallet by its unique identifier.
	FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error)

	// FindWalletByUserAndCurrency retrieves a user's wallet for one currency.
	FindWalletByUserAndCurrency(ctx context.Context, userID string, currencyCode string) (*domain.Wallet, error)

	// ListWalletsByUser retrieves all wallets belonging to a user.
	ListWalletsByUser(ctx context.Context, userID string) ([]domain.Wallet, error)
}

// WalletWriter defines write operations for wallet data
type WalletWriter interface {
	// SaveWallet persists a new wallet.
	SaveWallet(ctx context.Context, wallet domain.Wallet) error

	// SetWalletActive toggles a wallet's active flag.
	SetWalletActive(ctx context.Context, walletID string, active bool, userID string, now time.Time) error
}

// WalletTransactionReader defines read operations for wallet transaction data
type WalletTransactionReader interface {
	// FindWalletTransactionByID retrieves a specific wallet transaction.
	FindWalletTransactionByID(ctx context.Context, transactionID string) (*domain.WalletTransaction, error)

	// ListWalletTransactions retrieves a page of a wallet's transactions using token-based pagination.
	// It returns the transactions, a token for the next page, and an error.
	ListWalletTransactions(ctx context.Context, walletID string, limit int, nextToken *string) ([]domain.WalletTransaction, *string, error)

	// SumCompletedTransactions derives a wallet balance by signed-summing its
	// COMPLETED transactions up to a date.
	SumCompletedTransactions(ctx context.Context, walletID string, asOf time.Time) (decimal.Decimal, error)
}

// WalletTransactionSupport defines operations used inside the wallet write path's
// database transaction.
type WalletTransactionSupport interface {
	// FindWalletForUpdate selects a wallet and locks its row until the transaction ends.
	FindWalletForUpdate(ctx context.Context, tx pgx.Tx, walletID string) (*domain.Wallet, error)

	// SumCompletedTransactionsInTx derives the wallet balance within the caller's transaction.
	SumCompletedTransactionsInTx(ctx context.Context, tx pgx.Tx, walletID string) (decimal.Decimal, error)

	// SaveWalletTransactionInTx persists a wallet transaction inside the caller's transaction.
	SaveWalletTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.WalletTransaction) error

	// UpdateWalletTransactionStatusInTx updates a transaction's status inside the caller's transaction.
	UpdateWalletTransactionStatusInTx(ctx context.Context, tx pgx.Tx, transactionID string, status domain.TransactionStatus, userID string, now time.Time) error
}

// WalletRepositoryFacade combines all wallet-related repository interfaces
// This is a facade for clients that need access to all operations
type WalletRepositoryFacade interface {
	WalletReader
	WalletWriter
	WalletTransactionReader
	WalletTransactionSupport
}

// WalletRepositoryWithTx extends WalletRepositoryFacade with transaction capabilities
type WalletRepositoryWithTx interface {
	WalletRepositoryFacade
	TransactionManager
}
