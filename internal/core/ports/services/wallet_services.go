package services

import (
	"context"
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/a7a6j4/pieV1/internal/dto"
)

// WalletReaderSvc defines read operations for wallet data
type WalletReaderSvc interface {
	// GetWalletByID retrieves a specific wallet.
	GetWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error)

	// ListWalletsByUser retrieves all wallets belonging to a user.
	ListWalletsByUser(ctx context.Context, userID string) ([]domain.Wallet, error)

	// GetWalletBalance derives a wallet's balance from its completed transactions.
	GetWalletBalance(ctx context.Context, walletID string, asOf time.Time) (*domain.WalletBalance, error)

	// ListWalletTransactions retrieves a page of a wallet's statement.
	ListWalletTransactions(ctx context.Context, walletID string, params dto.ListWalletTransactionsParams) (*dto.ListWalletTransactionsResponse, error)
}

// WalletWriterSvc defines write operations for wallet data
type WalletWriterSvc interface {
	// CreateWallet opens a wallet for a user and currency. A user holds at most
	// one wallet per currency.
	CreateWallet(ctx context.Context, req dto.CreateWalletRequest, creatorUserID string) (*domain.Wallet, error)

	// SetWalletActive toggles a wallet's active flag.
	SetWalletActive(ctx context.Context, walletID string, active bool, requestingUserID string) error

	// RecordTransaction posts a cash movement on a wallet together with its
	// journal, atomically. Outflows are rejected when they exceed the derived
	// balance.
	RecordTransaction(ctx context.Context, walletID string, req dto.RecordWalletTransactionRequest, requestingUserID string) (*domain.WalletTransaction, error)
}

// WalletSvcFacade combines all wallet service interfaces
// This is a facade for clients that need access to all operations
type WalletSvcFacade interface {
	WalletReaderSvc
	WalletWriterSvc
}
