package repositories

import (
	"context"
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/a7a6j4/pieV1/internal/dto"
)

// AccountReader defines read operations for chart-of-accounts data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its ledger code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts with optional type and currency filters.
	ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error)

	// ListChildAccounts retrieves the direct children of a header account.
	ListChildAccounts(ctx context.Context, parentAccountID string) ([]domain.Account, error)
}

// AccountWriter defines write operations for chart-of-accounts data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's mutable details.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error
}

// SystemAccountReader resolves the platform's posting destinations.
// Each (purpose, currency) pair maps to exactly one detail account.
type SystemAccountReader interface {
	// FindSystemAccount retrieves the account mapped to a purpose and currency.
	FindSystemAccount(ctx context.Context, purpose domain.SystemAccountPurpose, currencyCode string) (*domain.Account, error)
}

// SystemAccountWriter maintains the system account mapping.
type SystemAccountWriter interface {
	// SaveSystemAccountMapping binds a purpose and currency to a detail account.
	SaveSystemAccountMapping(ctx context.Context, purpose domain.SystemAccountPurpose, currencyCode string, accountID string, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
// This is a facade for clients that need access to all operations
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	SystemAccountReader
	SystemAccountWriter
}

// AccountRepositoryWithTx extends AccountRepositoryFacade with transaction capabilities
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TransactionManager
}
