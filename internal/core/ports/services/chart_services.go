package services

import (
	"context"
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/a7a6j4/pieV1/internal/dto"
)

// ChartReaderSvc defines read operations for the chart of accounts
type ChartReaderSvc interface {
	// GetAccountByID retrieves a specific account by its ID.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error)

	// GetAccountBalance derives an account's balance from its postings as of a date.
	// Header account balances aggregate the whole subtree.
	GetAccountBalance(ctx context.Context, accountID string, asOf time.Time) (*domain.AccountSummary, error)

	// ListAccountEntries retrieves a page of an account's statement.
	ListAccountEntries(ctx context.Context, accountID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// ChartWriterSvc defines write operations for the chart of accounts
type ChartWriterSvc interface {
	// CreateAccount persists a new account after structural validation.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// UpdateAccount updates an account's mutable details.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, requestingUserID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive. Fails if the account still
	// carries a nonzero balance or has active children.
	DeactivateAccount(ctx context.Context, accountID string, requestingUserID string) error

	// MapSystemAccount binds a platform posting purpose and currency to a
	// detail account. Remapping a purpose replaces the previous binding.
	MapSystemAccount(ctx context.Context, req dto.MapSystemAccountRequest, requestingUserID string) error
}

// ChartSvcFacade combines all chart-of-accounts service interfaces
// This is a facade for clients that need access to all operations
type ChartSvcFacade interface {
	ChartReaderSvc
	ChartWriterSvc
}
