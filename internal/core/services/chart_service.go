package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/a7a6j4/pieV1/internal/apperrors"
	"github.com/a7a6j4/pieV1/internal/core/domain"
	portsrepo "github.com/a7a6j4/pieV1/internal/core/ports/repositories"
	portssvc "github.com/a7a6j4/pieV1/internal/core/ports/services"
	"github.com/a7a6j4/pieV1/internal/dto"
	"github.com/a7a6j4/pieV1/internal/middleware"
	"github.com/a7a6j4/pieV1/internal/utils/accounting"
)

var (
	ErrParentNotHeader   = errors.New("parent account must be a header account")
	ErrParentTypeMatch   = errors.New("account type must match its parent's type")
	ErrAccountHasBalance = errors.New("account still carries a nonzero balance")
	ErrActiveChildren    = errors.New("account still has active children")
)

// chartService manages the chart of accounts and derived account balances.
type chartService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	journalRepo portsrepo.JournalRepositoryFacade
}

// NewChartService creates a new chart-of-accounts service.
func NewChartService(accountRepo portsrepo.AccountRepositoryFacade, journalRepo portsrepo.JournalRepositoryFacade) portssvc.ChartSvcFacade {
	return &chartService{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
	}
}

// Ensure chartService implements the portssvc.ChartSvcFacade interface
var _ portssvc.ChartSvcFacade = (*chartService)(nil)

// CreateAccount persists a new account after structural validation.
// Implements portssvc.ChartSvcFacade
func (s *chartService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:    uuid.NewString(),
		Code:         req.Code,
		Name:         req.Name,
		AccountType:  req.AccountType,
		CurrencyCode: req.CurrencyCode,
		IsHeader:     req.IsHeader,
		Level:        1,
		Description:  req.Description,
		IsActive:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, *req.ParentAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account %s", apperrors.ErrNotFound, *req.ParentAccountID)
			}
			logger.Error("Failed to fetch parent account", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to fetch parent account: %w", err)
		}
		if !parent.IsHeader {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrParentNotHeader)
		}
		if !parent.IsActive {
			return nil, fmt.Errorf("%w: parent account %s is inactive", apperrors.ErrInactive, parent.AccountID)
		}
		if parent.AccountType != req.AccountType {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrParentTypeMatch)
		}
		account.ParentAccountID = parent.AccountID
		account.Level = parent.Level + 1
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: account code or name already exists", apperrors.ErrDuplicate)
		}
		logger.Error("Failed to save account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created successfully", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	return &account, nil
}

// GetAccountByID retrieves a specific account by its ID.
// Implements portssvc.ChartSvcFacade
func (s *chartService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return account, nil
}

// ListAccounts retrieves a paginated list of accounts.
// Implements portssvc.ChartSvcFacade
func (s *chartService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) (*dto.ListAccountsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if params.Limit <= 0 {
		params.Limit = 20
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, params)
	if err != nil {
		logger.Error("Failed to list accounts from repository", "error", err)
		return nil, fmt.Errorf("failed to retrieve accounts: %w", err)
	}

	return &dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)}, nil
}

// GetAccountBalance derives an account's balance from its postings as of a date.
// Header balances aggregate every detail account in the subtree; nothing is
// ever read from a stored balance column.
// Implements portssvc.ChartSvcFacade
func (s *chartService) GetAccountBalance(ctx context.Context, accountID string, asOf time.Time) (*domain.AccountSummary, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}

	totalDebits, totalCredits, err := s.sumSubtree(ctx, account, asOf)
	if err != nil {
		logger.Error("Failed to aggregate account balance", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, err
	}

	return &domain.AccountSummary{
		AccountID:    accountID,
		TotalDebits:  totalDebits,
		TotalCredits: totalCredits,
		Balance:      accounting.ComputeBalance(account.AccountType, totalDebits, totalCredits),
		AsOf:         asOf,
	}, nil
}

// sumSubtree walks the account tree depth-first and sums entry totals for
// every detail account under the given node.
func (s *chartService) sumSubtree(ctx context.Context, account *domain.Account, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	if !account.IsHeader {
		debits, credits, err := s.journalRepo.SumEntriesByAccountID(ctx, account.AccountID, asOf)
		if err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum entries for account %s: %w", account.AccountID, err)
		}
		return debits, credits, nil
	}

	totalDebits := decimal.Zero
	totalCredits := decimal.Zero
	children, err := s.accountRepo.ListChildAccounts(ctx, account.AccountID)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to list children of account %s: %w", account.AccountID, err)
	}
	for i := range children {
		debits, credits, err := s.sumSubtree(ctx, &children[i], asOf)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		totalDebits = totalDebits.Add(debits)
		totalCredits = totalCredits.Add(credits)
	}
	return totalDebits, totalCredits, nil
}

// ListAccountEntries retrieves a page of an account's statement.
// Implements portssvc.ChartSvcFacade
func (s *chartService) ListAccountEntries(ctx context.Context, accountID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Posting lists only make sense for detail accounts.
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}

	entries, err := s.journalRepo.ListEntriesByAccountID(ctx, accountID, limit, params.Offset, params.From, params.To)
	if err != nil {
		logger.Error("Failed to list entries by account from repository", "error", err)
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}

	return &dto.ListEntriesResponse{Entries: dto.ToEntryResponses(entries)}, nil
}

// UpdateAccount updates an account's mutable details.
// Implements portssvc.ChartSvcFacade
func (s *chartService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, requestingUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		account.Name = *req.Name
		updated = true
	}
	if req.Description != nil {
		account.Description = *req.Description
		updated = true
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
		updated = true
	}

	if !updated {
		return account, nil
	}

	now := time.Now().UTC()
	account.LastUpdatedAt = now
	account.LastUpdatedBy = requestingUserID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to save account update", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to save account update: %w", err)
	}

	logger.Info("Account updated successfully", slog.String("account_id", accountID))
	return account, nil
}

// DeactivateAccount marks an account as inactive after checking it carries no
// balance and has no active children.
// Implements portssvc.ChartSvcFacade
func (s *chartService) DeactivateAccount(ctx context.Context, accountID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	if account.IsHeader {
		children, err := s.accountRepo.ListChildAccounts(ctx, accountID)
		if err != nil {
			return fmt.Errorf("failed to list children of account %s: %w", accountID, err)
		}
		for _, child := range children {
			if child.IsActive {
				return fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrActiveChildren)
			}
		}
	}

	summary, err := s.GetAccountBalance(ctx, accountID, time.Now().UTC())
	if err != nil {
		return err
	}
	if !summary.Balance.IsZero() {
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrAccountHasBalance)
	}

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, requestingUserID, time.Now().UTC()); err != nil {
		logger.Error("Failed to deactivate account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	logger.Info("Account deactivated successfully", slog.String("account_id", accountID))
	return nil
}

// MapSystemAccount binds a posting purpose and currency to a detail account.
// Implements portssvc.ChartSvcFacade
func (s *chartService) MapSystemAccount(ctx context.Context, req dto.MapSystemAccountRequest, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return err
	}
	if account.IsHeader {
		return fmt.Errorf("%w: system accounts must map to detail accounts", apperrors.ErrValidation)
	}
	if !account.IsActive {
		return fmt.Errorf("%w: account %s", apperrors.ErrInactive, req.AccountID)
	}
	if account.CurrencyCode != req.CurrencyCode {
		return fmt.Errorf("%w: account %s is denominated in %s, not %s", apperrors.ErrValidation, req.AccountID, account.CurrencyCode, req.CurrencyCode)
	}

	if err := s.accountRepo.SaveSystemAccountMapping(ctx, req.Purpose, req.CurrencyCode, req.AccountID, requestingUserID, time.Now().UTC()); err != nil {
		logger.Error("Failed to save system account mapping", slog.String("error", err.Error()), slog.String("purpose", string(req.Purpose)))
		return fmt.Errorf("failed to save system account mapping: %w", err)
	}

	logger.Info("System account mapped", slog.String("purpose", string(req.Purpose)), slog.String("currency_code", req.CurrencyCode), slog.String("account_id", req.AccountID))
	return nil
}
