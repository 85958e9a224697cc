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
)

var (
	ErrWalletExists      = errors.New("user already has a wallet for this currency")
	ErrAmountNotPositive = errors.New("transaction amount must be positive")
)

// walletService manages the cash wallet subledger.
type walletService struct {
	walletRepo portsrepo.WalletRepositoryWithTx
	poster     walletPoster
}

// NewWalletService creates a new wallet service.
func NewWalletService(walletRepo portsrepo.WalletRepositoryWithTx, accountRepo portsrepo.AccountRepositoryFacade, ledgerSvc portssvc.LedgerSvcFacade) portssvc.WalletSvcFacade {
	return &walletService{
		walletRepo: walletRepo,
		poster: walletPoster{
			accountRepo: accountRepo,
			walletRepo:  walletRepo,
			ledgerSvc:   ledgerSvc,
		},
	}
}

// Ensure walletService implements the portssvc.WalletSvcFacade interface
var _ portssvc.WalletSvcFacade = (*walletService)(nil)

// CreateWallet opens a wallet for a user and currency.
// Implements portssvc.WalletSvcFacade
func (s *walletService) CreateWallet(ctx context.Context, req dto.CreateWalletRequest, creatorUserID string) (*domain.Wallet, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	existing, err := s.walletRepo.FindWalletByUserAndCurrency(ctx, req.UserID, req.CurrencyCode)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check for existing wallet", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to check for existing wallet: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicate, ErrWalletExists)
	}

	now := time.Now().UTC()
	wallet := domain.Wallet{
		WalletID:     uuid.NewString(),
		UserID:       req.UserID,
		CurrencyCode: req.CurrencyCode,
		Active:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	// The unique (user, currency) constraint backstops the check above.
	if err := s.walletRepo.SaveWallet(ctx, wallet); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicate, ErrWalletExists)
		}
		logger.Error("Failed to save wallet", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save wallet: %w", err)
	}

	logger.Info("Wallet created successfully", slog.String("wallet_id", wallet.WalletID), slog.String("user_id", req.UserID))
	return &wallet, nil
}

// GetWalletByID retrieves a specific wallet.
// Implements portssvc.WalletSvcFacade
func (s *walletService) GetWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.FindWalletByID(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to find wallet by ID %s: %w", walletID, err)
	}
	return wallet, nil
}

// ListWalletsByUser retrieves all wallets belonging to a user.
// Implements portssvc.WalletSvcFacade
func (s *walletService) ListWalletsByUser(ctx context.Context, userID string) ([]domain.Wallet, error) {
	wallets, err := s.walletRepo.ListWalletsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets for user %s: %w", userID, err)
	}
	return wallets, nil
}

// GetWalletBalance derives a wallet's balance by signed-summing its COMPLETED
// transactions. The balance is never read from a stored column.
// Implements portssvc.WalletSvcFacade
func (s *walletService) GetWalletBalance(ctx context.Context, walletID string, asOf time.Time) (*domain.WalletBalance, error) {
	if _, err := s.walletRepo.FindWalletByID(ctx, walletID); err != nil {
		return nil, fmt.Errorf("failed to find wallet by ID %s: %w", walletID, err)
	}

	balance, err := s.walletRepo.SumCompletedTransactions(ctx, walletID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to derive wallet balance: %w", err)
	}

	return &domain.WalletBalance{
		WalletID: walletID,
		Balance:  balance,
		AsOf:     asOf,
	}, nil
}

// ListWalletTransactions retrieves a page of a wallet's statement.
// Implements portssvc.WalletSvcFacade
func (s *walletService) ListWalletTransactions(ctx context.Context, walletID string, params dto.ListWalletTransactionsParams) (*dto.ListWalletTransactionsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	transactions, nextToken, err := s.walletRepo.ListWalletTransactions(ctx, walletID, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list wallet transactions from repository", "error", err)
		return nil, fmt.Errorf("failed to retrieve wallet transactions: %w", err)
	}

	return &dto.ListWalletTransactionsResponse{
		Transactions: dto.ToWalletTransactionResponses(transactions),
		NextToken:    nextToken,
	}, nil
}

// SetWalletActive toggles a wallet's active flag.
// Implements portssvc.WalletSvcFacade
func (s *walletService) SetWalletActive(ctx context.Context, walletID string, active bool, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.walletRepo.FindWalletByID(ctx, walletID); err != nil {
		return fmt.Errorf("failed to find wallet by ID %s: %w", walletID, err)
	}

	if err := s.walletRepo.SetWalletActive(ctx, walletID, active, requestingUserID, time.Now().UTC()); err != nil {
		logger.Error("Failed to update wallet active flag", slog.String("error", err.Error()), slog.String("wallet_id", walletID))
		return fmt.Errorf("failed to update wallet: %w", err)
	}
	return nil
}

// RecordTransaction posts a cash movement on a wallet together with its
// journal, atomically. The wallet row is locked for the duration so the
// balance check and the insert see the same state.
// Implements portssvc.WalletSvcFacade
func (s *walletService) RecordTransaction(ctx context.Context, walletID string, req dto.RecordWalletTransactionRequest, requestingUserID string) (*domain.WalletTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrAmountNotPositive)
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}

	tx, err := s.walletRepo.Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin wallet transaction", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = s.walletRepo.Rollback(ctx, tx) }()

	outflow := decimal.Zero
	if req.Type.IsOutflow() {
		outflow = req.Amount
	}
	wallet, err := s.poster.lockAndCheckFunds(ctx, tx, walletID, outflow)
	if err != nil {
		return nil, err
	}

	memo := fmt.Sprintf("Wallet %s %s", req.Type, wallet.WalletID)
	txn, err := s.poster.postMovementInTx(ctx, tx, wallet, req.Type, req.Amount, decimal.Zero, memo, date, requestingUserID)
	if err != nil {
		return nil, err
	}

	if err := s.walletRepo.Commit(ctx, tx); err != nil {
		logger.Error("Failed to commit wallet transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Info("Wallet transaction recorded",
		slog.String("wallet_id", walletID),
		slog.String("transaction_id", txn.TransactionID),
		slog.String("type", string(req.Type)),
	)
	return txn, nil
}
