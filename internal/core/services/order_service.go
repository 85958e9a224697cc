package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/a7a6j4/pieV1/internal/apperrors"
	"github.com/a7a6j4/pieV1/internal/core/domain"
	portsrepo "github.com/a7a6j4/pieV1/internal/core/ports/repositories"
	portssvc "github.com/a7a6j4/pieV1/internal/core/ports/services"
	"github.com/a7a6j4/pieV1/internal/dto"
	"github.com/a7a6j4/pieV1/internal/middleware"
)

var (
	ErrPortfolioInactive   = errors.New("portfolio is inactive")
	ErrProductInactive     = errors.New("product is inactive")
	ErrSellDeposit         = errors.New("deposits are exited via liquidation, not sell orders")
	ErrSellUnitsRequired   = errors.New("sell orders on variable products require units")
	ErrInsufficientUnits   = errors.New("sell units exceed the held position")
	ErrTenorOutOfRange     = errors.New("tenor is outside the product's allowed range")
	ErrTenorRequired       = errors.New("deposit orders require a tenor")
	ErrNoDepositRate       = errors.New("no rate recorded for deposit product")
	ErrNotPending          = errors.New("transaction is not pending")
	ErrDepositClosed       = errors.New("deposit is already closed")
	ErrNoWalletForCurrency = errors.New("user has no wallet for the order currency")
)

// orderService orchestrates the order lifecycle: placement debits the funding
// wallet and opens pending legs, settlement callbacks complete or fail them,
// and deposit liquidation unwinds a placement back into cash. Every lifecycle
// step commits its journal, subledger rows and status change in one database
// transaction.
type orderService struct {
	portfolioRepo portsrepo.PortfolioRepositoryWithTx
	productRepo   portsrepo.ProductRepositoryFacade
	walletRepo    portsrepo.WalletRepositoryWithTx
	accountRepo   portsrepo.AccountRepositoryFacade
	outboxRepo    portsrepo.OutboxRepositoryFacade
	ledgerSvc     portssvc.LedgerSvcFacade
	productSvc    portssvc.ProductSvcFacade
	portfolioSvc  portssvc.PortfolioSvcFacade
	poster        walletPoster
	policy        Policy
}

// NewOrderService creates a new order orchestration service.
func NewOrderService(
	portfolioRepo portsrepo.PortfolioRepositoryWithTx,
	productRepo portsrepo.ProductRepositoryFacade,
	walletRepo portsrepo.WalletRepositoryWithTx,
	accountRepo portsrepo.AccountRepositoryFacade,
	outboxRepo portsrepo.OutboxRepositoryFacade,
	ledgerSvc portssvc.LedgerSvcFacade,
	productSvc portssvc.ProductSvcFacade,
	portfolioSvc portssvc.PortfolioSvcFacade,
	policy Policy,
) portssvc.OrderSvcFacade {
	return &orderService{
		portfolioRepo: portfolioRepo,
		productRepo:   productRepo,
		walletRepo:    walletRepo,
		accountRepo:   accountRepo,
		outboxRepo:    outboxRepo,
		ledgerSvc:     ledgerSvc,
		productSvc:    productSvc,
		portfolioSvc:  portfolioSvc,
		poster: walletPoster{
			accountRepo: accountRepo,
			walletRepo:  walletRepo,
			ledgerSvc:   ledgerSvc,
		},
		policy: policy,
	}
}

// Ensure orderService implements the portssvc.OrderSvcFacade interface
var _ portssvc.OrderSvcFacade = (*orderService)(nil)

// validatedLeg carries one order leg after validation, with its product and
// fee quote resolved.
type validatedLeg struct {
	req     dto.OrderLegRequest
	product *domain.Product
	quote   *dto.FeeQuoteResponse
	rate    decimal.Decimal // Deposit legs: annualized rate at placement
}

// validateLeg checks one order leg against the product catalog and, for sells,
// the held position.
func (s *orderService) validateLeg(ctx context.Context, portfolioID string, leg dto.OrderLegRequest, asOf time.Time) (*validatedLeg, error) {
	if leg.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrAmountNotPositive)
	}

	product, err := s.productRepo.FindProductByID(ctx, leg.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to find product %s: %w", leg.ProductID, err)
	}
	if !product.IsActive {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInactive, ErrProductInactive)
	}

	validated := &validatedLeg{req: leg, product: product}

	switch product.Category {
	case domain.CategoryDeposit:
		if leg.Type == domain.TxnSell {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrSellDeposit)
		}
		if leg.TenorDays == nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrTenorRequired)
		}
		terms := product.Deposit
		if terms == nil {
			return nil, fmt.Errorf("%w: product %s has no deposit terms", apperrors.ErrValidation, product.ProductID)
		}
		if *leg.TenorDays < terms.MinTenorDays || *leg.TenorDays > terms.MaxTenorDays {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrTenorOutOfRange)
		}
		ratePoint, err := s.productRepo.FindLatestPrice(ctx, product.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNoDepositRate)
			}
			return nil, err
		}
		validated.rate = ratePoint.Value
	case domain.CategoryVariable:
		if leg.Type == domain.TxnSell {
			if leg.Units == nil || leg.Units.LessThanOrEqual(decimal.Zero) {
				return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrSellUnitsRequired)
			}
			position, err := s.portfolioSvc.GetVariablePosition(ctx, portfolioID, product.ProductID, asOf)
			if err != nil {
				return nil, err
			}
			if position.NetUnits.LessThan(*leg.Units) {
				return nil, fmt.Errorf("%w: held %s, selling %s", apperrors.ErrConflict, position.NetUnits.String(), leg.Units.String())
			}
		}
	}

	if leg.Type == domain.TxnBuy {
		quote, err := s.productSvc.QuoteFees(ctx, product.ProductID, leg.Amount, true)
		if err != nil {
			return nil, err
		}
		validated.quote = quote
	}
	return validated, nil
}

// PlaceOrder validates an order's legs, debits the funding wallet, posts the
// initiation journals and enqueues settlement tasks, all atomically.
// Implements portssvc.OrderSvcFacade
func (s *orderService) PlaceOrder(ctx context.Context, portfolioID string, req dto.PlaceOrderRequest, requestingUserID string) (*dto.BatchResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	portfolio, err := s.portfolioRepo.FindPortfolioByID(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to find portfolio %s: %w", portfolioID, err)
	}
	if !portfolio.Active {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInactive, ErrPortfolioInactive)
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}

	legs := make([]*validatedLeg, 0, len(req.Legs))
	outflowByCurrency := make(map[string]decimal.Decimal)
	for _, legReq := range req.Legs {
		validated, err := s.validateLeg(ctx, portfolioID, legReq, date)
		if err != nil {
			return nil, err
		}
		legs = append(legs, validated)
		if legReq.Type == domain.TxnBuy {
			total := legReq.Amount
			if validated.quote != nil {
				total = total.Add(validated.quote.TotalFees).Add(validated.quote.TotalVAT)
			}
			currency := validated.product.CurrencyCode
			outflowByCurrency[currency] = outflowByCurrency[currency].Add(total)
		}
	}

	// Resolve the funding wallet for every currency the order touches.
	wallets := make(map[string]*domain.Wallet)
	for _, leg := range legs {
		currency := leg.product.CurrencyCode
		if _, ok := wallets[currency]; ok {
			continue
		}
		wallet, err := s.walletRepo.FindWalletByUserAndCurrency(ctx, portfolio.UserID, currency)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s %s", apperrors.ErrValidation, ErrNoWalletForCurrency, currency)
			}
			return nil, err
		}
		wallets[currency] = wallet
	}

	tx, err := s.portfolioRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin order transaction: %w", err)
	}
	defer func() { _ = s.portfolioRepo.Rollback(ctx, tx) }()

	// Lock each funding wallet and check the derived balance covers the
	// currency's total outflow before anything is written.
	for currency, wallet := range wallets {
		locked, err := s.poster.lockAndCheckFunds(ctx, tx, wallet.WalletID, outflowByCurrency[currency])
		if err != nil {
			return nil, err
		}
		wallets[currency] = locked
	}

	now := time.Now().UTC()
	batch := domain.TransactionBatch{
		BatchID:     uuid.NewString(),
		PortfolioID: portfolioID,
		CreatedAt:   now,
		CreatedBy:   requestingUserID,
	}
	if err := s.portfolioRepo.SaveBatchInTx(ctx, tx, batch); err != nil {
		return nil, fmt.Errorf("failed to save batch: %w", err)
	}

	domainLegs := make([]domain.PortfolioTransaction, 0, len(legs))
	for _, leg := range legs {
		wallet := wallets[leg.product.CurrencyCode]
		txn, err := s.placeLegInTx(ctx, tx, portfolio, batch.BatchID, leg, wallet, date, requestingUserID)
		if err != nil {
			return nil, err
		}
		domainLegs = append(domainLegs, *txn)
	}

	if err := s.portfolioRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	logger.Info("Order placed",
		slog.String("batch_id", batch.BatchID),
		slog.String("portfolio_id", portfolioID),
		slog.Int("legs", len(domainLegs)),
	)
	response := dto.ToBatchResponse(&batch, domainLegs)
	return &response, nil
}

// placeLegInTx writes one order leg: the portfolio transaction row, the wallet
// movements it needs at placement and, for variable legs, the settlement task.
// Deposit purchases settle immediately; variable legs stay PENDING.
func (s *orderService) placeLegInTx(ctx context.Context, tx pgx.Tx, portfolio *domain.Portfolio, batchID string, leg *validatedLeg, wallet *domain.Wallet, date time.Time, userID string) (*domain.PortfolioTransaction, error) {
	now := time.Now().UTC()
	txn := domain.PortfolioTransaction{
		TransactionID: uuid.NewString(),
		BatchID:       batchID,
		PortfolioID:   portfolio.PortfolioID,
		ProductID:     leg.product.ProductID,
		Category:      leg.product.Category,
		Type:          leg.req.Type,
		Amount:        leg.req.Amount,
		CurrencyCode:  leg.product.CurrencyCode,
		Status:        domain.StatusPending,
		Date:          date,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if leg.req.Type == domain.TxnBuy {
		memo := fmt.Sprintf("Order %s %s", leg.req.Type, leg.product.Title)
		walletTxn, err := s.poster.postMovementInTx(ctx, tx, wallet, domain.TxnBuy, leg.req.Amount, decimal.Zero, memo, date, userID)
		if err != nil {
			return nil, err
		}
		txn.JournalID = walletTxn.JournalID

		if leg.quote != nil && (leg.quote.TotalFees.IsPositive() || leg.quote.TotalVAT.IsPositive()) {
			feeMemo := fmt.Sprintf("Fees on order %s", txn.TransactionID)
			if _, err := s.poster.postMovementInTx(ctx, tx, wallet, domain.TxnFee, leg.quote.TotalFees, leg.quote.TotalVAT, feeMemo, date, userID); err != nil {
				return nil, err
			}
		}
	}

	if leg.product.Category == domain.CategoryDeposit {
		if err := s.openDepositInTx(ctx, tx, &txn, leg, wallet, date, userID); err != nil {
			return nil, err
		}
		txn.Status = domain.StatusCompleted
	}

	if err := s.portfolioRepo.SavePortfolioTransactionInTx(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("failed to save order leg: %w", err)
	}

	if leg.product.Category == domain.CategoryVariable {
		task := domain.SettlementTask{
			TaskID:        uuid.NewString(),
			TransactionID: txn.TransactionID,
			Status:        domain.TaskPending,
			Attempts:      0,
			NextAttemptAt: now,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		if err := s.outboxRepo.EnqueueTaskInTx(ctx, tx, task); err != nil {
			return nil, fmt.Errorf("failed to enqueue settlement task: %w", err)
		}
	}
	return &txn, nil
}

// openDepositInTx creates the deposit record, its opening ledger row and the
// settlement journal for an immediately-settling deposit purchase.
func (s *orderService) openDepositInTx(ctx context.Context, tx pgx.Tx, txn *domain.PortfolioTransaction, leg *validatedLeg, wallet *domain.Wallet, date time.Time, userID string) error {
	now := time.Now().UTC()
	tenor := *leg.req.TenorDays
	deposit := domain.PortfolioDeposit{
		DepositID:     uuid.NewString(),
		TransactionID: txn.TransactionID,
		PortfolioID:   txn.PortfolioID,
		ProductID:     txn.ProductID,
		Principal:     leg.req.Amount,
		Rate:          leg.rate,
		TenorDays:     tenor,
		EffectiveDate: date,
		MaturityDate:  date.AddDate(0, 0, tenor),
		IsActive:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	journal, err := s.postSettlementJournalInTx(ctx, tx, domain.TxnBuy, wallet.CurrencyCode, leg.req.Amount, fmt.Sprintf("Deposit placement %s", deposit.DepositID), date, userID)
	if err != nil {
		return err
	}
	deposit.JournalID = journal.JournalID
	txn.JournalID = journal.JournalID

	if err := s.portfolioRepo.SaveDepositInTx(ctx, tx, deposit); err != nil {
		return fmt.Errorf("failed to save deposit: %w", err)
	}

	movement := domain.DepositMovement{
		MovementID: uuid.NewString(),
		DepositID:  deposit.DepositID,
		Side:       domain.SideIn,
		Account:    domain.DepositAsset,
		Amount:     leg.req.Amount,
		Date:       date,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.portfolioRepo.SaveDepositMovementInTx(ctx, tx, movement); err != nil {
		return fmt.Errorf("failed to save deposit movement: %w", err)
	}
	return nil
}

// postSettlementJournalInTx posts the books' settlement side of a trade:
// acquiring an asset pays cash out, releasing one brings cash back.
func (s *orderService) postSettlementJournalInTx(ctx context.Context, tx pgx.Tx, txnType domain.TransactionType, currencyCode string, amount decimal.Decimal, memo string, date time.Time, userID string) (*domain.Journal, error) {
	assetID, err := s.poster.resolveSystemAccount(ctx, domain.SystemInvestmentAsset, currencyCode)
	if err != nil {
		return nil, err
	}
	cashID, err := s.poster.resolveSystemAccount(ctx, domain.SystemCash, currencyCode)
	if err != nil {
		return nil, err
	}

	debitID, creditID := assetID, cashID
	if txnType == domain.TxnSell || txnType == domain.TxnLiquidation {
		debitID, creditID = cashID, assetID
	}

	return s.ledgerSvc.PostJournalInTx(ctx, tx, dto.CreateJournalRequest{
		JournalDate: date,
		Memo:        memo,
		Entries: []dto.CreateEntryRequest{
			{AccountID: debitID, Amount: amount, Side: domain.Debit, Description: memo},
			{AccountID: creditID, Amount: amount, Side: domain.Credit, Description: memo},
		},
	}, userID)
}

// GetTransactionByID retrieves a specific order leg.
// Implements portssvc.OrderSvcFacade
func (s *orderService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.PortfolioTransaction, error) {
	txn, err := s.portfolioRepo.FindPortfolioTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

// GetBatch retrieves a batch with its legs and aggregate status.
// Implements portssvc.OrderSvcFacade
func (s *orderService) GetBatch(ctx context.Context, batchID string) (*dto.BatchResponse, error) {
	batch, err := s.portfolioRepo.FindBatchByID(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to find batch %s: %w", batchID, err)
	}
	legs, err := s.portfolioRepo.ListTransactionsByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list batch legs: %w", err)
	}
	response := dto.ToBatchResponse(batch, legs)
	return &response, nil
}

// ListTransactionsByPortfolio retrieves a page of a portfolio's order legs.
// Implements portssvc.OrderSvcFacade
func (s *orderService) ListTransactionsByPortfolio(ctx context.Context, portfolioID string, limit int, offset int) ([]domain.PortfolioTransaction, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.portfolioRepo.ListTransactionsByPortfolio(ctx, portfolioID, limit, offset)
}

// lockPendingLeg locks an order leg row and verifies it is still PENDING.
// Completing or failing a leg twice is a conflict, which makes settlement
// callbacks safe to redeliver.
func (s *orderService) lockPendingLeg(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.PortfolioTransaction, error) {
	leg, err := s.portfolioRepo.FindPortfolioTransactionForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	if leg.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: %s (status %s)", apperrors.ErrConflict, ErrNotPending, leg.Status)
	}
	return leg, nil
}

// CompleteTransaction settles a pending leg: appends position ledger rows,
// posts the settlement journal and marks the leg COMPLETED.
// Implements portssvc.OrderSvcFacade
func (s *orderService) CompleteTransaction(ctx context.Context, transactionID string, req dto.SettleTransactionRequest, requestingUserID string) (*domain.PortfolioTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.portfolioRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin settlement transaction: %w", err)
	}
	defer func() { _ = s.portfolioRepo.Rollback(ctx, tx) }()

	leg, err := s.lockPendingLeg(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}

	// Resolve execution price and units, falling back to the latest recorded price.
	price := decimal.Zero
	if req.Price != nil {
		price = *req.Price
	} else {
		point, err := s.productRepo.FindLatestPrice(ctx, leg.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: no execution price available for product %s", apperrors.ErrValidation, leg.ProductID)
		}
		price = point.Value
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: execution price must be positive", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	var journalID string
	switch leg.Type {
	case domain.TxnBuy:
		units := leg.Amount.Div(price).Round(8)
		if req.Units != nil {
			units = *req.Units
		}
		journal, err := s.postSettlementJournalInTx(ctx, tx, domain.TxnBuy, leg.CurrencyCode, leg.Amount, fmt.Sprintf("Settlement of buy %s", leg.TransactionID), now, requestingUserID)
		if err != nil {
			return nil, err
		}
		journalID = journal.JournalID
		if err := s.saveVariableMovementInTx(ctx, tx, leg, domain.SideIn, units, leg.Amount, price, now, requestingUserID); err != nil {
			return nil, err
		}
	case domain.TxnSell:
		units := leg.Amount.Div(price).Round(8)
		if req.Units != nil {
			units = *req.Units
		}

		// The position may have shrunk since placement. Lock the portfolio
		// row to serialize concurrent settlements, then re-derive the held
		// units inside this transaction before appending the OUT row.
		portfolio, err := s.portfolioRepo.FindPortfolioForUpdate(ctx, tx, leg.PortfolioID)
		if err != nil {
			return nil, err
		}
		held, err := s.portfolioRepo.SumVariableUnitsInTx(ctx, tx, leg.PortfolioID, leg.ProductID)
		if err != nil {
			return nil, err
		}
		if held.LessThan(units) {
			return nil, fmt.Errorf("%w: held %s, settling sell of %s", apperrors.ErrConflict, held.String(), units.String())
		}

		proceeds := units.Mul(price).Round(2)
		journal, err := s.postSettlementJournalInTx(ctx, tx, domain.TxnSell, leg.CurrencyCode, proceeds, fmt.Sprintf("Settlement of sell %s", leg.TransactionID), now, requestingUserID)
		if err != nil {
			return nil, err
		}
		journalID = journal.JournalID
		if err := s.saveVariableMovementInTx(ctx, tx, leg, domain.SideOut, units, proceeds, price, now, requestingUserID); err != nil {
			return nil, err
		}

		// Credit the sale proceeds back to the funding wallet.
		wallet, err := s.walletRepo.FindWalletByUserAndCurrency(ctx, portfolio.UserID, leg.CurrencyCode)
		if err != nil {
			return nil, err
		}
		memo := fmt.Sprintf("Proceeds of sell %s", leg.TransactionID)
		if _, err := s.poster.postMovementInTx(ctx, tx, wallet, domain.TxnSell, proceeds, decimal.Zero, memo, now, requestingUserID); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: cannot settle transaction type %s", apperrors.ErrValidation, leg.Type)
	}

	if err := s.portfolioRepo.UpdatePortfolioTransactionInTx(ctx, tx, leg.TransactionID, domain.StatusCompleted, &journalID, requestingUserID, now); err != nil {
		return nil, fmt.Errorf("failed to mark transaction completed: %w", err)
	}

	if err := s.portfolioRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	leg.Status = domain.StatusCompleted
	leg.JournalID = journalID
	logger.Info("Order leg completed", slog.String("transaction_id", leg.TransactionID))
	return leg, nil
}

// saveVariableMovementInTx appends one unit-ledger row for a settling leg.
func (s *orderService) saveVariableMovementInTx(ctx context.Context, tx pgx.Tx, leg *domain.PortfolioTransaction, side domain.LedgerSide, units, amount, price decimal.Decimal, now time.Time, userID string) error {
	movement := domain.VariableMovement{
		MovementID:    uuid.NewString(),
		PortfolioID:   leg.PortfolioID,
		ProductID:     leg.ProductID,
		TransactionID: leg.TransactionID,
		Side:          side,
		Units:         units,
		Amount:        amount,
		Price:         price,
		Date:          now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.portfolioRepo.SaveVariableMovementInTx(ctx, tx, movement); err != nil {
		return fmt.Errorf("failed to save position movement: %w", err)
	}
	return nil
}

// FailTransaction marks a pending leg FAILED and refunds the funding wallet.
// Implements portssvc.OrderSvcFacade
func (s *orderService) FailTransaction(ctx context.Context, transactionID string, req dto.FailTransactionRequest, requestingUserID string) (*domain.PortfolioTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.portfolioRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin failure transaction: %w", err)
	}
	defer func() { _ = s.portfolioRepo.Rollback(ctx, tx) }()

	leg, err := s.lockPendingLeg(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if leg.Type == domain.TxnBuy {
		// The placement already moved cash out of the wallet; return it.
		portfolio, err := s.portfolioRepo.FindPortfolioByID(ctx, leg.PortfolioID)
		if err != nil {
			return nil, err
		}
		wallet, err := s.walletRepo.FindWalletByUserAndCurrency(ctx, portfolio.UserID, leg.CurrencyCode)
		if err != nil {
			return nil, err
		}
		memo := fmt.Sprintf("Refund of failed order %s", leg.TransactionID)
		if req.Reason != "" {
			memo = fmt.Sprintf("%s: %s", memo, req.Reason)
		}
		if _, err := s.poster.postMovementInTx(ctx, tx, wallet, domain.TxnLiquidation, leg.Amount, decimal.Zero, memo, now, requestingUserID); err != nil {
			return nil, err
		}
	}

	if err := s.portfolioRepo.UpdatePortfolioTransactionInTx(ctx, tx, leg.TransactionID, domain.StatusFailed, nil, requestingUserID, now); err != nil {
		return nil, fmt.Errorf("failed to mark transaction failed: %w", err)
	}

	if err := s.portfolioRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit failure: %w", err)
	}

	leg.Status = domain.StatusFailed
	logger.Warn("Order leg failed", slog.String("transaction_id", leg.TransactionID), slog.String("reason", req.Reason))
	return leg, nil
}

// LiquidateDeposit closes a fixed-income placement, credits principal and net
// interest to the wallet and applies the early-exit penalty when the deposit
// has not matured. The deposit's ledger rows are fully unwound so a closed
// deposit replays to zero.
// Implements portssvc.OrderSvcFacade
func (s *orderService) LiquidateDeposit(ctx context.Context, depositID string, req dto.LiquidateDepositRequest, requestingUserID string) (*domain.PortfolioTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	date := time.Now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}

	tx, err := s.portfolioRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin liquidation transaction: %w", err)
	}
	defer func() { _ = s.portfolioRepo.Rollback(ctx, tx) }()

	deposit, err := s.portfolioRepo.FindDepositForUpdate(ctx, tx, depositID)
	if err != nil {
		return nil, fmt.Errorf("failed to find deposit %s: %w", depositID, err)
	}
	if deposit.Closed {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrDepositClosed)
	}

	product, err := s.productRepo.FindProductByID(ctx, deposit.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to find product %s: %w", deposit.ProductID, err)
	}
	portfolio, err := s.portfolioRepo.FindPortfolioByID(ctx, deposit.PortfolioID)
	if err != nil {
		return nil, err
	}
	wallet, err := s.walletRepo.FindWalletByUserAndCurrency(ctx, portfolio.UserID, product.CurrencyCode)
	if err != nil {
		return nil, err
	}
	if _, err := s.poster.lockAndCheckFunds(ctx, tx, wallet.WalletID, decimal.Zero); err != nil {
		return nil, err
	}

	days := accrualDays(deposit, date)
	matured := days >= deposit.TenorDays
	taxable := product.Deposit != nil && product.Deposit.Taxable
	gross, taxAmount, net := s.portfolioSvc.AccrueInterest(ctx, deposit.Principal, deposit.Rate, days, taxable)

	penalty := decimal.Zero
	if !matured && product.Deposit != nil {
		penalty = net.Mul(product.Deposit.PenaltyRate).Round(2)
	}
	payout := deposit.Principal.Add(net).Sub(penalty)

	if err := s.writeLiquidationMovementsInTx(ctx, tx, deposit, gross, taxAmount, penalty, date, requestingUserID); err != nil {
		return nil, err
	}

	journal, err := s.postLiquidationJournalInTx(ctx, tx, deposit, product.CurrencyCode, gross, taxAmount, penalty, payout, date, requestingUserID)
	if err != nil {
		return nil, err
	}

	if err := s.portfolioRepo.CloseDepositInTx(ctx, tx, depositID, matured, date, requestingUserID); err != nil {
		return nil, fmt.Errorf("failed to close deposit: %w", err)
	}

	// Record the payout on the wallet, linked to the liquidation journal.
	now := time.Now().UTC()
	walletTxn := domain.WalletTransaction{
		TransactionID: uuid.NewString(),
		WalletID:      wallet.WalletID,
		Type:          domain.TxnLiquidation,
		Amount:        payout,
		CurrencyCode:  wallet.CurrencyCode,
		Status:        domain.StatusCompleted,
		JournalID:     journal.JournalID,
		Date:          date,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}
	if err := s.walletRepo.SaveWalletTransactionInTx(ctx, tx, walletTxn); err != nil {
		return nil, fmt.Errorf("failed to save wallet transaction: %w", err)
	}

	// The liquidation is itself an order leg, in its own single-leg batch.
	batch := domain.TransactionBatch{
		BatchID:     uuid.NewString(),
		PortfolioID: deposit.PortfolioID,
		CreatedAt:   now,
		CreatedBy:   requestingUserID,
	}
	if err := s.portfolioRepo.SaveBatchInTx(ctx, tx, batch); err != nil {
		return nil, fmt.Errorf("failed to save batch: %w", err)
	}
	leg := domain.PortfolioTransaction{
		TransactionID: uuid.NewString(),
		BatchID:       batch.BatchID,
		PortfolioID:   deposit.PortfolioID,
		ProductID:     deposit.ProductID,
		Category:      domain.CategoryDeposit,
		Type:          domain.TxnLiquidation,
		Amount:        payout,
		CurrencyCode:  wallet.CurrencyCode,
		Status:        domain.StatusCompleted,
		JournalID:     journal.JournalID,
		Date:          date,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}
	if err := s.portfolioRepo.SavePortfolioTransactionInTx(ctx, tx, leg); err != nil {
		return nil, fmt.Errorf("failed to save liquidation leg: %w", err)
	}

	if err := s.portfolioRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit liquidation: %w", err)
	}

	logger.Info("Deposit liquidated",
		slog.String("deposit_id", depositID),
		slog.Bool("matured", matured),
		slog.String("payout", payout.String()),
	)
	return &leg, nil
}

// writeLiquidationMovementsInTx records the accrual and closure rows of a
// liquidation so the deposit's subledger fully unwinds.
func (s *orderService) writeLiquidationMovementsInTx(ctx context.Context, tx pgx.Tx, deposit *domain.PortfolioDeposit, gross, taxAmount, penalty decimal.Decimal, date time.Time, userID string) error {
	now := time.Now().UTC()
	write := func(side domain.LedgerSide, account domain.DepositAccount, amount decimal.Decimal) error {
		if !amount.IsPositive() {
			return nil
		}
		movement := domain.DepositMovement{
			MovementID: uuid.NewString(),
			DepositID:  deposit.DepositID,
			Side:       side,
			Account:    account,
			Amount:     amount,
			Date:       date,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		if err := s.portfolioRepo.SaveDepositMovementInTx(ctx, tx, movement); err != nil {
			return fmt.Errorf("failed to save deposit movement: %w", err)
		}
		return nil
	}

	// Accrual rows.
	if err := write(domain.SideIn, domain.DepositInterest, gross); err != nil {
		return err
	}
	if err := write(domain.SideIn, domain.DepositTax, taxAmount); err != nil {
		return err
	}
	if err := write(domain.SideOut, domain.DepositInterest, penalty); err != nil {
		return err
	}
	// Closure rows.
	if err := write(domain.SideOut, domain.DepositAsset, deposit.Principal); err != nil {
		return err
	}
	if err := write(domain.SideOut, domain.DepositInterest, gross.Sub(penalty)); err != nil {
		return err
	}
	return write(domain.SideOut, domain.DepositTax, taxAmount)
}

// postLiquidationJournalInTx posts the liquidation journal: principal returns
// to cash, net interest is expensed, tax is withheld and the payout lands on
// the customer liability.
func (s *orderService) postLiquidationJournalInTx(ctx context.Context, tx pgx.Tx, deposit *domain.PortfolioDeposit, currencyCode string, gross, taxAmount, penalty, payout decimal.Decimal, date time.Time, userID string) (*domain.Journal, error) {
	memo := fmt.Sprintf("Liquidation of deposit %s", deposit.DepositID)

	resolve := func(purpose domain.SystemAccountPurpose) (string, error) {
		return s.poster.resolveSystemAccount(ctx, purpose, currencyCode)
	}
	cashID, err := resolve(domain.SystemCash)
	if err != nil {
		return nil, err
	}
	assetID, err := resolve(domain.SystemInvestmentAsset)
	if err != nil {
		return nil, err
	}
	clearingID, err := resolve(domain.SystemInvestmentClearing)
	if err != nil {
		return nil, err
	}
	liabilityID, err := resolve(domain.SystemCustomerLiability)
	if err != nil {
		return nil, err
	}

	entries := []dto.CreateEntryRequest{
		{AccountID: cashID, Amount: deposit.Principal, Side: domain.Debit, Description: memo},
		{AccountID: assetID, Amount: deposit.Principal, Side: domain.Credit, Description: memo},
		{AccountID: clearingID, Amount: deposit.Principal, Side: domain.Debit, Description: memo},
		{AccountID: liabilityID, Amount: payout, Side: domain.Credit, Description: memo},
	}
	if interestExpense := gross.Sub(penalty); interestExpense.IsPositive() {
		expenseID, err := resolve(domain.SystemInterestExpense)
		if err != nil {
			return nil, err
		}
		entries = append(entries, dto.CreateEntryRequest{AccountID: expenseID, Amount: interestExpense, Side: domain.Debit, Description: memo})
	}
	if taxAmount.IsPositive() {
		taxID, err := resolve(domain.SystemWithholdingTaxPayable)
		if err != nil {
			return nil, err
		}
		entries = append(entries, dto.CreateEntryRequest{AccountID: taxID, Amount: taxAmount, Side: domain.Credit, Description: memo})
	}

	return s.ledgerSvc.PostJournalInTx(ctx, tx, dto.CreateJournalRequest{
		JournalDate: date,
		Memo:        memo,
		Entries:     entries,
	}, userID)
}
