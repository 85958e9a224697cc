package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/a7a6j4/pieV1/internal/apperrors"
	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/a7a6j4/pieV1/internal/core/services"
	portssvc "github.com/a7a6j4/pieV1/internal/core/ports/services"
	"github.com/a7a6j4/pieV1/internal/dto"
)

type OrderServiceTestSuite struct {
	suite.Suite
	mockPortfolioRepo *MockPortfolioRepository
	mockProductRepo   *MockProductRepository
	mockWalletRepo    *MockWalletRepository
	mockAccountRepo   *MockAccountRepository
	mockOutboxRepo    *MockOutboxRepository
	mockLedgerSvc     *MockLedgerService
	service           portssvc.OrderSvcFacade
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.mockPortfolioRepo = new(MockPortfolioRepository)
	suite.mockProductRepo = new(MockProductRepository)
	suite.mockWalletRepo = new(MockWalletRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockOutboxRepo = new(MockOutboxRepository)
	suite.mockLedgerSvc = new(MockLedgerService)

	policy := testPolicy()
	suite.service = services.NewOrderService(
		suite.mockPortfolioRepo,
		suite.mockProductRepo,
		suite.mockWalletRepo,
		suite.mockAccountRepo,
		suite.mockOutboxRepo,
		suite.mockLedgerSvc,
		services.NewProductService(suite.mockProductRepo, policy),
		services.NewPortfolioService(suite.mockPortfolioRepo, suite.mockProductRepo, policy),
		policy,
	)
}

func activePortfolio() *domain.Portfolio {
	return &domain.Portfolio{
		PortfolioID: uuid.NewString(),
		UserID:      uuid.NewString(),
		Active:      true,
	}
}

// --- Test Cases ---

func (suite *OrderServiceTestSuite) TestPlaceOrder_InactivePortfolio() {
	ctx := context.Background()
	portfolio := activePortfolio()
	portfolio.Active = false
	req := dto.PlaceOrderRequest{
		Legs: []dto.OrderLegRequest{
			{ProductID: uuid.NewString(), Type: domain.TxnBuy, Amount: decimal.NewFromInt(10000)},
		},
	}

	suite.mockPortfolioRepo.On("FindPortfolioByID", ctx, portfolio.PortfolioID).Return(portfolio, nil).Once()

	batch, err := suite.service.PlaceOrder(ctx, portfolio.PortfolioID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(batch)
	suite.ErrorIs(err, apperrors.ErrInactive)
	suite.mockPortfolioRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_InactiveProduct() {
	ctx := context.Background()
	portfolio := activePortfolio()
	product := variableProduct()
	product.IsActive = false
	req := dto.PlaceOrderRequest{
		Legs: []dto.OrderLegRequest{
			{ProductID: product.ProductID, Type: domain.TxnBuy, Amount: decimal.NewFromInt(10000)},
		},
	}

	suite.mockPortfolioRepo.On("FindPortfolioByID", ctx, portfolio.PortfolioID).Return(portfolio, nil).Once()
	suite.mockProductRepo.On("FindProductByID", ctx, product.ProductID).Return(product, nil).Once()

	batch, err := suite.service.PlaceOrder(ctx, portfolio.PortfolioID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(batch)
	suite.ErrorIs(err, apperrors.ErrInactive)
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_SellWithoutUnits() {
	ctx := context.Background()
	portfolio := activePortfolio()
	product := variableProduct()
	req := dto.PlaceOrderRequest{
		Legs: []dto.OrderLegRequest{
			{ProductID: product.ProductID, Type: domain.TxnSell, Amount: decimal.NewFromInt(10000)},
		},
	}

	suite.mockPortfolioRepo.On("FindPortfolioByID", ctx, portfolio.PortfolioID).Return(portfolio, nil).Once()
	suite.mockProductRepo.On("FindProductByID", ctx, product.ProductID).Return(product, nil).Once()

	batch, err := suite.service.PlaceOrder(ctx, portfolio.PortfolioID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(batch)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_SellExceedsPosition() {
	ctx := context.Background()
	portfolio := activePortfolio()
	product := variableProduct()
	units := decimal.NewFromInt(10)
	req := dto.PlaceOrderRequest{
		Legs: []dto.OrderLegRequest{
			{ProductID: product.ProductID, Type: domain.TxnSell, Amount: decimal.NewFromInt(10000), Units: &units},
		},
	}

	suite.mockPortfolioRepo.On("FindPortfolioByID", ctx, portfolio.PortfolioID).Return(portfolio, nil)
	suite.mockProductRepo.On("FindProductByID", ctx, product.ProductID).Return(product, nil)
	suite.mockPortfolioRepo.On("ListVariableMovements", ctx, portfolio.PortfolioID, product.ProductID, mock.AnythingOfType("time.Time")).
		Return([]domain.VariableMovement{inMovement(5, 50000)}, nil).Once()

	batch, err := suite.service.PlaceOrder(ctx, portfolio.PortfolioID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(batch)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_DepositTenorOutOfRange() {
	ctx := context.Background()
	portfolio := activePortfolio()
	product := &domain.Product{
		ProductID:    uuid.NewString(),
		Title:        "90 Day Note",
		CurrencyCode: "NGN",
		Category:     domain.CategoryDeposit,
		Class:        domain.ClassDeposit,
		IsActive:     true,
		Deposit:      &domain.DepositTerms{MinTenorDays: 30, MaxTenorDays: 180},
	}
	tenor := 365
	req := dto.PlaceOrderRequest{
		Legs: []dto.OrderLegRequest{
			{ProductID: product.ProductID, Type: domain.TxnBuy, Amount: decimal.NewFromInt(10000), TenorDays: &tenor},
		},
	}

	suite.mockPortfolioRepo.On("FindPortfolioByID", ctx, portfolio.PortfolioID).Return(portfolio, nil).Once()
	suite.mockProductRepo.On("FindProductByID", ctx, product.ProductID).Return(product, nil).Once()

	batch, err := suite.service.PlaceOrder(ctx, portfolio.PortfolioID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(batch)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_NoWalletForCurrency() {
	ctx := context.Background()
	portfolio := activePortfolio()
	product := variableProduct()
	req := dto.PlaceOrderRequest{
		Legs: []dto.OrderLegRequest{
			{ProductID: product.ProductID, Type: domain.TxnBuy, Amount: decimal.NewFromInt(10000)},
		},
	}

	suite.mockPortfolioRepo.On("FindPortfolioByID", ctx, portfolio.PortfolioID).Return(portfolio, nil)
	suite.mockProductRepo.On("FindProductByID", ctx, product.ProductID).Return(product, nil)
	suite.mockWalletRepo.On("FindWalletByUserAndCurrency", ctx, portfolio.UserID, "NGN").
		Return(nil, apperrors.ErrNotFound).Once()

	batch, err := suite.service.PlaceOrder(ctx, portfolio.PortfolioID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(batch)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockPortfolioRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_VariableBuy() {
	ctx := context.Background()
	userID := uuid.NewString()
	portfolio := activePortfolio()
	product := variableProduct()
	amount := decimal.NewFromInt(100000)
	req := dto.PlaceOrderRequest{
		Legs: []dto.OrderLegRequest{
			{ProductID: product.ProductID, Type: domain.TxnBuy, Amount: amount},
		},
	}
	wallet := &domain.Wallet{
		WalletID:     uuid.NewString(),
		UserID:       portfolio.UserID,
		CurrencyCode: "NGN",
		Active:       true,
	}
	liabilityAccount := &domain.Account{AccountID: uuid.NewString(), AccountType: domain.Liability, CurrencyCode: "NGN", IsActive: true}
	clearingAccount := &domain.Account{AccountID: uuid.NewString(), AccountType: domain.Liability, CurrencyCode: "NGN", IsActive: true}
	journal := &domain.Journal{JournalID: uuid.NewString(), Status: domain.Posted}

	suite.mockPortfolioRepo.On("FindPortfolioByID", ctx, portfolio.PortfolioID).Return(portfolio, nil)
	suite.mockProductRepo.On("FindProductByID", ctx, product.ProductID).Return(product, nil)
	suite.mockWalletRepo.On("FindWalletByUserAndCurrency", ctx, portfolio.UserID, "NGN").Return(wallet, nil).Once()
	suite.mockPortfolioRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockPortfolioRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	suite.mockWalletRepo.On("FindWalletForUpdate", ctx, mock.Anything, wallet.WalletID).Return(wallet, nil).Once()
	suite.mockWalletRepo.On("SumCompletedTransactionsInTx", ctx, mock.Anything, wallet.WalletID).
		Return(decimal.NewFromInt(500000), nil).Once()
	suite.mockPortfolioRepo.On("SaveBatchInTx", ctx, mock.Anything, mock.AnythingOfType("domain.TransactionBatch")).Return(nil).Once()
	suite.mockAccountRepo.On("FindSystemAccount", ctx, domain.SystemCustomerLiability, "NGN").Return(liabilityAccount, nil).Once()
	suite.mockAccountRepo.On("FindSystemAccount", ctx, domain.SystemInvestmentClearing, "NGN").Return(clearingAccount, nil).Once()
	suite.mockLedgerSvc.On("PostJournalInTx", ctx, mock.Anything, mock.AnythingOfType("dto.CreateJournalRequest"), userID).
		Return(journal, nil).Once()
	suite.mockWalletRepo.On("SaveWalletTransactionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.WalletTransaction")).
		Return(nil).Once()

	var savedLeg domain.PortfolioTransaction
	suite.mockPortfolioRepo.On("SavePortfolioTransactionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.PortfolioTransaction")).
		Run(func(args mock.Arguments) {
			savedLeg = args.Get(2).(domain.PortfolioTransaction)
		}).Return(nil).Once()

	var enqueuedTask domain.SettlementTask
	suite.mockOutboxRepo.On("EnqueueTaskInTx", ctx, mock.Anything, mock.AnythingOfType("domain.SettlementTask")).
		Run(func(args mock.Arguments) {
			enqueuedTask = args.Get(2).(domain.SettlementTask)
		}).Return(nil).Once()
	suite.mockPortfolioRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	batch, err := suite.service.PlaceOrder(ctx, portfolio.PortfolioID, req, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(batch)
	suite.Require().Len(batch.Legs, 1)
	suite.Equal(string(domain.BatchPending), batch.Status)
	suite.Equal(string(domain.StatusPending), batch.Legs[0].Status)
	suite.Equal(journal.JournalID, batch.Legs[0].JournalID)

	suite.Equal(domain.StatusPending, savedLeg.Status)
	suite.Equal(domain.CategoryVariable, savedLeg.Category)
	suite.True(savedLeg.Amount.Equal(amount))
	suite.Equal(savedLeg.TransactionID, enqueuedTask.TransactionID)
	suite.Equal(domain.TaskPending, enqueuedTask.Status)

	suite.mockPortfolioRepo.AssertExpectations(suite.T())
	suite.mockOutboxRepo.AssertExpectations(suite.T())
	suite.mockWalletRepo.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestCompleteTransaction_NotPending() {
	ctx := context.Background()
	leg := &domain.PortfolioTransaction{
		TransactionID: uuid.NewString(),
		Status:        domain.StatusCompleted,
	}

	suite.mockPortfolioRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockPortfolioRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	suite.mockPortfolioRepo.On("FindPortfolioTransactionForUpdate", ctx, mock.Anything, leg.TransactionID).
		Return(leg, nil).Once()

	result, err := suite.service.CompleteTransaction(ctx, leg.TransactionID, dto.SettleTransactionRequest{}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockPortfolioRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

// A sell leg validated at placement can be undercut by another settlement
// before its own settlement runs, so the held units are re-derived inside the
// settlement transaction and a shortfall is rejected.
func (suite *OrderServiceTestSuite) TestCompleteTransaction_SellShortfallAtSettlement() {
	ctx := context.Background()
	portfolio := activePortfolio()
	product := variableProduct()
	leg := &domain.PortfolioTransaction{
		TransactionID: uuid.NewString(),
		PortfolioID:   portfolio.PortfolioID,
		ProductID:     product.ProductID,
		Category:      domain.CategoryVariable,
		Type:          domain.TxnSell,
		Amount:        decimal.NewFromInt(50000),
		CurrencyCode:  "NGN",
		Status:        domain.StatusPending,
	}
	units := decimal.NewFromInt(5)
	price := decimal.NewFromInt(10000)
	req := dto.SettleTransactionRequest{Units: &units, Price: &price}

	suite.mockPortfolioRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockPortfolioRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	suite.mockPortfolioRepo.On("FindPortfolioTransactionForUpdate", ctx, mock.Anything, leg.TransactionID).
		Return(leg, nil).Once()
	suite.mockPortfolioRepo.On("FindPortfolioForUpdate", ctx, mock.Anything, portfolio.PortfolioID).
		Return(portfolio, nil).Once()
	suite.mockPortfolioRepo.On("SumVariableUnitsInTx", ctx, mock.Anything, portfolio.PortfolioID, product.ProductID).
		Return(decimal.NewFromInt(3), nil).Once()

	result, err := suite.service.CompleteTransaction(ctx, leg.TransactionID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "PostJournalInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockPortfolioRepo.AssertNotCalled(suite.T(), "SaveVariableMovementInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockPortfolioRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
	suite.mockPortfolioRepo.AssertExpectations(suite.T())
}

func (suite *OrderServiceTestSuite) TestLiquidateDeposit_AlreadyClosed() {
	ctx := context.Background()
	deposit := &domain.PortfolioDeposit{
		DepositID: uuid.NewString(),
		Closed:    true,
	}

	suite.mockPortfolioRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockPortfolioRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	suite.mockPortfolioRepo.On("FindDepositForUpdate", ctx, mock.Anything, deposit.DepositID).
		Return(deposit, nil).Once()

	result, err := suite.service.LiquidateDeposit(ctx, deposit.DepositID, dto.LiquidateDepositRequest{}, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

// liquidationFixture is the open deposit plumbing shared by the liquidation
// tests: the locked deposit row, its product and portfolio, the payout wallet
// and the journal/movement/close writes, with the written values captured.
type liquidationFixture struct {
	deposit    *domain.PortfolioDeposit
	movements  []domain.DepositMovement
	journalReq dto.CreateJournalRequest
	walletTxn  domain.WalletTransaction
	matured    bool
}

func (suite *OrderServiceTestSuite) expectLiquidation(ctx context.Context, penaltyRate string, effectiveDaysAgo int, date time.Time) *liquidationFixture {
	portfolio := activePortfolio()
	product := &domain.Product{
		ProductID:    uuid.NewString(),
		Title:        "365 Day Note",
		CurrencyCode: "NGN",
		Category:     domain.CategoryDeposit,
		Class:        domain.ClassDeposit,
		IsActive:     true,
		Deposit: &domain.DepositTerms{
			MinTenorDays: 30,
			MaxTenorDays: 365,
			Taxable:      true,
			PenaltyRate:  decimal.RequireFromString(penaltyRate),
		},
	}
	fixture := &liquidationFixture{
		deposit: &domain.PortfolioDeposit{
			DepositID:     uuid.NewString(),
			PortfolioID:   portfolio.PortfolioID,
			ProductID:     product.ProductID,
			Principal:     decimal.NewFromInt(500000),
			Rate:          decimal.RequireFromString("0.10"),
			TenorDays:     365,
			EffectiveDate: date.AddDate(0, 0, -effectiveDaysAgo),
			MaturityDate:  date.AddDate(0, 0, 365-effectiveDaysAgo),
			IsActive:      true,
		},
	}
	wallet := &domain.Wallet{
		WalletID:     uuid.NewString(),
		UserID:       portfolio.UserID,
		CurrencyCode: "NGN",
		Active:       true,
	}
	account := &domain.Account{AccountID: uuid.NewString(), AccountType: domain.Liability, CurrencyCode: "NGN", IsActive: true}
	journal := &domain.Journal{JournalID: uuid.NewString(), Status: domain.Posted}

	suite.mockPortfolioRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockPortfolioRepo.On("Rollback", ctx, mock.Anything).Return(nil).Maybe()
	suite.mockPortfolioRepo.On("FindDepositForUpdate", ctx, mock.Anything, fixture.deposit.DepositID).
		Return(fixture.deposit, nil).Once()
	suite.mockProductRepo.On("FindProductByID", ctx, product.ProductID).Return(product, nil)
	suite.mockPortfolioRepo.On("FindPortfolioByID", ctx, portfolio.PortfolioID).Return(portfolio, nil)
	suite.mockWalletRepo.On("FindWalletByUserAndCurrency", ctx, portfolio.UserID, "NGN").Return(wallet, nil).Once()
	suite.mockWalletRepo.On("FindWalletForUpdate", ctx, mock.Anything, wallet.WalletID).Return(wallet, nil).Once()
	suite.mockPortfolioRepo.On("SaveDepositMovementInTx", ctx, mock.Anything, mock.AnythingOfType("domain.DepositMovement")).
		Run(func(args mock.Arguments) {
			fixture.movements = append(fixture.movements, args.Get(2).(domain.DepositMovement))
		}).Return(nil)
	suite.mockAccountRepo.On("FindSystemAccount", ctx, mock.Anything, "NGN").Return(account, nil)
	suite.mockLedgerSvc.On("PostJournalInTx", ctx, mock.Anything, mock.AnythingOfType("dto.CreateJournalRequest"), mock.Anything).
		Run(func(args mock.Arguments) {
			fixture.journalReq = args.Get(2).(dto.CreateJournalRequest)
		}).Return(journal, nil).Once()
	suite.mockPortfolioRepo.On("CloseDepositInTx", ctx, mock.Anything, fixture.deposit.DepositID, mock.AnythingOfType("bool"), mock.AnythingOfType("time.Time"), mock.Anything).
		Run(func(args mock.Arguments) {
			fixture.matured = args.Get(3).(bool)
		}).Return(nil).Once()
	suite.mockWalletRepo.On("SaveWalletTransactionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.WalletTransaction")).
		Run(func(args mock.Arguments) {
			fixture.walletTxn = args.Get(2).(domain.WalletTransaction)
		}).Return(nil).Once()
	suite.mockPortfolioRepo.On("SaveBatchInTx", ctx, mock.Anything, mock.AnythingOfType("domain.TransactionBatch")).Return(nil).Once()
	suite.mockPortfolioRepo.On("SavePortfolioTransactionInTx", ctx, mock.Anything, mock.AnythingOfType("domain.PortfolioTransaction")).Return(nil).Once()
	suite.mockPortfolioRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()
	return fixture
}

// depositNetByAccount replays movement rows into signed per-account totals.
func depositNetByAccount(movements []domain.DepositMovement) map[domain.DepositAccount]decimal.Decimal {
	net := map[domain.DepositAccount]decimal.Decimal{}
	for _, m := range movements {
		amount := m.Amount
		if m.Side == domain.SideOut {
			amount = amount.Neg()
		}
		net[m.Account] = net[m.Account].Add(amount)
	}
	return net
}

func journalSides(req dto.CreateJournalRequest) (debits, credits decimal.Decimal) {
	for _, e := range req.Entries {
		if e.Side == domain.Debit {
			debits = debits.Add(e.Amount)
		} else {
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits
}

func (suite *OrderServiceTestSuite) TestLiquidateDeposit_AtMaturityNoPenalty() {
	ctx := context.Background()
	date := time.Now().UTC()
	fixture := suite.expectLiquidation(ctx, "0.20", 365, date)

	leg, err := suite.service.LiquidateDeposit(ctx, fixture.deposit.DepositID, dto.LiquidateDepositRequest{Date: &date}, uuid.NewString())

	suite.Require().NoError(err)
	suite.Require().NotNil(leg)
	suite.True(fixture.matured)
	// 500000 at 10% over the full 365-day tenor: 50000 gross, 5000 withheld.
	suite.True(fixture.walletTxn.Amount.Equal(decimal.NewFromInt(545000)))
	suite.True(leg.Amount.Equal(decimal.NewFromInt(545000)))
	suite.Equal(domain.TxnLiquidation, leg.Type)
	suite.Equal(domain.StatusCompleted, leg.Status)

	// The liquidation rows unwind the opening principal row and leave the
	// interest and tax accounts fully drained.
	net := depositNetByAccount(fixture.movements)
	suite.True(net[domain.DepositAsset].Equal(fixture.deposit.Principal.Neg()))
	suite.True(net[domain.DepositInterest].IsZero())
	suite.True(net[domain.DepositTax].IsZero())

	debits, credits := journalSides(fixture.journalReq)
	suite.True(debits.Equal(credits))
}

func (suite *OrderServiceTestSuite) TestLiquidateDeposit_EarlyAppliesPenalty() {
	ctx := context.Background()
	date := time.Now().UTC()
	fixture := suite.expectLiquidation(ctx, "0.20", 73, date)

	leg, err := suite.service.LiquidateDeposit(ctx, fixture.deposit.DepositID, dto.LiquidateDepositRequest{Date: &date}, uuid.NewString())

	suite.Require().NoError(err)
	suite.False(fixture.matured)
	// 73 days accrued: 10000 gross, 1000 withheld, 9000 net; 20% penalty on
	// net interest forfeits 1800.
	suite.True(fixture.walletTxn.Amount.Equal(decimal.NewFromInt(507200)))
	suite.True(leg.Amount.Equal(decimal.NewFromInt(507200)))

	penaltyRecorded := false
	for _, m := range fixture.movements {
		if m.Side == domain.SideOut && m.Account == domain.DepositInterest && m.Amount.Equal(decimal.NewFromInt(1800)) {
			penaltyRecorded = true
		}
	}
	suite.True(penaltyRecorded)

	net := depositNetByAccount(fixture.movements)
	suite.True(net[domain.DepositAsset].Equal(fixture.deposit.Principal.Neg()))
	suite.True(net[domain.DepositInterest].IsZero())
	suite.True(net[domain.DepositTax].IsZero())

	debits, credits := journalSides(fixture.journalReq)
	suite.True(debits.Equal(credits))
}

func (suite *OrderServiceTestSuite) TestLiquidateDeposit_SameDayPaysPrincipalOnly() {
	ctx := context.Background()
	date := time.Now().UTC()
	fixture := suite.expectLiquidation(ctx, "0.20", 0, date)

	leg, err := suite.service.LiquidateDeposit(ctx, fixture.deposit.DepositID, dto.LiquidateDepositRequest{Date: &date}, uuid.NewString())

	suite.Require().NoError(err)
	suite.False(fixture.matured)
	suite.True(fixture.walletTxn.Amount.Equal(fixture.deposit.Principal))
	suite.True(leg.Amount.Equal(fixture.deposit.Principal))

	// No accrual means the only subledger row is the principal unwind.
	suite.Require().Len(fixture.movements, 1)
	suite.Equal(domain.SideOut, fixture.movements[0].Side)
	suite.Equal(domain.DepositAsset, fixture.movements[0].Account)
	suite.True(fixture.movements[0].Amount.Equal(fixture.deposit.Principal))

	debits, credits := journalSides(fixture.journalReq)
	suite.True(debits.Equal(credits))
}

func (suite *OrderServiceTestSuite) TestGetBatch_AggregatesStatus() {
	ctx := context.Background()
	batch := &domain.TransactionBatch{
		BatchID:     uuid.NewString(),
		PortfolioID: uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
	}
	legs := []domain.PortfolioTransaction{
		{TransactionID: uuid.NewString(), BatchID: batch.BatchID, Status: domain.StatusCompleted},
		{TransactionID: uuid.NewString(), BatchID: batch.BatchID, Status: domain.StatusFailed},
	}

	suite.mockPortfolioRepo.On("FindBatchByID", ctx, batch.BatchID).Return(batch, nil).Once()
	suite.mockPortfolioRepo.On("ListTransactionsByBatch", ctx, batch.BatchID).Return(legs, nil).Once()

	response, err := suite.service.GetBatch(ctx, batch.BatchID)

	suite.Require().NoError(err)
	suite.Require().NotNil(response)
	suite.Equal(string(domain.BatchPartiallyFailed), response.Status)
	suite.Len(response.Legs, 2)
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
