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
	portssvc "github.com/a7a6j4/pieV1/internal/core/ports/services"
	"github.com/a7a6j4/pieV1/internal/core/services"
)

// MockPriceProvider is a mock implementation of portssvc.PriceProvider
type MockPriceProvider struct {
	mock.Mock
}

func (m *MockPriceProvider) PriceAsOf(ctx context.Context, product *domain.Product, asOf time.Time) (*domain.PricePoint, error) {
	args := m.Called(ctx, product, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PricePoint), args.Error(1)
}

// MockRateProvider is a mock implementation of portssvc.RateProvider
type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) Rate(ctx context.Context, fromCurrency string, toCurrency string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, fromCurrency, toCurrency, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type ValuationServiceTestSuite struct {
	suite.Suite
	mockPortfolioRepo *MockPortfolioRepository
	mockProductRepo   *MockProductRepository
	mockPrices        *MockPriceProvider
	mockRates         *MockRateProvider
	service           portssvc.ValuationSvc
}

func (suite *ValuationServiceTestSuite) SetupTest() {
	suite.mockPortfolioRepo = new(MockPortfolioRepository)
	suite.mockProductRepo = new(MockProductRepository)
	suite.mockPrices = new(MockPriceProvider)
	suite.mockRates = new(MockRateProvider)

	policy := testPolicy()
	suite.service = services.NewValuationService(
		services.NewPortfolioService(suite.mockPortfolioRepo, suite.mockProductRepo, policy),
		suite.mockPortfolioRepo,
		suite.mockProductRepo,
		suite.mockPrices,
		suite.mockRates,
		policy,
	)
}

// expectVariableHolding wires one priced unit holding: a held product, its
// ledger rows and the deposit listing.
func (suite *ValuationServiceTestSuite) expectVariableHolding(ctx context.Context, portfolio *domain.Portfolio, product *domain.Product, movements []domain.VariableMovement, asOf time.Time) {
	suite.mockPortfolioRepo.On("FindPortfolioByID", ctx, portfolio.PortfolioID).Return(portfolio, nil)
	suite.mockPortfolioRepo.On("ListHeldProductIDs", ctx, portfolio.PortfolioID).Return([]string{product.ProductID}, nil).Once()
	suite.mockProductRepo.On("FindProductByID", ctx, product.ProductID).Return(product, nil)
	suite.mockPortfolioRepo.On("ListVariableMovements", ctx, portfolio.PortfolioID, product.ProductID, asOf).
		Return(movements, nil)
	suite.mockPortfolioRepo.On("ListDepositsByPortfolio", ctx, portfolio.PortfolioID, false).
		Return([]domain.PortfolioDeposit{}, nil).Once()
}

// --- Test Cases ---

func (suite *ValuationServiceTestSuite) TestValuePortfolio_PricesVariableHolding() {
	ctx := context.Background()
	asOf := time.Now().UTC()
	portfolio := activePortfolio()
	product := variableProduct()
	movement := inMovement(10, 100000)
	movement.Date = asOf.AddDate(0, 0, -365)

	suite.expectVariableHolding(ctx, portfolio, product, []domain.VariableMovement{movement}, asOf)
	suite.mockPrices.On("PriceAsOf", ctx, mock.AnythingOfType("*domain.Product"), asOf).
		Return(&domain.PricePoint{ProductID: product.ProductID, Value: decimal.NewFromInt(12000)}, nil).Once()

	valuation, err := suite.service.ValuePortfolio(ctx, portfolio.PortfolioID, asOf)

	suite.Require().NoError(err)
	suite.Require().NotNil(valuation)
	suite.Require().Len(valuation.Assets, 1)
	asset := valuation.Assets[0]
	suite.True(asset.CurrentPrice.Equal(decimal.NewFromInt(12000)))
	suite.True(asset.CurrentValue.Equal(decimal.NewFromInt(120000)))
	suite.True(asset.Performance.Equal(decimal.RequireFromString("0.2")))
	suite.Equal(365, asset.HoldingDays)
	suite.True(asset.AnnualizedPerformance.Equal(decimal.RequireFromString("0.2")))
	suite.True(valuation.TotalValueNGN.Equal(decimal.NewFromInt(120000)))
	suite.True(valuation.PerformanceNGN.Equal(decimal.RequireFromString("0.2")))
	suite.True(valuation.TotalValueUSD.IsZero())
	suite.mockRates.AssertNotCalled(suite.T(), "Rate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ValuationServiceTestSuite) TestValuePortfolio_CarriesAtCostWhenNoPrice() {
	ctx := context.Background()
	asOf := time.Now().UTC()
	portfolio := activePortfolio()
	product := variableProduct()
	movement := inMovement(10, 100000)
	movement.Date = asOf.AddDate(0, 0, -30)

	suite.expectVariableHolding(ctx, portfolio, product, []domain.VariableMovement{movement}, asOf)
	suite.mockPrices.On("PriceAsOf", ctx, mock.AnythingOfType("*domain.Product"), asOf).
		Return(nil, apperrors.ErrNotFound).Once()

	valuation, err := suite.service.ValuePortfolio(ctx, portfolio.PortfolioID, asOf)

	suite.Require().NoError(err)
	suite.Require().Len(valuation.Assets, 1)
	asset := valuation.Assets[0]
	suite.True(asset.CurrentPrice.Equal(decimal.NewFromInt(10000)), "falls back to weighted average cost")
	suite.True(asset.CurrentValue.Equal(decimal.NewFromInt(100000)))
	suite.True(asset.Performance.IsZero())
}

func (suite *ValuationServiceTestSuite) TestValuePortfolio_ZeroInvestedPerformanceGuard() {
	ctx := context.Background()
	asOf := time.Now().UTC()
	portfolio := activePortfolio()
	product := variableProduct()
	movement := inMovement(10, 0)
	movement.Date = asOf.AddDate(0, 0, -30)

	suite.expectVariableHolding(ctx, portfolio, product, []domain.VariableMovement{movement}, asOf)
	suite.mockPrices.On("PriceAsOf", ctx, mock.AnythingOfType("*domain.Product"), asOf).
		Return(&domain.PricePoint{ProductID: product.ProductID, Value: decimal.NewFromInt(500)}, nil).Once()

	valuation, err := suite.service.ValuePortfolio(ctx, portfolio.PortfolioID, asOf)

	suite.Require().NoError(err)
	suite.Require().Len(valuation.Assets, 1)
	suite.True(valuation.Assets[0].CurrentValue.Equal(decimal.NewFromInt(5000)))
	suite.True(valuation.Assets[0].Performance.IsZero())
	suite.True(valuation.Assets[0].AnnualizedPerformance.IsZero())
	suite.True(valuation.PerformanceNGN.IsZero())
}

func (suite *ValuationServiceTestSuite) TestValuePortfolio_RollsUSDHoldingsIntoNGN() {
	ctx := context.Background()
	asOf := time.Now().UTC()
	portfolio := activePortfolio()
	product := variableProduct()
	product.CurrencyCode = domain.CurrencyUSD
	movement := inMovement(10, 100)
	movement.Date = asOf.AddDate(0, 0, -365)

	suite.expectVariableHolding(ctx, portfolio, product, []domain.VariableMovement{movement}, asOf)
	suite.mockPrices.On("PriceAsOf", ctx, mock.AnythingOfType("*domain.Product"), asOf).
		Return(&domain.PricePoint{ProductID: product.ProductID, Value: decimal.NewFromInt(12)}, nil).Once()
	suite.mockRates.On("Rate", ctx, domain.CurrencyUSD, domain.CurrencyNGN, asOf).
		Return(decimal.NewFromInt(1500), nil).Once()

	valuation, err := suite.service.ValuePortfolio(ctx, portfolio.PortfolioID, asOf)

	suite.Require().NoError(err)
	suite.True(valuation.TotalValueUSD.Equal(decimal.NewFromInt(120)))
	suite.True(valuation.PerformanceUSD.Equal(decimal.RequireFromString("0.2")))
	suite.True(valuation.TotalValueNGN.Equal(decimal.NewFromInt(180000)), "USD holdings roll up at the reporting rate")
	suite.True(valuation.PerformanceNGN.Equal(decimal.RequireFromString("0.2")))
	suite.mockRates.AssertExpectations(suite.T())
}

func (suite *ValuationServiceTestSuite) TestValuePortfolio_IncludesOpenDeposits() {
	ctx := context.Background()
	asOf := time.Now().UTC()
	portfolio := activePortfolio()
	depositProduct := &domain.Product{
		ProductID:    uuid.NewString(),
		Title:        "365 Day Note",
		CurrencyCode: "NGN",
		Category:     domain.CategoryDeposit,
		Class:        domain.ClassDeposit,
		IsActive:     true,
		Deposit:      &domain.DepositTerms{MinTenorDays: 30, MaxTenorDays: 365, Taxable: true},
	}
	deposit := domain.PortfolioDeposit{
		DepositID:     uuid.NewString(),
		PortfolioID:   portfolio.PortfolioID,
		ProductID:     depositProduct.ProductID,
		Principal:     decimal.NewFromInt(500000),
		Rate:          decimal.RequireFromString("0.10"),
		TenorDays:     365,
		EffectiveDate: asOf.AddDate(0, 0, -365),
		MaturityDate:  asOf,
	}

	suite.mockPortfolioRepo.On("FindPortfolioByID", ctx, portfolio.PortfolioID).Return(portfolio, nil)
	suite.mockPortfolioRepo.On("ListHeldProductIDs", ctx, portfolio.PortfolioID).Return([]string{}, nil).Once()
	suite.mockPortfolioRepo.On("ListDepositsByPortfolio", ctx, portfolio.PortfolioID, false).
		Return([]domain.PortfolioDeposit{deposit}, nil).Once()
	suite.mockPortfolioRepo.On("FindDepositByID", ctx, deposit.DepositID).Return(&deposit, nil).Once()
	suite.mockPortfolioRepo.On("ListDepositMovements", ctx, deposit.DepositID).
		Return([]domain.DepositMovement{
			{MovementID: uuid.NewString(), DepositID: deposit.DepositID, Side: domain.SideIn, Account: domain.DepositAsset, Amount: decimal.NewFromInt(500000)},
		}, nil).Once()
	suite.mockProductRepo.On("FindProductByID", ctx, depositProduct.ProductID).Return(depositProduct, nil)

	valuation, err := suite.service.ValuePortfolio(ctx, portfolio.PortfolioID, asOf)

	suite.Require().NoError(err)
	suite.Require().Len(valuation.Assets, 1)
	asset := valuation.Assets[0]
	suite.Equal(domain.CategoryDeposit, asset.Category)
	suite.True(asset.InvestedAmount.Equal(decimal.NewFromInt(500000)))
	suite.True(asset.CurrentValue.Equal(decimal.NewFromInt(545000)), "principal plus net accrued interest")
	suite.True(asset.Performance.Equal(decimal.RequireFromString("0.09")))
	suite.Equal(365, asset.HoldingDays)
	suite.True(valuation.TotalValueNGN.Equal(decimal.NewFromInt(545000)))
	suite.True(valuation.PerformanceNGN.Equal(decimal.RequireFromString("0.09")))
	suite.mockRates.AssertNotCalled(suite.T(), "Rate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ValuationServiceTestSuite) TestValuePortfolio_Empty() {
	ctx := context.Background()
	asOf := time.Now().UTC()
	portfolio := activePortfolio()

	suite.mockPortfolioRepo.On("FindPortfolioByID", ctx, portfolio.PortfolioID).Return(portfolio, nil)
	suite.mockPortfolioRepo.On("ListHeldProductIDs", ctx, portfolio.PortfolioID).Return([]string{}, nil).Once()
	suite.mockPortfolioRepo.On("ListDepositsByPortfolio", ctx, portfolio.PortfolioID, false).
		Return([]domain.PortfolioDeposit{}, nil).Once()

	valuation, err := suite.service.ValuePortfolio(ctx, portfolio.PortfolioID, asOf)

	suite.Require().NoError(err)
	suite.Empty(valuation.Assets)
	suite.True(valuation.TotalValueNGN.IsZero())
	suite.True(valuation.TotalValueUSD.IsZero())
	suite.True(valuation.PerformanceNGN.IsZero())
	suite.True(valuation.PerformanceUSD.IsZero())
	suite.mockRates.AssertNotCalled(suite.T(), "Rate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestValuationServiceSuite(t *testing.T) {
	suite.Run(t, new(ValuationServiceTestSuite))
}
