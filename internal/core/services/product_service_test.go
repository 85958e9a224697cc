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

// MockProductRepository is a mock type for the ProductRepositoryFacade interface
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindProductBySymbol(ctx context.Context, symbol string) (*domain.Product, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) ListProducts(ctx context.Context, params dto.ListProductsParams) ([]domain.Product, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) SaveProduct(ctx context.Context, product domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateProduct(ctx context.Context, product domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) DeactivateProduct(ctx context.Context, productID string, userID string, now time.Time) error {
	args := m.Called(ctx, productID, userID, now)
	return args.Error(0)
}

func (m *MockProductRepository) SaveFee(ctx context.Context, productID string, fee domain.TransactionFee) error {
	args := m.Called(ctx, productID, fee)
	return args.Error(0)
}

func (m *MockProductRepository) FindLatestPrice(ctx context.Context, productID string) (*domain.PricePoint, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PricePoint), args.Error(1)
}

func (m *MockProductRepository) FindPriceAsOf(ctx context.Context, productID string, asOf time.Time) (*domain.PricePoint, error) {
	args := m.Called(ctx, productID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PricePoint), args.Error(1)
}

func (m *MockProductRepository) ListPrices(ctx context.Context, productID string, from time.Time, to time.Time) ([]domain.PricePoint, error) {
	args := m.Called(ctx, productID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PricePoint), args.Error(1)
}

func (m *MockProductRepository) SavePricePoint(ctx context.Context, point domain.PricePoint) error {
	args := m.Called(ctx, point)
	return args.Error(0)
}

// testPolicy returns the financial policy used across service tests.
func testPolicy() services.Policy {
	return services.Policy{
		WithholdingTaxRate: decimal.RequireFromString("0.10"),
		VATRate:            decimal.RequireFromString("0.0075"),
		FxFallbackRate:     decimal.NewFromInt(1500),
		DayCount:           365,
	}
}

// --- Test Suite Setup ---

type ProductServiceTestSuite struct {
	suite.Suite
	mockProductRepo *MockProductRepository
	service         portssvc.ProductSvcFacade
}

func (suite *ProductServiceTestSuite) SetupTest() {
	suite.mockProductRepo = new(MockProductRepository)
	suite.service = services.NewProductService(suite.mockProductRepo, testPolicy())
}

func variableProduct() *domain.Product {
	return &domain.Product{
		ProductID:    uuid.NewString(),
		Title:        "NG Equity Fund",
		CurrencyCode: "NGN",
		Category:     domain.CategoryVariable,
		Class:        domain.ClassFund,
		Market:       domain.MarketNG,
		IsActive:     true,
		Variable:     &domain.VariableTerms{Symbol: "NGEF"},
	}
}

// --- Test Cases ---

func (suite *ProductServiceTestSuite) TestCreateProduct_Variable() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	req := dto.CreateProductRequest{
		Title:        "US Tech ETF",
		CurrencyCode: "USD",
		Category:     domain.CategoryVariable,
		Class:        domain.ClassETF,
		Market:       domain.MarketUS,
		RiskLevel:    6,
		Variable:     &dto.VariableTermsRequest{Symbol: "USTE"},
	}

	suite.mockProductRepo.On("SaveProduct", ctx, mock.AnythingOfType("domain.Product")).Return(nil).Once()

	product, err := suite.service.CreateProduct(ctx, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(product)
	suite.NotEmpty(product.ProductID)
	suite.Equal(domain.CategoryVariable, product.Category)
	suite.Require().NotNil(product.Variable)
	suite.Equal("USTE", product.Variable.Symbol)
	suite.Nil(product.Deposit)
	suite.True(product.IsActive)
	suite.Equal(creatorUserID, product.CreatedBy)

	suite.mockProductRepo.AssertExpectations(suite.T())
}

func (suite *ProductServiceTestSuite) TestCreateProduct_Deposit() {
	ctx := context.Background()
	req := dto.CreateProductRequest{
		Title:        "90 Day Note",
		CurrencyCode: "NGN",
		Category:     domain.CategoryDeposit,
		Class:        domain.ClassDeposit,
		Market:       domain.MarketNG,
		Deposit: &dto.DepositTermsRequest{
			MinTenorDays: 30,
			MaxTenorDays: 180,
			Fixed:        true,
			PenaltyRate:  decimal.RequireFromString("0.25"),
			Taxable:      true,
		},
	}

	suite.mockProductRepo.On("SaveProduct", ctx, mock.AnythingOfType("domain.Product")).Return(nil).Once()

	product, err := suite.service.CreateProduct(ctx, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.Require().NotNil(product.Deposit)
	suite.Equal(30, product.Deposit.MinTenorDays)
	suite.Equal(180, product.Deposit.MaxTenorDays)
	suite.True(product.Deposit.Taxable)
	suite.Nil(product.Variable)
}

func (suite *ProductServiceTestSuite) TestCreateProduct_VariantMismatch() {
	ctx := context.Background()
	req := dto.CreateProductRequest{
		Title:        "Confused Product",
		CurrencyCode: "NGN",
		Category:     domain.CategoryVariable,
		Class:        domain.ClassFund,
		Market:       domain.MarketNG,
		Deposit:      &dto.DepositTermsRequest{MinTenorDays: 30, MaxTenorDays: 90},
	}

	product, err := suite.service.CreateProduct(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(product)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockProductRepo.AssertNotCalled(suite.T(), "SaveProduct", mock.Anything, mock.Anything)
}

func (suite *ProductServiceTestSuite) TestCreateProduct_TenorRangeInverted() {
	ctx := context.Background()
	req := dto.CreateProductRequest{
		Title:        "Bad Tenor Note",
		CurrencyCode: "NGN",
		Category:     domain.CategoryDeposit,
		Class:        domain.ClassDeposit,
		Market:       domain.MarketNG,
		Deposit:      &dto.DepositTermsRequest{MinTenorDays: 180, MaxTenorDays: 30},
	}

	product, err := suite.service.CreateProduct(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(product)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ProductServiceTestSuite) TestQuoteFees_FlatAndRelativeWithVAT() {
	ctx := context.Background()
	product := variableProduct()
	product.Fees = []domain.TransactionFee{
		{
			FeeID:      uuid.NewString(),
			Title:      "Processing fee",
			OnPurchase: true,
			VATable:    true,
			Type:       domain.FeeFlat,
			Value:      decimal.NewFromInt(1000),
		},
		{
			FeeID:      uuid.NewString(),
			Title:      "Brokerage",
			OnPurchase: true,
			Type:       domain.FeeRelative,
			Value:      decimal.RequireFromString("0.015"),
		},
	}
	orderAmount := decimal.NewFromInt(100000)

	suite.mockProductRepo.On("FindProductByID", ctx, product.ProductID).Return(product, nil).Once()

	quote, err := suite.service.QuoteFees(ctx, product.ProductID, orderAmount, true)

	suite.Require().NoError(err)
	suite.Require().NotNil(quote)
	suite.Require().Len(quote.Lines, 2)
	suite.True(quote.Lines[0].Amount.Equal(decimal.NewFromInt(1000)))
	suite.True(quote.Lines[0].VAT.Equal(decimal.RequireFromString("7.5")))
	suite.True(quote.Lines[1].Amount.Equal(decimal.NewFromInt(1500)))
	suite.True(quote.Lines[1].VAT.IsZero())
	suite.True(quote.TotalFees.Equal(decimal.NewFromInt(2500)))
	suite.True(quote.TotalVAT.Equal(decimal.RequireFromString("7.5")))
	suite.True(quote.NetAmount.Equal(decimal.RequireFromString("102507.5")))
}

func (suite *ProductServiceTestSuite) TestQuoteFees_SkipsWrongSide() {
	ctx := context.Background()
	product := variableProduct()
	product.Fees = []domain.TransactionFee{
		{
			FeeID:      uuid.NewString(),
			Title:      "Purchase only",
			OnPurchase: true,
			Type:       domain.FeeFlat,
			Value:      decimal.NewFromInt(1000),
		},
		{
			FeeID:  uuid.NewString(),
			Title:  "Exit fee",
			OnSale: true,
			Type:   domain.FeeFlat,
			Value:  decimal.NewFromInt(500),
		},
	}

	suite.mockProductRepo.On("FindProductByID", ctx, product.ProductID).Return(product, nil).Once()

	quote, err := suite.service.QuoteFees(ctx, product.ProductID, decimal.NewFromInt(50000), false)

	suite.Require().NoError(err)
	suite.Require().Len(quote.Lines, 1)
	suite.Equal("Exit fee", quote.Lines[0].Title)
	suite.True(quote.TotalFees.Equal(decimal.NewFromInt(500)))
	suite.True(quote.NetAmount.Equal(decimal.NewFromInt(49500)))
}

func (suite *ProductServiceTestSuite) TestQuoteFees_NonPositiveAmount() {
	ctx := context.Background()

	quote, err := suite.service.QuoteFees(ctx, uuid.NewString(), decimal.Zero, true)

	suite.Require().Error(err)
	suite.Nil(quote)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ProductServiceTestSuite) TestRecordPrice_Success() {
	ctx := context.Background()
	product := variableProduct()
	date := time.Now().UTC().Truncate(24 * time.Hour)
	value := decimal.RequireFromString("152.75")

	suite.mockProductRepo.On("FindProductByID", ctx, product.ProductID).Return(product, nil).Once()
	suite.mockProductRepo.On("SavePricePoint", ctx, mock.AnythingOfType("domain.PricePoint")).Return(nil).Once()

	err := suite.service.RecordPrice(ctx, product.ProductID, date, value, uuid.NewString())

	suite.Require().NoError(err)
	suite.mockProductRepo.AssertExpectations(suite.T())
}

func (suite *ProductServiceTestSuite) TestRecordPrice_NonPositive() {
	ctx := context.Background()

	err := suite.service.RecordPrice(ctx, uuid.NewString(), time.Now().UTC(), decimal.Zero, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockProductRepo.AssertNotCalled(suite.T(), "SavePricePoint", mock.Anything, mock.Anything)
}

func (suite *ProductServiceTestSuite) TestAddFee_NonPositiveValue() {
	ctx := context.Background()
	product := variableProduct()
	req := dto.CreateFeeRequest{Title: "Bad fee", Type: domain.FeeFlat, Value: decimal.Zero}

	suite.mockProductRepo.On("FindProductByID", ctx, product.ProductID).Return(product, nil).Once()

	fee, err := suite.service.AddFee(ctx, product.ProductID, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(fee)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestProductServiceSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}
