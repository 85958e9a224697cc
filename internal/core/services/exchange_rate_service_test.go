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
)

// MockExchangeRateRepository is a mock type for the ExchangeRateRepositoryFacade interface
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindLatestRate(ctx context.Context, fromCurrency string, toCurrency string, asOf time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCurrency, toCurrency, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

// --- Test Suite Setup ---

type ExchangeRateServiceTestSuite struct {
	suite.Suite
	mockRateRepo *MockExchangeRateRepository
	service      portssvc.ExchangeRateSvcFacade
}

func (suite *ExchangeRateServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockExchangeRateRepository)
	suite.service = services.NewExchangeRateService(suite.mockRateRepo, testPolicy())
}

// --- Test Cases ---

func (suite *ExchangeRateServiceTestSuite) TestRate_SameCurrency() {
	ctx := context.Background()

	rate, err := suite.service.Rate(ctx, "NGN", "NGN", time.Now().UTC())

	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.NewFromInt(1)))
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindLatestRate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestRate_StoredRate() {
	ctx := context.Background()
	asOf := time.Now().UTC()
	stored := &domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "NGN",
		Rate:             decimal.NewFromInt(1620),
		DateEffective:    asOf.AddDate(0, 0, -1),
	}

	suite.mockRateRepo.On("FindLatestRate", ctx, "USD", "NGN", asOf).Return(stored, nil).Once()

	rate, err := suite.service.Rate(ctx, "USD", "NGN", asOf)

	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.NewFromInt(1620)))
}

func (suite *ExchangeRateServiceTestSuite) TestRate_InvertsStoredInversePair() {
	ctx := context.Background()
	asOf := time.Now().UTC()
	inverse := &domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "NGN",
		Rate:             decimal.NewFromInt(1600),
		DateEffective:    asOf.AddDate(0, 0, -1),
	}

	suite.mockRateRepo.On("FindLatestRate", ctx, "NGN", "USD", asOf).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindLatestRate", ctx, "USD", "NGN", asOf).Return(inverse, nil).Once()

	rate, err := suite.service.Rate(ctx, "NGN", "USD", asOf)

	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.RequireFromString("0.000625")), "rate was %s", rate)
}

func (suite *ExchangeRateServiceTestSuite) TestRate_ConfiguredFallback() {
	ctx := context.Background()
	asOf := time.Now().UTC()

	suite.mockRateRepo.On("FindLatestRate", ctx, "USD", "NGN", asOf).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindLatestRate", ctx, "NGN", "USD", asOf).Return(nil, apperrors.ErrNotFound).Once()

	rate, err := suite.service.Rate(ctx, "USD", "NGN", asOf)

	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.NewFromInt(1500)))
}

func (suite *ExchangeRateServiceTestSuite) TestRate_ConfiguredFallbackInverted() {
	ctx := context.Background()
	asOf := time.Now().UTC()

	suite.mockRateRepo.On("FindLatestRate", ctx, "NGN", "USD", asOf).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindLatestRate", ctx, "USD", "NGN", asOf).Return(nil, apperrors.ErrNotFound).Once()

	rate, err := suite.service.Rate(ctx, "NGN", "USD", asOf)

	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.RequireFromString("0.00066667")), "rate was %s", rate)
}

func (suite *ExchangeRateServiceTestSuite) TestRate_UnknownPair() {
	ctx := context.Background()
	asOf := time.Now().UTC()

	suite.mockRateRepo.On("FindLatestRate", ctx, "EUR", "NGN", asOf).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindLatestRate", ctx, "NGN", "EUR", asOf).Return(nil, apperrors.ErrNotFound).Once()

	rate, err := suite.service.Rate(ctx, "EUR", "NGN", asOf)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.True(rate.IsZero())
}

func (suite *ExchangeRateServiceTestSuite) TestRecordRate_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	dateEffective := time.Now().UTC().Truncate(24 * time.Hour)

	suite.mockRateRepo.On("SaveExchangeRate", ctx, mock.AnythingOfType("domain.ExchangeRate")).Return(nil).Once()

	rate, err := suite.service.RecordRate(ctx, "USD", "NGN", decimal.NewFromInt(1610), dateEffective, userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(rate)
	suite.NotEmpty(rate.ExchangeRateID)
	suite.Equal("USD", rate.FromCurrencyCode)
	suite.Equal("NGN", rate.ToCurrencyCode)
	suite.Equal(dateEffective, rate.DateEffective)
	suite.Equal(userID, rate.CreatedBy)

	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestRecordRate_NonPositive() {
	ctx := context.Background()

	rate, err := suite.service.RecordRate(ctx, "USD", "NGN", decimal.Zero, time.Now().UTC(), uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(rate)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "SaveExchangeRate", mock.Anything, mock.Anything)
}

func (suite *ExchangeRateServiceTestSuite) TestRecordRate_SamePair() {
	ctx := context.Background()

	rate, err := suite.service.RecordRate(ctx, "NGN", "NGN", decimal.NewFromInt(1), time.Now().UTC(), uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(rate)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestExchangeRateServiceSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}
