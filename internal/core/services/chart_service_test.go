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

type ChartServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockJournalRepo *MockJournalRepository
	service         portssvc.ChartSvcFacade
}

func (suite *ChartServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.service = services.NewChartService(suite.mockAccountRepo, suite.mockJournalRepo)
}

// --- Test Cases ---

func (suite *ChartServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	req := dto.CreateAccountRequest{
		Code:         "1000",
		Name:         "Platform Cash",
		AccountType:  domain.Asset,
		CurrencyCode: "NGN",
	}

	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.NotEmpty(account.AccountID)
	suite.Equal(req.Code, account.Code)
	suite.Equal(req.AccountType, account.AccountType)
	suite.Equal(1, account.Level)
	suite.True(account.IsActive)
	suite.Equal(creatorUserID, account.CreatedBy)
	suite.WithinDuration(time.Now(), account.CreatedAt, time.Second)

	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *ChartServiceTestSuite) TestCreateAccount_WithParent() {
	ctx := context.Background()
	parent := &domain.Account{
		AccountID:   uuid.NewString(),
		Code:        "1000",
		Name:        "Assets",
		AccountType: domain.Asset,
		IsHeader:    true,
		Level:       1,
		IsActive:    true,
	}
	req := dto.CreateAccountRequest{
		Code:            "1000-01",
		Name:            "Bank",
		AccountType:     domain.Asset,
		CurrencyCode:    "NGN",
		ParentAccountID: &parent.AccountID,
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, parent.AccountID).Return(parent, nil).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.Equal(parent.AccountID, account.ParentAccountID)
	suite.Equal(2, account.Level)

	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *ChartServiceTestSuite) TestCreateAccount_ParentNotHeader() {
	ctx := context.Background()
	parent := &domain.Account{
		AccountID:   uuid.NewString(),
		AccountType: domain.Asset,
		IsHeader:    false,
		IsActive:    true,
	}
	req := dto.CreateAccountRequest{
		Code:            "1000-01",
		Name:            "Bank",
		AccountType:     domain.Asset,
		CurrencyCode:    "NGN",
		ParentAccountID: &parent.AccountID,
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, parent.AccountID).Return(parent, nil).Once()

	account, err := suite.service.CreateAccount(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *ChartServiceTestSuite) TestCreateAccount_ParentTypeMismatch() {
	ctx := context.Background()
	parent := &domain.Account{
		AccountID:   uuid.NewString(),
		AccountType: domain.Liability,
		IsHeader:    true,
		Level:       1,
		IsActive:    true,
	}
	req := dto.CreateAccountRequest{
		Code:            "1000-01",
		Name:            "Bank",
		AccountType:     domain.Asset,
		CurrencyCode:    "NGN",
		ParentAccountID: &parent.AccountID,
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, parent.AccountID).Return(parent, nil).Once()

	account, err := suite.service.CreateAccount(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ChartServiceTestSuite) TestGetAccountBalance_DebitNormal() {
	ctx := context.Background()
	asOf := time.Now().UTC()
	account := &domain.Account{
		AccountID:   uuid.NewString(),
		AccountType: domain.Asset,
		IsActive:    true,
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockJournalRepo.On("SumEntriesByAccountID", ctx, account.AccountID, asOf).
		Return(decimal.NewFromInt(150000), decimal.NewFromInt(50000), nil).Once()

	summary, err := suite.service.GetAccountBalance(ctx, account.AccountID, asOf)

	suite.Require().NoError(err)
	suite.Require().NotNil(summary)
	suite.True(summary.Balance.Equal(decimal.NewFromInt(100000)))
	suite.True(summary.TotalDebits.Equal(decimal.NewFromInt(150000)))
	suite.True(summary.TotalCredits.Equal(decimal.NewFromInt(50000)))
}

func (suite *ChartServiceTestSuite) TestGetAccountBalance_CreditNormal() {
	ctx := context.Background()
	asOf := time.Now().UTC()
	account := &domain.Account{
		AccountID:   uuid.NewString(),
		AccountType: domain.Liability,
		IsActive:    true,
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockJournalRepo.On("SumEntriesByAccountID", ctx, account.AccountID, asOf).
		Return(decimal.NewFromInt(20000), decimal.NewFromInt(80000), nil).Once()

	summary, err := suite.service.GetAccountBalance(ctx, account.AccountID, asOf)

	suite.Require().NoError(err)
	suite.True(summary.Balance.Equal(decimal.NewFromInt(60000)))
}

func (suite *ChartServiceTestSuite) TestGetAccountBalance_HeaderAggregatesSubtree() {
	ctx := context.Background()
	asOf := time.Now().UTC()
	header := &domain.Account{
		AccountID:   uuid.NewString(),
		AccountType: domain.Asset,
		IsHeader:    true,
		Level:       1,
		IsActive:    true,
	}
	childA := domain.Account{AccountID: uuid.NewString(), AccountType: domain.Asset, Level: 2, IsActive: true}
	childB := domain.Account{AccountID: uuid.NewString(), AccountType: domain.Asset, Level: 2, IsActive: true}

	suite.mockAccountRepo.On("FindAccountByID", ctx, header.AccountID).Return(header, nil).Once()
	suite.mockAccountRepo.On("ListChildAccounts", ctx, header.AccountID).Return([]domain.Account{childA, childB}, nil).Once()
	suite.mockJournalRepo.On("SumEntriesByAccountID", ctx, childA.AccountID, asOf).
		Return(decimal.NewFromInt(30000), decimal.NewFromInt(10000), nil).Once()
	suite.mockJournalRepo.On("SumEntriesByAccountID", ctx, childB.AccountID, asOf).
		Return(decimal.NewFromInt(5000), decimal.NewFromInt(1000), nil).Once()

	summary, err := suite.service.GetAccountBalance(ctx, header.AccountID, asOf)

	suite.Require().NoError(err)
	suite.True(summary.TotalDebits.Equal(decimal.NewFromInt(35000)))
	suite.True(summary.TotalCredits.Equal(decimal.NewFromInt(11000)))
	suite.True(summary.Balance.Equal(decimal.NewFromInt(24000)))

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *ChartServiceTestSuite) TestDeactivateAccount_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	account := &domain.Account{
		AccountID:   uuid.NewString(),
		AccountType: domain.Asset,
		IsActive:    true,
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Twice()
	suite.mockJournalRepo.On("SumEntriesByAccountID", ctx, account.AccountID, mock.AnythingOfType("time.Time")).
		Return(decimal.Zero, decimal.Zero, nil).Once()
	suite.mockAccountRepo.On("DeactivateAccount", ctx, account.AccountID, userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := suite.service.DeactivateAccount(ctx, account.AccountID, userID)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *ChartServiceTestSuite) TestDeactivateAccount_NonZeroBalance() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID:   uuid.NewString(),
		AccountType: domain.Asset,
		IsActive:    true,
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Twice()
	suite.mockJournalRepo.On("SumEntriesByAccountID", ctx, account.AccountID, mock.AnythingOfType("time.Time")).
		Return(decimal.NewFromInt(100), decimal.Zero, nil).Once()

	err := suite.service.DeactivateAccount(ctx, account.AccountID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "DeactivateAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ChartServiceTestSuite) TestDeactivateAccount_ActiveChildren() {
	ctx := context.Background()
	header := &domain.Account{
		AccountID:   uuid.NewString(),
		AccountType: domain.Asset,
		IsHeader:    true,
		IsActive:    true,
	}
	activeChild := domain.Account{AccountID: uuid.NewString(), AccountType: domain.Asset, IsActive: true}

	suite.mockAccountRepo.On("FindAccountByID", ctx, header.AccountID).Return(header, nil).Once()
	suite.mockAccountRepo.On("ListChildAccounts", ctx, header.AccountID).Return([]domain.Account{activeChild}, nil).Once()

	err := suite.service.DeactivateAccount(ctx, header.AccountID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *ChartServiceTestSuite) TestMapSystemAccount_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	account := &domain.Account{
		AccountID:    uuid.NewString(),
		AccountType:  domain.Asset,
		CurrencyCode: "NGN",
		IsActive:     true,
	}
	req := dto.MapSystemAccountRequest{
		Purpose:      domain.SystemCash,
		CurrencyCode: "NGN",
		AccountID:    account.AccountID,
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockAccountRepo.On("SaveSystemAccountMapping", ctx, domain.SystemCash, "NGN", account.AccountID, userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := suite.service.MapSystemAccount(ctx, req, userID)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *ChartServiceTestSuite) TestMapSystemAccount_HeaderRejected() {
	ctx := context.Background()
	header := &domain.Account{
		AccountID:    uuid.NewString(),
		AccountType:  domain.Asset,
		CurrencyCode: "NGN",
		IsHeader:     true,
		IsActive:     true,
	}
	req := dto.MapSystemAccountRequest{
		Purpose:      domain.SystemCash,
		CurrencyCode: "NGN",
		AccountID:    header.AccountID,
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, header.AccountID).Return(header, nil).Once()

	err := suite.service.MapSystemAccount(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveSystemAccountMapping", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ChartServiceTestSuite) TestMapSystemAccount_CurrencyMismatch() {
	ctx := context.Background()
	account := &domain.Account{
		AccountID:    uuid.NewString(),
		AccountType:  domain.Asset,
		CurrencyCode: "USD",
		IsActive:     true,
	}
	req := dto.MapSystemAccountRequest{
		Purpose:      domain.SystemCash,
		CurrencyCode: "NGN",
		AccountID:    account.AccountID,
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	err := suite.service.MapSystemAccount(ctx, req, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestChartServiceSuite(t *testing.T) {
	suite.Run(t, new(ChartServiceTestSuite))
}
