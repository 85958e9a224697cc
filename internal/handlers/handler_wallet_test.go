package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/a7a6j4/pieV1/internal/apperrors"
	"github.com/a7a6j4/pieV1/internal/core/domain"
	portssvc "github.com/a7a6j4/pieV1/internal/core/ports/services"
	"github.com/a7a6j4/pieV1/internal/dto"
	"github.com/a7a6j4/pieV1/internal/handlers"
	"github.com/a7a6j4/pieV1/internal/middleware"
)

// --- Mock WalletService ---
type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) GetWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletService) ListWalletsByUser(ctx context.Context, userID string) ([]domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Wallet), args.Error(1)
}

func (m *MockWalletService) GetWalletBalance(ctx context.Context, walletID string, asOf time.Time) (*domain.WalletBalance, error) {
	args := m.Called(ctx, walletID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletBalance), args.Error(1)
}

func (m *MockWalletService) ListWalletTransactions(ctx context.Context, walletID string, params dto.ListWalletTransactionsParams) (*dto.ListWalletTransactionsResponse, error) {
	args := m.Called(ctx, walletID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListWalletTransactionsResponse), args.Error(1)
}

func (m *MockWalletService) CreateWallet(ctx context.Context, req dto.CreateWalletRequest, creatorUserID string) (*domain.Wallet, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletService) SetWalletActive(ctx context.Context, walletID string, active bool, requestingUserID string) error {
	args := m.Called(ctx, walletID, active, requestingUserID)
	return args.Error(0)
}

func (m *MockWalletService) RecordTransaction(ctx context.Context, walletID string, req dto.RecordWalletTransactionRequest, requestingUserID string) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, walletID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.WalletSvcFacade = (*MockWalletService)(nil)

// --- Test Suite ---
type WalletHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockWalletService *MockWalletService
	jwtSecret         string
}

// generateTestToken creates a dummy JWT for testing.
func (suite *WalletHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "pie-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *WalletHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockWalletService = new(MockWalletService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterWalletRoutes(v1, suite.mockWalletService)
}

func (suite *WalletHandlerTestSuite) postTransaction(walletID string, userID string, body dto.RecordWalletTransactionRequest) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	suite.Require().NoError(err)

	url := fmt.Sprintf("/api/v1/wallets/%s/transactions", walletID)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *WalletHandlerTestSuite) TestRecordTransaction_Success() {
	walletID := uuid.NewString()
	userID := uuid.NewString()
	req := dto.RecordWalletTransactionRequest{
		Type:   domain.TxnDeposit,
		Amount: decimal.NewFromInt(5000),
	}
	txn := &domain.WalletTransaction{
		TransactionID: uuid.NewString(),
		WalletID:      walletID,
		Type:          domain.TxnDeposit,
		Amount:        decimal.NewFromInt(5000),
		CurrencyCode:  "NGN",
		Status:        domain.StatusCompleted,
	}

	suite.mockWalletService.On("RecordTransaction",
		mock.AnythingOfType("*context.valueCtx"),
		walletID,
		mock.MatchedBy(func(r dto.RecordWalletTransactionRequest) bool {
			return r.Type == domain.TxnDeposit && r.Amount.Equal(decimal.NewFromInt(5000))
		}),
		userID,
	).Return(txn, nil).Once()

	w := suite.postTransaction(walletID, userID, req)

	suite.Equal(http.StatusCreated, w.Code)

	var body dto.WalletTransactionResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(txn.TransactionID, body.TransactionID)
	suite.mockWalletService.AssertExpectations(suite.T())
}

func (suite *WalletHandlerTestSuite) TestRecordTransaction_InactiveWalletReturnsBadRequest() {
	walletID := uuid.NewString()
	userID := uuid.NewString()
	req := dto.RecordWalletTransactionRequest{
		Type:   domain.TxnDeposit,
		Amount: decimal.NewFromInt(5000),
	}

	suite.mockWalletService.On("RecordTransaction",
		mock.AnythingOfType("*context.valueCtx"),
		walletID,
		mock.AnythingOfType("dto.RecordWalletTransactionRequest"),
		userID,
	).Return(nil, fmt.Errorf("%w: wallet is inactive", apperrors.ErrInactive)).Once()

	w := suite.postTransaction(walletID, userID, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockWalletService.AssertExpectations(suite.T())
}

func (suite *WalletHandlerTestSuite) TestRecordTransaction_InsufficientFundsReturnsUnprocessable() {
	walletID := uuid.NewString()
	userID := uuid.NewString()
	req := dto.RecordWalletTransactionRequest{
		Type:   domain.TxnWithdrawal,
		Amount: decimal.NewFromInt(5000),
	}

	suite.mockWalletService.On("RecordTransaction",
		mock.AnythingOfType("*context.valueCtx"),
		walletID,
		mock.AnythingOfType("dto.RecordWalletTransactionRequest"),
		userID,
	).Return(nil, fmt.Errorf("%w: balance 100, withdrawing 5000", apperrors.ErrInsufficientFunds)).Once()

	w := suite.postTransaction(walletID, userID, req)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.mockWalletService.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestWalletHandler(t *testing.T) {
	suite.Run(t, new(WalletHandlerTestSuite))
}
