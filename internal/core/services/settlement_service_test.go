package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	portssvc "github.com/a7a6j4/pieV1/internal/core/ports/services"
	"github.com/a7a6j4/pieV1/internal/core/services"
	"github.com/a7a6j4/pieV1/internal/dto"
)

// MockOutboxRepository is a mock implementation of portsrepo.OutboxRepositoryFacade
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) ListDueTasks(ctx context.Context, limit int, now time.Time) ([]domain.SettlementTask, error) {
	args := m.Called(ctx, limit, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SettlementTask), args.Error(1)
}

func (m *MockOutboxRepository) EnqueueTaskInTx(ctx context.Context, tx pgx.Tx, task domain.SettlementTask) error {
	args := m.Called(ctx, tx, task)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkTaskCompleted(ctx context.Context, taskID string, now time.Time) error {
	args := m.Called(ctx, taskID, now)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkTaskFailed(ctx context.Context, taskID string, attempts int, nextAttemptAt *time.Time, lastError string, now time.Time) error {
	args := m.Called(ctx, taskID, attempts, nextAttemptAt, lastError, now)
	return args.Error(0)
}

// MockSettlementGateway is a mock implementation of portssvc.SettlementGateway
type MockSettlementGateway struct {
	mock.Mock
}

func (m *MockSettlementGateway) Submit(ctx context.Context, instruction portssvc.SettlementInstruction) error {
	args := m.Called(ctx, instruction)
	return args.Error(0)
}

// MockOrderService is a mock implementation of portssvc.OrderSvcFacade
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.PortfolioTransaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PortfolioTransaction), args.Error(1)
}

func (m *MockOrderService) GetBatch(ctx context.Context, batchID string) (*dto.BatchResponse, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BatchResponse), args.Error(1)
}

func (m *MockOrderService) ListTransactionsByPortfolio(ctx context.Context, portfolioID string, limit int, offset int) ([]domain.PortfolioTransaction, error) {
	args := m.Called(ctx, portfolioID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PortfolioTransaction), args.Error(1)
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, portfolioID string, req dto.PlaceOrderRequest, requestingUserID string) (*dto.BatchResponse, error) {
	args := m.Called(ctx, portfolioID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BatchResponse), args.Error(1)
}

func (m *MockOrderService) CompleteTransaction(ctx context.Context, transactionID string, req dto.SettleTransactionRequest, requestingUserID string) (*domain.PortfolioTransaction, error) {
	args := m.Called(ctx, transactionID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PortfolioTransaction), args.Error(1)
}

func (m *MockOrderService) FailTransaction(ctx context.Context, transactionID string, req dto.FailTransactionRequest, requestingUserID string) (*domain.PortfolioTransaction, error) {
	args := m.Called(ctx, transactionID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PortfolioTransaction), args.Error(1)
}

func (m *MockOrderService) LiquidateDeposit(ctx context.Context, depositID string, req dto.LiquidateDepositRequest, requestingUserID string) (*domain.PortfolioTransaction, error) {
	args := m.Called(ctx, depositID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PortfolioTransaction), args.Error(1)
}

type SettlementDispatcherTestSuite struct {
	suite.Suite
	mockOutboxRepo    *MockOutboxRepository
	mockPortfolioRepo *MockPortfolioRepository
	mockGateway       *MockSettlementGateway
	mockOrderSvc      *MockOrderService
}

func (suite *SettlementDispatcherTestSuite) SetupTest() {
	suite.mockOutboxRepo = new(MockOutboxRepository)
	suite.mockPortfolioRepo = new(MockPortfolioRepository)
	suite.mockGateway = new(MockSettlementGateway)
	suite.mockOrderSvc = new(MockOrderService)
}

// pollConfig polls fast enough for tests while keeping the sweep out of the way.
func pollConfig() services.DispatcherConfig {
	return services.DispatcherConfig{
		PollInterval:  10 * time.Millisecond,
		BatchSize:     25,
		MaxAttempts:   8,
		RetryBase:     30 * time.Second,
		RetryCap:      30 * time.Minute,
		SweepInterval: time.Hour,
	}
}

// runUntil runs the dispatcher until done closes, then cancels it and waits
// for it to stop.
func (suite *SettlementDispatcherTestSuite) runUntil(config services.DispatcherConfig, done <-chan struct{}) {
	dispatcher := services.NewSettlementDispatcher(
		suite.mockOutboxRepo,
		suite.mockPortfolioRepo,
		suite.mockGateway,
		suite.mockOrderSvc,
		config,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		dispatcher.Run(ctx)
		close(stopped)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		cancel()
		<-stopped
		suite.FailNow("dispatcher did not reach the expected outcome in time")
	}
	cancel()
	<-stopped
}

func dueTask(transactionID string, attempts int) domain.SettlementTask {
	return domain.SettlementTask{
		TaskID:        uuid.NewString(),
		TransactionID: transactionID,
		Status:        domain.TaskPending,
		Attempts:      attempts,
		NextAttemptAt: time.Now().UTC(),
	}
}

func pendingLeg() *domain.PortfolioTransaction {
	return &domain.PortfolioTransaction{
		TransactionID: uuid.NewString(),
		PortfolioID:   uuid.NewString(),
		ProductID:     uuid.NewString(),
		Category:      domain.CategoryVariable,
		Type:          domain.TxnBuy,
		Amount:        decimal.NewFromInt(100000),
		CurrencyCode:  "NGN",
		Status:        domain.StatusPending,
	}
}

// --- Test Cases ---

func (suite *SettlementDispatcherTestSuite) TestRun_SubmitsPendingLeg() {
	leg := pendingLeg()
	task := dueTask(leg.TransactionID, 0)
	done := make(chan struct{})

	suite.mockOutboxRepo.On("ListDueTasks", mock.Anything, 25, mock.AnythingOfType("time.Time")).
		Return([]domain.SettlementTask{task}, nil).Once()
	suite.mockOutboxRepo.On("ListDueTasks", mock.Anything, 25, mock.AnythingOfType("time.Time")).
		Return([]domain.SettlementTask{}, nil).Maybe()
	suite.mockPortfolioRepo.On("FindPortfolioTransactionByID", mock.Anything, leg.TransactionID).
		Return(leg, nil).Once()

	var submitted portssvc.SettlementInstruction
	suite.mockGateway.On("Submit", mock.Anything, mock.AnythingOfType("services.SettlementInstruction")).
		Run(func(args mock.Arguments) {
			submitted = args.Get(1).(portssvc.SettlementInstruction)
		}).Return(nil).Once()
	suite.mockOutboxRepo.On("MarkTaskCompleted", mock.Anything, task.TaskID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) { close(done) }).Return(nil).Once()

	suite.runUntil(pollConfig(), done)

	suite.Equal(leg.TransactionID, submitted.TransactionID)
	suite.Equal(leg.PortfolioID, submitted.PortfolioID)
	suite.Equal(domain.TxnBuy, submitted.Type)
	suite.True(submitted.Amount.Equal(leg.Amount))
	suite.Equal("NGN", submitted.CurrencyCode)
	suite.mockGateway.AssertExpectations(suite.T())
	suite.mockOutboxRepo.AssertExpectations(suite.T())
}

func (suite *SettlementDispatcherTestSuite) TestRun_CompletesStaleTaskWithoutSubmitting() {
	leg := pendingLeg()
	leg.Status = domain.StatusCompleted
	task := dueTask(leg.TransactionID, 0)
	done := make(chan struct{})

	suite.mockOutboxRepo.On("ListDueTasks", mock.Anything, 25, mock.AnythingOfType("time.Time")).
		Return([]domain.SettlementTask{task}, nil).Once()
	suite.mockOutboxRepo.On("ListDueTasks", mock.Anything, 25, mock.AnythingOfType("time.Time")).
		Return([]domain.SettlementTask{}, nil).Maybe()
	suite.mockPortfolioRepo.On("FindPortfolioTransactionByID", mock.Anything, leg.TransactionID).
		Return(leg, nil).Once()
	suite.mockOutboxRepo.On("MarkTaskCompleted", mock.Anything, task.TaskID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) { close(done) }).Return(nil).Once()

	suite.runUntil(pollConfig(), done)

	suite.mockGateway.AssertNotCalled(suite.T(), "Submit", mock.Anything, mock.Anything)
	suite.mockOutboxRepo.AssertExpectations(suite.T())
}

func (suite *SettlementDispatcherTestSuite) TestRun_ReschedulesAfterGatewayFailure() {
	leg := pendingLeg()
	task := dueTask(leg.TransactionID, 0)
	done := make(chan struct{})
	start := time.Now().UTC()

	suite.mockOutboxRepo.On("ListDueTasks", mock.Anything, 25, mock.AnythingOfType("time.Time")).
		Return([]domain.SettlementTask{task}, nil).Once()
	suite.mockOutboxRepo.On("ListDueTasks", mock.Anything, 25, mock.AnythingOfType("time.Time")).
		Return([]domain.SettlementTask{}, nil).Maybe()
	suite.mockPortfolioRepo.On("FindPortfolioTransactionByID", mock.Anything, leg.TransactionID).
		Return(leg, nil).Once()
	suite.mockGateway.On("Submit", mock.Anything, mock.AnythingOfType("services.SettlementInstruction")).
		Return(assert.AnError)

	var nextAttemptAt *time.Time
	suite.mockOutboxRepo.On("MarkTaskFailed", mock.Anything, task.TaskID, 1, mock.AnythingOfType("*time.Time"), assert.AnError.Error(), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			nextAttemptAt = args.Get(3).(*time.Time)
			close(done)
		}).Return(nil).Once()

	config := pollConfig()
	suite.runUntil(config, done)

	suite.Require().NotNil(nextAttemptAt)
	suite.WithinDuration(start.Add(config.RetryBase), *nextAttemptAt, 10*time.Second)
	suite.mockOutboxRepo.AssertExpectations(suite.T())
	suite.mockOutboxRepo.AssertNotCalled(suite.T(), "MarkTaskCompleted", mock.Anything, mock.Anything, mock.Anything)
	suite.mockOrderSvc.AssertNotCalled(suite.T(), "FailTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SettlementDispatcherTestSuite) TestRun_FailsTerminallyAtMaxAttempts() {
	leg := pendingLeg()
	config := pollConfig()
	task := dueTask(leg.TransactionID, config.MaxAttempts-1)
	done := make(chan struct{})

	suite.mockOutboxRepo.On("ListDueTasks", mock.Anything, 25, mock.AnythingOfType("time.Time")).
		Return([]domain.SettlementTask{task}, nil).Once()
	suite.mockOutboxRepo.On("ListDueTasks", mock.Anything, 25, mock.AnythingOfType("time.Time")).
		Return([]domain.SettlementTask{}, nil).Maybe()
	suite.mockPortfolioRepo.On("FindPortfolioTransactionByID", mock.Anything, leg.TransactionID).
		Return(leg, nil).Once()
	suite.mockGateway.On("Submit", mock.Anything, mock.AnythingOfType("services.SettlementInstruction")).
		Return(assert.AnError)

	var failReq dto.FailTransactionRequest
	suite.mockOrderSvc.On("FailTransaction", mock.Anything, leg.TransactionID, mock.AnythingOfType("dto.FailTransactionRequest"), "system").
		Run(func(args mock.Arguments) {
			failReq = args.Get(2).(dto.FailTransactionRequest)
		}).Return(leg, nil).Once()
	suite.mockOutboxRepo.On("MarkTaskFailed", mock.Anything, task.TaskID, config.MaxAttempts, (*time.Time)(nil), assert.AnError.Error(), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) { close(done) }).Return(nil).Once()

	suite.runUntil(config, done)

	suite.Contains(failReq.Reason, assert.AnError.Error())
	suite.mockOrderSvc.AssertExpectations(suite.T())
	suite.mockOutboxRepo.AssertExpectations(suite.T())
}

func (suite *SettlementDispatcherTestSuite) TestRun_SweepsMaturedDeposits() {
	maturity := time.Now().UTC().AddDate(0, 0, -2)
	deposit := domain.PortfolioDeposit{
		DepositID:    uuid.NewString(),
		MaturityDate: maturity,
	}
	done := make(chan struct{})

	config := pollConfig()
	config.PollInterval = time.Hour
	config.SweepInterval = 10 * time.Millisecond

	suite.mockPortfolioRepo.On("ListMaturedOpenDeposits", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]domain.PortfolioDeposit{deposit}, nil).Once()
	suite.mockPortfolioRepo.On("ListMaturedOpenDeposits", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]domain.PortfolioDeposit{}, nil).Maybe()

	var liquidateReq dto.LiquidateDepositRequest
	suite.mockOrderSvc.On("LiquidateDeposit", mock.Anything, deposit.DepositID, mock.AnythingOfType("dto.LiquidateDepositRequest"), "system").
		Run(func(args mock.Arguments) {
			liquidateReq = args.Get(2).(dto.LiquidateDepositRequest)
			close(done)
		}).Return(&domain.PortfolioTransaction{TransactionID: uuid.NewString()}, nil).Once()

	suite.runUntil(config, done)

	suite.Require().NotNil(liquidateReq.Date)
	suite.WithinDuration(maturity, *liquidateReq.Date, time.Second)
	suite.mockOrderSvc.AssertExpectations(suite.T())
}

func TestSettlementDispatcherSuite(t *testing.T) {
	suite.Run(t, new(SettlementDispatcherTestSuite))
}
