package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/a7a6j4/pieV1/internal/apperrors"
	"github.com/a7a6j4/pieV1/internal/core/domain"
	portsrepo "github.com/a7a6j4/pieV1/internal/core/ports/repositories"
	portssvc "github.com/a7a6j4/pieV1/internal/core/ports/services"
	"github.com/a7a6j4/pieV1/internal/dto"
)

// systemUserID stamps audit fields on writes made by background workers.
const systemUserID = "system"

// DispatcherConfig tunes the settlement dispatcher's polling and retries.
type DispatcherConfig struct {
	PollInterval  time.Duration // How often the outbox is polled
	BatchSize     int           // Tasks claimed per poll
	MaxAttempts   int           // Durable attempts before a task is terminally FAILED
	RetryBase     time.Duration // First durable retry delay, doubled per attempt
	RetryCap      time.Duration // Upper bound on the durable retry delay
	SweepInterval time.Duration // How often matured deposits are liquidated
}

// DefaultDispatcherConfig returns the dispatcher settings used when the
// configuration does not override them.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		PollInterval:  5 * time.Second,
		BatchSize:     25,
		MaxAttempts:   8,
		RetryBase:     30 * time.Second,
		RetryCap:      30 * time.Minute,
		SweepInterval: time.Hour,
	}
}

// SettlementDispatcher drains the settlement outbox. Tasks are claimed with
// row locks, submitted to the gateway with short in-process retries, and on
// failure rescheduled with exponential backoff until MaxAttempts is exhausted.
// It also sweeps matured deposits and liquidates them at full value.
type SettlementDispatcher struct {
	outboxRepo    portsrepo.OutboxRepositoryFacade
	portfolioRepo portsrepo.PortfolioRepositoryFacade
	gateway       portssvc.SettlementGateway
	orderSvc      portssvc.OrderSvcFacade
	config        DispatcherConfig
	logger        *slog.Logger
}

// NewSettlementDispatcher creates a dispatcher over the given outbox and gateway.
func NewSettlementDispatcher(
	outboxRepo portsrepo.OutboxRepositoryFacade,
	portfolioRepo portsrepo.PortfolioRepositoryFacade,
	gateway portssvc.SettlementGateway,
	orderSvc portssvc.OrderSvcFacade,
	config DispatcherConfig,
	logger *slog.Logger,
) *SettlementDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettlementDispatcher{
		outboxRepo:    outboxRepo,
		portfolioRepo: portfolioRepo,
		gateway:       gateway,
		orderSvc:      orderSvc,
		config:        config,
		logger:        logger,
	}
}

// Run polls the outbox until the context is cancelled. It is intended to be
// started once per process from main.
func (d *SettlementDispatcher) Run(ctx context.Context) {
	poll := time.NewTicker(d.config.PollInterval)
	defer poll.Stop()
	sweep := time.NewTicker(d.config.SweepInterval)
	defer sweep.Stop()

	d.logger.Info("Settlement dispatcher started",
		slog.Duration("poll_interval", d.config.PollInterval),
		slog.Int("batch_size", d.config.BatchSize),
	)
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Settlement dispatcher stopped")
			return
		case <-poll.C:
			d.dispatchDue(ctx)
		case <-sweep.C:
			d.sweepMatured(ctx)
		}
	}
}

// dispatchDue claims one batch of due tasks and dispatches each in turn.
func (d *SettlementDispatcher) dispatchDue(ctx context.Context) {
	tasks, err := d.outboxRepo.ListDueTasks(ctx, d.config.BatchSize, time.Now().UTC())
	if err != nil {
		d.logger.Error("Failed to list due settlement tasks", slog.String("error", err.Error()))
		return
	}
	for _, task := range tasks {
		if ctx.Err() != nil {
			return
		}
		d.dispatchOne(ctx, task)
	}
}

// dispatchOne submits a single task to the gateway and records the outcome.
func (d *SettlementDispatcher) dispatchOne(ctx context.Context, task domain.SettlementTask) {
	now := time.Now().UTC()
	logger := d.logger.With(
		slog.String("task_id", task.TaskID),
		slog.String("transaction_id", task.TransactionID),
		slog.Int("attempt", task.Attempts+1),
	)

	leg, err := d.portfolioRepo.FindPortfolioTransactionByID(ctx, task.TransactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Settlement task references missing transaction")
			d.failTask(ctx, task, "transaction not found", nil)
			return
		}
		logger.Error("Failed to load transaction for settlement", slog.String("error", err.Error()))
		return
	}
	// A leg settled or failed through the callback API no longer needs dispatch.
	if leg.Status != domain.StatusPending {
		if err := d.outboxRepo.MarkTaskCompleted(ctx, task.TaskID, now); err != nil {
			logger.Error("Failed to complete stale settlement task", slog.String("error", err.Error()))
		}
		return
	}

	instruction := portssvc.SettlementInstruction{
		TransactionID: leg.TransactionID,
		PortfolioID:   leg.PortfolioID,
		ProductID:     leg.ProductID,
		Type:          leg.Type,
		Amount:        leg.Amount,
		CurrencyCode:  leg.CurrencyCode,
	}

	submit := func() error {
		return d.gateway.Submit(ctx, instruction)
	}
	// Short in-process retries absorb transient gateway blips; anything that
	// survives them is handed back to the outbox schedule.
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(submit, policy); err != nil {
		attempts := task.Attempts + 1
		if attempts >= d.config.MaxAttempts {
			logger.Error("Settlement task exhausted its attempts", slog.String("error", err.Error()))
			// The leg must not stay PENDING once dispatch is abandoned: fail it,
			// which also refunds the funding wallet. A conflict means a callback
			// already settled or failed it.
			reason := fmt.Sprintf("settlement abandoned after %d attempts: %s", attempts, err.Error())
			if _, failErr := d.orderSvc.FailTransaction(ctx, leg.TransactionID, dto.FailTransactionRequest{Reason: reason}, systemUserID); failErr != nil && !errors.Is(failErr, apperrors.ErrConflict) {
				logger.Error("Failed to fail abandoned transaction", slog.String("error", failErr.Error()))
				return
			}
			d.failTask(ctx, task, err.Error(), nil)
			return
		}
		next := now.Add(d.retryDelay(attempts))
		logger.Warn("Settlement dispatch failed, rescheduled",
			slog.String("error", err.Error()),
			slog.Time("next_attempt_at", next),
		)
		d.failTask(ctx, task, err.Error(), &next)
		return
	}

	if err := d.outboxRepo.MarkTaskCompleted(ctx, task.TaskID, now); err != nil {
		// The gateway is idempotent on the transaction ID, so redelivery after
		// this write fails is harmless.
		logger.Error("Failed to mark settlement task completed", slog.String("error", err.Error()))
		return
	}
	logger.Info("Settlement instruction submitted")
}

func (d *SettlementDispatcher) failTask(ctx context.Context, task domain.SettlementTask, lastError string, nextAttemptAt *time.Time) {
	if err := d.outboxRepo.MarkTaskFailed(ctx, task.TaskID, task.Attempts+1, nextAttemptAt, lastError, time.Now().UTC()); err != nil {
		d.logger.Error("Failed to record settlement task failure",
			slog.String("task_id", task.TaskID),
			slog.String("error", err.Error()),
		)
	}
}

// retryDelay doubles the base delay per durable attempt, capped.
func (d *SettlementDispatcher) retryDelay(attempts int) time.Duration {
	delay := d.config.RetryBase
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= d.config.RetryCap {
			return d.config.RetryCap
		}
	}
	return delay
}

// sweepMatured liquidates deposits that have passed maturity and are still
// open. Maturity liquidation carries no penalty, so sweeping late never costs
// the customer anything.
func (d *SettlementDispatcher) sweepMatured(ctx context.Context) {
	now := time.Now().UTC()
	deposits, err := d.portfolioRepo.ListMaturedOpenDeposits(ctx, now)
	if err != nil {
		d.logger.Error("Failed to list matured deposits", slog.String("error", err.Error()))
		return
	}
	for _, deposit := range deposits {
		if ctx.Err() != nil {
			return
		}
		maturity := deposit.MaturityDate
		if _, err := d.orderSvc.LiquidateDeposit(ctx, deposit.DepositID, dto.LiquidateDepositRequest{Date: &maturity}, systemUserID); err != nil {
			// A conflict means another worker closed it first.
			if errors.Is(err, apperrors.ErrConflict) {
				continue
			}
			d.logger.Error("Failed to liquidate matured deposit",
				slog.String("deposit_id", deposit.DepositID),
				slog.String("error", err.Error()),
			)
			continue
		}
		d.logger.Info("Matured deposit liquidated", slog.String("deposit_id", deposit.DepositID))
	}
}
