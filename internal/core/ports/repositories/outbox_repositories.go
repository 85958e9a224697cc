package repositories

import (
	"context"
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// OutboxReader defines read operations for settlement tasks
type OutboxReader interface {
	// ListDueTasks claims pending tasks whose next attempt time has passed.
	// Claiming leases each task to the caller for a short window, so concurrent
	// dispatchers never pick the same task; an unreported outcome makes the
	// task due again when the lease expires.
	ListDueTasks(ctx context.Context, limit int, now time.Time) ([]domain.SettlementTask, error)
}

// OutboxWriter defines write operations for settlement tasks
type OutboxWriter interface {
	// EnqueueTaskInTx inserts a settlement task inside the caller's transaction,
	// so the task becomes visible only if the originating write commits.
	EnqueueTaskInTx(ctx context.Context, tx pgx.Tx, task domain.SettlementTask) error

	// MarkTaskCompleted records a successful dispatch.
	MarkTaskCompleted(ctx context.Context, taskID string, now time.Time) error

	// MarkTaskFailed records a failed attempt and schedules the next one.
	// A nil nextAttemptAt marks the task terminally FAILED.
	MarkTaskFailed(ctx context.Context, taskID string, attempts int, nextAttemptAt *time.Time, lastError string, now time.Time) error
}

// OutboxRepositoryFacade combines all settlement task repository interfaces
type OutboxRepositoryFacade interface {
	OutboxReader
	OutboxWriter
}
