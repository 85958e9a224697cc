package pgsql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/a7a6j4/pieV1/internal/apperrors"
	"github.com/a7a6j4/pieV1/internal/core/domain"
	portsrepo "github.com/a7a6j4/pieV1/internal/core/ports/repositories"
)

type PgxOutboxRepository struct {
	BaseRepository
}

// newPgxOutboxRepository creates a new repository for settlement tasks.
func newPgxOutboxRepository(pool *pgxpool.Pool) portsrepo.OutboxRepositoryFacade {
	return &PgxOutboxRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxOutboxRepository implements portsrepo.OutboxRepositoryFacade
var _ portsrepo.OutboxRepositoryFacade = (*PgxOutboxRepository)(nil)

// claimLease is how long a claimed task stays invisible to other dispatchers
// before it becomes due again. The outcome write (completed or failed) lands
// well inside this window; the lease only matters when a dispatcher dies
// mid-flight.
const claimLease = 2 * time.Minute

// ListDueTasks claims pending tasks whose next attempt time has passed. The
// claim is a single UPDATE over a SKIP LOCKED subselect, so the lease bump and
// the read commit together; a plain locked SELECT would release its row locks
// the moment the statement returned.
func (r *PgxOutboxRepository) ListDueTasks(ctx context.Context, limit int, now time.Time) ([]domain.SettlementTask, error) {
	if limit <= 0 {
		limit = 25
	}
	query := `
		UPDATE settlement_tasks
		SET next_attempt_at = $3, last_updated_at = $1, last_updated_by = 'system'
		WHERE task_id IN (
			SELECT task_id
			FROM settlement_tasks
			WHERE status = 'PENDING' AND next_attempt_at <= $1
			ORDER BY next_attempt_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING task_id, transaction_id, status, attempts, next_attempt_at, last_error, created_at, created_by, last_updated_at, last_updated_by;
	`
	rows, err := r.Pool.Query(ctx, query, now, limit, now.Add(claimLease))
	if err != nil {
		return nil, fmt.Errorf("failed to query due settlement tasks: %w", err)
	}
	defer rows.Close()

	tasks := []domain.SettlementTask{}
	for rows.Next() {
		var task domain.SettlementTask
		var lastError sql.NullString
		err := rows.Scan(
			&task.TaskID,
			&task.TransactionID,
			&task.Status,
			&task.Attempts,
			&task.NextAttemptAt,
			&lastError,
			&task.CreatedAt,
			&task.CreatedBy,
			&task.LastUpdatedAt,
			&task.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement task row: %w", err)
		}
		task.LastError = lastError.String
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settlement task rows: %w", err)
	}
	return tasks, nil
}

// EnqueueTaskInTx inserts a settlement task inside the caller's transaction.
func (r *PgxOutboxRepository) EnqueueTaskInTx(ctx context.Context, tx pgx.Tx, task domain.SettlementTask) error {
	query := `
		INSERT INTO settlement_tasks (task_id, transaction_id, status, attempts, next_attempt_at, last_error, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := tx.Exec(ctx, query,
		task.TaskID,
		task.TransactionID,
		task.Status,
		task.Attempts,
		task.NextAttemptAt,
		task.LastError,
		task.CreatedAt,
		task.CreatedBy,
		task.LastUpdatedAt,
		task.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: settlement task for transaction %s already exists", apperrors.ErrDuplicate, task.TransactionID)
		}
		return fmt.Errorf("failed to enqueue settlement task %s: %w", task.TaskID, err)
	}
	return nil
}

// MarkTaskCompleted records a successful dispatch.
func (r *PgxOutboxRepository) MarkTaskCompleted(ctx context.Context, taskID string, now time.Time) error {
	query := `
		UPDATE settlement_tasks
		SET status = 'COMPLETED', last_updated_at = $2, last_updated_by = $3
		WHERE task_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, taskID, now, "system")
	if err != nil {
		return fmt.Errorf("failed to complete settlement task %s: %w", taskID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkTaskFailed records a failed attempt. With a next attempt time the task
// stays PENDING on the new schedule; without one it is terminally FAILED.
func (r *PgxOutboxRepository) MarkTaskFailed(ctx context.Context, taskID string, attempts int, nextAttemptAt *time.Time, lastError string, now time.Time) error {
	query := `
		UPDATE settlement_tasks
		SET status = CASE WHEN $3::timestamptz IS NULL THEN 'FAILED' ELSE 'PENDING' END,
		    attempts = $2,
		    next_attempt_at = COALESCE($3, next_attempt_at),
		    last_error = $4,
		    last_updated_at = $5,
		    last_updated_by = $6
		WHERE task_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, taskID, attempts, nextAttemptAt, lastError, now, "system")
	if err != nil {
		return fmt.Errorf("failed to record settlement task failure %s: %w", taskID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
