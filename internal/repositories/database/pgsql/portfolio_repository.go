package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/a7a6j4/pieV1/internal/apperrors"
	"github.com/a7a6j4/pieV1/internal/core/domain"
	portsrepo "github.com/a7a6j4/pieV1/internal/core/ports/repositories"
)

const portfolioColumns = `portfolio_id, user_id, description, risk, active, created_at, created_by, last_updated_at, last_updated_by`

const depositColumns = `deposit_id, transaction_id, portfolio_id, product_id, principal, rate, tenor_days, effective_date, maturity_date, matured, closed, closed_date, is_active, journal_id, created_at, created_by, last_updated_at, last_updated_by`

const portfolioTxnColumns = `transaction_id, batch_id, portfolio_id, product_id, category, type, amount, currency_code, status, journal_id, date, created_at, created_by, last_updated_at, last_updated_by`

type PgxPortfolioRepository struct {
	BaseRepository
}

// newPgxPortfolioRepository creates a new repository for portfolios, position
// ledgers, deposits and order legs.
func newPgxPortfolioRepository(pool *pgxpool.Pool) portsrepo.PortfolioRepositoryWithTx {
	return &PgxPortfolioRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxPortfolioRepository implements portsrepo.PortfolioRepositoryWithTx
var _ portsrepo.PortfolioRepositoryWithTx = (*PgxPortfolioRepository)(nil)

func scanPortfolio(row pgx.Row) (*domain.Portfolio, error) {
	var p domain.Portfolio
	err := row.Scan(
		&p.PortfolioID,
		&p.UserID,
		&p.Description,
		&p.Risk,
		&p.Active,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePortfolio inserts a new portfolio.
func (r *PgxPortfolioRepository) SavePortfolio(ctx context.Context, portfolio domain.Portfolio) error {
	query := `
		INSERT INTO portfolios (` + portfolioColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		portfolio.PortfolioID,
		portfolio.UserID,
		portfolio.Description,
		portfolio.Risk,
		portfolio.Active,
		portfolio.CreatedAt,
		portfolio.CreatedBy,
		portfolio.LastUpdatedAt,
		portfolio.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: portfolio %s already exists", apperrors.ErrDuplicate, portfolio.PortfolioID)
		}
		return fmt.Errorf("failed to save portfolio %s: %w", portfolio.PortfolioID, err)
	}
	return nil
}

// FindPortfolioByID retrieves a portfolio by its ID.
func (r *PgxPortfolioRepository) FindPortfolioByID(ctx context.Context, portfolioID string) (*domain.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE portfolio_id = $1;`
	portfolio, err := scanPortfolio(r.Pool.QueryRow(ctx, query, portfolioID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find portfolio by ID %s: %w", portfolioID, err)
	}
	return portfolio, nil
}

// ListPortfoliosByUser retrieves all portfolios belonging to a user.
func (r *PgxPortfolioRepository) ListPortfoliosByUser(ctx context.Context, userID string) ([]domain.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE user_id = $1 ORDER BY created_at;`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios for user %s: %w", userID, err)
	}
	defer rows.Close()

	portfolios := []domain.Portfolio{}
	for rows.Next() {
		portfolio, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio row: %w", err)
		}
		portfolios = append(portfolios, *portfolio)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio rows: %w", err)
	}
	return portfolios, nil
}

// SetPortfolioActive toggles a portfolio's active flag.
func (r *PgxPortfolioRepository) SetPortfolioActive(ctx context.Context, portfolioID string, active bool, userID string, now time.Time) error {
	query := `
		UPDATE portfolios
		SET active = $2, last_updated_at = $3, last_updated_by = $4
		WHERE portfolio_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, portfolioID, active, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update portfolio %s: %w", portfolioID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindPortfolioForUpdate selects a portfolio and locks its row until the transaction ends.
func (r *PgxPortfolioRepository) FindPortfolioForUpdate(ctx context.Context, tx pgx.Tx, portfolioID string) (*domain.Portfolio, error) {
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE portfolio_id = $1 FOR UPDATE;`
	portfolio, err := scanPortfolio(tx.QueryRow(ctx, query, portfolioID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock portfolio %s: %w", portfolioID, err)
	}
	return portfolio, nil
}

// ListVariableMovements retrieves a portfolio's ledger rows for one product,
// oldest first, up to a cutoff.
func (r *PgxPortfolioRepository) ListVariableMovements(ctx context.Context, portfolioID string, productID string, asOf time.Time) ([]domain.VariableMovement, error) {
	query := `
		SELECT movement_id, portfolio_id, product_id, transaction_id, side, units, amount, price, date, created_at, created_by, last_updated_at, last_updated_by
		FROM variable_movements
		WHERE portfolio_id = $1 AND product_id = $2 AND date <= $3
		ORDER BY date, created_at;
	`
	rows, err := r.Pool.Query(ctx, query, portfolioID, productID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements for portfolio %s product %s: %w", portfolioID, productID, err)
	}
	defer rows.Close()

	movements := []domain.VariableMovement{}
	for rows.Next() {
		var m domain.VariableMovement
		err := rows.Scan(
			&m.MovementID,
			&m.PortfolioID,
			&m.ProductID,
			&m.TransactionID,
			&m.Side,
			&m.Units,
			&m.Amount,
			&m.Price,
			&m.Date,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement row: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movement rows: %w", err)
	}
	return movements, nil
}

// ListHeldProductIDs retrieves the distinct product IDs with ledger activity in
// a portfolio.
func (r *PgxPortfolioRepository) ListHeldProductIDs(ctx context.Context, portfolioID string) ([]string, error) {
	query := `SELECT DISTINCT product_id FROM variable_movements WHERE portfolio_id = $1;`
	rows, err := r.Pool.Query(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query held products for portfolio %s: %w", portfolioID, err)
	}
	defer rows.Close()

	productIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan product ID: %w", err)
		}
		productIDs = append(productIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product ID rows: %w", err)
	}
	return productIDs, nil
}

// SaveVariableMovementInTx appends one ledger row inside the caller's transaction.
func (r *PgxPortfolioRepository) SaveVariableMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.VariableMovement) error {
	query := `
		INSERT INTO variable_movements (movement_id, portfolio_id, product_id, transaction_id, side, units, amount, price, date, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := tx.Exec(ctx, query,
		movement.MovementID,
		movement.PortfolioID,
		movement.ProductID,
		movement.TransactionID,
		movement.Side,
		movement.Units,
		movement.Amount,
		movement.Price,
		movement.Date,
		movement.CreatedAt,
		movement.CreatedBy,
		movement.LastUpdatedAt,
		movement.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save movement %s: %w", movement.MovementID, err)
	}
	return nil
}

// SumVariableUnitsInTx derives the net units held for one product within the
// caller's transaction, so it sees rows written earlier in the same tx.
func (r *PgxPortfolioRepository) SumVariableUnitsInTx(ctx context.Context, tx pgx.Tx, portfolioID string, productID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN side = 'IN' THEN units ELSE -units END), 0)
		FROM variable_movements
		WHERE portfolio_id = $1 AND product_id = $2;
	`
	var units decimal.Decimal
	if err := tx.QueryRow(ctx, query, portfolioID, productID).Scan(&units); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum units for portfolio %s product %s: %w", portfolioID, productID, err)
	}
	return units, nil
}

func scanDeposit(row pgx.Row) (*domain.PortfolioDeposit, error) {
	var d domain.PortfolioDeposit
	var closedDate sql.NullTime
	err := row.Scan(
		&d.DepositID,
		&d.TransactionID,
		&d.PortfolioID,
		&d.ProductID,
		&d.Principal,
		&d.Rate,
		&d.TenorDays,
		&d.EffectiveDate,
		&d.MaturityDate,
		&d.Matured,
		&d.Closed,
		&closedDate,
		&d.IsActive,
		&d.JournalID,
		&d.CreatedAt,
		&d.CreatedBy,
		&d.LastUpdatedAt,
		&d.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if closedDate.Valid {
		d.ClosedDate = &closedDate.Time
	}
	return &d, nil
}

func collectDeposits(rows pgx.Rows) ([]domain.PortfolioDeposit, error) {
	defer rows.Close()
	deposits := []domain.PortfolioDeposit{}
	for rows.Next() {
		deposit, err := scanDeposit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deposit row: %w", err)
		}
		deposits = append(deposits, *deposit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deposit rows: %w", err)
	}
	return deposits, nil
}

// FindDepositByID retrieves a deposit by its ID.
func (r *PgxPortfolioRepository) FindDepositByID(ctx context.Context, depositID string) (*domain.PortfolioDeposit, error) {
	query := `SELECT ` + depositColumns + ` FROM portfolio_deposits WHERE deposit_id = $1;`
	deposit, err := scanDeposit(r.Pool.QueryRow(ctx, query, depositID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find deposit by ID %s: %w", depositID, err)
	}
	return deposit, nil
}

// ListDepositsByPortfolio retrieves a portfolio's deposits, open ones first.
func (r *PgxPortfolioRepository) ListDepositsByPortfolio(ctx context.Context, portfolioID string, includeClosed bool) ([]domain.PortfolioDeposit, error) {
	query := `
		SELECT ` + depositColumns + `
		FROM portfolio_deposits
		WHERE portfolio_id = $1 AND ($2 OR NOT closed)
		ORDER BY closed, effective_date;
	`
	rows, err := r.Pool.Query(ctx, query, portfolioID, includeClosed)
	if err != nil {
		return nil, fmt.Errorf("failed to query deposits for portfolio %s: %w", portfolioID, err)
	}
	return collectDeposits(rows)
}

// ListDepositMovements retrieves a deposit's ledger rows ordered by date.
func (r *PgxPortfolioRepository) ListDepositMovements(ctx context.Context, depositID string) ([]domain.DepositMovement, error) {
	query := `
		SELECT movement_id, deposit_id, side, account, amount, date, created_at, created_by, last_updated_at, last_updated_by
		FROM deposit_movements
		WHERE deposit_id = $1
		ORDER BY date, created_at;
	`
	rows, err := r.Pool.Query(ctx, query, depositID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements for deposit %s: %w", depositID, err)
	}
	defer rows.Close()

	movements := []domain.DepositMovement{}
	for rows.Next() {
		var m domain.DepositMovement
		err := rows.Scan(
			&m.MovementID,
			&m.DepositID,
			&m.Side,
			&m.Account,
			&m.Amount,
			&m.Date,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deposit movement row: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deposit movement rows: %w", err)
	}
	return movements, nil
}

// ListMaturedOpenDeposits retrieves deposits past maturity that are not yet closed.
func (r *PgxPortfolioRepository) ListMaturedOpenDeposits(ctx context.Context, asOf time.Time) ([]domain.PortfolioDeposit, error) {
	query := `
		SELECT ` + depositColumns + `
		FROM portfolio_deposits
		WHERE NOT closed AND maturity_date <= $1
		ORDER BY maturity_date;
	`
	rows, err := r.Pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query matured deposits: %w", err)
	}
	return collectDeposits(rows)
}

// SaveDepositInTx persists a new deposit inside the caller's transaction.
func (r *PgxPortfolioRepository) SaveDepositInTx(ctx context.Context, tx pgx.Tx, deposit domain.PortfolioDeposit) error {
	query := `
		INSERT INTO portfolio_deposits (` + depositColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := tx.Exec(ctx, query,
		deposit.DepositID,
		deposit.TransactionID,
		deposit.PortfolioID,
		deposit.ProductID,
		deposit.Principal,
		deposit.Rate,
		deposit.TenorDays,
		deposit.EffectiveDate,
		deposit.MaturityDate,
		deposit.Matured,
		deposit.Closed,
		deposit.ClosedDate,
		deposit.IsActive,
		deposit.JournalID,
		deposit.CreatedAt,
		deposit.CreatedBy,
		deposit.LastUpdatedAt,
		deposit.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save deposit %s: %w", deposit.DepositID, err)
	}
	return nil
}

// SaveDepositMovementInTx appends one deposit ledger row inside the caller's transaction.
func (r *PgxPortfolioRepository) SaveDepositMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.DepositMovement) error {
	query := `
		INSERT INTO deposit_movements (movement_id, deposit_id, side, account, amount, date, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := tx.Exec(ctx, query,
		movement.MovementID,
		movement.DepositID,
		movement.Side,
		movement.Account,
		movement.Amount,
		movement.Date,
		movement.CreatedAt,
		movement.CreatedBy,
		movement.LastUpdatedAt,
		movement.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save deposit movement %s: %w", movement.MovementID, err)
	}
	return nil
}

// FindDepositForUpdate selects a deposit and locks its row until the transaction ends.
func (r *PgxPortfolioRepository) FindDepositForUpdate(ctx context.Context, tx pgx.Tx, depositID string) (*domain.PortfolioDeposit, error) {
	query := `SELECT ` + depositColumns + ` FROM portfolio_deposits WHERE deposit_id = $1 FOR UPDATE;`
	deposit, err := scanDeposit(tx.QueryRow(ctx, query, depositID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock deposit %s: %w", depositID, err)
	}
	return deposit, nil
}

// CloseDepositInTx marks a deposit closed inside the caller's transaction.
func (r *PgxPortfolioRepository) CloseDepositInTx(ctx context.Context, tx pgx.Tx, depositID string, matured bool, closedDate time.Time, userID string) error {
	query := `
		UPDATE portfolio_deposits
		SET closed = TRUE, matured = $2, closed_date = $3, is_active = FALSE, last_updated_at = $3, last_updated_by = $4
		WHERE deposit_id = $1 AND NOT closed;
	`
	cmdTag, err := tx.Exec(ctx, query, depositID, matured, closedDate, userID)
	if err != nil {
		return fmt.Errorf("failed to close deposit %s: %w", depositID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: deposit %s is already closed", apperrors.ErrConflict, depositID)
	}
	return nil
}

func scanPortfolioTransaction(row pgx.Row) (*domain.PortfolioTransaction, error) {
	var t domain.PortfolioTransaction
	var journalID sql.NullString
	err := row.Scan(
		&t.TransactionID,
		&t.BatchID,
		&t.PortfolioID,
		&t.ProductID,
		&t.Category,
		&t.Type,
		&t.Amount,
		&t.CurrencyCode,
		&t.Status,
		&journalID,
		&t.Date,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if journalID.Valid {
		t.JournalID = journalID.String
	}
	return &t, nil
}

func collectPortfolioTransactions(rows pgx.Rows) ([]domain.PortfolioTransaction, error) {
	defer rows.Close()
	transactions := []domain.PortfolioTransaction{}
	for rows.Next() {
		txn, err := scanPortfolioTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio transaction row: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio transaction rows: %w", err)
	}
	return transactions, nil
}

// FindPortfolioTransactionByID retrieves an order leg by its ID.
func (r *PgxPortfolioRepository) FindPortfolioTransactionByID(ctx context.Context, transactionID string) (*domain.PortfolioTransaction, error) {
	query := `SELECT ` + portfolioTxnColumns + ` FROM portfolio_transactions WHERE transaction_id = $1;`
	txn, err := scanPortfolioTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find portfolio transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

// ListTransactionsByPortfolio retrieves a page of a portfolio's order legs, newest first.
func (r *PgxPortfolioRepository) ListTransactionsByPortfolio(ctx context.Context, portfolioID string, limit int, offset int) ([]domain.PortfolioTransaction, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + portfolioTxnColumns + `
		FROM portfolio_transactions
		WHERE portfolio_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, portfolioID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for portfolio %s: %w", portfolioID, err)
	}
	return collectPortfolioTransactions(rows)
}

// FindBatchByID retrieves a batch header.
func (r *PgxPortfolioRepository) FindBatchByID(ctx context.Context, batchID string) (*domain.TransactionBatch, error) {
	query := `SELECT batch_id, portfolio_id, created_at, created_by FROM transaction_batches WHERE batch_id = $1;`
	var batch domain.TransactionBatch
	err := r.Pool.QueryRow(ctx, query, batchID).Scan(
		&batch.BatchID,
		&batch.PortfolioID,
		&batch.CreatedAt,
		&batch.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find batch %s: %w", batchID, err)
	}
	return &batch, nil
}

// ListTransactionsByBatch retrieves all legs of a batch.
func (r *PgxPortfolioRepository) ListTransactionsByBatch(ctx context.Context, batchID string) ([]domain.PortfolioTransaction, error) {
	query := `
		SELECT ` + portfolioTxnColumns + `
		FROM portfolio_transactions
		WHERE batch_id = $1
		ORDER BY created_at;
	`
	rows, err := r.Pool.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for batch %s: %w", batchID, err)
	}
	return collectPortfolioTransactions(rows)
}

// SaveBatchInTx persists a batch header inside the caller's transaction.
func (r *PgxPortfolioRepository) SaveBatchInTx(ctx context.Context, tx pgx.Tx, batch domain.TransactionBatch) error {
	query := `
		INSERT INTO transaction_batches (batch_id, portfolio_id, created_at, created_by)
		VALUES ($1, $2, $3, $4);
	`
	if _, err := tx.Exec(ctx, query, batch.BatchID, batch.PortfolioID, batch.CreatedAt, batch.CreatedBy); err != nil {
		return fmt.Errorf("failed to save batch %s: %w", batch.BatchID, err)
	}
	return nil
}

// SavePortfolioTransactionInTx persists an order leg inside the caller's transaction.
func (r *PgxPortfolioRepository) SavePortfolioTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.PortfolioTransaction) error {
	query := `
		INSERT INTO portfolio_transactions (` + portfolioTxnColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	var journalID sql.NullString
	if txn.JournalID != "" {
		journalID = sql.NullString{String: txn.JournalID, Valid: true}
	}
	_, err := tx.Exec(ctx, query,
		txn.TransactionID,
		txn.BatchID,
		txn.PortfolioID,
		txn.ProductID,
		txn.Category,
		txn.Type,
		txn.Amount,
		txn.CurrencyCode,
		txn.Status,
		journalID,
		txn.Date,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save portfolio transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// FindPortfolioTransactionForUpdate selects an order leg and locks its row.
func (r *PgxPortfolioRepository) FindPortfolioTransactionForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.PortfolioTransaction, error) {
	query := `SELECT ` + portfolioTxnColumns + ` FROM portfolio_transactions WHERE transaction_id = $1 FOR UPDATE;`
	txn, err := scanPortfolioTransaction(tx.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock portfolio transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

// UpdatePortfolioTransactionInTx updates a leg's status and journal linkage.
func (r *PgxPortfolioRepository) UpdatePortfolioTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string, status domain.TransactionStatus, journalID *string, userID string, now time.Time) error {
	query := `
		UPDATE portfolio_transactions
		SET status = $2, journal_id = COALESCE($3, journal_id), last_updated_at = $4, last_updated_by = $5
		WHERE transaction_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, transactionID, status, journalID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update portfolio transaction %s: %w", transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
