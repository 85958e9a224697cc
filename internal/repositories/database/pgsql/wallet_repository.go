package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/a7a6j4/pieV1/internal/apperrors"
	"github.com/a7a6j4/pieV1/internal/core/domain"
	portsrepo "github.com/a7a6j4/pieV1/internal/core/ports/repositories"
	"github.com/a7a6j4/pieV1/internal/utils/pagination"
)

const walletColumns = `wallet_id, user_id, currency_code, active, created_at, created_by, last_updated_at, last_updated_by`

const walletTxnColumns = `transaction_id, wallet_id, type, amount, currency_code, status, journal_id, date, created_at, created_by, last_updated_at, last_updated_by`

// signedSumExpr folds a wallet's transactions into a balance: inflow types add,
// outflow types subtract. It must stay in lockstep with domain.WalletDirection.
const signedSumExpr = `
	COALESCE(SUM(CASE
		WHEN type IN ('DEPOSIT', 'SELL', 'INTEREST', 'LIQUIDATION', 'DIVIDEND') THEN amount
		WHEN type IN ('WITHDRAWAL', 'BUY', 'INVESTMENT', 'FEE', 'TAX') THEN -amount
		ELSE 0
	END), 0)
`

type PgxWalletRepository struct {
	BaseRepository
}

// newPgxWalletRepository creates a new repository for wallet data.
func newPgxWalletRepository(pool *pgxpool.Pool) portsrepo.WalletRepositoryWithTx {
	return &PgxWalletRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxWalletRepository implements portsrepo.WalletRepositoryWithTx
var _ portsrepo.WalletRepositoryWithTx = (*PgxWalletRepository)(nil)

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	err := row.Scan(
		&w.WalletID,
		&w.UserID,
		&w.CurrencyCode,
		&w.Active,
		&w.CreatedAt,
		&w.CreatedBy,
		&w.LastUpdatedAt,
		&w.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// SaveWallet inserts a new wallet. (user_id, currency_code) is unique.
func (r *PgxWalletRepository) SaveWallet(ctx context.Context, wallet domain.Wallet) error {
	query := `
		INSERT INTO wallets (` + walletColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		wallet.WalletID,
		wallet.UserID,
		wallet.CurrencyCode,
		wallet.Active,
		wallet.CreatedAt,
		wallet.CreatedBy,
		wallet.LastUpdatedAt,
		wallet.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user %s already has a %s wallet", apperrors.ErrDuplicate, wallet.UserID, wallet.CurrencyCode)
		}
		return fmt.Errorf("failed to save wallet %s: %w", wallet.WalletID, err)
	}
	return nil
}

// FindWalletByID retrieves a wallet by its ID.
func (r *PgxWalletRepository) FindWalletByID(ctx context.Context, walletID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE wallet_id = $1;`
	wallet, err := scanWallet(r.Pool.QueryRow(ctx, query, walletID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find wallet by ID %s: %w", walletID, err)
	}
	return wallet, nil
}

// FindWalletByUserAndCurrency retrieves a user's wallet for one currency.
func (r *PgxWalletRepository) FindWalletByUserAndCurrency(ctx context.Context, userID string, currencyCode string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND currency_code = $2;`
	wallet, err := scanWallet(r.Pool.QueryRow(ctx, query, userID, currencyCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find %s wallet for user %s: %w", currencyCode, userID, err)
	}
	return wallet, nil
}

// ListWalletsByUser retrieves all wallets belonging to a user.
func (r *PgxWalletRepository) ListWalletsByUser(ctx context.Context, userID string) ([]domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 ORDER BY currency_code;`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets for user %s: %w", userID, err)
	}
	defer rows.Close()

	wallets := []domain.Wallet{}
	for rows.Next() {
		wallet, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet row: %w", err)
		}
		wallets = append(wallets, *wallet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallet rows: %w", err)
	}
	return wallets, nil
}

// SetWalletActive toggles a wallet's active flag.
func (r *PgxWalletRepository) SetWalletActive(ctx context.Context, walletID string, active bool, userID string, now time.Time) error {
	query := `
		UPDATE wallets
		SET active = $2, last_updated_at = $3, last_updated_by = $4
		WHERE wallet_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, walletID, active, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update wallet %s: %w", walletID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindWalletForUpdate selects a wallet and locks its row until the transaction ends.
func (r *PgxWalletRepository) FindWalletForUpdate(ctx context.Context, tx pgx.Tx, walletID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE wallet_id = $1 FOR UPDATE;`
	wallet, err := scanWallet(tx.QueryRow(ctx, query, walletID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet %s: %w", walletID, err)
	}
	return wallet, nil
}

func scanWalletTransaction(row pgx.Row) (*domain.WalletTransaction, error) {
	var t domain.WalletTransaction
	err := row.Scan(
		&t.TransactionID,
		&t.WalletID,
		&t.Type,
		&t.Amount,
		&t.CurrencyCode,
		&t.Status,
		&t.JournalID,
		&t.Date,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindWalletTransactionByID retrieves a wallet transaction by its ID.
func (r *PgxWalletRepository) FindWalletTransactionByID(ctx context.Context, transactionID string) (*domain.WalletTransaction, error) {
	query := `SELECT ` + walletTxnColumns + ` FROM wallet_transactions WHERE transaction_id = $1;`
	txn, err := scanWalletTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find wallet transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

// ListWalletTransactions retrieves a page of a wallet's transactions, newest
// first, using a (date, created_at) keyset token.
func (r *PgxWalletRepository) ListWalletTransactions(ctx context.Context, walletID string, limit int, nextToken *string) ([]domain.WalletTransaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	var afterDate, afterCreated *time.Time
	if nextToken != nil && *nextToken != "" {
		date, created, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
		}
		afterDate, afterCreated = &date, &created
	}

	query := `
		SELECT ` + walletTxnColumns + `
		FROM wallet_transactions
		WHERE wallet_id = $1
		  AND ($2::timestamptz IS NULL OR (date, created_at) < ($2, $3))
		ORDER BY date DESC, created_at DESC
		LIMIT $4;
	`
	rows, err := r.Pool.Query(ctx, query, walletID, afterDate, afterCreated, limit+1)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions for wallet %s: %w", walletID, err)
	}
	defer rows.Close()

	transactions := []domain.WalletTransaction{}
	for rows.Next() {
		txn, err := scanWalletTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan wallet transaction row: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating wallet transaction rows: %w", err)
	}

	var newToken *string
	if len(transactions) > limit {
		transactions = transactions[:limit]
		last := transactions[len(transactions)-1]
		token := pagination.EncodeToken(last.Date, last.CreatedAt)
		newToken = &token
	}
	return transactions, newToken, nil
}

// SumCompletedTransactions derives a wallet balance by signed-summing its
// COMPLETED transactions up to a date.
func (r *PgxWalletRepository) SumCompletedTransactions(ctx context.Context, walletID string, asOf time.Time) (decimal.Decimal, error) {
	query := `
		SELECT ` + signedSumExpr + `
		FROM wallet_transactions
		WHERE wallet_id = $1 AND status = 'COMPLETED' AND date <= $2;
	`
	var balance decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, walletID, asOf).Scan(&balance); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions for wallet %s: %w", walletID, err)
	}
	return balance, nil
}

// SumCompletedTransactionsInTx derives the wallet balance within the caller's
// transaction, so it sees the effect of rows written earlier in the same tx.
func (r *PgxWalletRepository) SumCompletedTransactionsInTx(ctx context.Context, tx pgx.Tx, walletID string) (decimal.Decimal, error) {
	query := `
		SELECT ` + signedSumExpr + `
		FROM wallet_transactions
		WHERE wallet_id = $1 AND status = 'COMPLETED';
	`
	var balance decimal.Decimal
	if err := tx.QueryRow(ctx, query, walletID).Scan(&balance); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions for wallet %s: %w", walletID, err)
	}
	return balance, nil
}

// SaveWalletTransactionInTx persists a wallet transaction inside the caller's transaction.
func (r *PgxWalletRepository) SaveWalletTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.WalletTransaction) error {
	query := `
		INSERT INTO wallet_transactions (` + walletTxnColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := tx.Exec(ctx, query,
		txn.TransactionID,
		txn.WalletID,
		txn.Type,
		txn.Amount,
		txn.CurrencyCode,
		txn.Status,
		txn.JournalID,
		txn.Date,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: wallet transaction %s already exists", apperrors.ErrDuplicate, txn.TransactionID)
		}
		return fmt.Errorf("failed to save wallet transaction %s: %w", txn.TransactionID, err)
	}
	return nil
}

// UpdateWalletTransactionStatusInTx updates a transaction's status inside the
// caller's transaction.
func (r *PgxWalletRepository) UpdateWalletTransactionStatusInTx(ctx context.Context, tx pgx.Tx, transactionID string, status domain.TransactionStatus, userID string, now time.Time) error {
	query := `
		UPDATE wallet_transactions
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1;
	`
	cmdTag, err := tx.Exec(ctx, query, transactionID, status, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update wallet transaction %s: %w", transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
