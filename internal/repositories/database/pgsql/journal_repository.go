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
	"github.com/a7a6j4/pieV1/internal/utils/pagination"
)

const journalColumns = `journal_id, journal_date, memo, status, original_journal_id, reversing_journal_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal and entry data.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryWithTx
var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

func scanJournal(row pgx.Row) (*domain.Journal, error) {
	var j domain.Journal
	var originalID, reversingID sql.NullString
	err := row.Scan(
		&j.JournalID,
		&j.JournalDate,
		&j.Memo,
		&j.Status,
		&originalID,
		&reversingID,
		&j.CreatedAt,
		&j.CreatedBy,
		&j.LastUpdatedAt,
		&j.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if originalID.Valid {
		j.OriginalJournalID = &originalID.String
	}
	if reversingID.Valid {
		j.ReversingJournalID = &reversingID.String
	}
	return &j, nil
}

// SaveJournal persists a journal and its entries in its own database transaction.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal, entries []domain.Entry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.SaveJournalInTx(ctx, tx, journal, entries); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// SaveJournalInTx persists a journal and its entries inside a caller-owned
// transaction. Entries are batched in one round trip.
func (r *PgxJournalRepository) SaveJournalInTx(ctx context.Context, tx pgx.Tx, journal domain.Journal, entries []domain.Entry) error {
	journalQuery := `
		INSERT INTO journals (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := tx.Exec(ctx, journalQuery,
		journal.JournalID,
		journal.JournalDate,
		journal.Memo,
		journal.Status,
		journal.OriginalJournalID,
		journal.ReversingJournalID,
		journal.CreatedAt,
		journal.CreatedBy,
		journal.LastUpdatedAt,
		journal.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: journal %s already exists", apperrors.ErrDuplicate, journal.JournalID)
		}
		return fmt.Errorf("failed to insert journal %s: %w", journal.JournalID, err)
	}

	entryQuery := `
		INSERT INTO entries (entry_id, journal_id, account_id, amount, side, description, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	batch := &pgx.Batch{}
	for _, entry := range entries {
		batch.Queue(entryQuery,
			entry.EntryID,
			entry.JournalID,
			entry.AccountID,
			entry.Amount,
			entry.Side,
			entry.Description,
			entry.CreatedAt,
			entry.CreatedBy,
			entry.LastUpdatedAt,
			entry.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert entries for journal %s: %w", journal.JournalID, err)
	}
	return nil
}

// FindJournalByID retrieves a journal by its ID. Entries are loaded separately.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	query := `SELECT ` + journalColumns + ` FROM journals WHERE journal_id = $1;`
	journal, err := scanJournal(r.Pool.QueryRow(ctx, query, journalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find journal by ID %s: %w", journalID, err)
	}
	return journal, nil
}

// ListJournals retrieves a page of journals ordered newest first, using a
// (journal_date, created_at) keyset token.
func (r *PgxJournalRepository) ListJournals(ctx context.Context, limit int, nextToken *string) ([]domain.Journal, *string, error) {
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
		SELECT ` + journalColumns + `
		FROM journals
		WHERE ($1::timestamptz IS NULL OR (journal_date, created_at) < ($1, $2))
		ORDER BY journal_date DESC, created_at DESC
		LIMIT $3;
	`
	// Fetch one extra row to know whether a next page exists.
	rows, err := r.Pool.Query(ctx, query, afterDate, afterCreated, limit+1)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query journals: %w", err)
	}
	defer rows.Close()

	journals := []domain.Journal{}
	for rows.Next() {
		journal, err := scanJournal(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		journals = append(journals, *journal)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating journal rows: %w", err)
	}

	var newToken *string
	if len(journals) > limit {
		journals = journals[:limit]
		last := journals[len(journals)-1]
		token := pagination.EncodeToken(last.JournalDate, last.CreatedAt)
		newToken = &token
	}
	return journals, newToken, nil
}

// UpdateJournalStatusAndLinks updates the status and reversal linkage of a journal.
func (r *PgxJournalRepository) UpdateJournalStatusAndLinks(ctx context.Context, journalID string, status domain.JournalStatus, reversingJournalID *string, originalJournalID *string, updatedByUserID string, updatedAt time.Time) error {
	cmdTag, err := r.Pool.Exec(ctx, updateJournalStatusQuery, journalID, status, reversingJournalID, originalJournalID, updatedAt, updatedByUserID)
	if err != nil {
		return fmt.Errorf("failed to update journal %s: %w", journalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateJournalStatusAndLinksInTx is UpdateJournalStatusAndLinks inside a
// caller-owned transaction.
func (r *PgxJournalRepository) UpdateJournalStatusAndLinksInTx(ctx context.Context, tx pgx.Tx, journalID string, status domain.JournalStatus, reversingJournalID *string, originalJournalID *string, updatedByUserID string, updatedAt time.Time) error {
	cmdTag, err := tx.Exec(ctx, updateJournalStatusQuery, journalID, status, reversingJournalID, originalJournalID, updatedAt, updatedByUserID)
	if err != nil {
		return fmt.Errorf("failed to update journal %s: %w", journalID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

const updateJournalStatusQuery = `
	UPDATE journals
	SET status = $2,
	    reversing_journal_id = COALESCE($3, reversing_journal_id),
	    original_journal_id = COALESCE($4, original_journal_id),
	    last_updated_at = $5,
	    last_updated_by = $6
	WHERE journal_id = $1;
`

const entryColumns = `e.entry_id, e.journal_id, e.account_id, e.amount, e.side, e.description, j.journal_date, e.created_at, e.created_by, e.last_updated_at, e.last_updated_by`

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var e domain.Entry
	err := row.Scan(
		&e.EntryID,
		&e.JournalID,
		&e.AccountID,
		&e.Amount,
		&e.Side,
		&e.Description,
		&e.JournalDate,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEntries(rows pgx.Rows) ([]domain.Entry, error) {
	defer rows.Close()
	entries := []domain.Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}
	return entries, nil
}

// FindEntriesByJournalID retrieves all entries of one journal.
func (r *PgxJournalRepository) FindEntriesByJournalID(ctx context.Context, journalID string) ([]domain.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries e
		JOIN journals j ON j.journal_id = e.journal_id
		WHERE e.journal_id = $1
		ORDER BY e.entry_id;
	`
	rows, err := r.Pool.Query(ctx, query, journalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for journal %s: %w", journalID, err)
	}
	return collectEntries(rows)
}

// FindEntriesByJournalIDs retrieves entries for multiple journals, grouped by journal ID.
func (r *PgxJournalRepository) FindEntriesByJournalIDs(ctx context.Context, journalIDs []string) (map[string][]domain.Entry, error) {
	if len(journalIDs) == 0 {
		return map[string][]domain.Entry{}, nil
	}

	query := `
		SELECT ` + entryColumns + `
		FROM entries e
		JOIN journals j ON j.journal_id = e.journal_id
		WHERE e.journal_id = ANY($1)
		ORDER BY e.journal_id, e.entry_id;
	`
	rows, err := r.Pool.Query(ctx, query, journalIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries by journal IDs: %w", err)
	}
	entries, err := collectEntries(rows)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]domain.Entry)
	for _, entry := range entries {
		grouped[entry.JournalID] = append(grouped[entry.JournalID], entry)
	}
	return grouped, nil
}

// ListEntriesByAccountID retrieves a page of an account's entries ordered by
// journal date, optionally bounded to a date range.
func (r *PgxJournalRepository) ListEntriesByAccountID(ctx context.Context, accountID string, limit int, offset int, from *time.Time, to *time.Time) ([]domain.Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + entryColumns + `
		FROM entries e
		JOIN journals j ON j.journal_id = e.journal_id
		WHERE e.account_id = $1
		  AND ($2::timestamptz IS NULL OR j.journal_date >= $2)
		  AND ($3::timestamptz IS NULL OR j.journal_date <= $3)
		ORDER BY j.journal_date DESC, e.created_at DESC
		LIMIT $4 OFFSET $5;
	`
	rows, err := r.Pool.Query(ctx, query, accountID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for account %s: %w", accountID, err)
	}
	return collectEntries(rows)
}

// SumEntriesByAccountID aggregates an account's debit and credit totals up to a date.
func (r *PgxJournalRepository) SumEntriesByAccountID(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT
			COALESCE(SUM(e.amount) FILTER (WHERE e.side = 'DEBIT'), 0),
			COALESCE(SUM(e.amount) FILTER (WHERE e.side = 'CREDIT'), 0)
		FROM entries e
		JOIN journals j ON j.journal_id = e.journal_id
		WHERE e.account_id = $1 AND j.journal_date <= $2;
	`
	var totalDebits, totalCredits decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, accountID, asOf).Scan(&totalDebits, &totalCredits); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum entries for account %s: %w", accountID, err)
	}
	return totalDebits, totalCredits, nil
}
