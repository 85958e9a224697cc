package repositories

import (
	"context"
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindJournalByID retrieves a specific journal by its unique identifier.
	FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)

	// ListJournals retrieves a paginated list of journals using token-based pagination.
	// It returns the journals, a token for the next page, and an error.
	ListJournals(ctx context.Context, limit int, nextToken *string) ([]domain.Journal, *string, error)
}

// JournalWriter defines write operations for journal data
type JournalWriter interface {
	// SaveJournal persists a journal and its entries in one database transaction.
	SaveJournal(ctx context.Context, journal domain.Journal, entries []domain.Entry) error

	// SaveJournalInTx persists a journal and its entries inside a caller-owned transaction,
	// so the journal commits or rolls back together with the caller's other writes.
	SaveJournalInTx(ctx context.Context, tx pgx.Tx, journal domain.Journal, entries []domain.Entry) error

	// UpdateJournalStatusAndLinks updates the status and reversal linkage (original/reversing IDs) of a journal.
	UpdateJournalStatusAndLinks(ctx context.Context, journalID string, status domain.JournalStatus, reversingJournalID *string, originalJournalID *string, updatedByUserID string, updatedAt time.Time) error

	// UpdateJournalStatusAndLinksInTx is UpdateJournalStatusAndLinks inside a caller-owned transaction.
	UpdateJournalStatusAndLinksInTx(ctx context.Context, tx pgx.Tx, journalID string, status domain.JournalStatus, reversingJournalID *string, originalJournalID *string, updatedByUserID string, updatedAt time.Time) error
}

// EntryReader defines read operations for journal entry data
type EntryReader interface {
	// FindEntriesByJournalID retrieves all entries associated with a single journal ID.
	FindEntriesByJournalID(ctx context.Context, journalID string) ([]domain.Entry, error)

	// FindEntriesByJournalIDs retrieves entries for multiple journal IDs, grouped by journal ID.
	FindEntriesByJournalIDs(ctx context.Context, journalIDs []string) (map[string][]domain.Entry, error)

	// ListEntriesByAccountID retrieves a page of an account's entries ordered by journal date.
	ListEntriesByAccountID(ctx context.Context, accountID string, limit int, offset int, from *time.Time, to *time.Time) ([]domain.Entry, error)

	// SumEntriesByAccountID aggregates an account's debit and credit totals up to a date.
	SumEntriesByAccountID(ctx context.Context, accountID string, asOf time.Time) (totalDebits, totalCredits decimal.Decimal, err error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces
// This is a facade for clients that need access to all operations
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	EntryReader
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
