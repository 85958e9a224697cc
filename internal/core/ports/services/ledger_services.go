package services

import (
	"context"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/a7a6j4/pieV1/internal/dto"
	"github.com/jackc/pgx/v5"
)

// LedgerReaderSvc defines read operations for the journal ledger
type LedgerReaderSvc interface {
	// GetJournalByID retrieves a journal with its entries.
	GetJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)

	// ListJournals retrieves a paginated list of journals.
	ListJournals(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error)
}

// LedgerWriterSvc defines write operations for the journal ledger
type LedgerWriterSvc interface {
	// PostJournal validates and persists a new balanced journal.
	PostJournal(ctx context.Context, req dto.CreateJournalRequest, creatorUserID string) (*domain.Journal, error)

	// PostJournalInTx validates and persists a journal inside a caller-owned
	// database transaction. Used by write paths that must commit a journal
	// atomically with subledger rows.
	PostJournalInTx(ctx context.Context, tx pgx.Tx, req dto.CreateJournalRequest, creatorUserID string) (*domain.Journal, error)

	// ReverseJournal posts a mirror-image journal and links the pair.
	ReverseJournal(ctx context.Context, journalID string, userID string) (*domain.Journal, error)
}

// LedgerSvcFacade combines all ledger service interfaces
// This is a facade for clients that need access to all operations
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
