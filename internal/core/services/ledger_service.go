package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/a7a6j4/pieV1/internal/apperrors"
	"github.com/a7a6j4/pieV1/internal/core/domain"
	portsrepo "github.com/a7a6j4/pieV1/internal/core/ports/repositories"
	portssvc "github.com/a7a6j4/pieV1/internal/core/ports/services"
	"github.com/a7a6j4/pieV1/internal/dto"
	"github.com/a7a6j4/pieV1/internal/middleware"
	"github.com/a7a6j4/pieV1/internal/utils/accounting"
)

var (
	ErrJournalMinEntries  = errors.New("journal must have at least two entries")
	ErrJournalMinAccounts = errors.New("journal must affect at least two different accounts")
	ErrAccountNotFound    = errors.New("account not found")
	ErrCurrencyMismatch   = errors.New("journal entries span more than one currency")
	ErrHeaderPosting      = errors.New("cannot post to a header account")
)

// ledgerService provides journal posting, retrieval and reversal.
type ledgerService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	journalRepo portsrepo.JournalRepositoryWithTx
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(journalRepo portsrepo.JournalRepositoryWithTx, accountRepo portsrepo.AccountRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// buildJournal validates a posting request and materialises the journal and
// its entries. All structural invariants are enforced here so both posting
// paths share the same checks.
func (s *ledgerService) buildJournal(ctx context.Context, req dto.CreateJournalRequest, creatorUserID string) (*domain.Journal, []domain.Entry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(req.Entries) < 2 {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrJournalMinEntries)
	}

	accountSet := make(map[string]bool)
	for _, entryReq := range req.Entries {
		accountSet[entryReq.AccountID] = true
	}
	if len(accountSet) < 2 {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrJournalMinAccounts)
	}

	now := time.Now().UTC()
	journalID := uuid.NewString()

	entries := make([]domain.Entry, len(req.Entries))
	accountIDs := make([]string, 0, len(req.Entries))
	for i, entryReq := range req.Entries {
		entries[i] = domain.Entry{
			EntryID:     uuid.NewString(),
			JournalID:   journalID,
			AccountID:   entryReq.AccountID,
			Amount:      entryReq.Amount,
			Side:        entryReq.Side,
			Description: entryReq.Description,
			JournalDate: req.JournalDate,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}
		accountIDs = append(accountIDs, entryReq.AccountID)
	}

	// Double-entry check: debits must equal credits, all amounts positive.
	if err := accounting.ValidateJournalBalance(entries); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrUnbalanced, err)
	}

	uniqueAccountIDs := uniqueStrings(accountIDs)
	accountsMap, err := s.accountRepo.FindAccountsByIDs(ctx, uniqueAccountIDs)
	if err != nil {
		logger.Error("Failed to fetch accounts for journal posting", slog.String("error", err.Error()))
		return nil, nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	currencyCode := ""
	for _, id := range uniqueAccountIDs {
		acc, found := accountsMap[id]
		if !found {
			return nil, nil, fmt.Errorf("%w: ID %s: %s", apperrors.ErrNotFound, id, ErrAccountNotFound)
		}
		if acc.IsHeader {
			return nil, nil, fmt.Errorf("%w: account %s: %s", apperrors.ErrValidation, id, ErrHeaderPosting)
		}
		if !acc.IsActive {
			return nil, nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrInactive, id)
		}
		if currencyCode == "" {
			currencyCode = acc.CurrencyCode
		} else if acc.CurrencyCode != currencyCode {
			return nil, nil, fmt.Errorf("%w: account %s is %s, journal is %s", ErrCurrencyMismatch, id, acc.CurrencyCode, currencyCode)
		}
	}

	journal := &domain.Journal{
		JournalID:   journalID,
		JournalDate: req.JournalDate,
		Memo:        req.Memo,
		Status:      domain.Posted,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	return journal, entries, nil
}

// PostJournal validates and persists a new balanced journal.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) PostJournal(ctx context.Context, req dto.CreateJournalRequest, creatorUserID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	journal, entries, err := s.buildJournal(ctx, req, creatorUserID)
	if err != nil {
		return nil, err
	}

	if err := s.journalRepo.SaveJournal(ctx, *journal, entries); err != nil {
		logger.Error("Failed to save journal", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}

	logger.Info("Journal posted successfully", slog.String("journal_id", journal.JournalID))
	journal.Entries = entries
	return journal, nil
}

// PostJournalInTx validates and persists a journal inside the caller's transaction.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) PostJournalInTx(ctx context.Context, tx pgx.Tx, req dto.CreateJournalRequest, creatorUserID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	journal, entries, err := s.buildJournal(ctx, req, creatorUserID)
	if err != nil {
		return nil, err
	}

	if err := s.journalRepo.SaveJournalInTx(ctx, tx, *journal, entries); err != nil {
		logger.Error("Failed to save journal in transaction", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}

	journal.Entries = entries
	return journal, nil
}

// GetJournalByID retrieves a journal with its entries.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) GetJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find journal by ID", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		}
		return nil, fmt.Errorf("failed to find journal by ID %s: %w", journalID, err)
	}

	entries, err := s.journalRepo.FindEntriesByJournalID(ctx, journalID)
	if err != nil {
		logger.Error("Failed to fetch entries for journal", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to retrieve entries for journal %s: %w", journalID, apperrors.ErrInternal)
	}

	journal.Entries = entries
	return journal, nil
}

// ListJournals retrieves a paginated list of journals.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) ListJournals(ctx context.Context, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	journals, nextToken, err := s.journalRepo.ListJournals(ctx, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list journals from repository", "error", err)
		return nil, fmt.Errorf("failed to retrieve journals: %w", err)
	}

	responses := make([]dto.JournalResponse, len(journals))
	for i, j := range journals {
		responses[i] = dto.ToJournalResponse(&j)
	}

	return &dto.ListJournalsResponse{
		Journals:  responses,
		NextToken: nextToken,
	}, nil
}

// ReverseJournal posts a mirror-image journal and links the pair atomically.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) ReverseJournal(ctx context.Context, journalID string, userID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	originalJournal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Original journal not found for reversal", slog.String("journal_id", journalID))
			return nil, apperrors.ErrNotFound
		}
		logger.Error("Failed to fetch original journal for reversal", "error", err)
		return nil, fmt.Errorf("failed to retrieve original journal: %w", err)
	}

	if originalJournal.Status != domain.Posted {
		logger.Warn("Attempted to reverse non-posted journal", "status", originalJournal.Status)
		return nil, fmt.Errorf("%w: journal status is %s, expected POSTED", apperrors.ErrConflict, originalJournal.Status)
	}
	if originalJournal.OriginalJournalID != nil {
		logger.Warn("Attempted to reverse a journal that is already a reversal", "journal_id", journalID)
		return nil, fmt.Errorf("%w: cannot reverse a journal that is already a reversal", apperrors.ErrConflict)
	}

	originalEntries, err := s.journalRepo.FindEntriesByJournalID(ctx, journalID)
	if err != nil {
		logger.Error("Failed to fetch original entries for reversal", "error", err)
		return nil, fmt.Errorf("failed to retrieve original entries: %w", err)
	}

	now := time.Now().UTC()
	newJournalID := uuid.NewString()

	reversingJournal := domain.Journal{
		JournalID:         newJournalID,
		JournalDate:       originalJournal.JournalDate,
		Memo:              fmt.Sprintf("Reversal of journal %s: %s", originalJournal.JournalID, originalJournal.Memo),
		Status:            domain.Posted,
		OriginalJournalID: &originalJournal.JournalID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	// Mirror each entry: same account and amount, opposite side.
	reversingEntries := make([]domain.Entry, len(originalEntries))
	for i, origEntry := range originalEntries {
		newSide := domain.Credit
		if origEntry.Side == domain.Credit {
			newSide = domain.Debit
		}
		reversingEntries[i] = domain.Entry{
			EntryID:     uuid.NewString(),
			JournalID:   newJournalID,
			AccountID:   origEntry.AccountID,
			Amount:      origEntry.Amount,
			Side:        newSide,
			Description: origEntry.Description,
			JournalDate: originalJournal.JournalDate,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}

	tx, err := s.journalRepo.Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin transaction for reversal", "error", err)
		return nil, fmt.Errorf("failed to begin reversal transaction: %w", err)
	}
	defer func() { _ = s.journalRepo.Rollback(ctx, tx) }()

	if err := s.journalRepo.SaveJournalInTx(ctx, tx, reversingJournal, reversingEntries); err != nil {
		logger.Error("Failed to save reversing journal", "error", err)
		return nil, fmt.Errorf("failed to save reversing journal: %w", err)
	}

	if err := s.journalRepo.UpdateJournalStatusAndLinksInTx(ctx, tx, originalJournal.JournalID, domain.Reversed, &newJournalID, originalJournal.OriginalJournalID, userID, now); err != nil {
		logger.Error("Failed to update original journal status after reversal", "error", err)
		return nil, fmt.Errorf("failed to update original journal status: %w", err)
	}

	if err := s.journalRepo.Commit(ctx, tx); err != nil {
		logger.Error("Failed to commit reversal transaction", "error", err)
		return nil, fmt.Errorf("failed to commit reversal: %w", err)
	}

	logger.Info("Journal reversed successfully", slog.String("reversing_journal_id", newJournalID), slog.String("original_journal_id", journalID))
	reversingJournal.Entries = reversingEntries
	return &reversingJournal, nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
