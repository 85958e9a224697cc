package dto

import (
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEntryRequest is one line of a journal to be posted.
type CreateEntryRequest struct {
	AccountID   string           `json:"accountID" binding:"required"`
	Amount      decimal.Decimal  `json:"amount" binding:"required"`
	Side        domain.EntrySide `json:"side" binding:"required,oneof=DEBIT CREDIT"`
	Description string           `json:"description"`
}

// CreateJournalRequest defines the data needed to post a new journal.
type CreateJournalRequest struct {
	JournalDate time.Time            `json:"journalDate" binding:"required"`
	Memo        string               `json:"memo"`
	Entries     []CreateEntryRequest `json:"entries" binding:"required,min=2,dive"`
}

// EntryResponse defines the data returned for a single journal entry line.
type EntryResponse struct {
	EntryID     string          `json:"entryID"`
	JournalID   string          `json:"journalID"`
	AccountID   string          `json:"accountID"`
	Amount      decimal.Decimal `json:"amount"`
	Side        string          `json:"side"` // DEBIT or CREDIT
	Description string          `json:"description"`
	JournalDate time.Time       `json:"journalDate"`
}

// JournalResponse defines the data returned for a journal.
type JournalResponse struct {
	JournalID          string          `json:"journalID"`
	JournalDate        time.Time       `json:"journalDate"`
	Memo               string          `json:"memo"`
	Status             string          `json:"status"`
	OriginalJournalID  *string         `json:"originalJournalID,omitempty"`
	ReversingJournalID *string         `json:"reversingJournalID,omitempty"`
	Entries            []EntryResponse `json:"entries,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	CreatedBy          string          `json:"createdBy"`
}

// ToEntryResponse converts a domain.Entry to EntryResponse DTO.
func ToEntryResponse(e *domain.Entry) EntryResponse {
	return EntryResponse{
		EntryID:     e.EntryID,
		JournalID:   e.JournalID,
		AccountID:   e.AccountID,
		Amount:      e.Amount,
		Side:        string(e.Side),
		Description: e.Description,
		JournalDate: e.JournalDate,
	}
}

// ToEntryResponses converts a slice of domain.Entry to []EntryResponse.
func ToEntryResponses(entries []domain.Entry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = ToEntryResponse(&e)
	}
	return responses
}

// ToJournalResponse converts a domain.Journal to JournalResponse DTO.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	return JournalResponse{
		JournalID:          j.JournalID,
		JournalDate:        j.JournalDate,
		Memo:               j.Memo,
		Status:             string(j.Status),
		OriginalJournalID:  j.OriginalJournalID,
		ReversingJournalID: j.ReversingJournalID,
		Entries:            ToEntryResponses(j.Entries),
		CreatedAt:          j.CreatedAt,
		CreatedBy:          j.CreatedBy,
	}
}

// ListJournalsParams defines query parameters for listing journals.
type ListJournalsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListJournalsResponse wraps a page of journals with the token for the next page.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ListEntriesParams defines query parameters for an account statement.
type ListEntriesParams struct {
	Limit  int        `form:"limit,default=50"`
	Offset int        `form:"offset,default=0"`
	From   *time.Time `form:"from" time_format:"2006-01-02"`
	To     *time.Time `form:"to" time_format:"2006-01-02"`
}

// ListEntriesResponse wraps a page of entries for one account.
type ListEntriesResponse struct {
	Entries []EntryResponse `json:"entries"`
}
