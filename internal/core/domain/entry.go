package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntrySide indicates whether an entry line is a Debit or a Credit.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// Entry represents a single line item within a Journal, affecting one account.
// Amounts are positive minor units (kobo/cents); the side carries the direction.
type Entry struct {
	EntryID     string          `json:"entryID"`   // Primary Key (UUID)
	JournalID   string          `json:"journalID"` // FK -> Journal.journalID (Not Null)
	AccountID   string          `json:"accountID"` // FK -> Account.accountID (Not Null)
	Amount      decimal.Decimal `json:"amount"`    // Positive minor units
	Side        EntrySide       `json:"side"`      // DEBIT or CREDIT (Not Null)
	Description string          `json:"description"`

	// JournalDate is populated on reads that join the owning journal,
	// so account statements can order by event date.
	JournalDate time.Time `json:"journalDate,omitempty"`
	AuditFields
}

// AccountSummary is the aggregate of an account's postings up to a date.
// Balance follows the account-type sign convention (see AccountType.DebitNormal).
type AccountSummary struct {
	AccountID    string          `json:"accountID"`
	TotalDebits  decimal.Decimal `json:"totalDebits"`
	TotalCredits decimal.Decimal `json:"totalCredits"`
	Balance      decimal.Decimal `json:"balance"`
	AsOf         time.Time       `json:"asOf"`
}
