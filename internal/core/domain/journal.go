package domain

import "time"

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// Journal represents a single, balanced financial event composed of multiple entries.
// Journals are append-only: corrections are made with a reversing journal,
// never by editing posted entries.
type Journal struct {
	JournalID          string        `json:"journalID"`   // Primary Key (UUID)
	JournalDate        time.Time     `json:"journalDate"` // Date the event occurred
	Memo               string        `json:"memo"`        // Nullable description of the event
	Status             JournalStatus `json:"status"`      // Default: POSTED
	OriginalJournalID  *string       `json:"originalJournalID,omitempty"`  // Set when this journal reverses another
	ReversingJournalID *string       `json:"reversingJournalID,omitempty"` // Set on the original once reversed
	Entries            []Entry       `json:"entries,omitempty"`
	AuditFields
}
