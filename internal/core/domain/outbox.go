package domain

import "time"

// SettlementTaskStatus is the lifecycle state of a queued settlement task.
type SettlementTaskStatus string

const (
	TaskPending   SettlementTaskStatus = "PENDING"
	TaskCompleted SettlementTaskStatus = "COMPLETED"
	TaskFailed    SettlementTaskStatus = "FAILED"
)

// SettlementTask is an outbox row written in the same transaction as the
// portfolio transaction it settles. The transaction ID doubles as the
// idempotency key sent to the settlement gateway.
type SettlementTask struct {
	TaskID        string               `json:"taskID"` // Primary Key (UUID)
	TransactionID string               `json:"transactionID"`
	Status        SettlementTaskStatus `json:"status"`
	Attempts      int                  `json:"attempts"`
	NextAttemptAt time.Time            `json:"nextAttemptAt"`
	LastError     string               `json:"lastError,omitempty"`
	AuditFields
}
