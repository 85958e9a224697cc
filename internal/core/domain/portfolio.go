package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio groups a user's investment positions.
type Portfolio struct {
	PortfolioID string `json:"portfolioID"` // Primary Key (UUID)
	UserID      string `json:"userID"`
	Description string `json:"description"`
	Risk        int    `json:"risk"`
	Active      bool   `json:"active"`
	AuditFields
}

// LedgerSide marks a position-ledger movement as adding to or removing from a position.
type LedgerSide string

const (
	SideIn  LedgerSide = "IN"
	SideOut LedgerSide = "OUT"
)

// VariableMovement is one append-only row in the unit-based position ledger.
// Net position and weighted-average cost are always recomputed from these rows.
type VariableMovement struct {
	MovementID    string          `json:"movementID"` // Primary Key (UUID)
	PortfolioID   string          `json:"portfolioID"`
	ProductID     string          `json:"productID"`
	TransactionID string          `json:"transactionID"` // Owning PortfolioTransaction
	Side          LedgerSide      `json:"side"`
	Units         decimal.Decimal `json:"units"`
	Amount        decimal.Decimal `json:"amount"` // Consideration in minor units
	Price         decimal.Decimal `json:"price"`  // Unit price at execution, minor units
	Date          time.Time       `json:"date"`
	AuditFields
}

// DepositAccount names the sub-account a deposit-ledger movement affects.
// Principal, accrued interest and withholding tax are tracked separately so a
// deposit's value can be reconstructed purely from ledger replay.
type DepositAccount string

const (
	DepositAsset    DepositAccount = "ASSET"
	DepositInterest DepositAccount = "INTEREST"
	DepositTax      DepositAccount = "TAX"
)

// DepositMovement is one append-only row in the deposit position ledger.
type DepositMovement struct {
	MovementID string          `json:"movementID"` // Primary Key (UUID)
	DepositID  string          `json:"depositID"`  // FK -> PortfolioDeposit.depositID
	Side       LedgerSide      `json:"side"`
	Account    DepositAccount  `json:"account"`
	Amount     decimal.Decimal `json:"amount"` // Positive minor units
	Date       time.Time       `json:"date"`
	AuditFields
}

// PortfolioDeposit is a single fixed-income placement. Closing is terminal:
// a closed deposit is never reopened, and corrections post new ledger rows.
type PortfolioDeposit struct {
	DepositID     string          `json:"depositID"`     // Primary Key (UUID)
	TransactionID string          `json:"transactionID"` // Owning PortfolioTransaction
	PortfolioID   string          `json:"portfolioID"`
	ProductID     string          `json:"productID"`
	Principal     decimal.Decimal `json:"principal"` // Minor units
	Rate          decimal.Decimal `json:"rate"`      // Annualized, e.g. 0.10
	TenorDays     int             `json:"tenorDays"`
	EffectiveDate time.Time       `json:"effectiveDate"`
	MaturityDate  time.Time       `json:"maturityDate"`
	Matured       bool            `json:"matured"`
	Closed        bool            `json:"closed"`
	ClosedDate    *time.Time      `json:"closedDate,omitempty"`
	IsActive      bool            `json:"isActive"`
	JournalID     string          `json:"journalID"` // Journal posted at purchase time
	AuditFields
}

// DepositValue is a deposit position reconstructed from ledger replay.
type DepositValue struct {
	DepositID       string          `json:"depositID"`
	Principal       decimal.Decimal `json:"principal"`
	AccruedInterest decimal.Decimal `json:"accruedInterest"`
	WithholdingTax  decimal.Decimal `json:"withholdingTax"`
	CurrentValue    decimal.Decimal `json:"currentValue"` // principal + interest - tax
}

// PortfolioTransaction records one leg of an order against a portfolio.
// Category mirrors the owning product's category.
type PortfolioTransaction struct {
	TransactionID string            `json:"transactionID"` // Primary Key (UUID)
	BatchID       string            `json:"batchID"`       // FK -> TransactionBatch.batchID
	PortfolioID   string            `json:"portfolioID"`
	ProductID     string            `json:"productID"`
	Category      ProductCategory   `json:"category"`
	Type          TransactionType   `json:"type"`
	Amount        decimal.Decimal   `json:"amount"` // Minor units
	CurrencyCode  string            `json:"currencyCode"`
	Status        TransactionStatus `json:"status"`
	JournalID     string            `json:"journalID"`
	Date          time.Time         `json:"date"`
	AuditFields
}

// TransactionBatch groups the legs of one user-initiated order. Legs settle
// independently, so the batch exposes an aggregate status rather than a
// single boolean.
type TransactionBatch struct {
	BatchID     string    `json:"batchID"` // Primary Key (UUID)
	PortfolioID string    `json:"portfolioID"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   string    `json:"createdBy"`
}

// BatchStatus is the aggregate settlement outcome of a batch.
type BatchStatus string

const (
	BatchPending         BatchStatus = "PENDING"
	BatchAllCompleted    BatchStatus = "ALL_COMPLETED"
	BatchPartiallyFailed BatchStatus = "PARTIALLY_FAILED"
	BatchAllFailed       BatchStatus = "ALL_FAILED"
)

// AggregateBatchStatus folds leg statuses into the batch-level outcome.
// Any PENDING leg keeps the batch PENDING.
func AggregateBatchStatus(legs []PortfolioTransaction) BatchStatus {
	if len(legs) == 0 {
		return BatchPending
	}
	completed, failed := 0, 0
	for _, leg := range legs {
		switch leg.Status {
		case StatusCompleted:
			completed++
		case StatusFailed:
			failed++
		default:
			return BatchPending
		}
	}
	switch {
	case failed == 0:
		return BatchAllCompleted
	case completed == 0:
		return BatchAllFailed
	default:
		return BatchPartiallyFailed
	}
}
