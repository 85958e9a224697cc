package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is a per-user, per-currency cash account. Its balance is never stored;
// it is always derived by replaying the wallet's COMPLETED transactions.
type Wallet struct {
	WalletID     string `json:"walletID"` // Primary Key (UUID)
	UserID       string `json:"userID"`
	CurrencyCode string `json:"currencyCode"` // Unique per (userID, currencyCode)
	Active       bool   `json:"active"`
	AuditFields
}

// WalletTransaction records one cash movement on a wallet. Each transaction owns
// exactly one journal describing its accounting effect.
type WalletTransaction struct {
	TransactionID string            `json:"transactionID"` // Primary Key (UUID)
	WalletID      string            `json:"walletID"`      // FK -> Wallet.walletID
	Type          TransactionType   `json:"type"`
	Amount        decimal.Decimal   `json:"amount"` // Positive minor units
	CurrencyCode  string            `json:"currencyCode"`
	Status        TransactionStatus `json:"status"`
	JournalID     string            `json:"journalID"` // FK -> Journal.journalID
	Date          time.Time         `json:"date"`
	AuditFields
}

// WalletBalance is the derived cash position of a wallet at a point in time.
type WalletBalance struct {
	WalletID string          `json:"walletID"`
	Balance  decimal.Decimal `json:"balance"` // Minor units
	AsOf     time.Time       `json:"asOf"`
}
