package dto

import (
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateWalletRequest defines the data needed to open a wallet.
type CreateWalletRequest struct {
	UserID       string `json:"userID" binding:"required"`
	CurrencyCode string `json:"currencyCode" binding:"required,oneof=NGN USD"`
}

// WalletResponse defines the data returned for a wallet.
type WalletResponse struct {
	WalletID     string    `json:"walletID"`
	UserID       string    `json:"userID"`
	CurrencyCode string    `json:"currencyCode"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ToWalletResponse converts a domain.Wallet to WalletResponse DTO.
func ToWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		WalletID:     w.WalletID,
		UserID:       w.UserID,
		CurrencyCode: w.CurrencyCode,
		Active:       w.Active,
		CreatedAt:    w.CreatedAt,
	}
}

// ToListWalletResponse converts a slice of domain.Wallet to []WalletResponse.
func ToListWalletResponse(wallets []domain.Wallet) []WalletResponse {
	res := make([]WalletResponse, len(wallets))
	for i, w := range wallets {
		res[i] = ToWalletResponse(&w)
	}
	return res
}

// SetWalletActiveRequest toggles a wallet's active flag.
type SetWalletActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// RecordWalletTransactionRequest defines the data needed to move cash on a wallet.
type RecordWalletTransactionRequest struct {
	Type   domain.TransactionType `json:"type" binding:"required,oneof=DEPOSIT WITHDRAWAL"`
	Amount decimal.Decimal        `json:"amount" binding:"required"`
	Date   *time.Time             `json:"date"` // Optional, defaults to now
}

// WalletTransactionResponse defines the data returned for a wallet transaction.
type WalletTransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	WalletID      string          `json:"walletID"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	CurrencyCode  string          `json:"currencyCode"`
	Status        string          `json:"status"`
	JournalID     string          `json:"journalID"`
	Date          time.Time       `json:"date"`
}

// ToWalletTransactionResponse converts a domain.WalletTransaction to its DTO.
func ToWalletTransactionResponse(t *domain.WalletTransaction) WalletTransactionResponse {
	return WalletTransactionResponse{
		TransactionID: t.TransactionID,
		WalletID:      t.WalletID,
		Type:          string(t.Type),
		Amount:        t.Amount,
		CurrencyCode:  t.CurrencyCode,
		Status:        string(t.Status),
		JournalID:     t.JournalID,
		Date:          t.Date,
	}
}

// ToWalletTransactionResponses converts a slice of domain.WalletTransaction to DTOs.
func ToWalletTransactionResponses(txns []domain.WalletTransaction) []WalletTransactionResponse {
	responses := make([]WalletTransactionResponse, len(txns))
	for i, t := range txns {
		responses[i] = ToWalletTransactionResponse(&t)
	}
	return responses
}

// ListWalletTransactionsParams defines query parameters for a wallet statement.
type ListWalletTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListWalletTransactionsResponse wraps a page of wallet transactions.
type ListWalletTransactionsResponse struct {
	Transactions []WalletTransactionResponse `json:"transactions"`
	NextToken    *string                     `json:"nextToken,omitempty"`
}

// WalletBalanceResponse defines the data returned for a wallet balance query.
type WalletBalanceResponse struct {
	WalletID string          `json:"walletID"`
	Balance  decimal.Decimal `json:"balance"`
	AsOf     time.Time       `json:"asOf"`
}

// ToWalletBalanceResponse converts a domain.WalletBalance to its DTO.
func ToWalletBalanceResponse(b *domain.WalletBalance) WalletBalanceResponse {
	return WalletBalanceResponse{
		WalletID: b.WalletID,
		Balance:  b.Balance,
		AsOf:     b.AsOf,
	}
}
