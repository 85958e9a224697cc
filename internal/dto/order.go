package dto

import (
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OrderLegRequest is one leg of a multi-product order.
// Amount is the cash consideration in minor units. Units and Price are
// required for SELL legs on variable products and ignored for deposits.
type OrderLegRequest struct {
	ProductID string                 `json:"productID" binding:"required"`
	Type      domain.TransactionType `json:"type" binding:"required,oneof=BUY SELL"`
	Amount    decimal.Decimal        `json:"amount" binding:"required"`
	Units     *decimal.Decimal       `json:"units"`
	TenorDays *int                   `json:"tenorDays"` // Deposit legs only
}

// PlaceOrderRequest defines the data needed to place an order against a portfolio.
type PlaceOrderRequest struct {
	Legs []OrderLegRequest `json:"legs" binding:"required,min=1,dive"`
	Date *time.Time        `json:"date"` // Optional, defaults to now
}

// PortfolioTransactionResponse defines the data returned for one order leg.
type PortfolioTransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	BatchID       string          `json:"batchID"`
	PortfolioID   string          `json:"portfolioID"`
	ProductID     string          `json:"productID"`
	Category      string          `json:"category"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	CurrencyCode  string          `json:"currencyCode"`
	Status        string          `json:"status"`
	JournalID     string          `json:"journalID,omitempty"`
	Date          time.Time       `json:"date"`
}

// ToPortfolioTransactionResponse converts a domain.PortfolioTransaction to its DTO.
func ToPortfolioTransactionResponse(t *domain.PortfolioTransaction) PortfolioTransactionResponse {
	return PortfolioTransactionResponse{
		TransactionID: t.TransactionID,
		BatchID:       t.BatchID,
		PortfolioID:   t.PortfolioID,
		ProductID:     t.ProductID,
		Category:      string(t.Category),
		Type:          string(t.Type),
		Amount:        t.Amount,
		CurrencyCode:  t.CurrencyCode,
		Status:        string(t.Status),
		JournalID:     t.JournalID,
		Date:          t.Date,
	}
}

// ToPortfolioTransactionResponses converts a slice of legs to DTOs.
func ToPortfolioTransactionResponses(txns []domain.PortfolioTransaction) []PortfolioTransactionResponse {
	responses := make([]PortfolioTransactionResponse, len(txns))
	for i, t := range txns {
		responses[i] = ToPortfolioTransactionResponse(&t)
	}
	return responses
}

// BatchResponse defines the data returned for an order batch with its legs.
type BatchResponse struct {
	BatchID     string                         `json:"batchID"`
	PortfolioID string                         `json:"portfolioID"`
	Status      string                         `json:"status"`
	Legs        []PortfolioTransactionResponse `json:"legs"`
	CreatedAt   time.Time                      `json:"createdAt"`
}

// ToBatchResponse converts a batch and its legs into BatchResponse DTO.
func ToBatchResponse(b *domain.TransactionBatch, legs []domain.PortfolioTransaction) BatchResponse {
	return BatchResponse{
		BatchID:     b.BatchID,
		PortfolioID: b.PortfolioID,
		Status:      string(domain.AggregateBatchStatus(legs)),
		Legs:        ToPortfolioTransactionResponses(legs),
		CreatedAt:   b.CreatedAt,
	}
}

// ListTransactionsParams defines query parameters for a portfolio's order history.
type ListTransactionsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// SettleTransactionRequest reports a settlement outcome for a pending leg.
type SettleTransactionRequest struct {
	Units *decimal.Decimal `json:"units"` // Executed units for variable BUY legs
	Price *decimal.Decimal `json:"price"` // Executed unit price for variable legs
}

// FailTransactionRequest records why a pending leg failed.
type FailTransactionRequest struct {
	Reason string `json:"reason"`
}

// LiquidateDepositRequest closes a fixed-income placement as of a date.
type LiquidateDepositRequest struct {
	Date *time.Time `json:"date"` // Optional, defaults to now
}
