package dto

import (
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code            string             `json:"code" binding:"required"`
	Name            string             `json:"name" binding:"required"`
	AccountType     domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE INCOME"`
	CurrencyCode    string             `json:"currencyCode" binding:"required,oneof=NGN USD"`
	IsHeader        bool               `json:"isHeader"`
	ParentAccountID *string            `json:"parentAccountID"` // Optional, use pointer for nullability
	Description     string             `json:"description"`     // Optional
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID       string             `json:"accountID"`
	Code            string             `json:"code"`
	Name            string             `json:"name"`
	AccountType     domain.AccountType `json:"accountType"`
	CurrencyCode    string             `json:"currencyCode"`
	IsHeader        bool               `json:"isHeader"`
	ParentAccountID string             `json:"parentAccountID"` // Note: Empty string if null in DB
	Level           int                `json:"level"`
	Description     string             `json:"description"`
	IsActive        bool               `json:"isActive"`
	CreatedAt       time.Time          `json:"createdAt"`
	CreatedBy       string             `json:"createdBy"`
	LastUpdatedAt   time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy   string             `json:"lastUpdatedBy"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
// Code, type, currency and position in the tree are immutable once created.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`        // Optional: New name
	Description *string `json:"description"` // Optional: New description
	IsActive    *bool   `json:"isActive"`    // Optional: New active status
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		Code:            acc.Code,
		Name:            acc.Name,
		AccountType:     acc.AccountType,
		CurrencyCode:    acc.CurrencyCode,
		IsHeader:        acc.IsHeader,
		ParentAccountID: acc.ParentAccountID,
		Level:           acc.Level,
		Description:     acc.Description,
		IsActive:        acc.IsActive,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return res
}

// MapSystemAccountRequest binds a posting purpose and currency to a detail account.
type MapSystemAccountRequest struct {
	Purpose      domain.SystemAccountPurpose `json:"purpose" binding:"required,oneof=CASH CUSTOMER_LIABILITY INVESTMENT_CLEARING INVESTMENT_ASSET FEE_INCOME VAT_PAYABLE INTEREST_EXPENSE WITHHOLDING_TAX_PAYABLE"`
	CurrencyCode string                      `json:"currencyCode" binding:"required,oneof=NGN USD"`
	AccountID    string                      `json:"accountID" binding:"required"`
}

// AccountBalanceResponse defines the data returned for an account balance query.
type AccountBalanceResponse struct {
	AccountID    string          `json:"accountID"`
	TotalDebits  decimal.Decimal `json:"totalDebits"`
	TotalCredits decimal.Decimal `json:"totalCredits"`
	Balance      decimal.Decimal `json:"balance"`
	AsOf         time.Time       `json:"asOf"`
}

// ToAccountBalanceResponse converts a domain.AccountSummary to its DTO.
func ToAccountBalanceResponse(s *domain.AccountSummary) AccountBalanceResponse {
	return AccountBalanceResponse{
		AccountID:    s.AccountID,
		TotalDebits:  s.TotalDebits,
		TotalCredits: s.TotalCredits,
		Balance:      s.Balance,
		AsOf:         s.AsOf,
	}
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Limit       int     `form:"limit,default=20"`
	Offset      int     `form:"offset,default=0"`
	AccountType *string `form:"accountType"` // Optional filter
	Currency    *string `form:"currency"`    // Optional filter
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}
