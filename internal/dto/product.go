package dto

import (
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/shopspring/decimal"
)

// VariableTermsRequest is the variant payload for unit-based products.
type VariableTermsRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

// DepositTermsRequest is the variant payload for fixed-income products.
type DepositTermsRequest struct {
	MinTenorDays int             `json:"minTenorDays" binding:"required,min=1"`
	MaxTenorDays int             `json:"maxTenorDays" binding:"required,min=1"`
	Fixed        bool            `json:"fixed"`
	PenaltyRate  decimal.Decimal `json:"penaltyRate"`
	Taxable      bool            `json:"taxable"`
}

// CreateProductRequest defines the data needed to create a catalog product.
// Exactly one of Variable or Deposit must be set, matching Category.
type CreateProductRequest struct {
	Title        string                 `json:"title" binding:"required"`
	Description  string                 `json:"description"`
	CurrencyCode string                 `json:"currencyCode" binding:"required,oneof=NGN USD"`
	Category     domain.ProductCategory `json:"category" binding:"required,oneof=VARIABLE DEPOSIT"`
	Class        domain.ProductClass    `json:"class" binding:"required,oneof=EQUITY ETF MUTUAL_FUND FUND DEPOSIT"`
	Market       domain.Market          `json:"market" binding:"required,oneof=NG US"`
	RiskLevel    int                    `json:"riskLevel" binding:"min=0,max=10"`
	Variable     *VariableTermsRequest  `json:"variable"`
	Deposit      *DepositTermsRequest   `json:"deposit"`
}

// UpdateProductRequest defines the mutable fields of a product.
type UpdateProductRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	RiskLevel   *int    `json:"riskLevel"`
	IsActive    *bool   `json:"isActive"`
}

// CreateFeeRequest defines the data needed to attach a fee to a product.
type CreateFeeRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	OnPurchase  bool            `json:"onPurchase"`
	OnSale      bool            `json:"onSale"`
	VATable     bool            `json:"vatable"`
	Type        domain.FeeType  `json:"type" binding:"required,oneof=FLAT RELATIVE"`
	Value       decimal.Decimal `json:"value" binding:"required"`
}

// SavePricePointRequest records one price or rate observation for a product.
type SavePricePointRequest struct {
	Date  time.Time       `json:"date" binding:"required"`
	Value decimal.Decimal `json:"value" binding:"required"`
}

// ProductResponse defines the data returned for a product.
type ProductResponse struct {
	ProductID    string                 `json:"productID"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	CurrencyCode string                 `json:"currencyCode"`
	Category     domain.ProductCategory `json:"category"`
	Class        domain.ProductClass    `json:"class"`
	Market       domain.Market          `json:"market"`
	RiskLevel    int                    `json:"riskLevel"`
	IsActive     bool                   `json:"isActive"`
	Variable     *domain.VariableTerms  `json:"variable,omitempty"`
	Deposit      *domain.DepositTerms   `json:"deposit,omitempty"`
	Fees         []FeeResponse          `json:"fees,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// FeeResponse defines the data returned for a product fee.
type FeeResponse struct {
	FeeID       string          `json:"feeID"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	OnPurchase  bool            `json:"onPurchase"`
	OnSale      bool            `json:"onSale"`
	VATable     bool            `json:"vatable"`
	Type        string          `json:"type"`
	Value       decimal.Decimal `json:"value"`
}

// ToFeeResponse converts a domain.TransactionFee to FeeResponse DTO.
func ToFeeResponse(f *domain.TransactionFee) FeeResponse {
	return FeeResponse{
		FeeID:       f.FeeID,
		Title:       f.Title,
		Description: f.Description,
		OnPurchase:  f.OnPurchase,
		OnSale:      f.OnSale,
		VATable:     f.VATable,
		Type:        string(f.Type),
		Value:       f.Value,
	}
}

// ToProductResponse converts a domain.Product to ProductResponse DTO.
func ToProductResponse(p *domain.Product) ProductResponse {
	fees := make([]FeeResponse, len(p.Fees))
	for i, f := range p.Fees {
		fees[i] = ToFeeResponse(&f)
	}
	return ProductResponse{
		ProductID:    p.ProductID,
		Title:        p.Title,
		Description:  p.Description,
		CurrencyCode: p.CurrencyCode,
		Category:     p.Category,
		Class:        p.Class,
		Market:       p.Market,
		RiskLevel:    p.RiskLevel,
		IsActive:     p.IsActive,
		Variable:     p.Variable,
		Deposit:      p.Deposit,
		Fees:         fees,
		CreatedAt:    p.CreatedAt,
	}
}

// ToListProductResponse converts a slice of domain.Product to []ProductResponse.
func ToListProductResponse(products []domain.Product) []ProductResponse {
	res := make([]ProductResponse, len(products))
	for i, p := range products {
		res[i] = ToProductResponse(&p)
	}
	return res
}

// ListProductsParams defines query parameters for listing products.
type ListProductsParams struct {
	Limit    int     `form:"limit,default=20"`
	Offset   int     `form:"offset,default=0"`
	Category *string `form:"category"` // Optional filter
	Market   *string `form:"market"`   // Optional filter
}

// ListProductsResponse wraps the list of products.
type ListProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

// PricePointResponse defines the data returned for one price observation.
type PricePointResponse struct {
	ProductID string          `json:"productID"`
	Date      time.Time       `json:"date"`
	Value     decimal.Decimal `json:"value"`
}

// ToPricePointResponse converts a domain.PricePoint to its DTO.
func ToPricePointResponse(p *domain.PricePoint) PricePointResponse {
	return PricePointResponse{
		ProductID: p.ProductID,
		Date:      p.Date,
		Value:     p.Value,
	}
}

// FeeQuoteResponse itemises the charges for a prospective order amount.
type FeeQuoteResponse struct {
	ProductID   string          `json:"productID"`
	OrderAmount decimal.Decimal `json:"orderAmount"`
	Purchase    bool            `json:"purchase"`
	Lines       []FeeLine       `json:"lines"`
	TotalFees   decimal.Decimal `json:"totalFees"`
	TotalVAT    decimal.Decimal `json:"totalVAT"`
	NetAmount   decimal.Decimal `json:"netAmount"` // Purchase: amount plus charges; sale: amount less charges
}

// FeeLine is one itemised charge within a fee quote.
type FeeLine struct {
	Title  string          `json:"title"`
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	VAT    decimal.Decimal `json:"vat"`
}
