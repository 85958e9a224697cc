package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductCategory discriminates the two product shapes the position ledger
// understands: unit-based variable products and principal-based deposits.
type ProductCategory string

const (
	CategoryVariable ProductCategory = "VARIABLE"
	CategoryDeposit  ProductCategory = "DEPOSIT"
)

// ProductClass refines the category for pricing purposes.
type ProductClass string

const (
	ClassEquity     ProductClass = "EQUITY"
	ClassETF        ProductClass = "ETF"
	ClassMutualFund ProductClass = "MUTUAL_FUND"
	ClassFund       ProductClass = "FUND"
	ClassDeposit    ProductClass = "DEPOSIT"
)

// Market identifies the market convention a variable product is priced under.
type Market string

const (
	MarketNG Market = "NG"
	MarketUS Market = "US"
)

// Product is the investable catalog entry. Category selects which of the
// variant payloads is populated; the other is nil. This replaces the original
// single-table inheritance with an explicit tagged union so every
// category branch can be matched exhaustively.
type Product struct {
	ProductID    string          `json:"productID"` // Primary Key (UUID)
	Title        string          `json:"title"`     // Unique
	Description  string          `json:"description"`
	CurrencyCode string          `json:"currencyCode"`
	Category     ProductCategory `json:"category"`
	Class        ProductClass    `json:"class"`
	Market       Market          `json:"market"`
	RiskLevel    int             `json:"riskLevel"`
	IsActive     bool            `json:"isActive"`
	Variable     *VariableTerms  `json:"variable,omitempty"`
	Deposit      *DepositTerms   `json:"deposit,omitempty"`
	Fees         []TransactionFee `json:"fees,omitempty"`
	AuditFields
}

// VariableTerms holds the variant payload for unit-based products.
type VariableTerms struct {
	Symbol string `json:"symbol"` // Unique ticker/identifier
}

// DepositTerms holds the variant payload for fixed-income placements.
// PenaltyRate and Taxable were hardcoded constants in places upstream;
// they are explicit per-product inputs here.
type DepositTerms struct {
	MinTenorDays int             `json:"minTenorDays"`
	MaxTenorDays int             `json:"maxTenorDays"`
	Fixed        bool            `json:"fixed"`
	PenaltyRate  decimal.Decimal `json:"penaltyRate"` // Fraction of net interest forfeited on early liquidation
	Taxable      bool            `json:"taxable"`     // Whether accrued interest attracts withholding tax
}

// PricePoint is one observation of a variable product's unit price or a
// deposit product's rate. (productID, date) is unique.
type PricePoint struct {
	ProductID string          `json:"productID"`
	Date      time.Time       `json:"date"`
	Value     decimal.Decimal `json:"value"` // Price in minor units, or annualized rate for deposits
}

// FeeType distinguishes fixed-amount fees from basis-point fees.
type FeeType string

const (
	FeeFlat     FeeType = "FLAT"
	FeeRelative FeeType = "RELATIVE"
)

// TransactionFee is a charge applied when trading a product.
type TransactionFee struct {
	FeeID       string          `json:"feeID"` // Primary Key (UUID)
	Title       string          `json:"title"`
	Description string          `json:"description"`
	OnPurchase  bool            `json:"onPurchase"`
	OnSale      bool            `json:"onSale"`
	VATable     bool            `json:"vatable"`
	Type        FeeType         `json:"type"`
	Value       decimal.Decimal `json:"value"` // Minor units when FLAT, fraction of order amount when RELATIVE
	AuditFields
}

// AppliesTo reports whether the fee is charged for the given order side.
func (f TransactionFee) AppliesTo(purchase bool) bool {
	if purchase {
		return f.OnPurchase
	}
	return f.OnSale
}
