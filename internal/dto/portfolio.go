package dto

import (
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePortfolioRequest defines the data needed to open a portfolio.
type CreatePortfolioRequest struct {
	UserID      string `json:"userID" binding:"required"`
	Description string `json:"description"`
	Risk        int    `json:"risk" binding:"min=0,max=10"`
}

// SetPortfolioActiveRequest toggles a portfolio's active flag.
type SetPortfolioActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// PortfolioResponse defines the data returned for a portfolio.
type PortfolioResponse struct {
	PortfolioID string    `json:"portfolioID"`
	UserID      string    `json:"userID"`
	Description string    `json:"description"`
	Risk        int       `json:"risk"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToPortfolioResponse converts a domain.Portfolio to PortfolioResponse DTO.
func ToPortfolioResponse(p *domain.Portfolio) PortfolioResponse {
	return PortfolioResponse{
		PortfolioID: p.PortfolioID,
		UserID:      p.UserID,
		Description: p.Description,
		Risk:        p.Risk,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
	}
}

// ToListPortfolioResponse converts a slice of domain.Portfolio to DTOs.
func ToListPortfolioResponse(portfolios []domain.Portfolio) []PortfolioResponse {
	res := make([]PortfolioResponse, len(portfolios))
	for i, p := range portfolios {
		res[i] = ToPortfolioResponse(&p)
	}
	return res
}

// VariablePositionResponse defines the data returned for one unit-based holding.
type VariablePositionResponse struct {
	ProductID string          `json:"productID"`
	Title     string          `json:"title"`
	NetUnits  decimal.Decimal `json:"netUnits"`
	NetAmount decimal.Decimal `json:"netAmount"`
	VWAC      decimal.Decimal `json:"vwac"`
}

// ToVariablePositionResponse converts a domain.VariablePosition to its DTO.
func ToVariablePositionResponse(p *domain.VariablePosition) VariablePositionResponse {
	return VariablePositionResponse{
		ProductID: p.Product.ProductID,
		Title:     p.Product.Title,
		NetUnits:  p.NetUnits,
		NetAmount: p.NetAmount,
		VWAC:      p.VWAC,
	}
}

// DepositResponse defines the data returned for a fixed-income placement.
type DepositResponse struct {
	DepositID     string          `json:"depositID"`
	PortfolioID   string          `json:"portfolioID"`
	ProductID     string          `json:"productID"`
	Principal     decimal.Decimal `json:"principal"`
	Rate          decimal.Decimal `json:"rate"`
	TenorDays     int             `json:"tenorDays"`
	EffectiveDate time.Time       `json:"effectiveDate"`
	MaturityDate  time.Time       `json:"maturityDate"`
	Matured       bool            `json:"matured"`
	Closed        bool            `json:"closed"`
	ClosedDate    *time.Time      `json:"closedDate,omitempty"`
}

// ToDepositResponse converts a domain.PortfolioDeposit to DepositResponse DTO.
func ToDepositResponse(d *domain.PortfolioDeposit) DepositResponse {
	return DepositResponse{
		DepositID:     d.DepositID,
		PortfolioID:   d.PortfolioID,
		ProductID:     d.ProductID,
		Principal:     d.Principal,
		Rate:          d.Rate,
		TenorDays:     d.TenorDays,
		EffectiveDate: d.EffectiveDate,
		MaturityDate:  d.MaturityDate,
		Matured:       d.Matured,
		Closed:        d.Closed,
		ClosedDate:    d.ClosedDate,
	}
}

// DepositValueResponse defines the data returned for a deposit valuation.
type DepositValueResponse struct {
	DepositID       string          `json:"depositID"`
	Principal       decimal.Decimal `json:"principal"`
	AccruedInterest decimal.Decimal `json:"accruedInterest"`
	WithholdingTax  decimal.Decimal `json:"withholdingTax"`
	CurrentValue    decimal.Decimal `json:"currentValue"`
}

// ToDepositValueResponse converts a domain.DepositValue to its DTO.
func ToDepositValueResponse(v *domain.DepositValue) DepositValueResponse {
	return DepositValueResponse{
		DepositID:       v.DepositID,
		Principal:       v.Principal,
		AccruedInterest: v.AccruedInterest,
		WithholdingTax:  v.WithholdingTax,
		CurrentValue:    v.CurrentValue,
	}
}
