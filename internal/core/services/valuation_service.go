package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/a7a6j4/pieV1/internal/apperrors"
	"github.com/a7a6j4/pieV1/internal/core/domain"
	portsrepo "github.com/a7a6j4/pieV1/internal/core/ports/repositories"
	portssvc "github.com/a7a6j4/pieV1/internal/core/ports/services"
	"github.com/a7a6j4/pieV1/internal/middleware"
)

// valuationService prices portfolios on demand. It owns no state: positions
// come from ledger replay, prices from the price provider and currency
// conversion from the rate provider.
type valuationService struct {
	portfolioSvc  portssvc.PortfolioSvcFacade
	portfolioRepo portsrepo.PortfolioRepositoryWithTx
	productRepo   portsrepo.ProductRepositoryFacade
	prices        portssvc.PriceProvider
	rates         portssvc.RateProvider
	policy        Policy
}

// NewValuationService creates a new valuation service.
func NewValuationService(portfolioSvc portssvc.PortfolioSvcFacade, portfolioRepo portsrepo.PortfolioRepositoryWithTx, productRepo portsrepo.ProductRepositoryFacade, prices portssvc.PriceProvider, rates portssvc.RateProvider, policy Policy) portssvc.ValuationSvc {
	return &valuationService{
		portfolioSvc:  portfolioSvc,
		portfolioRepo: portfolioRepo,
		productRepo:   productRepo,
		prices:        prices,
		rates:         rates,
		policy:        policy,
	}
}

// Ensure valuationService implements the portssvc.ValuationSvc interface
var _ portssvc.ValuationSvc = (*valuationService)(nil)

// performance computes (current - invested) / invested, returning zero when
// nothing was invested rather than dividing by zero.
func performance(invested, current decimal.Decimal) decimal.Decimal {
	if invested.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return current.Sub(invested).Div(invested).Round(6)
}

// annualize converts a holding-period return into an annual rate:
// (1+r)^(365/days) - 1. Holding periods under a day return the raw rate.
func (s *valuationService) annualize(perf decimal.Decimal, holdingDays int) decimal.Decimal {
	if holdingDays <= 0 {
		return perf
	}
	base := 1 + perf.InexactFloat64()
	if base <= 0 {
		return perf
	}
	exponent := float64(s.policy.DayCountOrDefault()) / float64(holdingDays)
	return decimal.NewFromFloat(math.Pow(base, exponent) - 1).Round(6)
}

// valueVariablePosition prices one unit-based holding. When no price has ever
// been recorded the position is carried at cost.
func (s *valuationService) valueVariablePosition(ctx context.Context, position domain.VariablePosition, asOf time.Time) (domain.AssetValuation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	price := position.VWAC
	point, err := s.prices.PriceAsOf(ctx, &position.Product, asOf)
	switch {
	case err == nil:
		price = point.Value
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("No price recorded for product, valuing at cost", slog.String("product_id", position.Product.ProductID))
	default:
		return domain.AssetValuation{}, err
	}

	currentValue := position.NetUnits.Mul(price).Round(2)
	perf := performance(position.NetAmount, currentValue)

	holdingDays := 0
	movements, err := s.portfolioRepo.ListVariableMovements(ctx, position.PortfolioID, position.Product.ProductID, asOf)
	if err != nil {
		return domain.AssetValuation{}, fmt.Errorf("failed to list movements for holding period: %w", err)
	}
	if len(movements) > 0 {
		holdingDays = int(asOf.Sub(movements[0].Date).Hours() / 24)
	}

	return domain.AssetValuation{
		Product:               position.Product,
		Category:              domain.CategoryVariable,
		InvestedAmount:        position.NetAmount,
		CurrentValue:          currentValue,
		CurrentPrice:          price,
		VWAC:                  position.VWAC,
		NetUnits:              position.NetUnits,
		Performance:           perf,
		HoldingDays:           holdingDays,
		AnnualizedPerformance: s.annualize(perf, holdingDays),
	}, nil
}

// ValuePortfolio prices every position in a portfolio and aggregates totals
// and performance per currency. USD values are additionally rolled into the
// NGN totals at the reporting rate.
// Implements portssvc.ValuationSvc
func (s *valuationService) ValuePortfolio(ctx context.Context, portfolioID string, asOf time.Time) (*domain.PortfolioValuation, error) {
	positions, err := s.portfolioSvc.ListVariablePositions(ctx, portfolioID, asOf)
	if err != nil {
		return nil, err
	}

	valuation := &domain.PortfolioValuation{
		PortfolioID:    portfolioID,
		TotalValueNGN:  decimal.Zero,
		TotalValueUSD:  decimal.Zero,
		PerformanceNGN: decimal.Zero,
		PerformanceUSD: decimal.Zero,
		AsOf:           asOf,
	}

	investedNGN := decimal.Zero
	investedUSD := decimal.Zero

	add := func(asset domain.AssetValuation) {
		valuation.Assets = append(valuation.Assets, asset)
		switch asset.Product.CurrencyCode {
		case domain.CurrencyUSD:
			valuation.TotalValueUSD = valuation.TotalValueUSD.Add(asset.CurrentValue)
			investedUSD = investedUSD.Add(asset.InvestedAmount)
		default:
			valuation.TotalValueNGN = valuation.TotalValueNGN.Add(asset.CurrentValue)
			investedNGN = investedNGN.Add(asset.InvestedAmount)
		}
	}

	for _, position := range positions {
		asset, err := s.valueVariablePosition(ctx, position, asOf)
		if err != nil {
			return nil, err
		}
		add(asset)
	}

	deposits, err := s.portfolioSvc.ListDeposits(ctx, portfolioID, false)
	if err != nil {
		return nil, err
	}
	for _, deposit := range deposits {
		value, err := s.portfolioSvc.GetDepositValue(ctx, deposit.DepositID, asOf)
		if err != nil {
			return nil, err
		}
		product, err := s.productRepo.FindProductByID(ctx, deposit.ProductID)
		if err != nil {
			return nil, err
		}
		perf := performance(value.Principal, value.CurrentValue)
		asset := domain.AssetValuation{
			Product:               *product,
			Category:              domain.CategoryDeposit,
			InvestedAmount:        value.Principal,
			CurrentValue:          value.CurrentValue,
			Performance:           perf,
			HoldingDays:           accrualDays(&deposit, asOf),
			AnnualizedPerformance: s.annualize(perf, accrualDays(&deposit, asOf)),
		}
		add(asset)
	}

	// Roll USD holdings into the NGN figures at the reporting rate.
	if valuation.TotalValueUSD.IsPositive() || investedUSD.IsPositive() {
		rate, err := s.rates.Rate(ctx, domain.CurrencyUSD, domain.CurrencyNGN, asOf)
		if err != nil {
			return nil, fmt.Errorf("failed to convert USD holdings: %w", err)
		}
		valuation.TotalValueNGN = valuation.TotalValueNGN.Add(valuation.TotalValueUSD.Mul(rate).Round(2))
		investedNGN = investedNGN.Add(investedUSD.Mul(rate).Round(2))
	}

	valuation.PerformanceNGN = performance(investedNGN, valuation.TotalValueNGN)
	valuation.PerformanceUSD = performance(investedUSD, valuation.TotalValueUSD)
	return valuation, nil
}

// ValueUserHoldings values all of a user's portfolios.
// Implements portssvc.ValuationSvc
func (s *valuationService) ValueUserHoldings(ctx context.Context, userID string, asOf time.Time) ([]domain.PortfolioValuation, error) {
	portfolios, err := s.portfolioSvc.ListPortfoliosByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	valuations := make([]domain.PortfolioValuation, 0, len(portfolios))
	for _, portfolio := range portfolios {
		valuation, err := s.ValuePortfolio(ctx, portfolio.PortfolioID, asOf)
		if err != nil {
			return nil, err
		}
		valuations = append(valuations, *valuation)
	}
	return valuations, nil
}
