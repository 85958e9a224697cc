package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/a7a6j4/pieV1/internal/apperrors"
	"github.com/a7a6j4/pieV1/internal/core/domain"
	portsrepo "github.com/a7a6j4/pieV1/internal/core/ports/repositories"
	portssvc "github.com/a7a6j4/pieV1/internal/core/ports/services"
	"github.com/a7a6j4/pieV1/internal/middleware"
)

// exchangeRateService serves conversion rates from stored observations with a
// configured fallback, so valuation keeps working before the first rate is
// loaded.
type exchangeRateService struct {
	rateRepo portsrepo.ExchangeRateRepositoryFacade
	policy   Policy
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, policy Policy) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{
		rateRepo: rateRepo,
		policy:   policy,
	}
}

// Ensure exchangeRateService implements the portssvc.ExchangeRateSvcFacade interface
var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// Rate returns the conversion rate from one currency to another as of a date.
// Implements portssvc.RateProvider
func (s *exchangeRateService) Rate(ctx context.Context, fromCurrency string, toCurrency string, asOf time.Time) (decimal.Decimal, error) {
	if fromCurrency == toCurrency {
		return decimal.NewFromInt(1), nil
	}

	stored, err := s.rateRepo.FindLatestRate(ctx, fromCurrency, toCurrency, asOf)
	if err == nil {
		return stored.Rate, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("failed to look up exchange rate %s/%s: %w", fromCurrency, toCurrency, err)
	}

	// Try the inverse pair before giving up on stored rates.
	inverse, invErr := s.rateRepo.FindLatestRate(ctx, toCurrency, fromCurrency, asOf)
	if invErr == nil && inverse.Rate.IsPositive() {
		return decimal.NewFromInt(1).Div(inverse.Rate).Round(8), nil
	}

	return s.fallbackRate(ctx, fromCurrency, toCurrency)
}

// fallbackRate covers the NGN/USD pair from configuration when nothing is stored.
func (s *exchangeRateService) fallbackRate(ctx context.Context, fromCurrency string, toCurrency string) (decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	switch {
	case fromCurrency == domain.CurrencyUSD && toCurrency == domain.CurrencyNGN:
		logger.Warn("No stored exchange rate, using configured fallback", slog.String("pair", "USD/NGN"))
		return s.policy.FxFallbackRate, nil
	case fromCurrency == domain.CurrencyNGN && toCurrency == domain.CurrencyUSD:
		if s.policy.FxFallbackRate.IsPositive() {
			logger.Warn("No stored exchange rate, using configured fallback", slog.String("pair", "NGN/USD"))
			return decimal.NewFromInt(1).Div(s.policy.FxFallbackRate).Round(8), nil
		}
	}
	return decimal.Zero, fmt.Errorf("%w: no exchange rate available for %s/%s", apperrors.ErrNotFound, fromCurrency, toCurrency)
}

// RecordRate persists a new rate effective from a given date.
// Implements portssvc.RateRecorder
func (s *exchangeRateService) RecordRate(ctx context.Context, fromCurrency string, toCurrency string, rate decimal.Decimal, dateEffective time.Time, userID string) (*domain.ExchangeRate, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if fromCurrency == toCurrency {
		return nil, fmt.Errorf("%w: currency pair must differ", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	exchangeRate := domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: fromCurrency,
		ToCurrencyCode:   toCurrency,
		Rate:             rate,
		DateEffective:    dateEffective,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.rateRepo.SaveExchangeRate(ctx, exchangeRate); err != nil {
		logger.Error("Failed to save exchange rate", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save exchange rate: %w", err)
	}

	logger.Info("Exchange rate recorded", slog.String("pair", fromCurrency+"/"+toCurrency), slog.String("rate", rate.String()))
	return &exchangeRate, nil
}
