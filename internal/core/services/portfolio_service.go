package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	portsrepo "github.com/a7a6j4/pieV1/internal/core/ports/repositories"
	portssvc "github.com/a7a6j4/pieV1/internal/core/ports/services"
	"github.com/a7a6j4/pieV1/internal/dto"
	"github.com/a7a6j4/pieV1/internal/middleware"
)

// portfolioService serves portfolio CRUD and position-ledger replay. Positions
// are never stored; every read recomputes them from the movement rows.
type portfolioService struct {
	portfolioRepo portsrepo.PortfolioRepositoryWithTx
	productRepo   portsrepo.ProductRepositoryFacade
	policy        Policy
}

// NewPortfolioService creates a new portfolio service.
func NewPortfolioService(portfolioRepo portsrepo.PortfolioRepositoryWithTx, productRepo portsrepo.ProductRepositoryFacade, policy Policy) portssvc.PortfolioSvcFacade {
	return &portfolioService{
		portfolioRepo: portfolioRepo,
		productRepo:   productRepo,
		policy:        policy,
	}
}

// Ensure portfolioService implements the portssvc.PortfolioSvcFacade interface
var _ portssvc.PortfolioSvcFacade = (*portfolioService)(nil)

// CreatePortfolio opens a new portfolio for a user.
// Implements portssvc.PortfolioSvcFacade
func (s *portfolioService) CreatePortfolio(ctx context.Context, req dto.CreatePortfolioRequest, creatorUserID string) (*domain.Portfolio, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	portfolio := domain.Portfolio{
		PortfolioID: uuid.NewString(),
		UserID:      req.UserID,
		Description: req.Description,
		Risk:        req.Risk,
		Active:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.portfolioRepo.SavePortfolio(ctx, portfolio); err != nil {
		logger.Error("Failed to save portfolio", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}

	logger.Info("Portfolio created successfully", slog.String("portfolio_id", portfolio.PortfolioID), slog.String("user_id", req.UserID))
	return &portfolio, nil
}

// GetPortfolioByID retrieves a specific portfolio.
// Implements portssvc.PortfolioSvcFacade
func (s *portfolioService) GetPortfolioByID(ctx context.Context, portfolioID string) (*domain.Portfolio, error) {
	portfolio, err := s.portfolioRepo.FindPortfolioByID(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to find portfolio by ID %s: %w", portfolioID, err)
	}
	return portfolio, nil
}

// ListPortfoliosByUser retrieves all portfolios belonging to a user.
// Implements portssvc.PortfolioSvcFacade
func (s *portfolioService) ListPortfoliosByUser(ctx context.Context, userID string) ([]domain.Portfolio, error) {
	portfolios, err := s.portfolioRepo.ListPortfoliosByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios for user %s: %w", userID, err)
	}
	return portfolios, nil
}

// SetPortfolioActive toggles a portfolio's active flag.
// Implements portssvc.PortfolioSvcFacade
func (s *portfolioService) SetPortfolioActive(ctx context.Context, portfolioID string, active bool, requestingUserID string) error {
	if _, err := s.portfolioRepo.FindPortfolioByID(ctx, portfolioID); err != nil {
		return fmt.Errorf("failed to find portfolio by ID %s: %w", portfolioID, err)
	}
	return s.portfolioRepo.SetPortfolioActive(ctx, portfolioID, active, requestingUserID, time.Now().UTC())
}

// replayVariableLedger folds movement rows into a position. The
// weighted-average cost is lifetime-weighted: it divides all-time inflow
// consideration by all-time inflow units, so sells do not disturb it.
func replayVariableLedger(movements []domain.VariableMovement) (netUnits, netAmount, vwac decimal.Decimal) {
	inUnits := decimal.Zero
	inAmount := decimal.Zero
	netUnits = decimal.Zero
	netAmount = decimal.Zero
	for _, m := range movements {
		switch m.Side {
		case domain.SideIn:
			netUnits = netUnits.Add(m.Units)
			netAmount = netAmount.Add(m.Amount)
			inUnits = inUnits.Add(m.Units)
			inAmount = inAmount.Add(m.Amount)
		case domain.SideOut:
			netUnits = netUnits.Sub(m.Units)
			netAmount = netAmount.Sub(m.Amount)
		}
	}
	vwac = decimal.Zero
	if inUnits.IsPositive() {
		vwac = inAmount.Div(inUnits).Round(4)
	}
	return netUnits, netAmount, vwac
}

// GetVariablePosition replays the unit ledger for one product.
// Implements portssvc.PortfolioSvcFacade
func (s *portfolioService) GetVariablePosition(ctx context.Context, portfolioID string, productID string, asOf time.Time) (*domain.VariablePosition, error) {
	product, err := s.productRepo.FindProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID %s: %w", productID, err)
	}

	movements, err := s.portfolioRepo.ListVariableMovements(ctx, portfolioID, productID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements for portfolio %s product %s: %w", portfolioID, productID, err)
	}

	netUnits, netAmount, vwac := replayVariableLedger(movements)
	return &domain.VariablePosition{
		PortfolioID: portfolioID,
		Product:     *product,
		NetUnits:    netUnits,
		NetAmount:   netAmount,
		VWAC:        vwac,
	}, nil
}

// ListVariablePositions replays the unit ledger for every held product.
// Implements portssvc.PortfolioSvcFacade
func (s *portfolioService) ListVariablePositions(ctx context.Context, portfolioID string, asOf time.Time) ([]domain.VariablePosition, error) {
	if _, err := s.portfolioRepo.FindPortfolioByID(ctx, portfolioID); err != nil {
		return nil, fmt.Errorf("failed to find portfolio by ID %s: %w", portfolioID, err)
	}

	productIDs, err := s.portfolioRepo.ListHeldProductIDs(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to list held products for portfolio %s: %w", portfolioID, err)
	}

	positions := make([]domain.VariablePosition, 0, len(productIDs))
	for _, productID := range productIDs {
		position, err := s.GetVariablePosition(ctx, portfolioID, productID, asOf)
		if err != nil {
			return nil, err
		}
		// Fully exited positions stay out of the listing.
		if position.NetUnits.IsZero() && position.NetAmount.IsZero() {
			continue
		}
		positions = append(positions, *position)
	}
	return positions, nil
}

// ListDeposits retrieves a portfolio's fixed-income placements.
// Implements portssvc.PortfolioSvcFacade
func (s *portfolioService) ListDeposits(ctx context.Context, portfolioID string, includeClosed bool) ([]domain.PortfolioDeposit, error) {
	deposits, err := s.portfolioRepo.ListDepositsByPortfolio(ctx, portfolioID, includeClosed)
	if err != nil {
		return nil, fmt.Errorf("failed to list deposits for portfolio %s: %w", portfolioID, err)
	}
	return deposits, nil
}

// AccrueInterest computes gross interest, withholding tax and net interest for
// a principal at an annualized rate over a number of days, using simple
// day-count accrual.
// Implements portssvc.PortfolioSvcFacade
func (s *portfolioService) AccrueInterest(ctx context.Context, principal decimal.Decimal, rate decimal.Decimal, days int, taxable bool) (gross, tax, net decimal.Decimal) {
	if days <= 0 || principal.LessThanOrEqual(decimal.Zero) || rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero, decimal.Zero
	}
	dayCount := decimal.NewFromInt(int64(s.policy.DayCountOrDefault()))
	gross = principal.Mul(rate).Mul(decimal.NewFromInt(int64(days))).Div(dayCount).Round(2)
	tax = decimal.Zero
	if taxable {
		tax = gross.Mul(s.policy.WithholdingTaxRate).Round(2)
	}
	net = gross.Sub(tax)
	return gross, tax, net
}

// accrualDays counts whole days between the effective date and the valuation
// date, capped at the deposit's tenor so interest stops at maturity.
func accrualDays(deposit *domain.PortfolioDeposit, asOf time.Time) int {
	if asOf.Before(deposit.EffectiveDate) {
		return 0
	}
	days := int(asOf.Sub(deposit.EffectiveDate).Hours() / 24)
	if days > deposit.TenorDays {
		days = deposit.TenorDays
	}
	return days
}

// GetDepositValue reconstructs a deposit's value as of a date. Closed deposits
// are valued purely from ledger replay; open ones add interest accrued from
// the effective date up to the valuation date or maturity, whichever is first.
// Implements portssvc.PortfolioSvcFacade
func (s *portfolioService) GetDepositValue(ctx context.Context, depositID string, asOf time.Time) (*domain.DepositValue, error) {
	deposit, err := s.portfolioRepo.FindDepositByID(ctx, depositID)
	if err != nil {
		return nil, fmt.Errorf("failed to find deposit by ID %s: %w", depositID, err)
	}

	movements, err := s.portfolioRepo.ListDepositMovements(ctx, depositID)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements for deposit %s: %w", depositID, err)
	}

	principal := decimal.Zero
	interest := decimal.Zero
	tax := decimal.Zero
	for _, m := range movements {
		amount := m.Amount
		if m.Side == domain.SideOut {
			amount = amount.Neg()
		}
		switch m.Account {
		case domain.DepositAsset:
			principal = principal.Add(amount)
		case domain.DepositInterest:
			interest = interest.Add(amount)
		case domain.DepositTax:
			tax = tax.Add(amount)
		}
	}

	if !deposit.Closed {
		product, err := s.productRepo.FindProductByID(ctx, deposit.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to find product for deposit %s: %w", depositID, err)
		}
		taxable := product.Deposit != nil && product.Deposit.Taxable
		gross, withheld, _ := s.AccrueInterest(ctx, principal, deposit.Rate, accrualDays(deposit, asOf), taxable)
		interest = interest.Add(gross)
		tax = tax.Add(withheld)
	}

	return &domain.DepositValue{
		DepositID:       depositID,
		Principal:       principal,
		AccruedInterest: interest,
		WithholdingTax:  tax,
		CurrentValue:    principal.Add(interest).Sub(tax),
	}, nil
}
