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
	"github.com/a7a6j4/pieV1/internal/dto"
	"github.com/a7a6j4/pieV1/internal/middleware"
)

var (
	ErrVariantMismatch = errors.New("product variant payload must match its category")
	ErrTenorRange      = errors.New("minimum tenor cannot exceed maximum tenor")
)

// productService manages the investable product catalog, price history and
// fee quoting.
type productService struct {
	productRepo portsrepo.ProductRepositoryFacade
	policy      Policy
}

// NewProductService creates a new product catalog service.
func NewProductService(productRepo portsrepo.ProductRepositoryFacade, policy Policy) portssvc.ProductSvcFacade {
	return &productService{
		productRepo: productRepo,
		policy:      policy,
	}
}

// Ensure productService implements the portssvc.ProductSvcFacade interface
var _ portssvc.ProductSvcFacade = (*productService)(nil)

// CreateProduct persists a new product after variant validation.
// Implements portssvc.ProductSvcFacade
func (s *productService) CreateProduct(ctx context.Context, req dto.CreateProductRequest, creatorUserID string) (*domain.Product, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	product := domain.Product{
		ProductID:    uuid.NewString(),
		Title:        req.Title,
		Description:  req.Description,
		CurrencyCode: req.CurrencyCode,
		Category:     req.Category,
		Class:        req.Class,
		Market:       req.Market,
		RiskLevel:    req.RiskLevel,
		IsActive:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	// Exactly one variant payload, and it must match the category.
	switch req.Category {
	case domain.CategoryVariable:
		if req.Variable == nil || req.Deposit != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrVariantMismatch)
		}
		product.Variable = &domain.VariableTerms{Symbol: req.Variable.Symbol}
	case domain.CategoryDeposit:
		if req.Deposit == nil || req.Variable != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrVariantMismatch)
		}
		if req.Deposit.MinTenorDays > req.Deposit.MaxTenorDays {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrTenorRange)
		}
		product.Deposit = &domain.DepositTerms{
			MinTenorDays: req.Deposit.MinTenorDays,
			MaxTenorDays: req.Deposit.MaxTenorDays,
			Fixed:        req.Deposit.Fixed,
			PenaltyRate:  req.Deposit.PenaltyRate,
			Taxable:      req.Deposit.Taxable,
		}
	default:
		return nil, fmt.Errorf("%w: unknown product category %s", apperrors.ErrValidation, req.Category)
	}

	if err := s.productRepo.SaveProduct(ctx, product); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: product title or symbol already exists", apperrors.ErrDuplicate)
		}
		logger.Error("Failed to save product", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	logger.Info("Product created successfully", slog.String("product_id", product.ProductID), slog.String("title", product.Title))
	return &product, nil
}

// GetProductByID retrieves a product with its variant terms and fees.
// Implements portssvc.ProductSvcFacade
func (s *productService) GetProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.productRepo.FindProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID %s: %w", productID, err)
	}
	return product, nil
}

// ListProducts retrieves a paginated list of products.
// Implements portssvc.ProductSvcFacade
func (s *productService) ListProducts(ctx context.Context, params dto.ListProductsParams) (*dto.ListProductsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if params.Limit <= 0 {
		params.Limit = 20
	}

	products, err := s.productRepo.ListProducts(ctx, params)
	if err != nil {
		logger.Error("Failed to list products from repository", "error", err)
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	return &dto.ListProductsResponse{Products: dto.ToListProductResponse(products)}, nil
}

// UpdateProduct updates a product's mutable details.
// Implements portssvc.ProductSvcFacade
func (s *productService) UpdateProduct(ctx context.Context, productID string, req dto.UpdateProductRequest, requestingUserID string) (*domain.Product, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	product, err := s.productRepo.FindProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Title != nil {
		product.Title = *req.Title
		updated = true
	}
	if req.Description != nil {
		product.Description = *req.Description
		updated = true
	}
	if req.RiskLevel != nil {
		product.RiskLevel = *req.RiskLevel
		updated = true
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
		updated = true
	}

	if !updated {
		return product, nil
	}

	now := time.Now().UTC()
	product.LastUpdatedAt = now
	product.LastUpdatedBy = requestingUserID

	if err := s.productRepo.UpdateProduct(ctx, *product); err != nil {
		logger.Error("Failed to save product update", slog.String("error", err.Error()), slog.String("product_id", productID))
		return nil, fmt.Errorf("failed to save product update: %w", err)
	}

	return product, nil
}

// DeactivateProduct marks a product as inactive.
// Implements portssvc.ProductSvcFacade
func (s *productService) DeactivateProduct(ctx context.Context, productID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.productRepo.FindProductByID(ctx, productID); err != nil {
		return err
	}

	if err := s.productRepo.DeactivateProduct(ctx, productID, requestingUserID, time.Now().UTC()); err != nil {
		logger.Error("Failed to deactivate product", slog.String("error", err.Error()), slog.String("product_id", productID))
		return fmt.Errorf("failed to deactivate product: %w", err)
	}
	return nil
}

// AddFee attaches a transaction fee to a product.
// Implements portssvc.ProductSvcFacade
func (s *productService) AddFee(ctx context.Context, productID string, req dto.CreateFeeRequest, requestingUserID string) (*domain.TransactionFee, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.productRepo.FindProductByID(ctx, productID); err != nil {
		return nil, err
	}
	if req.Value.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: fee value must be positive", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	fee := domain.TransactionFee{
		FeeID:       uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		OnPurchase:  req.OnPurchase,
		OnSale:      req.OnSale,
		VATable:     req.VATable,
		Type:        req.Type,
		Value:       req.Value,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}

	if err := s.productRepo.SaveFee(ctx, productID, fee); err != nil {
		logger.Error("Failed to save product fee", slog.String("error", err.Error()), slog.String("product_id", productID))
		return nil, fmt.Errorf("failed to save fee: %w", err)
	}

	return &fee, nil
}

// RecordPrice stores one price or rate observation.
// Implements portssvc.ProductSvcFacade
func (s *productService) RecordPrice(ctx context.Context, productID string, date time.Time, value decimal.Decimal, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if value.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: price must be positive", apperrors.ErrValidation)
	}
	if _, err := s.productRepo.FindProductByID(ctx, productID); err != nil {
		return err
	}

	point := domain.PricePoint{
		ProductID: productID,
		Date:      date,
		Value:     value,
	}
	if err := s.productRepo.SavePricePoint(ctx, point); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return fmt.Errorf("%w: price already recorded for this date", apperrors.ErrDuplicate)
		}
		logger.Error("Failed to save price point", slog.String("error", err.Error()), slog.String("product_id", productID))
		return fmt.Errorf("failed to save price point: %w", err)
	}
	return nil
}

// GetLatestPrice retrieves the most recent price observation for a product.
// Implements portssvc.ProductSvcFacade
func (s *productService) GetLatestPrice(ctx context.Context, productID string) (*domain.PricePoint, error) {
	point, err := s.productRepo.FindLatestPrice(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to find latest price for product %s: %w", productID, err)
	}
	return point, nil
}

// QuoteFees itemises the charges a prospective order would attract. FLAT fees
// charge their value as-is; RELATIVE fees charge a fraction of the order
// amount; VATable lines additionally attract VAT at the configured rate.
// Implements portssvc.ProductSvcFacade
func (s *productService) QuoteFees(ctx context.Context, productID string, orderAmount decimal.Decimal, purchase bool) (*dto.FeeQuoteResponse, error) {
	if orderAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: order amount must be positive", apperrors.ErrValidation)
	}

	product, err := s.productRepo.FindProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	quote := &dto.FeeQuoteResponse{
		ProductID:   productID,
		OrderAmount: orderAmount,
		Purchase:    purchase,
		TotalFees:   decimal.Zero,
		TotalVAT:    decimal.Zero,
	}

	for _, fee := range product.Fees {
		if !fee.AppliesTo(purchase) {
			continue
		}
		amount := fee.Value
		if fee.Type == domain.FeeRelative {
			amount = orderAmount.Mul(fee.Value).Round(2)
		}
		vat := decimal.Zero
		if fee.VATable {
			vat = amount.Mul(s.policy.VATRate).Round(2)
		}
		quote.Lines = append(quote.Lines, dto.FeeLine{
			Title:  fee.Title,
			Type:   string(fee.Type),
			Amount: amount,
			VAT:    vat,
		})
		quote.TotalFees = quote.TotalFees.Add(amount)
		quote.TotalVAT = quote.TotalVAT.Add(vat)
	}

	// A purchase costs the order amount plus charges; a sale pays out the
	// order amount less charges.
	if purchase {
		quote.NetAmount = orderAmount.Add(quote.TotalFees).Add(quote.TotalVAT)
	} else {
		quote.NetAmount = orderAmount.Sub(quote.TotalFees).Sub(quote.TotalVAT)
	}
	return quote, nil
}
