package services

import (
	"context"
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/a7a6j4/pieV1/internal/dto"
	"github.com/shopspring/decimal"
)

// ProductReaderSvc defines read operations for the product catalog
type ProductReaderSvc interface {
	// GetProductByID retrieves a product with its variant terms and fees.
	GetProductByID(ctx context.Context, productID string) (*domain.Product, error)

	// ListProducts retrieves a paginated list of products.
	ListProducts(ctx context.Context, params dto.ListProductsParams) (*dto.ListProductsResponse, error)

	// GetLatestPrice retrieves the most recent price observation for a product.
	GetLatestPrice(ctx context.Context, productID string) (*domain.PricePoint, error)

	// QuoteFees itemises the charges a prospective order would attract,
	// including VAT on VATable fee lines.
	QuoteFees(ctx context.Context, productID string, orderAmount decimal.Decimal, purchase bool) (*dto.FeeQuoteResponse, error)
}

// ProductWriterSvc defines write operations for the product catalog
type ProductWriterSvc interface {
	// CreateProduct persists a new product after variant validation.
	CreateProduct(ctx context.Context, req dto.CreateProductRequest, creatorUserID string) (*domain.Product, error)

	// UpdateProduct updates a product's mutable details.
	UpdateProduct(ctx context.Context, productID string, req dto.UpdateProductRequest, requestingUserID string) (*domain.Product, error)

	// DeactivateProduct marks a product as inactive.
	DeactivateProduct(ctx context.Context, productID string, requestingUserID string) error

	// AddFee attaches a transaction fee to a product.
	AddFee(ctx context.Context, productID string, req dto.CreateFeeRequest, requestingUserID string) (*domain.TransactionFee, error)

	// RecordPrice stores one price or rate observation.
	RecordPrice(ctx context.Context, productID string, date time.Time, value decimal.Decimal, requestingUserID string) error
}

// ProductSvcFacade combines all product service interfaces
// This is a facade for clients that need access to all operations
type ProductSvcFacade interface {
	ProductReaderSvc
	ProductWriterSvc
}
