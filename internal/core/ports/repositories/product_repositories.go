package repositories

import (
	"context"
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	"github.com/a7a6j4/pieV1/internal/dto"
)

// ProductReader defines read operations for the product catalog
type ProductReader interface {
	// FindProductByID retrieves a product with its variant terms and fees.
	FindProductByID(ctx context.Context, productID string) (*domain.Product, error)

	// FindProductBySymbol retrieves a variable product by its ticker symbol.
	FindProductBySymbol(ctx context.Context, symbol string) (*domain.Product, error)

	// ListProducts retrieves a paginated list of products with optional category and market filters.
	ListProducts(ctx context.Context, params dto.ListProductsParams) ([]domain.Product, error)
}

// ProductWriter defines write operations for the product catalog
type ProductWriter interface {
	// SaveProduct persists a new product with its variant terms.
	SaveProduct(ctx context.Context, product domain.Product) error

	// UpdateProduct updates a product's mutable details.
	UpdateProduct(ctx context.Context, product domain.Product) error

	// DeactivateProduct marks a product as inactive.
	DeactivateProduct(ctx context.Context, productID string, userID string, now time.Time) error

	// SaveFee attaches a transaction fee to a product.
	SaveFee(ctx context.Context, productID string, fee domain.TransactionFee) error
}

// PriceReader defines read operations for product price history
type PriceReader interface {
	// FindLatestPrice retrieves the most recent price observation for a product.
	FindLatestPrice(ctx context.Context, productID string) (*domain.PricePoint, error)

	// FindPriceAsOf retrieves the latest price observation on or before a date.
	FindPriceAsOf(ctx context.Context, productID string, asOf time.Time) (*domain.PricePoint, error)

	// ListPrices retrieves a product's price observations within a date range.
	ListPrices(ctx context.Context, productID string, from time.Time, to time.Time) ([]domain.PricePoint, error)
}

// PriceWriter defines write operations for product price history
type PriceWriter interface {
	// SavePricePoint persists one price observation. (productID, date) is unique.
	SavePricePoint(ctx context.Context, point domain.PricePoint) error
}

// ProductRepositoryFacade combines all product-related repository interfaces
// This is a facade for clients that need access to all operations
type ProductRepositoryFacade interface {
	ProductReader
	ProductWriter
	PriceReader
	PriceWriter
}
