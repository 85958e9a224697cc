package services

import (
	"context"
	"fmt"
	"time"

	"github.com/a7a6j4/pieV1/internal/core/domain"
	portsrepo "github.com/a7a6j4/pieV1/internal/core/ports/repositories"
	portssvc "github.com/a7a6j4/pieV1/internal/core/ports/services"
)

// storedPriceProvider serves valuation prices from the recorded price history.
type storedPriceProvider struct {
	productRepo portsrepo.ProductRepositoryFacade
}

// NewStoredPriceProvider creates a price provider backed by the price history table.
func NewStoredPriceProvider(productRepo portsrepo.ProductRepositoryFacade) portssvc.PriceProvider {
	return &storedPriceProvider{productRepo: productRepo}
}

// Ensure storedPriceProvider implements the portssvc.PriceProvider interface
var _ portssvc.PriceProvider = (*storedPriceProvider)(nil)

// PriceAsOf returns the latest recorded price on or before the given date.
// Implements portssvc.PriceProvider
func (p *storedPriceProvider) PriceAsOf(ctx context.Context, product *domain.Product, asOf time.Time) (*domain.PricePoint, error) {
	point, err := p.productRepo.FindPriceAsOf(ctx, product.ProductID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to find price for product %s as of %s: %w", product.ProductID, asOf.Format("2006-01-02"), err)
	}
	return point, nil
}
