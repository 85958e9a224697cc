package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/a7a6j4/pieV1/internal/apperrors"
	"github.com/a7a6j4/pieV1/internal/core/domain"
	portsrepo "github.com/a7a6j4/pieV1/internal/core/ports/repositories"
	"github.com/a7a6j4/pieV1/internal/dto"
)

// Products and their variant terms live in one row: the variable columns
// (symbol) and deposit columns (tenors, penalty, taxable) are nullable and
// populated per category.
const productColumns = `product_id, title, description, currency_code, category, class, market, risk_level, is_active,
	symbol, min_tenor_days, max_tenor_days, fixed, penalty_rate, taxable,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxProductRepository struct {
	BaseRepository
}

// newPgxProductRepository creates a new repository for the product catalog.
func newPgxProductRepository(pool *pgxpool.Pool) portsrepo.ProductRepositoryFacade {
	return &PgxProductRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxProductRepository implements portsrepo.ProductRepositoryFacade
var _ portsrepo.ProductRepositoryFacade = (*PgxProductRepository)(nil)

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var symbol sql.NullString
	var minTenor, maxTenor sql.NullInt64
	var fixed, taxable sql.NullBool
	var penaltyRate decimal.NullDecimal
	err := row.Scan(
		&p.ProductID,
		&p.Title,
		&p.Description,
		&p.CurrencyCode,
		&p.Category,
		&p.Class,
		&p.Market,
		&p.RiskLevel,
		&p.IsActive,
		&symbol,
		&minTenor,
		&maxTenor,
		&fixed,
		&penaltyRate,
		&taxable,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	switch p.Category {
	case domain.CategoryVariable:
		p.Variable = &domain.VariableTerms{Symbol: symbol.String}
	case domain.CategoryDeposit:
		p.Deposit = &domain.DepositTerms{
			MinTenorDays: int(minTenor.Int64),
			MaxTenorDays: int(maxTenor.Int64),
			Fixed:        fixed.Bool,
			PenaltyRate:  penaltyRate.Decimal,
			Taxable:      taxable.Bool,
		}
	}
	return &p, nil
}

// attachFees loads the fee schedules for the given products in one query.
func (r *PgxProductRepository) attachFees(ctx context.Context, products map[string]*domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, 0, len(products))
	for id := range products {
		ids = append(ids, id)
	}

	query := `
		SELECT fee_id, product_id, title, description, on_purchase, on_sale, vatable, type, value,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM transaction_fees
		WHERE product_id = ANY($1)
		ORDER BY product_id, created_at;
	`
	rows, err := r.Pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to query product fees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fee domain.TransactionFee
		var productID string
		err := rows.Scan(
			&fee.FeeID,
			&productID,
			&fee.Title,
			&fee.Description,
			&fee.OnPurchase,
			&fee.OnSale,
			&fee.VATable,
			&fee.Type,
			&fee.Value,
			&fee.CreatedAt,
			&fee.CreatedBy,
			&fee.LastUpdatedAt,
			&fee.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to scan fee row: %w", err)
		}
		if product, ok := products[productID]; ok {
			product.Fees = append(product.Fees, fee)
		}
	}
	return rows.Err()
}

// SaveProduct inserts a new product with its variant terms.
func (r *PgxProductRepository) SaveProduct(ctx context.Context, product domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	var symbol sql.NullString
	var minTenor, maxTenor sql.NullInt64
	var fixed, taxable sql.NullBool
	var penaltyRate decimal.NullDecimal
	if product.Variable != nil {
		symbol = sql.NullString{String: product.Variable.Symbol, Valid: true}
	}
	if product.Deposit != nil {
		minTenor = sql.NullInt64{Int64: int64(product.Deposit.MinTenorDays), Valid: true}
		maxTenor = sql.NullInt64{Int64: int64(product.Deposit.MaxTenorDays), Valid: true}
		fixed = sql.NullBool{Bool: product.Deposit.Fixed, Valid: true}
		penaltyRate = decimal.NullDecimal{Decimal: product.Deposit.PenaltyRate, Valid: true}
		taxable = sql.NullBool{Bool: product.Deposit.Taxable, Valid: true}
	}

	_, err := r.Pool.Exec(ctx, query,
		product.ProductID,
		product.Title,
		product.Description,
		product.CurrencyCode,
		product.Category,
		product.Class,
		product.Market,
		product.RiskLevel,
		product.IsActive,
		symbol,
		minTenor,
		maxTenor,
		fixed,
		penaltyRate,
		taxable,
		product.CreatedAt,
		product.CreatedBy,
		product.LastUpdatedAt,
		product.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: product titled %q already exists", apperrors.ErrDuplicate, product.Title)
		}
		return fmt.Errorf("failed to save product %s: %w", product.ProductID, err)
	}
	return nil
}

// FindProductByID retrieves a product with its variant terms and fees.
func (r *PgxProductRepository) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_id = $1;`
	product, err := scanProduct(r.Pool.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID %s: %w", productID, err)
	}
	if err := r.attachFees(ctx, map[string]*domain.Product{product.ProductID: product}); err != nil {
		return nil, err
	}
	return product, nil
}

// FindProductBySymbol retrieves a variable product by its ticker symbol.
func (r *PgxProductRepository) FindProductBySymbol(ctx context.Context, symbol string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE symbol = $1;`
	product, err := scanProduct(r.Pool.QueryRow(ctx, query, symbol))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product by symbol %s: %w", symbol, err)
	}
	if err := r.attachFees(ctx, map[string]*domain.Product{product.ProductID: product}); err != nil {
		return nil, err
	}
	return product, nil
}

// ListProducts retrieves a paginated list of products with optional filters.
func (r *PgxProductRepository) ListProducts(ctx context.Context, params dto.ListProductsParams) ([]domain.Product, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1::text IS NULL OR category = $1)
		  AND ($2::text IS NULL OR market = $2)
		ORDER BY title
		LIMIT $3 OFFSET $4;
	`
	rows, err := r.Pool.Query(ctx, query, params.Category, params.Market, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	scanned := []*domain.Product{}
	byID := make(map[string]*domain.Product)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		scanned = append(scanned, product)
		byID[product.ProductID] = product
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}

	if err := r.attachFees(ctx, byID); err != nil {
		return nil, err
	}
	products := make([]domain.Product, len(scanned))
	for i, product := range scanned {
		products[i] = *product
	}
	return products, nil
}

// UpdateProduct updates a product's mutable details. Category, currency and
// variant terms are fixed at creation.
func (r *PgxProductRepository) UpdateProduct(ctx context.Context, product domain.Product) error {
	query := `
		UPDATE products
		SET title = $2, description = $3, risk_level = $4, is_active = $5, last_updated_at = $6, last_updated_by = $7
		WHERE product_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		product.ProductID,
		product.Title,
		product.Description,
		product.RiskLevel,
		product.IsActive,
		product.LastUpdatedAt,
		product.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: product titled %q already exists", apperrors.ErrDuplicate, product.Title)
		}
		return fmt.Errorf("failed to update product %s: %w", product.ProductID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateProduct marks a product as inactive.
func (r *PgxProductRepository) DeactivateProduct(ctx context.Context, productID string, userID string, now time.Time) error {
	query := `
		UPDATE products
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE product_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, productID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate product %s: %w", productID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SaveFee attaches a transaction fee to a product.
func (r *PgxProductRepository) SaveFee(ctx context.Context, productID string, fee domain.TransactionFee) error {
	query := `
		INSERT INTO transaction_fees (fee_id, product_id, title, description, on_purchase, on_sale, vatable, type, value, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		fee.FeeID,
		productID,
		fee.Title,
		fee.Description,
		fee.OnPurchase,
		fee.OnSale,
		fee.VATable,
		fee.Type,
		fee.Value,
		fee.CreatedAt,
		fee.CreatedBy,
		fee.LastUpdatedAt,
		fee.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save fee %s for product %s: %w", fee.FeeID, productID, err)
	}
	return nil
}

func scanPricePoint(row pgx.Row) (*domain.PricePoint, error) {
	var point domain.PricePoint
	if err := row.Scan(&point.ProductID, &point.Date, &point.Value); err != nil {
		return nil, err
	}
	return &point, nil
}

// FindLatestPrice retrieves the most recent price observation for a product.
func (r *PgxProductRepository) FindLatestPrice(ctx context.Context, productID string) (*domain.PricePoint, error) {
	query := `
		SELECT product_id, date, value
		FROM price_points
		WHERE product_id = $1
		ORDER BY date DESC
		LIMIT 1;
	`
	point, err := scanPricePoint(r.Pool.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find latest price for product %s: %w", productID, err)
	}
	return point, nil
}

// FindPriceAsOf retrieves the latest price observation on or before a date.
func (r *PgxProductRepository) FindPriceAsOf(ctx context.Context, productID string, asOf time.Time) (*domain.PricePoint, error) {
	query := `
		SELECT product_id, date, value
		FROM price_points
		WHERE product_id = $1 AND date <= $2
		ORDER BY date DESC
		LIMIT 1;
	`
	point, err := scanPricePoint(r.Pool.QueryRow(ctx, query, productID, asOf))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find price for product %s as of %s: %w", productID, asOf.Format(time.DateOnly), err)
	}
	return point, nil
}

// ListPrices retrieves a product's price observations within a date range.
func (r *PgxProductRepository) ListPrices(ctx context.Context, productID string, from time.Time, to time.Time) ([]domain.PricePoint, error) {
	query := `
		SELECT product_id, date, value
		FROM price_points
		WHERE product_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date;
	`
	rows, err := r.Pool.Query(ctx, query, productID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices for product %s: %w", productID, err)
	}
	defer rows.Close()

	points := []domain.PricePoint{}
	for rows.Next() {
		point, err := scanPricePoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		points = append(points, *point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price rows: %w", err)
	}
	return points, nil
}

// SavePricePoint persists one price observation. Re-recording the same
// (product, date) replaces the value.
func (r *PgxProductRepository) SavePricePoint(ctx context.Context, point domain.PricePoint) error {
	query := `
		INSERT INTO price_points (product_id, date, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id, date) DO UPDATE SET value = EXCLUDED.value;
	`
	if _, err := r.Pool.Exec(ctx, query, point.ProductID, point.Date, point.Value); err != nil {
		return fmt.Errorf("failed to save price for product %s: %w", point.ProductID, err)
	}
	return nil
}
