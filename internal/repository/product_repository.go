package repository

import (
	"context"
	"fmt"

	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

const productColumns = `id, external_id, shop_id, category_id, model, name, description,
	characteristics, price, price_rrc, quantity, created_at, updated_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.ExternalID,
		&p.ShopID,
		&p.CategoryID,
		&p.Model,
		&p.Name,
		&p.Description,
		&p.Characteristics,
		&p.Price,
		&p.PriceRRC,
		&p.Quantity,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List retrieves products matching the filter with pagination support.
func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}

	if filter.ShopID != nil {
		args = append(args, *filter.ShopID)
		query += fmt.Sprintf(" AND shop_id = $%d", len(args))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY name LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// ListByShop retrieves every product sold by the shop.
func (r *productRepository) ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE shop_id = $1 ORDER BY external_id`

	rows, err := r.pool.Query(ctx, query, shopID)
	if err != nil {
		r.logger.Error().Err(err).Str("shop_id", shopID.String()).Msg("failed to query shop products")
		return nil, fmt.Errorf("failed to query shop products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

// DecrementStock atomically decreases a product's stock quantity within
// the provided transaction. The decrement is a single conditional
// update so concurrent checkouts of different carts serialize on the
// product row instead of losing updates.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, qty int) error {
	query := `
		UPDATE products
		SET quantity = quantity - $2, updated_at = NOW()
		WHERE id = $1 AND quantity >= $2
	`

	tag, err := tx.Exec(ctx, query, productID, qty)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", productID.String()).
			Int("quantity", qty).
			Msg("failed to decrement stock")
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("product_id", productID.String()).
			Int("quantity", qty).
			Msg("stock decrement rejected")
		return model.ErrInsufficientStock
	}

	return nil
}

// Upsert inserts or fully overwrites a product keyed on its external
// ID, as feed re-imports do.
func (r *productRepository) Upsert(ctx context.Context, product *model.Product) (bool, error) {
	query := `
		INSERT INTO products (id, external_id, shop_id, category_id, model, name, description,
			characteristics, price, price_rrc, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (external_id) DO UPDATE SET
			shop_id = EXCLUDED.shop_id,
			category_id = EXCLUDED.category_id,
			model = EXCLUDED.model,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			characteristics = EXCLUDED.characteristics,
			price = EXCLUDED.price,
			price_rrc = EXCLUDED.price_rrc,
			quantity = EXCLUDED.quantity,
			updated_at = NOW()
		RETURNING (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.pool.QueryRow(ctx, query,
		product.ID,
		product.ExternalID,
		product.ShopID,
		product.CategoryID,
		product.Model,
		product.Name,
		product.Description,
		product.Characteristics,
		product.Price,
		product.PriceRRC,
		product.Quantity,
	).Scan(&inserted)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int("external_id", product.ExternalID).
			Msg("failed to upsert product")
		return false, fmt.Errorf("failed to upsert product: %w", err)
	}

	r.logger.Debug().
		Int("external_id", product.ExternalID).
		Bool("created", inserted).
		Msg("product upserted")

	return inserted, nil
}
