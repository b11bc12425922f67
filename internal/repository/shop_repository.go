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

// shopRepository implements the ShopRepository interface using PostgreSQL.
type shopRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewShopRepository creates a new PostgreSQL-backed shop repository.
func NewShopRepository(pool *pgxpool.Pool, logger zerolog.Logger) ShopRepository {
	return &shopRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "shop").Logger(),
	}
}

// GetByID retrieves a shop by its ID, or nil when not found.
func (r *shopRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	query := `
		SELECT id, supplier_id, name, description, is_active, created_at, updated_at
		FROM shops
		WHERE id = $1
	`

	var s model.Shop
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.SupplierID, &s.Name, &s.Description, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("shop_id", id.String()).Msg("shop not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("shop_id", id.String()).Msg("failed to query shop")
		return nil, fmt.Errorf("failed to query shop: %w", err)
	}

	return &s, nil
}

// GetOrCreate returns the supplier's shop with the given name, creating
// it on first import. The (supplier_id, name) unique pair makes
// concurrent imports converge on a single row.
func (r *shopRepository) GetOrCreate(ctx context.Context, supplierID uuid.UUID, name string) (*model.Shop, error) {
	query := `
		INSERT INTO shops (id, supplier_id, name, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $3, TRUE, NOW(), NOW())
		ON CONFLICT (supplier_id, name) DO UPDATE SET updated_at = NOW()
		RETURNING id, supplier_id, name, description, is_active, created_at, updated_at
	`

	var s model.Shop
	err := r.pool.QueryRow(ctx, query, uuid.New(), supplierID, name).Scan(
		&s.ID, &s.SupplierID, &s.Name, &s.Description, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("name", name).Msg("failed to get or create shop")
		return nil, fmt.Errorf("failed to get or create shop: %w", err)
	}

	return &s, nil
}

// UpsertCategory inserts or updates a category keyed on its external ID.
func (r *shopRepository) UpsertCategory(ctx context.Context, externalID int, name string) (*model.Category, error) {
	query := `
		INSERT INTO categories (id, external_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (external_id) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, external_id, name
	`

	var c model.Category
	err := r.pool.QueryRow(ctx, query, uuid.New(), externalID, name).Scan(&c.ID, &c.ExternalID, &c.Name)
	if err != nil {
		r.logger.Error().Err(err).Int("external_id", externalID).Msg("failed to upsert category")
		return nil, fmt.Errorf("failed to upsert category: %w", err)
	}

	return &c, nil
}

// GetCategoryByExternalID retrieves a category, or nil when not found.
func (r *shopRepository) GetCategoryByExternalID(ctx context.Context, externalID int) (*model.Category, error) {
	query := `SELECT id, external_id, name FROM categories WHERE external_id = $1`

	var c model.Category
	err := r.pool.QueryRow(ctx, query, externalID).Scan(&c.ID, &c.ExternalID, &c.Name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Int("external_id", externalID).Msg("failed to query category")
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &c, nil
}

// ListCategories returns the categories referenced by the shop's products.
func (r *shopRepository) ListCategories(ctx context.Context, shopID uuid.UUID) ([]model.Category, error) {
	query := `
		SELECT DISTINCT c.id, c.external_id, c.name
		FROM categories c
		JOIN products p ON p.category_id = c.id
		WHERE p.shop_id = $1
		ORDER BY c.external_id
	`

	rows, err := r.pool.Query(ctx, query, shopID)
	if err != nil {
		r.logger.Error().Err(err).Str("shop_id", shopID.String()).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.ExternalID, &c.Name); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan category row")
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}
