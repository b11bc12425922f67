package repository

import (
	"context"
	"fmt"

	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// GetOrCreate returns the user's cart, creating an empty one on first
// call. The unique index on user_id makes concurrent first calls
// converge on a single row.
func (r *cartRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	query := `
		INSERT INTO carts (id, user_id, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET updated_at = carts.updated_at
		RETURNING id, user_id, created_at, updated_at
	`

	var cart model.Cart
	err := r.pool.QueryRow(ctx, query, uuid.New(), userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get or create cart")
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}

	return &cart, nil
}

// GetForUpdate locks the cart row for the duration of the transaction
// so concurrent checkouts of the same cart serialize.
func (r *cartRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id, userID uuid.UUID) (*model.Cart, error) {
	query := `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`

	var cart model.Cart
	err := tx.QueryRow(ctx, query, id, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("cart_id", id.String()).Msg("cart not found for update")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("cart_id", id.String()).Msg("failed to lock cart")
		return nil, fmt.Errorf("failed to lock cart: %w", err)
	}

	return &cart, nil
}

// UpsertItem adds a product to the cart or increments the existing
// line. The conflict target is the (cart_id, product_id) unique pair,
// so interleaved adds cannot produce duplicate lines. The stored unit
// price stays at the first call's snapshot.
func (r *cartRepository) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, qty int, unitPrice decimal.Decimal) error {
	query := `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET
			quantity = cart_items.quantity + EXCLUDED.quantity
	`

	_, err := r.pool.Exec(ctx, query, uuid.New(), cartID, productID, qty, unitPrice)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("cart_id", cartID.String()).
			Str("product_id", productID.String()).
			Msg("failed to upsert cart item")
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return nil
}

// GetItem returns the cart line for the product, or nil when the
// product is not in the cart.
func (r *cartRepository) GetItem(ctx context.Context, cartID, productID uuid.UUID) (*model.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, quantity, unit_price
		FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
	`

	var item model.CartItem
	err := r.pool.QueryRow(ctx, query, cartID, productID).Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
		&item.UnitPrice,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query cart item")
		return nil, fmt.Errorf("failed to query cart item: %w", err)
	}

	return &item, nil
}

// DecrementItem decreases the line quantity in place.
func (r *cartRepository) DecrementItem(ctx context.Context, cartID, productID uuid.UUID, qty int) error {
	query := `
		UPDATE cart_items
		SET quantity = quantity - $3
		WHERE cart_id = $1 AND product_id = $2 AND quantity > $3
	`

	tag, err := r.pool.Exec(ctx, query, cartID, productID, qty)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to decrement cart item")
		return fmt.Errorf("failed to decrement cart item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}

	return nil
}

// DeleteItem removes the line entirely.
func (r *cartRepository) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`

	tag, err := r.pool.Exec(ctx, query, cartID, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to delete cart item")
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}

	return nil
}

// ListItemViews returns the cart's lines enriched with product and
// shop details for API responses.
func (r *cartRepository) ListItemViews(ctx context.Context, cartID uuid.UUID) ([]model.CartItemView, error) {
	query := `
		SELECT ci.product_id, p.name, p.shop_id, s.name, ci.quantity, ci.unit_price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		JOIN shops s ON s.id = p.shop_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id
	`

	rows, err := r.pool.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItemView
	for rows.Next() {
		var v model.CartItemView
		err := rows.Scan(&v.ProductID, &v.ProductName, &v.ShopID, &v.ShopName, &v.Quantity, &v.UnitPrice)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		v.TotalPrice = v.UnitPrice.Mul(decimal.NewFromInt(int64(v.Quantity)))
		items = append(items, v)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// ListCheckoutLines returns the cart's lines joined with each
// product's owning shop, read inside the checkout transaction so the
// snapshot is consistent with the cart lock.
func (r *cartRepository) ListCheckoutLines(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) ([]model.CheckoutLine, error) {
	query := `
		SELECT ci.product_id, p.shop_id, ci.quantity, ci.unit_price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id
	`

	rows, err := tx.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query checkout lines")
		return nil, fmt.Errorf("failed to query checkout lines: %w", err)
	}
	defer rows.Close()

	var lines []model.CheckoutLine
	for rows.Next() {
		var l model.CheckoutLine
		if err := rows.Scan(&l.ProductID, &l.ShopID, &l.Quantity, &l.UnitPrice); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan checkout line")
			return nil, fmt.Errorf("failed to scan checkout line: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating checkout lines")
		return nil, fmt.Errorf("error iterating checkout lines: %w", err)
	}

	return lines, nil
}

// Clear deletes all items from the cart within the transaction.
func (r *cartRepository) Clear(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	r.logger.Debug().Str("cart_id", cartID.String()).Msg("cart cleared")
	return nil
}
