package repository

import (
	"context"
	"fmt"

	"marketplace/internal/model"
	"marketplace/internal/status"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, user_id, contact_id, status, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`

	_, err := tx.Exec(ctx, query, order.ID, order.UserID, order.ContactID, order.Status, order.TotalAmount)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created")

	return nil
}

// CreateShopOrder inserts a new shop order within the provided transaction.
func (r *orderRepository) CreateShopOrder(ctx context.Context, tx pgx.Tx, shopOrder *model.ShopOrder) error {
	query := `
		INSERT INTO shop_orders (id, order_id, shop_id, status, total_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`

	_, err := tx.Exec(ctx, query, shopOrder.ID, shopOrder.OrderID, shopOrder.ShopID, shopOrder.Status, shopOrder.TotalAmount)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", shopOrder.OrderID.String()).
			Str("shop_id", shopOrder.ShopID.String()).
			Msg("failed to create shop order")
		return fmt.Errorf("failed to create shop order: %w", err)
	}

	return nil
}

// CreateShopOrderItems inserts multiple line items within the provided
// transaction using a single batch round trip.
func (r *orderRepository) CreateShopOrderItems(ctx context.Context, tx pgx.Tx, items []model.ShopOrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO shop_order_items (id, shop_order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.ShopOrderID, item.ProductID, item.Quantity, item.UnitPrice)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("shop_order_id", items[i].ShopOrderID.String()).
				Str("product_id", items[i].ProductID.String()).
				Msg("failed to create shop order item")
			return fmt.Errorf("failed to create shop order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("shop order items created")

	return nil
}

// RecalculateTotals recomputes shop order totals from their line items
// and the order total from the shop order totals. Totals are always
// derived, never trusted stale.
func (r *orderRepository) RecalculateTotals(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	shopOrderQuery := `
		UPDATE shop_orders so
		SET total_amount = COALESCE((
			SELECT SUM(soi.quantity * soi.unit_price)
			FROM shop_order_items soi
			WHERE soi.shop_order_id = so.id
		), 0), updated_at = NOW()
		WHERE so.order_id = $1
	`

	if _, err := tx.Exec(ctx, shopOrderQuery, orderID); err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to recalculate shop order totals")
		return fmt.Errorf("failed to recalculate shop order totals: %w", err)
	}

	orderQuery := `
		UPDATE orders o
		SET total_amount = COALESCE((
			SELECT SUM(so.total_amount)
			FROM shop_orders so
			WHERE so.order_id = o.id
		), 0), updated_at = NOW()
		WHERE o.id = $1
	`

	if _, err := tx.Exec(ctx, orderQuery, orderID); err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to recalculate order total")
		return fmt.Errorf("failed to recalculate order total: %w", err)
	}

	return nil
}

const orderColumns = `id, user_id, contact_id, status, total_amount, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.UserID, &o.ContactID, &o.Status, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByID retrieves an order by its ID.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return order, nil
}

// GetView retrieves an order along with its shop orders and line items.
func (r *orderRepository) GetView(ctx context.Context, id uuid.UUID) (*model.OrderView, error) {
	order, err := r.GetByID(ctx, id)
	if err != nil || order == nil {
		return nil, err
	}

	shopOrdersQuery := `
		SELECT id, order_id, shop_id, status, total_amount, created_at, updated_at
		FROM shop_orders
		WHERE order_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, shopOrdersQuery, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query shop orders")
		return nil, fmt.Errorf("failed to query shop orders: %w", err)
	}
	defer rows.Close()

	view := &model.OrderView{Order: *order}
	for rows.Next() {
		var so model.ShopOrder
		err := rows.Scan(&so.ID, &so.OrderID, &so.ShopID, &so.Status, &so.TotalAmount, &so.CreatedAt, &so.UpdatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan shop order row")
			return nil, fmt.Errorf("failed to scan shop order: %w", err)
		}
		view.ShopOrders = append(view.ShopOrders, model.ShopOrderView{ShopOrder: so})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shop orders: %w", err)
	}

	for i := range view.ShopOrders {
		items, err := r.listShopOrderItems(ctx, view.ShopOrders[i].ID)
		if err != nil {
			return nil, err
		}
		view.ShopOrders[i].Items = items
	}

	return view, nil
}

func (r *orderRepository) listShopOrderItems(ctx context.Context, shopOrderID uuid.UUID) ([]model.ShopOrderItem, error) {
	query := `
		SELECT id, shop_order_id, product_id, quantity, unit_price
		FROM shop_order_items
		WHERE shop_order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, shopOrderID)
	if err != nil {
		r.logger.Error().Err(err).Str("shop_order_id", shopOrderID.String()).Msg("failed to query shop order items")
		return nil, fmt.Errorf("failed to query shop order items: %w", err)
	}
	defer rows.Close()

	var items []model.ShopOrderItem
	for rows.Next() {
		var item model.ShopOrderItem
		err := rows.Scan(&item.ID, &item.ShopOrderID, &item.ProductID, &item.Quantity, &item.UnitPrice)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan shop order item row")
			return nil, fmt.Errorf("failed to scan shop order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shop order items: %w", err)
	}

	return items, nil
}

// ListByUser returns the user's orders, newest first. A nil userID
// lists every order (staff view).
func (r *orderRepository) ListByUser(ctx context.Context, userID *uuid.UUID) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}

	if userID != nil {
		query += ` WHERE user_id = $1`
		args = append(args, *userID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// CancelOrder sets the order to cancelled and force-cancels all of its
// shop orders. The cascade deliberately bypasses the per-entity
// transition table: a cancelled parent invalidates all children. Both
// updates run in one transaction.
func (r *orderRepository) CancelOrder(ctx context.Context, orderID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin cancel transaction")
		return fmt.Errorf("failed to begin cancel transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`,
		orderID, status.Cancelled)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to cancel order")
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE shop_orders SET status = $2, updated_at = NOW() WHERE order_id = $1`,
		orderID, status.Cancelled)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to cancel shop orders")
		return fmt.Errorf("failed to cancel shop orders: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit cancel")
		return fmt.Errorf("failed to commit cancel: %w", err)
	}

	r.logger.Info().Str("order_id", orderID.String()).Msg("order cancelled with all shop orders")
	return nil
}

// GetShopOrder retrieves a shop order by its ID.
func (r *orderRepository) GetShopOrder(ctx context.Context, id uuid.UUID) (*model.ShopOrder, error) {
	query := `
		SELECT id, order_id, shop_id, status, total_amount, created_at, updated_at
		FROM shop_orders
		WHERE id = $1
	`

	var so model.ShopOrder
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&so.ID, &so.OrderID, &so.ShopID, &so.Status, &so.TotalAmount, &so.CreatedAt, &so.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("shop_order_id", id.String()).Msg("shop order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("shop_order_id", id.String()).Msg("failed to query shop order")
		return nil, fmt.Errorf("failed to query shop order: %w", err)
	}

	return &so, nil
}

// ListShopOrdersBySupplier returns sub-orders for shops owned by the
// supplier. A nil supplierID lists every sub-order (staff view).
func (r *orderRepository) ListShopOrdersBySupplier(ctx context.Context, supplierID *uuid.UUID) ([]model.ShopOrder, error) {
	query := `
		SELECT so.id, so.order_id, so.shop_id, so.status, so.total_amount, so.created_at, so.updated_at
		FROM shop_orders so
	`
	args := []any{}

	if supplierID != nil {
		query += ` JOIN shops s ON s.id = so.shop_id WHERE s.supplier_id = $1`
		args = append(args, *supplierID)
	}
	query += ` ORDER BY so.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query shop orders")
		return nil, fmt.Errorf("failed to query shop orders: %w", err)
	}
	defer rows.Close()

	var shopOrders []model.ShopOrder
	for rows.Next() {
		var so model.ShopOrder
		err := rows.Scan(&so.ID, &so.OrderID, &so.ShopID, &so.Status, &so.TotalAmount, &so.CreatedAt, &so.UpdatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan shop order row")
			return nil, fmt.Errorf("failed to scan shop order: %w", err)
		}
		shopOrders = append(shopOrders, so)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shop orders: %w", err)
	}

	return shopOrders, nil
}

// UpdateShopOrderStatus persists a shop order status change. The
// legality of the transition is checked by the caller against the
// state machine before this is invoked.
func (r *orderRepository) UpdateShopOrderStatus(ctx context.Context, id uuid.UUID, newStatus status.Status) error {
	query := `UPDATE shop_orders SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, newStatus)
	if err != nil {
		r.logger.Error().Err(err).Str("shop_order_id", id.String()).Msg("failed to update shop order status")
		return fmt.Errorf("failed to update shop order status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrShopOrderNotFound
	}

	r.logger.Info().
		Str("shop_order_id", id.String()).
		Str("status", newStatus.String()).
		Msg("shop order status updated")

	return nil
}
