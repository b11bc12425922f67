package repository

import (
	"context"

	"marketplace/internal/model"
	"marketplace/internal/status"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserRepository resolves authenticated users from opaque API tokens.
type UserRepository interface {
	// GetByToken returns the user owning the token, or nil when the
	// token is unknown.
	GetByToken(ctx context.Context, token string) (*model.User, error)
}

// ContactRepository manages delivery contacts. Contacts referenced by
// an order are protected from deletion by a RESTRICT foreign key.
type ContactRepository interface {
	// GetByID returns the contact, scoped to its owner. Returns nil
	// when no contact matches both id and owner.
	GetByID(ctx context.Context, id, userID uuid.UUID) (*model.DeliveryContact, error)

	// ListByUser returns all contacts owned by the user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.DeliveryContact, error)

	// Create inserts a new contact.
	Create(ctx context.Context, contact *model.DeliveryContact) error

	// Delete removes a contact owned by the user. Returns
	// model.ErrContactProtected when the contact is referenced by any
	// order, model.ErrContactNotFound when nothing matches.
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

// ShopRepository manages shops and the categories shared between them.
type ShopRepository interface {
	// GetByID returns the shop, or nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Shop, error)

	// GetOrCreate returns the supplier's shop with the given name,
	// creating it on first use.
	GetOrCreate(ctx context.Context, supplierID uuid.UUID, name string) (*model.Shop, error)

	// UpsertCategory inserts or updates a category keyed on its
	// external ID and returns the stored row.
	UpsertCategory(ctx context.Context, externalID int, name string) (*model.Category, error)

	// GetCategoryByExternalID returns the category, or nil when not found.
	GetCategoryByExternalID(ctx context.Context, externalID int) (*model.Category, error)

	// ListCategories returns all categories referenced by the shop's
	// products.
	ListCategories(ctx context.Context, shopID uuid.UUID) ([]model.Category, error)
}

// ProductRepository is the catalogue store: product reads, stock
// decrement, and feed-import upserts.
type ProductRepository interface {
	// List retrieves products matching the filter with pagination.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// ListByShop retrieves every product sold by the shop.
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.Product, error)

	// GetByID retrieves a single product, or nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// DecrementStock atomically decreases the product's quantity
	// within the provided transaction. The update is conditional on
	// sufficient stock; model.ErrInsufficientStock is returned when
	// the condition fails and no row is changed.
	DecrementStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, qty int) error

	// Upsert inserts or fully overwrites a product keyed on its
	// external ID. Reports whether a new row was created.
	Upsert(ctx context.Context, product *model.Product) (bool, error)
}

// CartRepository manages the single live cart per user and its items.
type CartRepository interface {
	// GetOrCreate returns the user's cart, creating an empty one on
	// first call.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// GetForUpdate locks the cart row for the duration of the
	// transaction. Returns nil when no cart matches both id and owner.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id, userID uuid.UUID) (*model.Cart, error)

	// UpsertItem adds a product to the cart or, when the (cart,
	// product) pair already exists, increments its quantity in place.
	// The stored unit price is never refreshed on increment.
	UpsertItem(ctx context.Context, cartID, productID uuid.UUID, qty int, unitPrice decimal.Decimal) error

	// GetItem returns the cart line for the product, or nil when the
	// product is not in the cart.
	GetItem(ctx context.Context, cartID, productID uuid.UUID) (*model.CartItem, error)

	// DecrementItem decreases the line quantity in place.
	DecrementItem(ctx context.Context, cartID, productID uuid.UUID, qty int) error

	// DeleteItem removes the line entirely.
	DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error

	// ListItemViews returns the cart's lines enriched with product and
	// shop details.
	ListItemViews(ctx context.Context, cartID uuid.UUID) ([]model.CartItemView, error)

	// ListCheckoutLines returns the cart's lines joined with each
	// product's owning shop, within the checkout transaction.
	ListCheckoutLines(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) ([]model.CheckoutLine, error)

	// Clear deletes all items from the cart within the transaction.
	Clear(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error
}

// OrderRepository manages orders, shop orders, and their line items.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateShopOrder inserts a new shop order within the provided
	// transaction.
	CreateShopOrder(ctx context.Context, tx pgx.Tx, shopOrder *model.ShopOrder) error

	// CreateShopOrderItems inserts line items in bulk within the
	// provided transaction.
	CreateShopOrderItems(ctx context.Context, tx pgx.Tx, items []model.ShopOrderItem) error

	// RecalculateTotals recomputes every shop order total from its
	// line items and the order total from the shop order totals.
	RecalculateTotals(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error

	// GetByID retrieves an order, or nil when not found.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetView retrieves an order with its shop orders and items, or
	// nil when not found.
	GetView(ctx context.Context, id uuid.UUID) (*model.OrderView, error)

	// ListByUser returns the user's orders, newest first. A nil
	// userID lists every order.
	ListByUser(ctx context.Context, userID *uuid.UUID) ([]model.Order, error)

	// CancelOrder sets the order to cancelled and force-cancels all of
	// its shop orders in one atomic statement pair.
	CancelOrder(ctx context.Context, orderID uuid.UUID) error

	// GetShopOrder retrieves a shop order, or nil when not found.
	GetShopOrder(ctx context.Context, id uuid.UUID) (*model.ShopOrder, error)

	// ListShopOrdersBySupplier returns sub-orders for shops owned by
	// the supplier, newest first. A nil supplierID lists every
	// sub-order.
	ListShopOrdersBySupplier(ctx context.Context, supplierID *uuid.UUID) ([]model.ShopOrder, error)

	// UpdateShopOrderStatus persists a shop order status change.
	UpdateShopOrderStatus(ctx context.Context, id uuid.UUID, newStatus status.Status) error
}
