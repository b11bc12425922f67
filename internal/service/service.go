package service

import (
	"context"

	"marketplace/internal/model"

	"github.com/google/uuid"
)

// ProductService defines read operations over the catalogue.
type ProductService interface {
	// List retrieves products matching the filter with pagination.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

// CartService maintains the single live cart per user.
type CartService interface {
	// GetCart returns the user's cart, creating an empty one on first
	// call.
	GetCart(ctx context.Context, actor model.User) (*model.CartView, error)

	// AddItem puts a product into the cart or increments the existing
	// line, snapshotting the unit price on first add.
	AddItem(ctx context.Context, actor model.User, req *model.AddCartItemRequest) (*model.CartView, error)

	// RemoveItem decrements a line by qty, or deletes it entirely when
	// qty is nil or covers the whole line.
	RemoveItem(ctx context.Context, actor model.User, productID uuid.UUID, qty *int) (*model.CartView, error)
}

// OrderService owns the checkout transaction and the post-creation
// status lifecycle of orders and shop orders.
type OrderService interface {
	// Confirm turns the actor's cart into one order plus one shop
	// order per distinct shop, decrements stock, and clears the cart,
	// all atomically.
	Confirm(ctx context.Context, actor model.User, req *model.ConfirmOrderRequest) (*model.OrderView, error)

	// List returns the actor's orders; staff see all orders.
	List(ctx context.Context, actor model.User) ([]model.Order, error)

	// GetByID returns the order aggregate, scoped to owner or staff.
	GetByID(ctx context.Context, actor model.User, id uuid.UUID) (*model.OrderView, error)

	// Cancel cancels the order and force-cancels all of its shop
	// orders. Owner or staff only.
	Cancel(ctx context.Context, actor model.User, id uuid.UUID) (*model.OrderView, error)

	// ListShopOrders returns sub-orders visible to the actor:
	// suppliers see their shops' sub-orders, staff see all.
	ListShopOrders(ctx context.Context, actor model.User) ([]model.ShopOrder, error)

	// ProcessShopOrder applies a status transition to a shop order on
	// behalf of the shop's supplier or staff.
	ProcessShopOrder(ctx context.Context, actor model.User, id uuid.UUID, rawStatus string) (*model.ShopOrder, error)
}

// ContactService manages delivery contacts for the actor.
type ContactService interface {
	// List returns the actor's contacts.
	List(ctx context.Context, actor model.User) ([]model.DeliveryContact, error)

	// Create adds a new contact owned by the actor.
	Create(ctx context.Context, actor model.User, req *model.ContactRequest) (*model.DeliveryContact, error)

	// Delete removes a contact unless an order references it.
	Delete(ctx context.Context, actor model.User, id uuid.UUID) error
}
