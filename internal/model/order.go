package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"marketplace/internal/status"
)

// Order is the aggregate root for a single checkout event. It spans
// every shop represented in the cart at confirmation time; per-shop
// progress lives on the child ShopOrders. Orders are never deleted,
// cancellation is a status.
type Order struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"-" db:"user_id"`
	ContactID   uuid.UUID       `json:"contactId" db:"contact_id"`
	Status      status.Status   `json:"status" db:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount" db:"total_amount"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// ShopOrder is the per-shop slice of an Order. Exactly one exists per
// (order, shop) pair, each with its own independently progressing
// status and its own total.
type ShopOrder struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"orderId" db:"order_id"`
	ShopID      uuid.UUID       `json:"shopId" db:"shop_id"`
	Status      status.Status   `json:"status" db:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount" db:"total_amount"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// ShopOrderItem is an immutable line item: quantity and unit price are
// copied verbatim from the cart at checkout and must never be touched
// by later catalogue changes.
type ShopOrderItem struct {
	ID          uuid.UUID       `json:"-" db:"id"`
	ShopOrderID uuid.UUID       `json:"-" db:"shop_order_id"`
	ProductID   uuid.UUID       `json:"productId" db:"product_id"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
}

// Subtotal is quantity x snapshot unit price.
func (i ShopOrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ConfirmOrderRequest is the payload for POST /api/orders/confirm.
type ConfirmOrderRequest struct {
	CartID    uuid.UUID `json:"cartId"`
	ContactID uuid.UUID `json:"contactId"`
}

// ProcessShopOrderRequest is the payload for
// PATCH /api/shop-orders/{id}/process.
type ProcessShopOrderRequest struct {
	Status string `json:"status"`
}

// ShopOrderView is a sub-order with its line items.
type ShopOrderView struct {
	ShopOrder
	Items []ShopOrderItem `json:"items"`
}

// OrderView is the full aggregate returned by order endpoints.
type OrderView struct {
	Order
	ShopOrders []ShopOrderView `json:"shopOrders"`
}
