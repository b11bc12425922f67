package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the single live staging area for a user's intended
// purchases. At most one cart exists per user; it is created lazily
// and consumed by checkout.
type Cart struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"-" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CartItem is one (cart, product) line. UnitPrice is snapshotted from
// the product at the moment the item is first added and never
// refreshed afterwards, so catalogue price changes do not leak into
// existing carts.
type CartItem struct {
	ID        uuid.UUID       `json:"-" db:"id"`
	CartID    uuid.UUID       `json:"-" db:"cart_id"`
	ProductID uuid.UUID       `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
}

// Subtotal is quantity x snapshot unit price.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartItemView is a cart line enriched with product details for API
// responses.
type CartItemView struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	ShopID      uuid.UUID       `json:"shopId"`
	ShopName    string          `json:"shopName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// CartView is the full cart representation returned by cart endpoints.
type CartView struct {
	ID    uuid.UUID       `json:"id"`
	Items []CartItemView  `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// CheckoutLine is a cart line joined with its product's owning shop,
// as read inside the checkout transaction. The decomposition engine
// groups these by ShopID.
type CheckoutLine struct {
	ProductID uuid.UUID
	ShopID    uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal is quantity x snapshot unit price.
func (l CheckoutLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// AddCartItemRequest is the payload for POST /api/cart/items.
type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// RemoveCartItemRequest is the optional payload for
// DELETE /api/cart/items/{product_id}. A nil Quantity removes the
// whole line.
type RemoveCartItemRequest struct {
	Quantity *int `json:"quantity,omitempty"`
}
