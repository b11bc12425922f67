package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shop represents a supplier's storefront. Products belong to exactly
// one shop, and every sub-order at checkout is scoped to one shop.
type Shop struct {
	ID          uuid.UUID `json:"id" db:"id"`
	SupplierID  uuid.UUID `json:"supplierId" db:"supplier_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Category groups products; keyed by the external ID carried in
// supplier feed files so re-imports are stable.
type Category struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ExternalID int       `json:"externalId" db:"external_id"`
	Name       string    `json:"name" db:"name"`
}

// Product represents a catalogue entry sold by a single shop.
// ExternalID is unique and stable across feed re-imports; Quantity is
// the current stock level and is only mutated by feed imports and
// order confirmation.
type Product struct {
	ID              uuid.UUID         `json:"id" db:"id"`
	ExternalID      int               `json:"externalId" db:"external_id"`
	ShopID          uuid.UUID         `json:"shopId" db:"shop_id"`
	CategoryID      uuid.UUID         `json:"categoryId" db:"category_id"`
	Model           string            `json:"model" db:"model"`
	Name            string            `json:"name" db:"name"`
	Description     string            `json:"description" db:"description"`
	Characteristics map[string]string `json:"characteristics,omitempty" db:"characteristics"`
	Price           decimal.Decimal   `json:"price" db:"price"`
	PriceRRC        decimal.Decimal   `json:"priceRrc" db:"price_rrc"`
	Quantity        int               `json:"quantity" db:"quantity"`
	CreatedAt       time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time         `json:"updatedAt" db:"updated_at"`
}

// InStock reports whether at least qty units are available.
func (p *Product) InStock(qty int) bool {
	return p.Quantity >= qty
}

// ProductFilter narrows catalogue listings.
type ProductFilter struct {
	ShopID     *uuid.UUID
	CategoryID *uuid.UUID
	Limit      int
	Offset     int
}
