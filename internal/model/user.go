package model

import (
	"time"

	"github.com/google/uuid"
)

// User is the authenticated actor resolved by the token middleware.
// Role flags are passed explicitly into every mutating service call so
// authorization never depends on ambient state.
type User struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	IsStaff    bool      `json:"isStaff" db:"is_staff"`
	IsSupplier bool      `json:"isSupplier" db:"is_supplier"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// CanManageShop reports whether the user may mutate sub-orders of the
// given shop: either staff, or the supplier who owns the shop.
func (u User) CanManageShop(shop *Shop) bool {
	if u.IsStaff {
		return true
	}
	return u.IsSupplier && shop != nil && shop.SupplierID == u.ID
}

// DeliveryContact is an address/phone record owned by a user. A
// contact referenced by any order is protected from deletion.
type DeliveryContact struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"-" db:"user_id"`
	City      string    `json:"city" db:"city"`
	Street    string    `json:"street" db:"street"`
	House     string    `json:"house" db:"house"`
	Apartment string    `json:"apartment,omitempty" db:"apartment"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ContactRequest is the payload for creating a delivery contact.
type ContactRequest struct {
	City      string `json:"city"`
	Street    string `json:"street"`
	House     string `json:"house"`
	Apartment string `json:"apartment,omitempty"`
	Phone     string `json:"phone"`
}
