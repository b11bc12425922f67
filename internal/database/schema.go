package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the full DDL for the marketplace database. Uniqueness
// invariants live here: one cart per user, one cart line per (cart,
// product), one shop order per (order, shop), one line per
// (shop_order, product). The contact foreign key on orders is
// RESTRICT, so a contact referenced by any order cannot be deleted.
const Schema = `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		token VARCHAR(128) NOT NULL UNIQUE,
		is_staff BOOLEAN NOT NULL DEFAULT FALSE,
		is_supplier BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS delivery_contacts (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		city VARCHAR(255) NOT NULL,
		street VARCHAR(255) NOT NULL,
		house VARCHAR(50) NOT NULL,
		apartment VARCHAR(50) NOT NULL DEFAULT '',
		phone VARCHAR(50) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS shops (
		id UUID PRIMARY KEY,
		supplier_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (supplier_id, name)
	);

	CREATE TABLE IF NOT EXISTS categories (
		id UUID PRIMARY KEY,
		external_id INTEGER NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL
	);

	CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		external_id INTEGER NOT NULL UNIQUE,
		shop_id UUID NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
		category_id UUID NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
		model VARCHAR(255) NOT NULL DEFAULT '',
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		characteristics JSONB,
		price NUMERIC(10, 2) NOT NULL,
		price_rrc NUMERIC(10, 2) NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS carts (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS cart_items (
		id UUID PRIMARY KEY,
		cart_id UUID NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(10, 2) NOT NULL,
		UNIQUE (cart_id, product_id)
	);

	CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		contact_id UUID NOT NULL REFERENCES delivery_contacts(id) ON DELETE RESTRICT,
		status VARCHAR(20) NOT NULL DEFAULT 'new',
		total_amount NUMERIC(10, 2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS shop_orders (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		shop_id UUID NOT NULL REFERENCES shops(id),
		status VARCHAR(20) NOT NULL DEFAULT 'new',
		total_amount NUMERIC(10, 2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (order_id, shop_id)
	);

	CREATE TABLE IF NOT EXISTS shop_order_items (
		id UUID PRIMARY KEY,
		shop_order_id UUID NOT NULL REFERENCES shop_orders(id) ON DELETE CASCADE,
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(10, 2) NOT NULL,
		UNIQUE (shop_order_id, product_id)
	);
`

// Migrate applies the schema to the database.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
