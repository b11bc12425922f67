package integration

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/database"
	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, connects a pool, and
// applies the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := database.NewPoolFromDSN(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// seedUser inserts a user and returns it. token must be unique per
// test database.
func seedUser(t *testing.T, pool *pgxpool.Pool, email, token string, isStaff, isSupplier bool) model.User {
	t.Helper()

	user := model.User{ID: uuid.New(), Email: email, IsStaff: isStaff, IsSupplier: isSupplier}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, email, token, is_staff, is_supplier) VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Email, token, user.IsStaff, user.IsSupplier)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

// seedContact inserts a delivery contact for the user.
func seedContact(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO delivery_contacts (id, user_id, city, street, house, phone)
		 VALUES ($1, $2, 'Springfield', 'Evergreen Terrace', '742', '+1-555-0142')`,
		id, userID)
	if err != nil {
		t.Fatalf("failed to seed contact: %v", err)
	}
	return id
}

// seedShop inserts a shop owned by the supplier.
func seedShop(t *testing.T, pool *pgxpool.Pool, supplierID uuid.UUID, name string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO shops (id, supplier_id, name) VALUES ($1, $2, $3)`,
		id, supplierID, name)
	if err != nil {
		t.Fatalf("failed to seed shop: %v", err)
	}
	return id
}

// seedCategory inserts a category keyed on an external ID.
func seedCategory(t *testing.T, pool *pgxpool.Pool, externalID int, name string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO categories (id, external_id, name) VALUES ($1, $2, $3)`,
		id, externalID, name)
	if err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	return id
}

// seedProduct inserts a product with the given price and stock.
func seedProduct(t *testing.T, pool *pgxpool.Pool, shopID, categoryID uuid.UUID, externalID int, name, price string, quantity int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO products (id, external_id, shop_id, category_id, name, price, price_rrc, quantity)
		 VALUES ($1, $2, $3, $4, $5, $6, $6, $7)`,
		id, externalID, shopID, categoryID, name, decimal.RequireFromString(price), quantity)
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return id
}

// productQuantity reads the current stock level.
func productQuantity(t *testing.T, pool *pgxpool.Pool, productID uuid.UUID) int {
	t.Helper()

	var qty int
	err := pool.QueryRow(context.Background(),
		`SELECT quantity FROM products WHERE id = $1`, productID).Scan(&qty)
	if err != nil {
		t.Fatalf("failed to read product quantity: %v", err)
	}
	return qty
}

// cartItemCount reads how many lines the cart holds.
func cartItemCount(t *testing.T, pool *pgxpool.Pool, cartID uuid.UUID) int {
	t.Helper()

	var n int
	err := pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM cart_items WHERE cart_id = $1`, cartID).Scan(&n)
	if err != nil {
		t.Fatalf("failed to count cart items: %v", err)
	}
	return n
}
