package router

import (
	"net/http"

	"marketplace/internal/handler"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"

	"github.com/rs/zerolog"
)

// New creates the HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	shopOrderHandler *handler.ShopOrderHandler,
	contactHandler *handler.ContactHandler,
	shopHandler *handler.ShopHandler,
	users repository.UserRepository,
	metrics *middleware.Metrics,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Catalogue
	mux.HandleFunc("GET /api/products", productHandler.List)
	mux.HandleFunc("GET /api/products/{id}", productHandler.GetByID)

	// Cart
	mux.HandleFunc("GET /api/cart", cartHandler.Get)
	mux.HandleFunc("POST /api/cart/items", cartHandler.AddItem)
	mux.HandleFunc("DELETE /api/cart/items/{product_id}", cartHandler.RemoveItem)

	// Orders
	mux.HandleFunc("GET /api/orders", orderHandler.List)
	mux.HandleFunc("POST /api/orders/confirm", orderHandler.Confirm)
	mux.HandleFunc("GET /api/orders/{id}", orderHandler.GetByID)
	mux.HandleFunc("POST /api/orders/{id}/cancel", orderHandler.Cancel)

	// Supplier sub-orders
	mux.HandleFunc("GET /api/shop-orders", shopOrderHandler.List)
	mux.HandleFunc("PATCH /api/shop-orders/{id}/process", shopOrderHandler.Process)

	// Delivery contacts
	mux.HandleFunc("GET /api/contacts", contactHandler.List)
	mux.HandleFunc("POST /api/contacts", contactHandler.Create)
	mux.HandleFunc("DELETE /api/contacts/{id}", contactHandler.Delete)

	// Supplier feeds
	mux.HandleFunc("POST /api/shops/import", shopHandler.Import)
	mux.HandleFunc("GET /api/shops/{id}/export", shopHandler.Export)

	// Apply middleware in order: Recovery -> Logging -> Metrics -> CORS -> TokenAuth
	var h http.Handler = mux
	h = middleware.TokenAuth(users, logger)(h)
	h = middleware.CORS(h)
	h = metrics.Instrument(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
