package service

import (
	"context"
	"fmt"

	"marketplace/internal/model"
	"marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// GetCart returns the actor's cart, creating an empty one on first call.
func (s *cartService) GetCart(ctx context.Context, actor model.User) (*model.CartView, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return s.buildView(ctx, cart.ID)
}

// AddItem puts a product into the actor's cart. A repeated add of the
// same product increments the existing line and keeps the unit price
// snapshotted by the first add.
func (s *cartService) AddItem(ctx context.Context, actor model.User, req *model.AddCartItemRequest) (*model.CartView, error) {
	if req == nil || req.Quantity < 1 {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	if !product.InStock(req.Quantity) {
		s.logger.Warn().
			Str("product_id", product.ID.String()).
			Int("requested", req.Quantity).
			Int("available", product.Quantity).
			Msg("add to cart rejected, insufficient stock")
		return nil, model.ErrInsufficientStock
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	// Snapshot of the current price; the upsert keeps the first
	// snapshot when the line already exists.
	if err := s.cartRepo.UpsertItem(ctx, cart.ID, product.ID, req.Quantity, product.Price); err != nil {
		return nil, fmt.Errorf("failed to add item: %w", err)
	}

	s.logger.Info().
		Str("cart_id", cart.ID.String()).
		Str("product_id", product.ID.String()).
		Int("quantity", req.Quantity).
		Msg("item added to cart")

	return s.buildView(ctx, cart.ID)
}

// RemoveItem decrements a line by qty, deleting it entirely when qty is
// nil or covers the whole line.
func (s *cartService) RemoveItem(ctx context.Context, actor model.User, productID uuid.UUID, qty *int) (*model.CartView, error) {
	if qty != nil && *qty < 1 {
		return nil, model.ErrInvalidQuantity
	}

	cart, err := s.cartRepo.GetOrCreate(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	item, err := s.cartRepo.GetItem(ctx, cart.ID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cart item: %w", err)
	}
	if item == nil {
		return nil, model.ErrCartItemNotFound
	}

	if qty == nil || *qty >= item.Quantity {
		err = s.cartRepo.DeleteItem(ctx, cart.ID, productID)
	} else {
		err = s.cartRepo.DecrementItem(ctx, cart.ID, productID, *qty)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to remove item: %w", err)
	}

	s.logger.Info().
		Str("cart_id", cart.ID.String()).
		Str("product_id", productID.String()).
		Msg("item removed from cart")

	return s.buildView(ctx, cart.ID)
}

// buildView assembles the cart response. The total sums each line's
// frozen unit price, never the live catalogue price.
func (s *cartService) buildView(ctx context.Context, cartID uuid.UUID) (*model.CartView, error) {
	items, err := s.cartRepo.ListItemViews(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice)
	}

	return &model.CartView{
		ID:    cartID,
		Items: items,
		Total: total,
	}, nil
}
