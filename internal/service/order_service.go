package service

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/model"
	"marketplace/internal/notify"
	"marketplace/internal/repository"
	"marketplace/internal/status"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	contactRepo repository.ContactRepository
	shopRepo    repository.ShopRepository
	dispatcher  notify.Dispatcher
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	contactRepo repository.ContactRepository,
	shopRepo repository.ShopRepository,
	dispatcher notify.Dispatcher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		contactRepo: contactRepo,
		shopRepo:    shopRepo,
		dispatcher:  dispatcher,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// Confirm is the checkout transaction: it decomposes the actor's cart
// into one order plus one shop order per distinct shop, copies each
// line's frozen unit price verbatim, decrements stock, and clears the
// cart. The whole sequence runs under a single transaction with the
// cart row locked, so a failure at any point leaves no order, no stock
// decrement, and an untouched cart.
func (s *orderService) Confirm(ctx context.Context, actor model.User, req *model.ConfirmOrderRequest) (*model.OrderView, error) {
	if req == nil || req.CartID == uuid.Nil || req.ContactID == uuid.Nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "cart_id and contact_id are required")
	}

	contact, err := s.contactRepo.GetByID(ctx, req.ContactID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve contact: %w", err)
	}
	if contact == nil {
		return nil, model.ErrContactNotFound
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm order: %w", err)
	}

	// Roll back on any failure before commit.
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback checkout transaction")
			}
		}
	}()

	// Lock the cart so concurrent checkouts of the same cart
	// serialize; the loser observes an already-emptied cart.
	cart, err := s.cartRepo.GetForUpdate(ctx, tx, req.CartID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm order: %w", err)
	}
	if cart == nil {
		err = model.ErrCartNotFound
		return nil, err
	}

	lines, err := s.cartRepo.ListCheckoutLines(ctx, tx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm order: %w", err)
	}
	if len(lines) == 0 {
		err = model.ErrEmptyCart
		return nil, err
	}

	order := &model.Order{
		ID:          uuid.New(),
		UserID:      actor.ID,
		ContactID:   contact.ID,
		Status:      status.New,
		TotalAmount: decimal.Zero,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to confirm order: %w", err)
	}

	// Group cart lines by owning shop, preserving first-seen order.
	shopIDs, byShop := groupByShop(lines)

	var items []model.ShopOrderItem
	for _, shopID := range shopIDs {
		shopOrder := &model.ShopOrder{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ShopID:      shopID,
			Status:      status.New,
			TotalAmount: decimal.Zero,
		}
		if err = s.orderRepo.CreateShopOrder(ctx, tx, shopOrder); err != nil {
			return nil, fmt.Errorf("failed to confirm order: %w", err)
		}

		for _, line := range byShop[shopID] {
			items = append(items, model.ShopOrderItem{
				ID:          uuid.New(),
				ShopOrderID: shopOrder.ID,
				ProductID:   line.ProductID,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
			})
		}
	}

	if err = s.orderRepo.CreateShopOrderItems(ctx, tx, items); err != nil {
		return nil, fmt.Errorf("failed to confirm order: %w", err)
	}

	if err = s.orderRepo.RecalculateTotals(ctx, tx, order.ID); err != nil {
		return nil, fmt.Errorf("failed to confirm order: %w", err)
	}

	// Stock is decremented only after all sub-orders and items exist.
	// A failed decrement aborts the whole transaction, so either every
	// product is decremented or none is.
	for _, line := range lines {
		if err = s.productRepo.DecrementStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
			if errors.Is(err, model.ErrInsufficientStock) {
				s.logger.Warn().
					Str("order_id", order.ID.String()).
					Str("product_id", line.ProductID.String()).
					Msg("checkout aborted, stock ran out since add-to-cart")
			}
			return nil, err
		}
	}

	if err = s.cartRepo.Clear(ctx, tx, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to confirm order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to confirm order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("shop_count", len(shopIDs)).
		Int("item_count", len(items)).
		Msg("order confirmed")

	// Fire-and-forget, strictly after commit: a notification failure
	// must never unwind the checkout.
	s.dispatcher.OrderConfirmed(order.ID)

	return s.orderRepo.GetView(ctx, order.ID)
}

// groupByShop buckets checkout lines by shop, returning shop IDs in
// first-seen order.
func groupByShop(lines []model.CheckoutLine) ([]uuid.UUID, map[uuid.UUID][]model.CheckoutLine) {
	var shopIDs []uuid.UUID
	byShop := make(map[uuid.UUID][]model.CheckoutLine)
	for _, line := range lines {
		if _, seen := byShop[line.ShopID]; !seen {
			shopIDs = append(shopIDs, line.ShopID)
		}
		byShop[line.ShopID] = append(byShop[line.ShopID], line)
	}
	return shopIDs, byShop
}

// List returns the actor's orders; staff see every order.
func (s *orderService) List(ctx context.Context, actor model.User) ([]model.Order, error) {
	if actor.IsStaff {
		return s.orderRepo.ListByUser(ctx, nil)
	}
	return s.orderRepo.ListByUser(ctx, &actor.ID)
}

// GetByID returns the order aggregate. Non-staff callers only see
// their own orders; anything else reads as not found.
func (s *orderService) GetByID(ctx context.Context, actor model.User, id uuid.UUID) (*model.OrderView, error) {
	view, err := s.orderRepo.GetView(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if view == nil || (!actor.IsStaff && view.UserID != actor.ID) {
		return nil, model.ErrOrderNotFound
	}
	return view, nil
}

// Cancel moves the order to cancelled and force-cancels every shop
// order under it, regardless of how far each has progressed. Only the
// order owner or staff may cancel.
func (s *orderService) Cancel(ctx context.Context, actor model.User, id uuid.UUID) (*model.OrderView, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	if order == nil || (!actor.IsStaff && order.UserID != actor.ID) {
		return nil, model.ErrOrderNotFound
	}

	if _, err := status.Transition(order.Status, status.Cancelled); err != nil {
		return nil, model.ErrIllegalTransition
	}

	if err := s.orderRepo.CancelOrder(ctx, order.ID); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("from", order.Status.String()).
		Msg("order cancelled")

	return s.orderRepo.GetView(ctx, order.ID)
}

// ListShopOrders returns sub-orders visible to the actor. Staff see
// everything; suppliers see sub-orders of their own shops; everyone
// else sees nothing.
func (s *orderService) ListShopOrders(ctx context.Context, actor model.User) ([]model.ShopOrder, error) {
	if actor.IsStaff {
		return s.orderRepo.ListShopOrdersBySupplier(ctx, nil)
	}
	if !actor.IsSupplier {
		return []model.ShopOrder{}, nil
	}
	return s.orderRepo.ListShopOrdersBySupplier(ctx, &actor.ID)
}

// ProcessShopOrder applies a status transition to a shop order. The
// parent order must still be open, the actor must be the shop's
// supplier or staff, and the move must be legal per the transition
// table.
func (s *orderService) ProcessShopOrder(ctx context.Context, actor model.User, id uuid.UUID, rawStatus string) (*model.ShopOrder, error) {
	shopOrder, err := s.orderRepo.GetShopOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to process shop order: %w", err)
	}
	if shopOrder == nil {
		return nil, model.ErrShopOrderNotFound
	}

	parent, err := s.orderRepo.GetByID(ctx, shopOrder.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to process shop order: %w", err)
	}
	if parent == nil {
		return nil, model.ErrOrderNotFound
	}

	// A closed parent blocks sub-order edits regardless of the
	// sub-order's own state.
	if parent.Status.Terminal() {
		return nil, model.ErrOrderClosed
	}

	shop, err := s.shopRepo.GetByID(ctx, shopOrder.ShopID)
	if err != nil {
		return nil, fmt.Errorf("failed to process shop order: %w", err)
	}
	if !actor.CanManageShop(shop) {
		return nil, model.ErrForbidden
	}

	next, err := status.Parse(rawStatus)
	if err != nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Unknown status: "+rawStatus)
	}

	newStatus, err := status.Transition(shopOrder.Status, next)
	if err != nil {
		return nil, model.ErrIllegalTransition
	}

	if err := s.orderRepo.UpdateShopOrderStatus(ctx, shopOrder.ID, newStatus); err != nil {
		return nil, fmt.Errorf("failed to process shop order: %w", err)
	}

	shopOrder.Status = newStatus
	return shopOrder, nil
}
