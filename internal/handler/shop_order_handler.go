package handler

import (
	"encoding/json"
	"net/http"

	"marketplace/internal/model"
	"marketplace/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ShopOrderHandler handles supplier-facing sub-order HTTP requests.
type ShopOrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewShopOrderHandler creates a new shop order handler.
func NewShopOrderHandler(service service.OrderService, logger zerolog.Logger) *ShopOrderHandler {
	return &ShopOrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "shop-order").Logger(),
	}
}

// List handles GET /api/shop-orders requests.
func (h *ShopOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r, h.logger)
	if !ok {
		return
	}

	shopOrders, err := h.service.ListShopOrders(r.Context(), actor)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, shopOrders)
}

// Process handles PATCH /api/shop-orders/{id}/process requests.
func (h *ShopOrderHandler) Process(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r, h.logger)
	if !ok {
		return
	}

	shopOrderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop order ID format", h.logger)
		return
	}

	var req model.ProcessShopOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	shopOrder, err := h.service.ProcessShopOrder(r.Context(), actor, shopOrderID, req.Status)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, shopOrder)
}
