package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"marketplace/internal/feed"
	"marketplace/internal/model"
	"marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ShopHandler handles supplier feed import and export HTTP requests.
type ShopHandler struct {
	importer *feed.Importer
	exporter *feed.Exporter
	loader   feed.Loader
	shops    repository.ShopRepository
	logger   zerolog.Logger
}

// NewShopHandler creates a new shop handler.
func NewShopHandler(
	importer *feed.Importer,
	exporter *feed.Exporter,
	loader feed.Loader,
	shops repository.ShopRepository,
	logger zerolog.Logger,
) *ShopHandler {
	return &ShopHandler{
		importer: importer,
		exporter: exporter,
		loader:   loader,
		shops:    shops,
		logger:   logger.With().Str("handler", "shop").Logger(),
	}
}

// importSourceRequest names a feed source the loader can reach, a file
// path or an object key depending on deployment.
type importSourceRequest struct {
	Source string `json:"source"`
}

// Import handles POST /api/shops/import requests. The feed arrives
// either inline as YAML (optionally gzip content-encoded) or as a JSON
// body naming a source for the configured loader.
func (h *ShopHandler) Import(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r, h.logger)
	if !ok {
		return
	}

	if !actor.IsSupplier && !actor.IsStaff {
		writeError(w, http.StatusForbidden, "only suppliers can import feeds", h.logger)
		return
	}

	var (
		doc *feed.Feed
		err error
	)
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var req importSourceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
			return
		}
		if strings.TrimSpace(req.Source) == "" {
			writeError(w, http.StatusBadRequest, "source is required", h.logger)
			return
		}
		doc, err = h.loader.Load(r.Context(), req.Source)
	} else {
		doc, err = feed.Parse(r.Body, r.Header.Get("Content-Encoding") == "gzip")
	}
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to read feed")
		writeError(w, http.StatusBadRequest, "failed to read feed: "+err.Error(), h.logger)
		return
	}

	result, err := h.importer.Import(r.Context(), actor.ID, doc)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Export handles GET /api/shops/{id}/export requests, answering the
// shop's catalogue in the same YAML shape the importer accepts.
func (h *ShopHandler) Export(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r, h.logger)
	if !ok {
		return
	}

	shopID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop ID format", h.logger)
		return
	}

	shop, err := h.shops.GetByID(r.Context(), shopID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to get shop")
		writeError(w, http.StatusInternalServerError, "internal server error", h.logger)
		return
	}
	if shop == nil {
		writeDomainError(w, model.ErrShopNotFound, h.logger)
		return
	}
	if !actor.CanManageShop(shop) {
		writeDomainError(w, model.ErrForbidden, h.logger)
		return
	}

	doc, err := h.exporter.Export(r.Context(), shop)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to export feed")
		writeError(w, http.StatusInternalServerError, "internal server error", h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	if err := h.exporter.Write(doc, w); err != nil {
		h.logger.Error().Err(err).Msg("failed to write feed response")
	}
}
