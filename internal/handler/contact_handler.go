package handler

import (
	"encoding/json"
	"net/http"

	"marketplace/internal/model"
	"marketplace/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ContactHandler handles delivery contact HTTP requests.
type ContactHandler struct {
	service service.ContactService
	logger  zerolog.Logger
}

// NewContactHandler creates a new contact handler.
func NewContactHandler(service service.ContactService, logger zerolog.Logger) *ContactHandler {
	return &ContactHandler{
		service: service,
		logger:  logger.With().Str("handler", "contact").Logger(),
	}
}

// List handles GET /api/contacts requests.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r, h.logger)
	if !ok {
		return
	}

	contacts, err := h.service.List(r.Context(), actor)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	if contacts == nil {
		contacts = []model.DeliveryContact{}
	}
	writeJSON(w, http.StatusOK, contacts)
}

// Create handles POST /api/contacts requests.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r, h.logger)
	if !ok {
		return
	}

	var req model.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	contact, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, contact)
}

// Delete handles DELETE /api/contacts/{id} requests. Contacts
// referenced by an order are protected and answer 400.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r, h.logger)
	if !ok {
		return
	}

	contactID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contact ID format", h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), actor, contactID); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
