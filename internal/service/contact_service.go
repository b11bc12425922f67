package service

import (
	"context"
	"fmt"
	"strings"

	"marketplace/internal/model"
	"marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// contactService implements ContactService.
type contactService struct {
	contactRepo repository.ContactRepository
	logger      zerolog.Logger
}

// NewContactService creates a new contact service.
func NewContactService(contactRepo repository.ContactRepository, logger zerolog.Logger) ContactService {
	return &contactService{
		contactRepo: contactRepo,
		logger:      logger.With().Str("service", "contact").Logger(),
	}
}

// List returns the actor's contacts.
func (s *contactService) List(ctx context.Context, actor model.User) ([]model.DeliveryContact, error) {
	contacts, err := s.contactRepo.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

// Create adds a new contact owned by the actor.
func (s *contactService) Create(ctx context.Context, actor model.User, req *model.ContactRequest) (*model.DeliveryContact, error) {
	if req == nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "contact payload is required")
	}

	if strings.TrimSpace(req.City) == "" || strings.TrimSpace(req.Street) == "" ||
		strings.TrimSpace(req.House) == "" || strings.TrimSpace(req.Phone) == "" {
		return nil, model.NewDomainError(model.ErrCodeValidation, "city, street, house and phone are required")
	}

	contact := &model.DeliveryContact{
		ID:        uuid.New(),
		UserID:    actor.ID,
		City:      req.City,
		Street:    req.Street,
		House:     req.House,
		Apartment: req.Apartment,
		Phone:     req.Phone,
	}

	if err := s.contactRepo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	s.logger.Info().
		Str("contact_id", contact.ID.String()).
		Msg("delivery contact created")

	return contact, nil
}

// Delete removes a contact. A contact referenced by any order stays:
// the repository surfaces the PROTECT violation as a domain error.
func (s *contactService) Delete(ctx context.Context, actor model.User, id uuid.UUID) error {
	return s.contactRepo.Delete(ctx, id, actor.ID)
}
