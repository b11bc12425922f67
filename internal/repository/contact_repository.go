package repository

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// foreignKeyViolation is the Postgres error code raised when deleting
// a contact still referenced by an order.
const foreignKeyViolation = "23503"

// contactRepository implements the ContactRepository interface using PostgreSQL.
type contactRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewContactRepository creates a new PostgreSQL-backed contact repository.
func NewContactRepository(pool *pgxpool.Pool, logger zerolog.Logger) ContactRepository {
	return &contactRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "contact").Logger(),
	}
}

const contactColumns = `id, user_id, city, street, house, apartment, phone, created_at`

// GetByID returns the contact scoped to its owner, or nil when no
// contact matches both id and owner.
func (r *contactRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*model.DeliveryContact, error) {
	query := `SELECT ` + contactColumns + ` FROM delivery_contacts WHERE id = $1 AND user_id = $2`

	var c model.DeliveryContact
	err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&c.ID, &c.UserID, &c.City, &c.Street, &c.House, &c.Apartment, &c.Phone, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("contact_id", id.String()).Msg("contact not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("contact_id", id.String()).Msg("failed to query contact")
		return nil, fmt.Errorf("failed to query contact: %w", err)
	}

	return &c, nil
}

// ListByUser returns all contacts owned by the user.
func (r *contactRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.DeliveryContact, error) {
	query := `SELECT ` + contactColumns + ` FROM delivery_contacts WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query contacts")
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []model.DeliveryContact
	for rows.Next() {
		var c model.DeliveryContact
		err := rows.Scan(&c.ID, &c.UserID, &c.City, &c.Street, &c.House, &c.Apartment, &c.Phone, &c.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan contact row")
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}

	return contacts, nil
}

// Create inserts a new contact.
func (r *contactRepository) Create(ctx context.Context, contact *model.DeliveryContact) error {
	query := `
		INSERT INTO delivery_contacts (id, user_id, city, street, house, apartment, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		contact.ID, contact.UserID, contact.City, contact.Street, contact.House, contact.Apartment, contact.Phone)
	if err != nil {
		r.logger.Error().Err(err).Str("contact_id", contact.ID.String()).Msg("failed to create contact")
		return fmt.Errorf("failed to create contact: %w", err)
	}

	return nil
}

// Delete removes a contact owned by the user. A contact referenced by
// any order is protected: the RESTRICT foreign key on orders raises a
// violation which is surfaced as model.ErrContactProtected.
func (r *contactRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM delivery_contacts WHERE id = $1 AND user_id = $2`

	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			r.logger.Warn().Str("contact_id", id.String()).Msg("contact delete blocked by order reference")
			return model.ErrContactProtected
		}
		r.logger.Error().Err(err).Str("contact_id", id.String()).Msg("failed to delete contact")
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrContactNotFound
	}

	return nil
}
