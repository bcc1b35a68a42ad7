package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/invoice-engine/internal/domain"
)

const clientColumns = `id, user_id, name, address, contact_info, payment_terms, created_at, updated_at`

type clientRepository struct {
	db *sqlx.DB
}

func NewClientRepository(db *sqlx.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO clients (id, user_id, name, address, contact_info, payment_terms, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		client.ID,
		client.UserID,
		client.Name,
		client.Address,
		client.ContactInfo,
		client.PaymentTerms,
		client.CreatedAt,
		client.UpdatedAt,
	)

	return err
}

func (r *clientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	var client domain.Client
	err := r.db.GetContext(ctx, &client, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}

	return &client, nil
}

func (r *clientRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Client, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var clients []*domain.Client
	err := r.db.SelectContext(ctx, &clients,
		`SELECT `+clientColumns+` FROM clients WHERE id = ANY($1::uuid[])`, uuidArray(ids))
	if err != nil {
		return nil, err
	}

	return clients, nil
}

func (r *clientRepository) List(ctx context.Context) ([]*domain.Client, error) {
	var clients []*domain.Client
	err := r.db.SelectContext(ctx, &clients, `SELECT `+clientColumns+` FROM clients ORDER BY name`)
	if err != nil {
		return nil, err
	}

	return clients, nil
}

func (r *clientRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Client, error) {
	var clients []*domain.Client
	err := r.db.SelectContext(ctx, &clients,
		`SELECT `+clientColumns+` FROM clients WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}

	return clients, nil
}

func (r *clientRepository) Update(ctx context.Context, client *domain.Client) error {
	query := `
		UPDATE clients
		SET name = $2, address = $3, contact_info = $4, payment_terms = $5, updated_at = $6
		WHERE id = $1
	`

	return requireAffected(r.db.ExecContext(ctx, query,
		client.ID,
		client.Name,
		client.Address,
		client.ContactInfo,
		client.PaymentTerms,
		client.UpdatedAt,
	))
}

func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id))
}

func (r *clientRepository) SearchByName(ctx context.Context, name string) ([]*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE name ILIKE '%' || $1 || '%' ORDER BY name`

	var clients []*domain.Client
	if err := r.db.SelectContext(ctx, &clients, query, name); err != nil {
		return nil, err
	}

	return clients, nil
}
