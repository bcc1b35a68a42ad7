package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/invoice-engine/internal/domain"
)

const invoiceItemColumns = `id, invoice_id, product_id, quantity, price, created_at`

type invoiceItemRepository struct {
	db *sqlx.DB
}

func NewInvoiceItemRepository(db *sqlx.DB) InvoiceItemRepository {
	return &invoiceItemRepository{db: db}
}

func insertInvoiceItem(ctx context.Context, exec sqlx.ExecerContext, item *domain.InvoiceItem) error {
	query := `
		INSERT INTO invoice_items (id, invoice_id, product_id, quantity, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := exec.ExecContext(ctx, query,
		item.ID,
		item.InvoiceID,
		item.ProductID,
		item.Quantity,
		item.Price,
		item.CreatedAt,
	)
	return err
}

func (r *invoiceItemRepository) Create(ctx context.Context, item *domain.InvoiceItem) error {
	return insertInvoiceItem(ctx, r.db, item)
}

func (r *invoiceItemRepository) CreateMany(ctx context.Context, items []*domain.InvoiceItem) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, item := range items {
		if err = insertInvoiceItem(ctx, tx, item); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	return len(items), nil
}

func (r *invoiceItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.InvoiceItem, error) {
	var item domain.InvoiceItem
	err := r.db.GetContext(ctx, &item, `SELECT `+invoiceItemColumns+` FROM invoice_items WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *invoiceItemRepository) List(ctx context.Context) ([]*domain.InvoiceItem, error) {
	var items []*domain.InvoiceItem
	err := r.db.SelectContext(ctx, &items, `SELECT `+invoiceItemColumns+` FROM invoice_items ORDER BY created_at`)
	if err != nil {
		return nil, err
	}

	return items, nil
}

func (r *invoiceItemRepository) ListByInvoiceIDs(ctx context.Context, invoiceIDs []uuid.UUID) ([]*domain.InvoiceItem, error) {
	if len(invoiceIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ii.id, ii.invoice_id, ii.product_id, ii.quantity, ii.price, ii.created_at,
		       COALESCE(p.name, '') AS product_name
		FROM invoice_items ii
		LEFT JOIN products p ON p.id = ii.product_id
		WHERE ii.invoice_id = ANY($1::uuid[])
		ORDER BY ii.invoice_id, ii.created_at, ii.id
	`

	var items []*domain.InvoiceItem
	if err := r.db.SelectContext(ctx, &items, query, uuidArray(invoiceIDs)); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *invoiceItemRepository) Update(ctx context.Context, item *domain.InvoiceItem) error {
	query := `UPDATE invoice_items SET quantity = $2, price = $3 WHERE id = $1`

	return requireAffected(r.db.ExecContext(ctx, query, item.ID, item.Quantity, item.Price))
}

func (r *invoiceItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM invoice_items WHERE id = $1`, id))
}
