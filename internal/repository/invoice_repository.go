package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/segyhp/invoice-engine/internal/domain"
	customError "github.com/segyhp/invoice-engine/pkg/errors"
)

const invoiceColumns = `id, user_id, client_id, due_date, status, recurring_schedule, recurring_end_date,
		recurring_active, recurring_ref_id, created_at, updated_at`

const insertInvoiceQuery = `
	INSERT INTO invoices (id, user_id, client_id, due_date, status, recurring_schedule, recurring_end_date,
		recurring_active, recurring_ref_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

const insertRecurringCloneQuery = `
	INSERT INTO invoices (id, user_id, client_id, due_date, status, recurring_schedule, recurring_end_date,
		recurring_active, recurring_ref_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (recurring_ref_id, due_date) WHERE recurring_ref_id IS NOT NULL DO NOTHING
`

type invoiceRepository struct {
	db *sqlx.DB
}

func NewInvoiceRepository(db *sqlx.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func insertInvoice(ctx context.Context, exec sqlx.ExecerContext, invoice *domain.Invoice) error {
	_, err := execInsertInvoice(ctx, exec, insertInvoiceQuery, invoice)
	return err
}

func execInsertInvoice(ctx context.Context, exec sqlx.ExecerContext, query string, invoice *domain.Invoice) (sql.Result, error) {
	return exec.ExecContext(ctx, query,
		invoice.ID,
		invoice.UserID,
		invoice.ClientID,
		invoice.DueDate,
		invoice.Status,
		invoice.RecurringSchedule,
		invoice.RecurringEndDate,
		invoice.RecurringActive,
		invoice.RecurringRefID,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	return insertInvoice(ctx, r.db, invoice)
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.GetContext(ctx, &invoice, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}

	return &invoice, nil
}

func (r *invoiceRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var invoices []*domain.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, userID, limit, offset); err != nil {
		return nil, err
	}

	return invoices, nil
}

func (r *invoiceRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM invoices WHERE user_id = $1`, userID)
	return count, err
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	query := `
		UPDATE invoices
		SET due_date = $2, status = $3, recurring_schedule = $4, recurring_end_date = $5, updated_at = $6
		WHERE id = $1
	`

	return requireAffected(r.db.ExecContext(ctx, query,
		invoice.ID,
		invoice.DueDate,
		invoice.Status,
		invoice.RecurringSchedule,
		invoice.RecurringEndDate,
		invoice.UpdatedAt,
	))
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id))
}

func (r *invoiceRepository) CountByStatus(ctx context.Context, userID uuid.UUID, status string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM invoices WHERE user_id = $1 AND status = $2`, userID, status)
	return count, err
}

func (r *invoiceRepository) SumItemPrices(ctx context.Context, userID uuid.UUID, statuses ...string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(ii.price), 0)
		FROM invoice_items ii
		JOIN invoices i ON i.id = ii.invoice_id
		WHERE i.user_id = $1
	`
	args := []interface{}{userID}

	if len(statuses) > 0 {
		query += ` AND i.status = ANY($2)`
		args = append(args, pq.Array(statuses))
	}

	var sum decimal.Decimal
	if err := r.db.GetContext(ctx, &sum, query, args...); err != nil {
		return decimal.Zero, err
	}

	return sum, nil
}

func (r *invoiceRepository) FindActiveRecurring(ctx context.Context, horizon time.Time) ([]*domain.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE recurring_active = TRUE
		  AND recurring_schedule IS NOT NULL
		  AND recurring_end_date >= $1
		ORDER BY due_date, id
	`

	var invoices []*domain.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, horizon); err != nil {
		return nil, err
	}

	return invoices, nil
}

func (r *invoiceRepository) CreateRecurringClone(ctx context.Context, source *domain.Invoice, clone *domain.Invoice) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Advancing first takes the row lock, so a competing runner blocks here
	// and then finds the due date already moved.
	res, err := tx.ExecContext(ctx,
		`UPDATE invoices SET due_date = $2, updated_at = $3 WHERE id = $1 AND due_date = $4`,
		source.ID,
		clone.DueDate,
		clone.CreatedAt,
		source.DueDate,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return customError.ErrStaleRecurringInvoice
	}

	res, err = execInsertInvoice(ctx, tx, insertRecurringCloneQuery, clone)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		// The occurrence was generated before, keep the advance only.
		if err = tx.Commit(); err != nil {
			return err
		}
		return customError.ErrOccurrenceExists
	}

	for _, item := range clone.Items {
		if err = insertInvoiceItem(ctx, tx, item); err != nil {
			return err
		}
	}

	return tx.Commit()
}
