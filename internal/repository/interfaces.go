package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/invoice-engine/internal/domain"
)

// Lookups by ID return sql.ErrNoRows when nothing matches; updates and
// deletes do the same when no row was affected.

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error

	// MarkEmailVerified flips email_verified for the user with the given email
	MarkEmailVerified(ctx context.Context, email string) error
}

// ClientRepository defines the interface for client data operations
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id uuid.UUID) error

	// SearchByName matches a case-insensitive substring of the client name
	SearchByName(ctx context.Context, name string) ([]*domain.Client, error)
}

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvoiceRepository defines the interface for invoice data operations
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Invoice, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	Update(ctx context.Context, invoice *domain.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error

	// CountByStatus counts a user's invoices in the given status
	CountByStatus(ctx context.Context, userID uuid.UUID, status string) (int, error)

	// SumItemPrices totals item prices over a user's invoices, optionally
	// restricted to the given statuses
	SumItemPrices(ctx context.Context, userID uuid.UUID, statuses ...string) (decimal.Decimal, error)

	// FindActiveRecurring returns recurring invoices whose end date is at or
	// after horizon, ordered by due date
	FindActiveRecurring(ctx context.Context, horizon time.Time) ([]*domain.Invoice, error)

	// CreateRecurringClone inserts clone with its items and advances the
	// source due date to clone.DueDate in one transaction. The advance only
	// applies while the source still has the due date it was read with;
	// otherwise nothing is written and ErrStaleRecurringInvoice is returned.
	// When the source already has a generated invoice for clone.DueDate the
	// source is still advanced, no copy is written and ErrOccurrenceExists
	// is returned.
	CreateRecurringClone(ctx context.Context, source *domain.Invoice, clone *domain.Invoice) error
}

// InvoiceItemRepository defines the interface for invoice item data operations
type InvoiceItemRepository interface {
	Create(ctx context.Context, item *domain.InvoiceItem) error

	// CreateMany inserts all items in one transaction and returns the count
	CreateMany(ctx context.Context, items []*domain.InvoiceItem) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.InvoiceItem, error)
	List(ctx context.Context) ([]*domain.InvoiceItem, error)

	// ListByInvoiceIDs returns items of the given invoices, joined with the
	// product name
	ListByInvoiceIDs(ctx context.Context, invoiceIDs []uuid.UUID) ([]*domain.InvoiceItem, error)
	Update(ctx context.Context, item *domain.InvoiceItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}
