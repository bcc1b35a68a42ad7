package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	InvoiceStatusPending = "PENDING"
	InvoiceStatusPaid    = "PAID"
	InvoiceStatusOverdue = "OVERDUE"
)

// Invoice represents an invoice entity
type Invoice struct {
	ID                uuid.UUID          `json:"id" db:"id"`
	UserID            uuid.UUID          `json:"user_id" db:"user_id"`
	ClientID          uuid.UUID          `json:"client_id" db:"client_id"`
	DueDate           time.Time          `json:"due_date" db:"due_date"`
	Status            string             `json:"status" db:"status"`
	RecurringSchedule *RecurringSchedule `json:"recurring_schedule,omitempty" db:"recurring_schedule"`
	RecurringEndDate  *time.Time         `json:"recurring_end_date,omitempty" db:"recurring_end_date"`
	RecurringActive   bool               `json:"recurring_active" db:"recurring_active"`
	RecurringRefID    *uuid.UUID         `json:"recurring_ref_id,omitempty" db:"recurring_ref_id"`
	CreatedAt         time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" db:"updated_at"`

	Client *Client        `json:"client,omitempty" db:"-"`
	Items  []*InvoiceItem `json:"invoice_items" db:"-"`
}

// InvoiceItem is a single line on an invoice. Price holds the line total
// (unit price times quantity), not the unit price.
type InvoiceItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	InvoiceID   uuid.UUID       `json:"invoice_id" db:"invoice_id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ProductName string          `json:"product_name,omitempty" db:"product_name"`
}

// HasRecurrence reports whether both a schedule and an end date were supplied
func HasRecurrence(schedule *RecurringSchedule, endDate *time.Time) bool {
	return schedule != nil && *schedule != "" && endDate != nil
}

// Total sums the line totals of the invoice items
func (i *Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range i.Items {
		total = total.Add(item.Price)
	}
	return total
}

// NewRecurringClone builds the invoice generated from a recurring source for
// the occurrence due at next, copying line items verbatim.
func NewRecurringClone(source *Invoice, next time.Time, now time.Time) *Invoice {
	sourceID := source.ID
	clone := &Invoice{
		ID:              uuid.New(),
		UserID:          source.UserID,
		ClientID:        source.ClientID,
		DueDate:         next,
		Status:          InvoiceStatusPending,
		RecurringActive: false,
		RecurringRefID:  &sourceID,
		CreatedAt:       now,
		UpdatedAt:       now,
		Items:           make([]*InvoiceItem, 0, len(source.Items)),
	}

	for _, item := range source.Items {
		clone.Items = append(clone.Items, &InvoiceItem{
			ID:        uuid.New(),
			InvoiceID: clone.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			CreatedAt: now,
		})
	}

	return clone
}

// DTOs for requests and responses

type CreateInvoiceRequest struct {
	UserID            uuid.UUID  `json:"user_id" validate:"required"`
	ClientID          uuid.UUID  `json:"client_id" validate:"required"`
	DueDate           time.Time  `json:"due_date" validate:"required"`
	Status            string     `json:"status" validate:"omitempty,oneof=PENDING PAID OVERDUE"`
	RecurringSchedule *string    `json:"recurring_schedule" validate:"omitempty,oneof=daily weekly monthly yearly"`
	RecurringEndDate  *time.Time `json:"recurring_end_date"`
}

type UpdateInvoiceRequest struct {
	DueDate           *time.Time `json:"due_date"`
	Status            *string    `json:"status" validate:"omitempty,oneof=PENDING PAID OVERDUE"`
	RecurringSchedule *string    `json:"recurring_schedule" validate:"omitempty,oneof=daily weekly monthly yearly"`
	RecurringEndDate  *time.Time `json:"recurring_end_date"`
}

type InvoicePage struct {
	CurrentPage int        `json:"current_page"`
	TotalPages  int        `json:"total_pages"`
	TotalItems  int        `json:"total_items"`
	Invoices    []*Invoice `json:"invoices"`
}

type InvoiceStats struct {
	TotalPendingInvoices int             `json:"total_pending_invoices"`
	TotalPaidInvoices    int             `json:"total_paid_invoices"`
	TotalOverdueInvoices int             `json:"total_overdue_invoices"`
	TotalIncome          decimal.Decimal `json:"total_income"`
	PendingIncome        decimal.Decimal `json:"pending_income"`
}

type CreateInvoiceItemRequest struct {
	InvoiceID uuid.UUID        `json:"invoice_id" validate:"required"`
	ProductID uuid.UUID        `json:"product_id" validate:"required"`
	Quantity  int              `json:"quantity" validate:"required,gt=0"`
	Price     *decimal.Decimal `json:"price"`
}

type BulkCreateInvoiceItemsRequest struct {
	InvoiceItems []*CreateInvoiceItemRequest `json:"invoice_items" validate:"required,min=1,dive"`
}

type UpdateInvoiceItemRequest struct {
	Quantity *int             `json:"quantity" validate:"omitempty,gt=0"`
	Price    *decimal.Decimal `json:"price"`
}
