package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/segyhp/invoice-engine/internal/domain"
	"github.com/segyhp/invoice-engine/internal/repository"
	customError "github.com/segyhp/invoice-engine/pkg/errors"
)

// RecurringInvoiceService finds recurring invoices whose next occurrence is
// due and generates the invoice for that occurrence.
type RecurringInvoiceService struct {
	invoiceRepo repository.InvoiceRepository
	itemRepo    repository.InvoiceItemRepository
	lookahead   time.Duration
	location    *time.Location
	logger      *zap.Logger
}

// RunSummary reports the outcome of one pass over the due invoices
type RunSummary struct {
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Scanned    int           `json:"scanned"`
	Cloned     int           `json:"cloned"`
	NotDue     int           `json:"not_due"`
	Stale      int           `json:"stale"`
	Duplicates int           `json:"duplicates"`
	Failed     int           `json:"failed"`

	// SkipReason is set when the pass did not run at all
	SkipReason string `json:"skip_reason,omitempty"`
}

// NewRecurringInvoiceService builds the service. Due dates are stepped on the
// calendar of location, UTC when nil.
func NewRecurringInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	itemRepo repository.InvoiceItemRepository,
	lookahead time.Duration,
	location *time.Location,
	logger *zap.Logger,
) *RecurringInvoiceService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecurringInvoiceService{
		invoiceRepo: invoiceRepo,
		itemRepo:    itemRepo,
		lookahead:   lookahead,
		location:    location,
		logger:      logger,
	}
}

// Horizon is the latest instant an occurrence may fall on to be generated at now
func (s *RecurringInvoiceService) Horizon(now time.Time) time.Time {
	return now.Add(s.lookahead)
}

// FindDue returns the active recurring invoices whose end date has not passed
// the horizon, with their line items loaded.
func (s *RecurringInvoiceService) FindDue(ctx context.Context, now time.Time) ([]*domain.Invoice, error) {
	invoices, err := s.invoiceRepo.FindActiveRecurring(ctx, s.Horizon(now))
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if len(invoices) == 0 {
		return invoices, nil
	}

	ids := make([]uuid.UUID, len(invoices))
	byID := make(map[uuid.UUID]*domain.Invoice, len(invoices))
	for i, invoice := range invoices {
		ids[i] = invoice.ID
		byID[invoice.ID] = invoice
		invoice.Items = []*domain.InvoiceItem{}
	}

	items, err := s.itemRepo.ListByInvoiceIDs(ctx, ids)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	for _, item := range items {
		if invoice, ok := byID[item.InvoiceID]; ok {
			invoice.Items = append(invoice.Items, item)
		}
	}

	return invoices, nil
}

// CloneIfDue generates the next occurrence of invoice when it falls on or
// before the horizon. It returns nil without error when nothing is due yet.
// On success the source's due date is advanced in place.
func (s *RecurringInvoiceService) CloneIfDue(ctx context.Context, invoice *domain.Invoice, now time.Time) (*domain.Invoice, error) {
	if invoice.RecurringSchedule == nil {
		return nil, customError.WrapInvalidScheduleKind("")
	}

	// The driver returns instants in its session zone; the calendar day that
	// month and year steps preserve is the one in s.location.
	next, err := invoice.RecurringSchedule.NextDueDate(invoice.DueDate.In(s.location))
	if err != nil {
		return nil, err
	}

	if next.After(s.Horizon(now)) {
		return nil, nil
	}

	clone := domain.NewRecurringClone(invoice, next, now)

	if err := s.invoiceRepo.CreateRecurringClone(ctx, invoice, clone); err != nil {
		if errors.Is(err, customError.ErrStaleRecurringInvoice) {
			return nil, customError.WrapStaleRecurringInvoice(invoice.ID.String())
		}
		if errors.Is(err, customError.ErrOccurrenceExists) {
			invoice.DueDate = next
			invoice.UpdatedAt = now
			return nil, customError.WrapOccurrenceExists(invoice.ID.String(), next.Format("2006-01-02"))
		}
		return nil, customError.WrapDatabaseError(err)
	}

	invoice.DueDate = next
	invoice.UpdatedAt = now

	return clone, nil
}

// ProcessDue scans for due invoices and clones each one in turn. A failure on
// one invoice is logged and counted; only a failed scan aborts the pass.
func (s *RecurringInvoiceService) ProcessDue(ctx context.Context, now time.Time) (RunSummary, error) {
	summary := RunSummary{StartedAt: now}
	started := time.Now()

	invoices, err := s.FindDue(ctx, now)
	if err != nil {
		summary.Duration = time.Since(started)
		return summary, err
	}
	summary.Scanned = len(invoices)

	for _, invoice := range invoices {
		if ctx.Err() != nil {
			break
		}

		clone, err := s.CloneIfDue(ctx, invoice, now)
		switch {
		case errors.Is(err, customError.ErrStaleRecurringInvoice):
			summary.Stale++
			s.logger.Info("recurring invoice already advanced by another runner",
				zap.String("invoice_id", invoice.ID.String()))
		case errors.Is(err, customError.ErrOccurrenceExists):
			summary.Duplicates++
			s.logger.Warn("recurring occurrence already generated, source advanced past it",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Time("due_date", invoice.DueDate))
		case errors.Is(err, customError.ErrInvalidScheduleKind):
			summary.Failed++
			s.logger.Error("recurring invoice has an invalid schedule",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Stringp("schedule", (*string)(invoice.RecurringSchedule)),
				zap.Error(err))
		case err != nil:
			summary.Failed++
			s.logger.Error("failed to generate recurring invoice",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Error(err))
		case clone == nil:
			summary.NotDue++
		default:
			summary.Cloned++
			s.logger.Info("recurring invoice generated",
				zap.String("invoice_id", clone.ID.String()),
				zap.String("source_id", invoice.ID.String()),
				zap.Time("due_date", clone.DueDate),
				zap.Int("items", len(clone.Items)))
		}
	}

	summary.Duration = time.Since(started)
	return summary, nil
}
