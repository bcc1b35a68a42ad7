package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/segyhp/invoice-engine/internal/cache"
	"github.com/segyhp/invoice-engine/internal/domain"
	"github.com/segyhp/invoice-engine/internal/repository"
	customError "github.com/segyhp/invoice-engine/pkg/errors"
	"github.com/segyhp/invoice-engine/pkg/utils"
)

type InvoiceService struct {
	invoiceRepo repository.InvoiceRepository
	itemRepo    repository.InvoiceItemRepository
	clientRepo  repository.ClientRepository
	cache       cache.Cache
	statsTTL    time.Duration
	logger      *zap.Logger
	validator   *validator.Validate
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	itemRepo repository.InvoiceItemRepository,
	clientRepo repository.ClientRepository,
	statsCache cache.Cache,
	statsTTL time.Duration,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		itemRepo:    itemRepo,
		clientRepo:  clientRepo,
		cache:       statsCache,
		statsTTL:    statsTTL,
		logger:      logger,
		validator:   validator.New(),
	}
}

func statsKey(userID uuid.UUID) string {
	return "stats:" + userID.String()
}

// Create stores a new invoice. It is recurring only when both a schedule and
// an end date are given.
func (s *InvoiceService) Create(ctx context.Context, request *domain.CreateInvoiceRequest) (*domain.Invoice, error) {
	if err := validate(s.validator, request); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.GetByID(ctx, request.ClientID)
	if err != nil {
		return nil, lookupError(err, "Client", request.ClientID.String())
	}
	if client.UserID != request.UserID {
		return nil, customError.WrapValidation("client does not belong to user", nil)
	}

	var schedule *domain.RecurringSchedule
	if request.RecurringSchedule != nil && *request.RecurringSchedule != "" {
		parsed, err := domain.ParseRecurringSchedule(*request.RecurringSchedule)
		if err != nil {
			return nil, err
		}
		schedule = &parsed
	}

	if request.RecurringEndDate != nil && request.RecurringEndDate.Before(request.DueDate) {
		return nil, customError.WrapValidation("recurring_end_date must not be before due_date", nil)
	}

	status := request.Status
	if status == "" {
		status = domain.InvoiceStatusPending
	}

	now := time.Now()
	invoice := &domain.Invoice{
		ID:                uuid.New(),
		UserID:            request.UserID,
		ClientID:          request.ClientID,
		DueDate:           request.DueDate,
		Status:            status,
		RecurringSchedule: schedule,
		RecurringEndDate:  request.RecurringEndDate,
		RecurringActive:   domain.HasRecurrence(schedule, request.RecurringEndDate),
		CreatedAt:         now,
		UpdatedAt:         now,
		Client:            client,
		Items:             []*domain.InvoiceItem{},
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateStats(ctx, invoice.UserID)

	return invoice, nil
}

// Get returns the invoice with its client and items
func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Invoice", id.String())
	}

	if err := s.attach(ctx, []*domain.Invoice{invoice}); err != nil {
		return nil, err
	}

	return invoice, nil
}

// ListByUser returns one page of the user's invoices, newest first
func (s *InvoiceService) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.InvoicePage, error) {
	total, err := s.invoiceRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	invoices, err := s.invoiceRepo.ListByUser(ctx, userID, limit, utils.Offset(page, limit))
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if invoices == nil {
		invoices = []*domain.Invoice{}
	}

	if err := s.attach(ctx, invoices); err != nil {
		return nil, err
	}

	return &domain.InvoicePage{
		CurrentPage: page,
		TotalPages:  utils.TotalPages(total, limit),
		TotalItems:  total,
		Invoices:    invoices,
	}, nil
}

func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, request *domain.UpdateInvoiceRequest) (*domain.Invoice, error) {
	if err := validate(s.validator, request); err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Invoice", id.String())
	}

	if request.DueDate != nil {
		invoice.DueDate = *request.DueDate
	}
	if request.Status != nil {
		invoice.Status = *request.Status
	}
	if request.RecurringSchedule != nil {
		parsed, err := domain.ParseRecurringSchedule(*request.RecurringSchedule)
		if err != nil {
			return nil, err
		}
		invoice.RecurringSchedule = &parsed
	}
	if request.RecurringEndDate != nil {
		invoice.RecurringEndDate = request.RecurringEndDate
	}
	invoice.UpdatedAt = time.Now()

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, lookupError(err, "Invoice", id.String())
	}

	s.invalidateStats(ctx, invoice.UserID)

	return invoice, nil
}

// Delete removes the invoice; its items go with it
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return lookupError(err, "Invoice", id.String())
	}

	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		return lookupError(err, "Invoice", id.String())
	}

	s.invalidateStats(ctx, invoice.UserID)

	return nil
}

// Stats summarizes the user's invoices. Results are cached briefly and
// dropped on any invoice write for the user.
func (s *InvoiceService) Stats(ctx context.Context, userID uuid.UUID) (*domain.InvoiceStats, error) {
	key := statsKey(userID)

	var cached domain.InvoiceStats
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("Failed to read invoice stats from cache", zap.String("user_id", userID.String()), zap.Error(err))
	}
	if found {
		return &cached, nil
	}

	stats := &domain.InvoiceStats{}

	counts := map[string]*int{
		domain.InvoiceStatusPending: &stats.TotalPendingInvoices,
		domain.InvoiceStatusPaid:    &stats.TotalPaidInvoices,
		domain.InvoiceStatusOverdue: &stats.TotalOverdueInvoices,
	}
	for status, dest := range counts {
		count, err := s.invoiceRepo.CountByStatus(ctx, userID, status)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		*dest = count
	}

	if stats.TotalIncome, err = s.invoiceRepo.SumItemPrices(ctx, userID); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	stats.PendingIncome, err = s.invoiceRepo.SumItemPrices(ctx, userID, domain.InvoiceStatusPending, domain.InvoiceStatusOverdue)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.cache.Set(ctx, key, stats, s.statsTTL); err != nil {
		s.logger.Warn("Failed to cache invoice stats", zap.String("user_id", userID.String()), zap.Error(err))
	}

	return stats, nil
}

func (s *InvoiceService) invalidateStats(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.Delete(ctx, statsKey(userID)); err != nil {
		s.logger.Warn("Failed to invalidate invoice stats", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// attach loads clients and items for invoices with one query each
func (s *InvoiceService) attach(ctx context.Context, invoices []*domain.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}

	invoiceIDs := make([]uuid.UUID, 0, len(invoices))
	clientIDs := make([]uuid.UUID, 0, len(invoices))
	seenClients := make(map[uuid.UUID]bool)
	byID := make(map[uuid.UUID]*domain.Invoice, len(invoices))

	for _, invoice := range invoices {
		invoiceIDs = append(invoiceIDs, invoice.ID)
		byID[invoice.ID] = invoice
		invoice.Items = []*domain.InvoiceItem{}
		if !seenClients[invoice.ClientID] {
			seenClients[invoice.ClientID] = true
			clientIDs = append(clientIDs, invoice.ClientID)
		}
	}

	clients, err := s.clientRepo.GetByIDs(ctx, clientIDs)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	clientsByID := make(map[uuid.UUID]*domain.Client, len(clients))
	for _, client := range clients {
		clientsByID[client.ID] = client
	}

	items, err := s.itemRepo.ListByInvoiceIDs(ctx, invoiceIDs)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	for _, item := range items {
		if invoice, ok := byID[item.InvoiceID]; ok {
			invoice.Items = append(invoice.Items, item)
		}
	}

	for _, invoice := range invoices {
		invoice.Client = clientsByID[invoice.ClientID]
	}

	return nil
}
