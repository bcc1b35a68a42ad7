package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/segyhp/invoice-engine/internal/cache"
	"github.com/segyhp/invoice-engine/internal/domain"
	"github.com/segyhp/invoice-engine/internal/repository"
	customError "github.com/segyhp/invoice-engine/pkg/errors"
)

type InvoiceItemService struct {
	itemRepo    repository.InvoiceItemRepository
	invoiceRepo repository.InvoiceRepository
	productRepo repository.ProductRepository
	cache       cache.Cache
	logger      *zap.Logger
	validator   *validator.Validate
}

func NewInvoiceItemService(
	itemRepo repository.InvoiceItemRepository,
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	statsCache cache.Cache,
	logger *zap.Logger,
) *InvoiceItemService {
	return &InvoiceItemService{
		itemRepo:    itemRepo,
		invoiceRepo: invoiceRepo,
		productRepo: productRepo,
		cache:       statsCache,
		logger:      logger,
		validator:   validator.New(),
	}
}

// Create adds a line to an invoice. Without an explicit price the line total
// is the product's unit price times the quantity.
func (s *InvoiceItemService) Create(ctx context.Context, request *domain.CreateInvoiceItemRequest) (*domain.InvoiceItem, error) {
	if err := validate(s.validator, request); err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, request.InvoiceID)
	if err != nil {
		return nil, lookupError(err, "Invoice", request.InvoiceID.String())
	}

	item, err := s.build(ctx, request, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateStats(ctx, invoice.UserID)

	return item, nil
}

// CreateBulk adds every line in one transaction and returns how many were stored
func (s *InvoiceItemService) CreateBulk(ctx context.Context, request *domain.BulkCreateInvoiceItemsRequest) (int, error) {
	if err := validate(s.validator, request); err != nil {
		return 0, err
	}

	now := time.Now()
	owners := make(map[uuid.UUID]uuid.UUID)
	items := make([]*domain.InvoiceItem, 0, len(request.InvoiceItems))

	for _, line := range request.InvoiceItems {
		if _, ok := owners[line.InvoiceID]; !ok {
			invoice, err := s.invoiceRepo.GetByID(ctx, line.InvoiceID)
			if err != nil {
				return 0, lookupError(err, "Invoice", line.InvoiceID.String())
			}
			owners[line.InvoiceID] = invoice.UserID
		}

		item, err := s.build(ctx, line, now)
		if err != nil {
			return 0, err
		}
		items = append(items, item)
	}

	count, err := s.itemRepo.CreateMany(ctx, items)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	for _, userID := range owners {
		s.invalidateStats(ctx, userID)
	}

	return count, nil
}

func (s *InvoiceItemService) build(ctx context.Context, request *domain.CreateInvoiceItemRequest, now time.Time) (*domain.InvoiceItem, error) {
	product, err := s.productRepo.GetByID(ctx, request.ProductID)
	if err != nil {
		return nil, lookupError(err, "Product", request.ProductID.String())
	}

	price := product.Price.Mul(decimal.NewFromInt(int64(request.Quantity)))
	if request.Price != nil {
		if err := validatePrice(*request.Price); err != nil {
			return nil, err
		}
		price = *request.Price
	}

	return &domain.InvoiceItem{
		ID:          uuid.New(),
		InvoiceID:   request.InvoiceID,
		ProductID:   request.ProductID,
		Quantity:    request.Quantity,
		Price:       price.Round(2),
		CreatedAt:   now,
		ProductName: product.Name,
	}, nil
}

func (s *InvoiceItemService) Get(ctx context.Context, id uuid.UUID) (*domain.InvoiceItem, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Invoice item", id.String())
	}
	return item, nil
}

func (s *InvoiceItemService) List(ctx context.Context) ([]*domain.InvoiceItem, error) {
	items, err := s.itemRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return items, nil
}

func (s *InvoiceItemService) Update(ctx context.Context, id uuid.UUID, request *domain.UpdateInvoiceItemRequest) (*domain.InvoiceItem, error) {
	if err := validate(s.validator, request); err != nil {
		return nil, err
	}

	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Invoice item", id.String())
	}

	if request.Quantity != nil {
		item.Quantity = *request.Quantity
	}
	if request.Price != nil {
		if err := validatePrice(*request.Price); err != nil {
			return nil, err
		}
		item.Price = request.Price.Round(2)
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, lookupError(err, "Invoice item", id.String())
	}

	s.invalidateStatsFor(ctx, item.InvoiceID)

	return item, nil
}

func (s *InvoiceItemService) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return lookupError(err, "Invoice item", id.String())
	}

	if err := s.itemRepo.Delete(ctx, id); err != nil {
		return lookupError(err, "Invoice item", id.String())
	}

	s.invalidateStatsFor(ctx, item.InvoiceID)

	return nil
}

func (s *InvoiceItemService) invalidateStatsFor(ctx context.Context, invoiceID uuid.UUID) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		s.logger.Warn("Failed to resolve invoice owner for stats invalidation",
			zap.String("invoice_id", invoiceID.String()), zap.Error(err))
		return
	}
	s.invalidateStats(ctx, invoice.UserID)
}

func (s *InvoiceItemService) invalidateStats(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.Delete(ctx, statsKey(userID)); err != nil {
		s.logger.Warn("Failed to invalidate invoice stats", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
