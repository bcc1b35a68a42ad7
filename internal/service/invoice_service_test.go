package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/segyhp/invoice-engine/internal/cache"
	"github.com/segyhp/invoice-engine/internal/domain"
	"github.com/segyhp/invoice-engine/internal/repository/mocks"
	customError "github.com/segyhp/invoice-engine/pkg/errors"
)

type invoiceFixture struct {
	svc         *InvoiceService
	invoiceRepo *mocks.MockInvoiceRepository
	itemRepo    *mocks.MockInvoiceItemRepository
	clientRepo  *mocks.MockClientRepository
	cache       *cache.InMemoryCache
}

func newInvoiceFixture() *invoiceFixture {
	f := &invoiceFixture{
		invoiceRepo: &mocks.MockInvoiceRepository{},
		itemRepo:    &mocks.MockInvoiceItemRepository{},
		clientRepo:  &mocks.MockClientRepository{},
		cache:       cache.NewInMemoryCache(),
	}
	f.svc = NewInvoiceService(f.invoiceRepo, f.itemRepo, f.clientRepo, f.cache, time.Minute, zap.NewNop())
	return f
}

func strPtr(s string) *string { return &s }

func TestInvoiceService_Create(t *testing.T) {
	userID := uuid.New()
	client := &domain.Client{ID: uuid.New(), UserID: userID, Name: "Acme"}
	due := date(2024, 1, 1)
	end := date(2024, 12, 31)

	tests := []struct {
		name           string
		request        *domain.CreateInvoiceRequest
		wantActive     bool
		wantCode       string
		expectPersists bool
	}{
		{
			name: "schedule and end date make it recurring",
			request: &domain.CreateInvoiceRequest{
				UserID: userID, ClientID: client.ID, DueDate: due,
				RecurringSchedule: strPtr("monthly"), RecurringEndDate: &end,
			},
			wantActive:     true,
			expectPersists: true,
		},
		{
			name: "schedule without end date is not recurring",
			request: &domain.CreateInvoiceRequest{
				UserID: userID, ClientID: client.ID, DueDate: due,
				RecurringSchedule: strPtr("weekly"),
			},
			wantActive:     false,
			expectPersists: true,
		},
		{
			name:           "plain invoice",
			request:        &domain.CreateInvoiceRequest{UserID: userID, ClientID: client.ID, DueDate: due},
			wantActive:     false,
			expectPersists: true,
		},
		{
			name: "unknown schedule is rejected",
			request: &domain.CreateInvoiceRequest{
				UserID: userID, ClientID: client.ID, DueDate: due,
				RecurringSchedule: strPtr("fortnightly"), RecurringEndDate: &end,
			},
			wantCode: customError.ErrCodeValidation,
		},
		{
			name: "end date before due date",
			request: &domain.CreateInvoiceRequest{
				UserID: userID, ClientID: client.ID, DueDate: end,
				RecurringSchedule: strPtr("daily"), RecurringEndDate: &due,
			},
			wantCode: customError.ErrCodeValidation,
		},
		{
			name:     "client of another user",
			request:  &domain.CreateInvoiceRequest{UserID: uuid.New(), ClientID: client.ID, DueDate: due},
			wantCode: customError.ErrCodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInvoiceFixture()
			f.clientRepo.On("GetByID", mock.Anything, client.ID).Return(client, nil).Maybe()
			if tt.expectPersists {
				f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
			}

			invoice, err := f.svc.Create(context.Background(), tt.request)

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, customError.Code(err))
				f.invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantActive, invoice.RecurringActive)
			assert.Equal(t, domain.InvoiceStatusPending, invoice.Status)
			assert.Nil(t, invoice.RecurringRefID)
			f.invoiceRepo.AssertExpectations(t)
		})
	}
}

func TestInvoiceService_ListByUser(t *testing.T) {
	f := newInvoiceFixture()
	userID := uuid.New()
	client := &domain.Client{ID: uuid.New(), UserID: userID, Name: "Acme"}

	first := &domain.Invoice{ID: uuid.New(), UserID: userID, ClientID: client.ID}
	second := &domain.Invoice{ID: uuid.New(), UserID: userID, ClientID: client.ID}
	items := []*domain.InvoiceItem{
		{ID: uuid.New(), InvoiceID: second.ID, Quantity: 1, Price: decimal.NewFromInt(10)},
	}

	f.invoiceRepo.On("CountByUser", mock.Anything, userID).Return(25, nil)
	f.invoiceRepo.On("ListByUser", mock.Anything, userID, 10, 10).Return([]*domain.Invoice{first, second}, nil)
	f.clientRepo.On("GetByIDs", mock.Anything, []uuid.UUID{client.ID}).Return([]*domain.Client{client}, nil)
	f.itemRepo.On("ListByInvoiceIDs", mock.Anything, []uuid.UUID{first.ID, second.ID}).Return(items, nil)

	page, err := f.svc.ListByUser(context.Background(), userID, 2, 10)

	require.NoError(t, err)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 25, page.TotalItems)
	require.Len(t, page.Invoices, 2)
	assert.Same(t, client, page.Invoices[0].Client)
	assert.Empty(t, page.Invoices[0].Items)
	assert.Len(t, page.Invoices[1].Items, 1)
}

func TestInvoiceService_Get_NotFound(t *testing.T) {
	f := newInvoiceFixture()
	id := uuid.New()

	f.invoiceRepo.On("GetByID", mock.Anything, id).Return(nil, sql.ErrNoRows)

	invoice, err := f.svc.Get(context.Background(), id)

	assert.Nil(t, invoice)
	assert.ErrorIs(t, err, customError.ErrNotFound)
}

func TestInvoiceService_Stats(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()
	userID := uuid.New()

	f.invoiceRepo.On("CountByStatus", mock.Anything, userID, domain.InvoiceStatusPending).Return(2, nil)
	f.invoiceRepo.On("CountByStatus", mock.Anything, userID, domain.InvoiceStatusPaid).Return(5, nil)
	f.invoiceRepo.On("CountByStatus", mock.Anything, userID, domain.InvoiceStatusOverdue).Return(1, nil)
	f.invoiceRepo.On("SumItemPrices", mock.Anything, userID, []string(nil)).Return(decimal.NewFromInt(800), nil)
	f.invoiceRepo.On("SumItemPrices", mock.Anything, userID,
		[]string{domain.InvoiceStatusPending, domain.InvoiceStatusOverdue}).Return(decimal.NewFromInt(300), nil)

	stats, err := f.svc.Stats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalPendingInvoices)
	assert.Equal(t, 5, stats.TotalPaidInvoices)
	assert.Equal(t, 1, stats.TotalOverdueInvoices)
	assert.True(t, stats.TotalIncome.Equal(decimal.NewFromInt(800)))
	assert.True(t, stats.PendingIncome.Equal(decimal.NewFromInt(300)))

	cached, err := f.svc.Stats(ctx, userID)
	require.NoError(t, err)
	assert.True(t, cached.TotalIncome.Equal(decimal.NewFromInt(800)))
	f.invoiceRepo.AssertNumberOfCalls(t, "CountByStatus", 3)

	invoice := &domain.Invoice{ID: uuid.New(), UserID: userID}
	f.invoiceRepo.On("GetByID", mock.Anything, invoice.ID).Return(invoice, nil)
	f.invoiceRepo.On("Delete", mock.Anything, invoice.ID).Return(nil)
	require.NoError(t, f.svc.Delete(ctx, invoice.ID))

	_, err = f.svc.Stats(ctx, userID)
	require.NoError(t, err)
	f.invoiceRepo.AssertNumberOfCalls(t, "CountByStatus", 6)
}
