package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/segyhp/invoice-engine/internal/auth"
	"github.com/segyhp/invoice-engine/internal/cache"
	"github.com/segyhp/invoice-engine/internal/config"
	"github.com/segyhp/invoice-engine/internal/domain"
	"github.com/segyhp/invoice-engine/internal/mail"
	"github.com/segyhp/invoice-engine/internal/middleware"
	"github.com/segyhp/invoice-engine/internal/repository/mocks"
	"github.com/segyhp/invoice-engine/internal/service"
	customError "github.com/segyhp/invoice-engine/pkg/errors"
)

type noopMailer struct{}

func (noopMailer) Send(_ context.Context, _ mail.Message) error { return nil }

type testAPI struct {
	handler     http.Handler
	jwt         *auth.JWTService
	users       *mocks.MockUserRepository
	clients     *mocks.MockClientRepository
	products    *mocks.MockProductRepository
	invoices    *mocks.MockInvoiceRepository
	items       *mocks.MockInvoiceItemRepository
	userID      uuid.UUID
	bearerToken string
}

func newTestAPI(t *testing.T) *testAPI {
	api := &testAPI{
		jwt:      auth.NewJWTService(config.JWTConfig{Secret: "secret", Expiration: time.Hour, Issuer: "test"}),
		users:    &mocks.MockUserRepository{},
		clients:  &mocks.MockClientRepository{},
		products: &mocks.MockProductRepository{},
		invoices: &mocks.MockInvoiceRepository{},
		items:    &mocks.MockInvoiceItemRepository{},
	}

	logger := zap.NewNop()
	statsCache := cache.NewInMemoryCache()
	invoiceService := service.NewInvoiceService(api.invoices, api.items, api.clients, statsCache, time.Minute, logger)

	handlers := Handlers{
		Health:      NewHealthHandler(nil, nil, time.Second),
		User:        NewUserHandler(service.NewUserService(api.users, api.clients, api.products, api.invoices, api.jwt)),
		Client:      NewClientHandler(service.NewClientService(api.clients, api.users)),
		Product:     NewProductHandler(service.NewProductService(api.products, api.users)),
		Invoice:     NewInvoiceHandler(invoiceService),
		InvoiceItem: NewInvoiceItemHandler(service.NewInvoiceItemService(api.items, api.invoices, api.products, statsCache, logger)),
		Mail:        NewMailHandler(service.NewMailService(invoiceService, api.users, noopMailer{}, logger)),
	}
	api.handler = NewRouter(handlers, middleware.JWTAuth(api.jwt, logger), logger)

	api.userID = uuid.New()
	token, err := api.jwt.Generate(api.userID, "ana@example.com")
	require.NoError(t, err)
	api.bearerToken = "Bearer " + token.Value

	return api
}

func (api *testAPI) do(t *testing.T, method, path string, body interface{}, authenticated bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		req.Header.Set("Authorization", api.bearerToken)
	}

	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_PublicAndProtectedRoutes(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/clients", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	api.clients.On("List", mock.Anything).Return([]*domain.Client{}, nil)
	rec = api.do(t, http.MethodGet, "/api/v1/clients", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Register(t *testing.T) {
	api := newTestAPI(t)

	api.users.On("GetByEmail", mock.Anything, "ana@example.com").Return(nil, sql.ErrNoRows)
	api.users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	rec := api.do(t, http.MethodPost, "/api/v1/users/register", map[string]string{
		"email": "ana@example.com", "password": "s3cret!", "full_name": "Ana",
	}, false)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "ana@example.com", data["email"])
	assert.NotContains(t, data, "password")
}

func TestRouter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       interface{}
		setup      func(api *testAPI)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed id",
			method:     http.MethodGet,
			path:       "/api/v1/invoices/not-a-uuid",
			wantStatus: http.StatusBadRequest,
			wantCode:   customError.ErrCodeValidation,
		},
		{
			name:   "missing invoice",
			method: http.MethodGet,
			path:   "/api/v1/invoices/" + uuid.NewString(),
			setup: func(api *testAPI) {
				api.invoices.On("GetByID", mock.Anything, mock.Anything).Return(nil, sql.ErrNoRows)
			},
			wantStatus: http.StatusNotFound,
			wantCode:   customError.ErrCodeNotFound,
		},
		{
			name:   "client search without matches",
			method: http.MethodGet,
			path:   "/api/v1/clients/search?name=zzz",
			setup: func(api *testAPI) {
				api.clients.On("SearchByName", mock.Anything, "zzz").Return([]*domain.Client{}, nil)
			},
			wantStatus: http.StatusNotFound,
			wantCode:   customError.ErrCodeNotFound,
		},
		{
			name:   "unknown recurring schedule",
			method: http.MethodPost,
			path:   "/api/v1/invoices",
			body: map[string]interface{}{
				"user_id": uuid.NewString(), "client_id": uuid.NewString(),
				"due_date": "2024-01-01T00:00:00Z", "recurring_schedule": "hourly",
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   customError.ErrCodeValidation,
		},
		{
			name:       "empty bulk items",
			method:     http.MethodPost,
			path:       "/api/v1/invoice-items/bulk",
			body:       map[string]interface{}{"invoice_items": []interface{}{}},
			wantStatus: http.StatusBadRequest,
			wantCode:   customError.ErrCodeValidation,
		},
		{
			name:       "verify without email",
			method:     http.MethodGet,
			path:       "/api/v1/mail/verify-email",
			wantStatus: http.StatusBadRequest,
			wantCode:   customError.ErrCodeValidation,
		},
		{
			name:   "wrong password",
			method: http.MethodPost,
			path:   "/api/v1/users/login",
			body:   map[string]string{"email": "ana@example.com", "password": "nope"},
			setup: func(api *testAPI) {
				hash, _ := auth.HashPassword("s3cret!")
				api.users.On("GetByEmail", mock.Anything, "ana@example.com").
					Return(&domain.User{ID: uuid.New(), Email: "ana@example.com", PasswordHash: hash}, nil)
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   customError.ErrCodeInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)
			if tt.setup != nil {
				tt.setup(api)
			}

			rec := api.do(t, tt.method, tt.path, tt.body, true)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}

func TestRouter_ListInvoicesPaginated(t *testing.T) {
	api := newTestAPI(t)
	userID := api.userID

	api.invoices.On("CountByUser", mock.Anything, userID).Return(12, nil)
	api.invoices.On("ListByUser", mock.Anything, userID, 5, 5).Return([]*domain.Invoice{}, nil)

	rec := api.do(t, http.MethodGet, "/api/v1/users/"+userID.String()+"/invoices?page=2&limit=5", nil, true)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeBody(t, rec)["data"].(map[string]interface{})
	assert.EqualValues(t, 2, data["current_page"])
	assert.EqualValues(t, 3, data["total_pages"])
	assert.EqualValues(t, 12, data["total_items"])
	api.invoices.AssertExpectations(t)
}

func TestRouter_PerUserRoutesRequireOwner(t *testing.T) {
	paths := []string{
		"/api/v1/users/%s/invoices",
		"/api/v1/users/%s/invoices/stats",
		"/api/v1/users/%s/clients",
		"/api/v1/users/%s/products",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			api := newTestAPI(t)

			rec := api.do(t, http.MethodGet, fmt.Sprintf(path, uuid.NewString()), nil, true)

			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, customError.ErrCodeForbidden, decodeBody(t, rec)["code"])
			api.invoices.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			api.clients.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
			api.products.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
		})
	}
}

func TestRouter_OwnStatsAllowed(t *testing.T) {
	api := newTestAPI(t)

	for _, status := range []string{domain.InvoiceStatusPending, domain.InvoiceStatusPaid, domain.InvoiceStatusOverdue} {
		api.invoices.On("CountByStatus", mock.Anything, api.userID, status).Return(1, nil)
	}
	api.invoices.On("SumItemPrices", mock.Anything, api.userID, mock.Anything).Return(decimal.NewFromInt(10), nil)

	rec := api.do(t, http.MethodGet, "/api/v1/users/"+api.userID.String()+"/invoices/stats", nil, true)

	assert.Equal(t, http.StatusOK, rec.Code)
}
