package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/segyhp/invoice-engine/pkg/response"
)

// Handlers groups every HTTP handler served by the API
type Handlers struct {
	Health      *HealthHandler
	User        *UserHandler
	Client      *ClientHandler
	Product     *ProductHandler
	Invoice     *InvoiceHandler
	InvoiceItem *InvoiceItemHandler
	Mail        *MailHandler
}

// NewRouter wires the API routes. Registration, login, email verification
// and health checks are public; everything else goes through authenticate.
// CORS wraps the returned router so preflight requests never reach it.
func NewRouter(h Handlers, authenticate mux.MiddlewareFunc, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(logger))

	// Health check
	router.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", h.Health.Ready).Methods(http.MethodGet)

	// Public API routes
	router.HandleFunc("/api/v1/users/register", h.User.Register).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/users/login", h.User.Login).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/mail/verify-email", h.Mail.VerifyEmail).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authenticate)

	api.HandleFunc("/users", h.User.List).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", h.User.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", h.User.Update).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", h.User.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/users/{userId}/clients", h.Client.ListByUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{userId}/products", h.Product.ListByUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{userId}/invoices", h.Invoice.ListByUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{userId}/invoices/stats", h.Invoice.Stats).Methods(http.MethodGet)

	api.HandleFunc("/clients", h.Client.List).Methods(http.MethodGet)
	api.HandleFunc("/clients", h.Client.Create).Methods(http.MethodPost)
	api.HandleFunc("/clients/search", h.Client.Search).Methods(http.MethodGet)
	api.HandleFunc("/clients/{id}", h.Client.Get).Methods(http.MethodGet)
	api.HandleFunc("/clients/{id}", h.Client.Update).Methods(http.MethodPut)
	api.HandleFunc("/clients/{id}", h.Client.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/products", h.Product.List).Methods(http.MethodGet)
	api.HandleFunc("/products", h.Product.Create).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", h.Product.Get).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.Product.Update).Methods(http.MethodPut)
	api.HandleFunc("/products/{id}", h.Product.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/invoices", h.Invoice.Create).Methods(http.MethodPost)
	api.HandleFunc("/invoices/{id}", h.Invoice.Get).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}", h.Invoice.Update).Methods(http.MethodPut)
	api.HandleFunc("/invoices/{id}", h.Invoice.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/invoice-items", h.InvoiceItem.List).Methods(http.MethodGet)
	api.HandleFunc("/invoice-items", h.InvoiceItem.Create).Methods(http.MethodPost)
	api.HandleFunc("/invoice-items/bulk", h.InvoiceItem.CreateBulk).Methods(http.MethodPost)
	api.HandleFunc("/invoice-items/{id}", h.InvoiceItem.Get).Methods(http.MethodGet)
	api.HandleFunc("/invoice-items/{id}", h.InvoiceItem.Update).Methods(http.MethodPut)
	api.HandleFunc("/invoice-items/{id}", h.InvoiceItem.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/mail/invoices/{id}", h.Mail.SendInvoice).Methods(http.MethodPost)

	return router
}
