package handler

import (
	"net/http"

	"github.com/segyhp/invoice-engine/internal/domain"
	"github.com/segyhp/invoice-engine/internal/service"
	"github.com/segyhp/invoice-engine/pkg/response"
	"github.com/segyhp/invoice-engine/pkg/utils"
)

type InvoiceHandler struct {
	service *service.InvoiceService
}

func NewInvoiceHandler(service *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateInvoiceRequest
	if err := decodeJSON(r, &request); err != nil {
		response.FromError(w, err)
		return
	}

	invoice, err := h.service.Create(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, invoice)
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	invoice, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, invoice)
}

// ListByUser serves ?page=&limit= pages of a user's invoices
func (h *InvoiceHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathOwner(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	query := r.URL.Query()
	page, limit := utils.ParsePagination(query.Get("page"), query.Get("limit"))

	invoices, err := h.service.ListByUser(r.Context(), userID, page, limit)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, invoices)
}

func (h *InvoiceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, err := pathOwner(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, stats)
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	var request domain.UpdateInvoiceRequest
	if err := decodeJSON(r, &request); err != nil {
		response.FromError(w, err)
		return
	}

	invoice, err := h.service.Update(r.Context(), id, &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, invoice)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}
