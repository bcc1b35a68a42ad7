package handler

import (
	"net/http"

	"github.com/segyhp/invoice-engine/internal/domain"
	"github.com/segyhp/invoice-engine/internal/service"
	"github.com/segyhp/invoice-engine/pkg/response"
)

type InvoiceItemHandler struct {
	service *service.InvoiceItemService
}

func NewInvoiceItemHandler(service *service.InvoiceItemService) *InvoiceItemHandler {
	return &InvoiceItemHandler{service: service}
}

func (h *InvoiceItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateInvoiceItemRequest
	if err := decodeJSON(r, &request); err != nil {
		response.FromError(w, err)
		return
	}

	item, err := h.service.Create(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, item)
}

func (h *InvoiceItemHandler) CreateBulk(w http.ResponseWriter, r *http.Request) {
	var request domain.BulkCreateInvoiceItemsRequest
	if err := decodeJSON(r, &request); err != nil {
		response.FromError(w, err)
		return
	}

	count, err := h.service.CreateBulk(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, map[string]int{"count": count})
}

func (h *InvoiceItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, items)
}

func (h *InvoiceItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, item)
}

func (h *InvoiceItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	var request domain.UpdateInvoiceItemRequest
	if err := decodeJSON(r, &request); err != nil {
		response.FromError(w, err)
		return
	}

	item, err := h.service.Update(r.Context(), id, &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, item)
}

func (h *InvoiceItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
