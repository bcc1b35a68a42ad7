package handler

import (
	"net/http"

	"github.com/segyhp/invoice-engine/internal/domain"
	"github.com/segyhp/invoice-engine/internal/service"
	"github.com/segyhp/invoice-engine/pkg/response"
)

type ClientHandler struct {
	service *service.ClientService
}

func NewClientHandler(service *service.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateClientRequest
	if err := decodeJSON(r, &request); err != nil {
		response.FromError(w, err)
		return
	}

	client, err := h.service.Create(r.Context(), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, client)
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.List(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, clients)
}

func (h *ClientHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathOwner(r)
	if err != nil {
		response.FromError(w, err)
		return
	}

	clients, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, clients)
}

func (h *ClientHandler) Search(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.Search(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, clients)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	client, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, client)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	var request domain.UpdateClientRequest
	if err := decodeJSON(r, &request); err != nil {
		response.FromError(w, err)
		return
	}

	client, err := h.service.Update(r.Context(), id, &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, client)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
