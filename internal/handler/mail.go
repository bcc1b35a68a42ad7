package handler

import (
	"net/http"

	"github.com/segyhp/invoice-engine/internal/service"
	"github.com/segyhp/invoice-engine/pkg/response"
)

type MailHandler struct {
	service *service.MailService
}

func NewMailHandler(service *service.MailService) *MailHandler {
	return &MailHandler{service: service}
}

func (h *MailHandler) SendInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		response.FromError(w, err)
		return
	}

	recipient, err := h.service.SendInvoice(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Message(w, "Invoice sent to "+recipient)
}

// VerifyEmail is opened from the link in the verification email, so it
// answers with an HTML page on success.
func (h *MailHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.VerifyEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.HTML(w, http.StatusOK, page)
}
