package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/segyhp/invoice-engine/internal/mail"
	"github.com/segyhp/invoice-engine/internal/repository"
	customError "github.com/segyhp/invoice-engine/pkg/errors"
)

type MailService struct {
	invoices  *InvoiceService
	userRepo  repository.UserRepository
	mailer    mail.Mailer
	logger    *zap.Logger
	validator *validator.Validate
}

func NewMailService(invoices *InvoiceService, userRepo repository.UserRepository, mailer mail.Mailer, logger *zap.Logger) *MailService {
	return &MailService{
		invoices:  invoices,
		userRepo:  userRepo,
		mailer:    mailer,
		logger:    logger,
		validator: validator.New(),
	}
}

// SendInvoice emails the rendered invoice to its client's contact address
// and returns that address.
func (s *MailService) SendInvoice(ctx context.Context, invoiceID uuid.UUID) (string, error) {
	invoice, err := s.invoices.Get(ctx, invoiceID)
	if err != nil {
		return "", err
	}

	if invoice.Client == nil {
		return "", customError.WrapInvalidRecipient("")
	}
	recipient := invoice.Client.ContactInfo
	if err := s.validator.Var(recipient, "required,email"); err != nil {
		return "", customError.WrapInvalidRecipient(recipient)
	}

	body, err := mail.RenderInvoice(invoice)
	if err != nil {
		return "", err
	}

	err = s.mailer.Send(ctx, mail.Message{
		To:      recipient,
		Subject: "Invoice " + invoice.ID.String(),
		HTML:    body,
	})
	if err != nil {
		return "", customError.WrapMailError(err)
	}

	s.logger.Info("Invoice email sent",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("recipient", recipient),
	)

	return recipient, nil
}

// VerifyEmail marks the user's email as verified and returns the confirmation page
func (s *MailService) VerifyEmail(ctx context.Context, email string) (string, error) {
	if err := s.validator.Var(email, "required,email"); err != nil {
		return "", customError.WrapValidation("a valid email query parameter is required", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", lookupError(err, "User", email)
	}
	if user.EmailVerified {
		return "", customError.WrapEmailAlreadyVerified(email)
	}

	if err := s.userRepo.MarkEmailVerified(ctx, email); err != nil {
		return "", lookupError(err, "User", email)
	}

	return mail.RenderEmailVerified(email)
}
