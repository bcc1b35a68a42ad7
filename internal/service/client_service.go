package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/segyhp/invoice-engine/internal/domain"
	"github.com/segyhp/invoice-engine/internal/repository"
	customError "github.com/segyhp/invoice-engine/pkg/errors"
)

type ClientService struct {
	clientRepo repository.ClientRepository
	userRepo   repository.UserRepository
	validator  *validator.Validate
}

func NewClientService(clientRepo repository.ClientRepository, userRepo repository.UserRepository) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		userRepo:   userRepo,
		validator:  validator.New(),
	}
}

func (s *ClientService) Create(ctx context.Context, request *domain.CreateClientRequest) (*domain.Client, error) {
	if err := validate(s.validator, request); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, request.UserID); err != nil {
		return nil, lookupError(err, "User", request.UserID.String())
	}

	now := time.Now()
	client := &domain.Client{
		ID:           uuid.New(),
		UserID:       request.UserID,
		Name:         request.Name,
		Address:      request.Address,
		ContactInfo:  request.ContactInfo,
		PaymentTerms: request.PaymentTerms,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return client, nil
}

func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Client", id.String())
	}
	return client, nil
}

func (s *ClientService) List(ctx context.Context) ([]*domain.Client, error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return clients, nil
}

func (s *ClientService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Client, error) {
	clients, err := s.clientRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return clients, nil
}

// Search matches clients by a case-insensitive name fragment. No match is
// reported as not found.
func (s *ClientService) Search(ctx context.Context, name string) ([]*domain.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, customError.WrapValidation("name query parameter is required", nil)
	}

	clients, err := s.clientRepo.SearchByName(ctx, name)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if len(clients) == 0 {
		return nil, customError.NewBusinessError(customError.ErrCodeNotFound,
			"No clients found matching "+name, customError.ErrNotFound)
	}

	return clients, nil
}

func (s *ClientService) Update(ctx context.Context, id uuid.UUID, request *domain.UpdateClientRequest) (*domain.Client, error) {
	if err := validate(s.validator, request); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Client", id.String())
	}

	if request.Name != nil {
		client.Name = *request.Name
	}
	if request.Address != nil {
		client.Address = *request.Address
	}
	if request.ContactInfo != nil {
		client.ContactInfo = *request.ContactInfo
	}
	if request.PaymentTerms != nil {
		client.PaymentTerms = *request.PaymentTerms
	}
	client.UpdatedAt = time.Now()

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, lookupError(err, "Client", id.String())
	}

	return client, nil
}

func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return lookupError(err, "Client", id.String())
	}
	return nil
}
