package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/invoice-engine/internal/domain"
	"github.com/segyhp/invoice-engine/internal/repository"
	customError "github.com/segyhp/invoice-engine/pkg/errors"
)

type ProductService struct {
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	validator   *validator.Validate
}

func NewProductService(productRepo repository.ProductRepository, userRepo repository.UserRepository) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		userRepo:    userRepo,
		validator:   validator.New(),
	}
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return customError.WrapValidation("price must not be negative", nil)
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, request *domain.CreateProductRequest) (*domain.Product, error) {
	if err := validate(s.validator, request); err != nil {
		return nil, err
	}
	if err := validatePrice(request.Price); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, request.UserID); err != nil {
		return nil, lookupError(err, "User", request.UserID.String())
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		UserID:      request.UserID,
		Name:        request.Name,
		Description: request.Description,
		Price:       request.Price.Round(2),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return product, nil
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Product", id.String())
	}
	return product, nil
}

func (s *ProductService) List(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return products, nil
}

func (s *ProductService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Product, error) {
	products, err := s.productRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return products, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, request *domain.UpdateProductRequest) (*domain.Product, error) {
	if err := validate(s.validator, request); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Product", id.String())
	}

	if request.Name != nil {
		product.Name = *request.Name
	}
	if request.Description != nil {
		product.Description = *request.Description
	}
	if request.Price != nil {
		if err := validatePrice(*request.Price); err != nil {
			return nil, err
		}
		product.Price = request.Price.Round(2)
	}
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, lookupError(err, "Product", id.String())
	}

	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return lookupError(err, "Product", id.String())
	}
	return nil
}
