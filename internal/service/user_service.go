package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/segyhp/invoice-engine/internal/auth"
	"github.com/segyhp/invoice-engine/internal/domain"
	"github.com/segyhp/invoice-engine/internal/repository"
	customError "github.com/segyhp/invoice-engine/pkg/errors"
)

// TokenIssuer issues access tokens
type TokenIssuer interface {
	Generate(userID uuid.UUID, email string) (*auth.Token, error)
}

type UserService struct {
	userRepo    repository.UserRepository
	clientRepo  repository.ClientRepository
	productRepo repository.ProductRepository
	invoiceRepo repository.InvoiceRepository
	tokens      TokenIssuer
	validator   *validator.Validate
}

func NewUserService(
	userRepo repository.UserRepository,
	clientRepo repository.ClientRepository,
	productRepo repository.ProductRepository,
	invoiceRepo repository.InvoiceRepository,
	tokens TokenIssuer,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		invoiceRepo: invoiceRepo,
		tokens:      tokens,
		validator:   validator.New(),
	}
}

// Register creates a user with a hashed password
func (s *UserService) Register(ctx context.Context, request *domain.RegisterRequest) (*domain.User, error) {
	if err := validate(s.validator, request); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(request.Email))

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, customError.WrapAlreadyExists("User", email)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	hash, err := auth.HashPassword(request.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FullName:     request.FullName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, customError.WrapAlreadyExists("User", email)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	return user, nil
}

// Login checks credentials and issues an access token
func (s *UserService) Login(ctx context.Context, request *domain.LoginRequest) (*domain.LoginResponse, error) {
	if err := validate(s.validator, request); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(request.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, lookupError(err, "User", email)
	}

	if !auth.CheckPassword(user.PasswordHash, request.Password) {
		return nil, customError.WrapInvalidCredentials()
	}

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &domain.LoginResponse{
		Token:     token.Value,
		UserID:    user.ID,
		ExpiresAt: token.ExpiresAt,
	}, nil
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return users, nil
}

// Get returns the user together with their clients, products and invoices
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.UserDetail, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "User", id.String())
	}

	clients, err := s.clientRepo.ListByUser(ctx, id)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	products, err := s.productRepo.ListByUser(ctx, id)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	total, err := s.invoiceRepo.CountByUser(ctx, id)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	invoices, err := s.invoiceRepo.ListByUser(ctx, id, total, 0)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.UserDetail{
		User:     user,
		Clients:  clients,
		Products: products,
		Invoices: invoices,
	}, nil
}

// Update applies the non-nil fields of request; a new password is re-hashed
func (s *UserService) Update(ctx context.Context, id uuid.UUID, request *domain.UpdateUserRequest) (*domain.User, error) {
	if err := validate(s.validator, request); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "User", id.String())
	}

	if request.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*request.Email))
	}
	if request.FullName != nil {
		user.FullName = *request.FullName
	}
	if request.EmailVerified != nil {
		user.EmailVerified = *request.EmailVerified
	}
	if request.Password != nil {
		hash, err := auth.HashPassword(*request.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, customError.WrapAlreadyExists("User", user.Email)
		}
		return nil, lookupError(err, "User", id.String())
	}

	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return lookupError(err, "User", id.String())
	}
	return nil
}
