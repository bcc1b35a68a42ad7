package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User owns clients, products and invoices
type User struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password"`
	FullName      string    `json:"full_name" db:"full_name"`
	EmailVerified bool      `json:"email_verified" db:"email_verified"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

type UserDetail struct {
	*User
	Clients  []*Client  `json:"clients"`
	Products []*Product `json:"products"`
	Invoices []*Invoice `json:"invoices"`
}

// Client is a customer billed by a user
type Client struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Address      string    `json:"address" db:"address"`
	ContactInfo  string    `json:"contact_info" db:"contact_info"`
	PaymentTerms string    `json:"payment_terms" db:"payment_terms"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Product is something a user sells; Price is the unit price
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type UpdateUserRequest struct {
	Email         *string `json:"email" validate:"omitempty,email"`
	Password      *string `json:"password" validate:"omitempty,min=6"`
	FullName      *string `json:"full_name"`
	EmailVerified *bool   `json:"email_verified"`
}

type CreateClientRequest struct {
	UserID       uuid.UUID `json:"user_id" validate:"required"`
	Name         string    `json:"name" validate:"required"`
	Address      string    `json:"address"`
	ContactInfo  string    `json:"contact_info"`
	PaymentTerms string    `json:"payment_terms"`
}

type UpdateClientRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1"`
	Address      *string `json:"address"`
	ContactInfo  *string `json:"contact_info"`
	PaymentTerms *string `json:"payment_terms"`
}

type CreateProductRequest struct {
	UserID      uuid.UUID       `json:"user_id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}
