package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrNotFound              = errors.New("record not found")
	ErrAlreadyExists         = errors.New("record already exists")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrEmailAlreadyVerified  = errors.New("email is already verified")
	ErrInvalidRecipient      = errors.New("invalid email recipient")
	ErrInvalidScheduleKind   = errors.New("invalid recurring schedule kind")
	ErrStaleRecurringInvoice = errors.New("recurring invoice was advanced concurrently")
	ErrOccurrenceExists      = errors.New("recurring occurrence already generated")
	ErrForbidden             = errors.New("forbidden")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeAlreadyExists         = "ALREADY_EXISTS"
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeInvalidCredentials    = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeForbidden             = "FORBIDDEN"
	ErrCodeOccurrenceExists      = "RECURRING_OCCURRENCE_EXISTS"
	ErrCodeEmailAlreadyVerified  = "EMAIL_ALREADY_VERIFIED"
	ErrCodeInvalidRecipient      = "INVALID_RECIPIENT"
	ErrCodeInvalidScheduleKind   = "INVALID_SCHEDULE_KIND"
	ErrCodeStaleRecurringInvoice = "STALE_RECURRING_INVOICE"
	ErrCodeDatabaseError         = "DATABASE_ERROR"
	ErrCodeCacheError            = "CACHE_ERROR"
	ErrCodeMailError             = "MAIL_ERROR"
)

// Wrap common errors with business context
func WrapNotFound(entity, id string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotFound,
		fmt.Sprintf("%s with ID %s not found", entity, id),
		ErrNotFound,
	)
}

func WrapAlreadyExists(entity, key string) *BusinessError {
	return NewBusinessError(
		ErrCodeAlreadyExists,
		fmt.Sprintf("%s %s already exists", entity, key),
		ErrAlreadyExists,
	)
}

func WrapValidation(message string, err error) *BusinessError {
	if err == nil {
		err = ErrInvalidInput
	}
	return NewBusinessError(ErrCodeValidation, message, err)
}

func WrapInvalidCredentials() *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidCredentials,
		"Invalid email or password",
		ErrInvalidCredentials,
	)
}

func WrapUnauthorized(err error) *BusinessError {
	return NewBusinessError(ErrCodeUnauthorized, "authentication required", err)
}

func WrapForbidden(resource string) *BusinessError {
	return NewBusinessError(
		ErrCodeForbidden,
		fmt.Sprintf("Not allowed to access %s", resource),
		ErrForbidden,
	)
}

func WrapEmailAlreadyVerified(email string) *BusinessError {
	return NewBusinessError(
		ErrCodeEmailAlreadyVerified,
		fmt.Sprintf("Email %s is already verified", email),
		ErrEmailAlreadyVerified,
	)
}

func WrapInvalidRecipient(recipient string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidRecipient,
		fmt.Sprintf("%q is not a deliverable email address", recipient),
		ErrInvalidRecipient,
	)
}

func WrapInvalidScheduleKind(kind string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidScheduleKind,
		fmt.Sprintf("Unknown recurring schedule %q", kind),
		ErrInvalidScheduleKind,
	)
}

func WrapStaleRecurringInvoice(invoiceID string) *BusinessError {
	return NewBusinessError(
		ErrCodeStaleRecurringInvoice,
		fmt.Sprintf("Invoice %s due date changed before it could be advanced", invoiceID),
		ErrStaleRecurringInvoice,
	)
}

func WrapOccurrenceExists(invoiceID string, dueDate string) *BusinessError {
	return NewBusinessError(
		ErrCodeOccurrenceExists,
		fmt.Sprintf("Invoice %s already has an occurrence due %s", invoiceID, dueDate),
		ErrOccurrenceExists,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}

func WrapMailError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeMailError,
		"failed to send email",
		err,
	)
}

// Code returns the business error code carried by err, or "" when there is none
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
