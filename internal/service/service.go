package service

import (
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"

	customError "github.com/segyhp/invoice-engine/pkg/errors"
)

// lookupError maps a repository error for entity id onto a business error
func lookupError(err error, entity, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return customError.WrapNotFound(entity, id)
	}
	return customError.WrapDatabaseError(err)
}

// validate runs struct validation and reports failures as validation errors
func validate(v *validator.Validate, request interface{}) error {
	if err := v.Struct(request); err != nil {
		return customError.WrapValidation("Validation failed", err)
	}
	return nil
}
