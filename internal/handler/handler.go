package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/segyhp/invoice-engine/internal/auth"
	customError "github.com/segyhp/invoice-engine/pkg/errors"
)

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return customError.WrapValidation("Invalid request body", err)
	}
	return nil
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := mux.Vars(r)[key]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, customError.WrapValidation("Invalid "+key, err)
	}
	return id, nil
}

// pathOwner parses {userId} and requires it to be the authenticated user
func pathOwner(r *http.Request) (uuid.UUID, error) {
	userID, err := pathUUID(r, "userId")
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok || claims.UserID != userID.String() {
		return uuid.Nil, customError.WrapForbidden("user " + userID.String())
	}
	return userID, nil
}
