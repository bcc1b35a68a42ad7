package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/segyhp/invoice-engine/internal/auth"
	"github.com/segyhp/invoice-engine/pkg/response"
)

const bearerPrefix = "Bearer "

// TokenValidator validates a bearer token
type TokenValidator interface {
	Validate(tokenString string) (*auth.Claims, error)
}

// JWTAuth rejects requests without a valid bearer token and stores the
// token claims on the request context.
func JWTAuth(validator TokenValidator, logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				response.Unauthorized(w, "Missing bearer token")
				return
			}

			claims, err := validator.Validate(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
			if err != nil {
				logger.Debug("Rejected access token",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				if errors.Is(err, auth.ErrExpiredToken) {
					response.Unauthorized(w, "Token has expired")
					return
				}
				response.Unauthorized(w, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}
