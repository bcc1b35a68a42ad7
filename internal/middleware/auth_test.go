package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/segyhp/invoice-engine/internal/auth"
	"github.com/segyhp/invoice-engine/internal/config"
)

func TestJWTAuth(t *testing.T) {
	jwtService := auth.NewJWTService(config.JWTConfig{Secret: "secret", Expiration: time.Hour, Issuer: "test"})
	userID := uuid.New()
	token, err := jwtService.Generate(userID, "ana@example.com")
	require.NoError(t, err)

	router := mux.NewRouter()
	router.Use(JWTAuth(jwtService, zap.NewNop()))
	router.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFrom(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(claims.UserID))
	}).Methods(http.MethodGet)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid token", header: "Bearer " + token.Value, wantStatus: http.StatusOK, wantBody: userID.String()},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token.Value, wantStatus: http.StatusUnauthorized},
		{name: "tampered token", header: "Bearer " + token.Value + "x", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}
