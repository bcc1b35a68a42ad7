package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	customError "github.com/segyhp/invoice-engine/pkg/errors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", customError.WrapNotFound("Invoice", "1"), http.StatusNotFound},
		{"already exists", customError.WrapAlreadyExists("User", "a@b.c"), http.StatusConflict},
		{"stale", customError.WrapStaleRecurringInvoice("1"), http.StatusConflict},
		{"validation", customError.WrapValidation("bad", nil), http.StatusBadRequest},
		{"schedule", customError.WrapInvalidScheduleKind("hourly"), http.StatusBadRequest},
		{"recipient", customError.WrapInvalidRecipient("x"), http.StatusBadRequest},
		{"credentials", customError.WrapInvalidCredentials(), http.StatusUnauthorized},
		{"forbidden", customError.WrapForbidden("user 1"), http.StatusForbidden},
		{"database", customError.WrapDatabaseError(errors.New("boom")), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestFromError(t *testing.T) {
	rec := httptest.NewRecorder()

	FromError(rec, customError.WrapNotFound("Invoice", "42"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, customError.ErrCodeNotFound, body.Code)
	assert.Equal(t, "Invoice with ID 42 not found", body.Message)
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	called := false
	h := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/invoices", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)
}

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := LoggingMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, http.StatusTeapot, entries[0].ContextMap()["status"])
	assert.Equal(t, "/health", entries[0].ContextMap()["path"])
}
