package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/invoice-engine/internal/service"
)

type schedulerStub struct {
	running bool
	last    *service.RunSummary
}

func (s schedulerStub) Running() bool { return s.running }

func (s schedulerStub) LastRun() (service.RunSummary, bool) {
	if s.last == nil {
		return service.RunSummary{}, false
	}
	return *s.last, true
}

type healthBody struct {
	Success bool         `json:"success"`
	Data    HealthStatus `json:"data"`
}

func serveHealth(t *testing.T, h http.HandlerFunc) (int, HealthStatus) {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body healthBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body.Data
}

func newPingDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return sqlx.NewDb(mockDB, "postgres"), mock
}

func TestHealth_ReportsLastRecurringRun(t *testing.T) {
	last := service.RunSummary{StartedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Scanned: 3, Cloned: 2, NotDue: 1}
	h := NewHealthHandler(nil, nil, time.Second).WithScheduler(schedulerStub{running: true, last: &last})

	code, status := serveHealth(t, h.Health)

	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, status.Recurring)
	assert.True(t, status.Recurring.Running)
	require.NotNil(t, status.Recurring.LastRun)
	assert.Equal(t, 2, status.Recurring.LastRun.Cloned)
	assert.True(t, status.Recurring.LastRun.StartedAt.Equal(last.StartedAt))
}

func TestHealth_WithoutScheduler(t *testing.T) {
	code, status := serveHealth(t, NewHealthHandler(nil, nil, time.Second).Health)

	assert.Equal(t, http.StatusOK, code)
	assert.Nil(t, status.Recurring)
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		scheduler  SchedulerStatus
		wantCode   int
		wantChecks map[string]string
	}{
		{
			name:       "database reachable",
			wantCode:   http.StatusOK,
			wantChecks: map[string]string{"postgres": "ok"},
		},
		{
			name:       "database down",
			pingErr:    errors.New("connection refused"),
			wantCode:   http.StatusServiceUnavailable,
			wantChecks: map[string]string{"postgres": "failed: connection refused"},
		},
		{
			name:       "embedded scheduler stopped",
			scheduler:  schedulerStub{running: false},
			wantCode:   http.StatusServiceUnavailable,
			wantChecks: map[string]string{"postgres": "ok", "recurring_scheduler": "stopped"},
		},
		{
			name:       "embedded scheduler running",
			scheduler:  schedulerStub{running: true},
			wantCode:   http.StatusOK,
			wantChecks: map[string]string{"postgres": "ok", "recurring_scheduler": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newPingDB(t)
			mock.ExpectPing().WillReturnError(tt.pingErr)

			h := NewHealthHandler(db, nil, time.Second)
			if tt.scheduler != nil {
				h.WithScheduler(tt.scheduler)
			}

			code, status := serveHealth(t, h.Ready)

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantChecks, status.Checks)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
