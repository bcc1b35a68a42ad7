package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/invoice-engine/internal/service"
	"github.com/segyhp/invoice-engine/pkg/response"
)

const (
	healthOK          = "ok"
	healthUnavailable = "unavailable"
)

// SchedulerStatus is the view of the embedded recurring scheduler that the
// health endpoints report.
type SchedulerStatus interface {
	Running() bool
	LastRun() (service.RunSummary, bool)
}

type dependencyCheck struct {
	name string
	ping func(ctx context.Context) error
}

type HealthHandler struct {
	checks    []dependencyCheck
	scheduler SchedulerStatus
	timeout   time.Duration
}

// NewHealthHandler checks postgres and redis on readiness. A nil client is
// not checked.
func NewHealthHandler(db *sqlx.DB, redisClient *redis.Client, timeout time.Duration) *HealthHandler {
	h := &HealthHandler{timeout: timeout}

	if db != nil {
		h.checks = append(h.checks, dependencyCheck{name: "postgres", ping: db.PingContext})
	}
	if redisClient != nil {
		h.checks = append(h.checks, dependencyCheck{
			name: "redis",
			ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	return h
}

// WithScheduler adds the recurring scheduler running in this process
func (h *HealthHandler) WithScheduler(s SchedulerStatus) *HealthHandler {
	h.scheduler = s
	return h
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
	Recurring *RecurringStatus  `json:"recurring,omitempty"`
}

type RecurringStatus struct {
	Running bool                `json:"running"`
	LastRun *service.RunSummary `json:"last_run,omitempty"`
}

func (h *HealthHandler) recurringStatus() *RecurringStatus {
	if h.scheduler == nil {
		return nil
	}

	status := &RecurringStatus{Running: h.scheduler.Running()}
	if last, ok := h.scheduler.LastRun(); ok {
		status.LastRun = &last
	}
	return status
}

// Health answers liveness without touching dependencies
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, HealthStatus{
		Status:    healthOK,
		Timestamp: time.Now(),
		Recurring: h.recurringStatus(),
	})
}

// Ready answers 503 when a dependency does not answer within the timeout or
// the embedded scheduler has stopped.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    healthOK,
		Timestamp: time.Now(),
		Checks:    make(map[string]string, len(h.checks)+1),
		Recurring: h.recurringStatus(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	for _, check := range h.checks {
		if err := check.ping(ctx); err != nil {
			status.Status = healthUnavailable
			status.Checks[check.name] = "failed: " + err.Error()
			continue
		}
		status.Checks[check.name] = healthOK
	}

	if status.Recurring != nil {
		if status.Recurring.Running {
			status.Checks["recurring_scheduler"] = healthOK
		} else {
			status.Status = healthUnavailable
			status.Checks["recurring_scheduler"] = "stopped"
		}
	}

	if status.Status != healthOK {
		response.JSON(w, http.StatusServiceUnavailable, status)
		return
	}

	response.Success(w, status)
}
