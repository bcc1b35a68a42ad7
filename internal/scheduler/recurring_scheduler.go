package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/segyhp/invoice-engine/internal/cache"
	"github.com/segyhp/invoice-engine/internal/config"
	"github.com/segyhp/invoice-engine/internal/logger"
	"github.com/segyhp/invoice-engine/internal/service"
	"github.com/segyhp/invoice-engine/pkg/clock"
)

const (
	lockKey            = "recurring-invoices"
	lockReleaseTimeout = 5 * time.Second

	SkipTickInProgress   = "tick in progress"
	SkipLockHeld         = "lock held by another process"
	SkipLockUnavailable  = "lock unavailable"
	SkipSchedulerStopped = "scheduler stopped"
)

// DueProcessor generates every recurring invoice due at now
type DueProcessor interface {
	ProcessDue(ctx context.Context, now time.Time) (service.RunSummary, error)
}

// RecurringScheduler runs the recurring invoice pass on a cron schedule.
// A tick never overlaps another tick, in this process or in any other
// process sharing the same locker.
type RecurringScheduler struct {
	cfg       config.SchedulerConfig
	location  *time.Location
	processor DueProcessor
	locker    cache.Locker
	clock     clock.Clock
	logger    *zap.Logger

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc

	tickMu    sync.Mutex
	mu        sync.Mutex
	isRunning bool

	lastMu  sync.RWMutex
	lastRun *service.RunSummary
}

// New builds a scheduler; nothing runs until Start is called. Cron fires in
// location (UTC when nil). locker may be nil when only one process ever runs
// the scheduler.
func New(
	cfg config.SchedulerConfig,
	location *time.Location,
	processor DueProcessor,
	locker cache.Locker,
	clk clock.Clock,
	log *zap.Logger,
) (*RecurringScheduler, error) {
	if location == nil {
		location = time.UTC
	}
	if clk == nil {
		clk = clock.Real()
	}
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &RecurringScheduler{
		cfg:       cfg,
		location:  location,
		processor: processor,
		locker:    locker,
		clock:     clk,
		logger:    log,
		ctx:       ctx,
		cancel:    cancel,
	}

	cronLogger := logger.NewCronLogger(log)
	s.cron = cron.New(
		cron.WithSeconds(),
		cron.WithLocation(location),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	if _, err := s.cron.AddFunc(cfg.Cron, s.tick); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid recurring cron %q: %w", cfg.Cron, err)
	}

	return s, nil
}

// Start begins firing ticks on the cron schedule
func (s *RecurringScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return
	}
	if s.ctx.Err() != nil {
		s.logger.Warn("Recurring invoice scheduler was stopped and cannot be started again")
		return
	}
	s.isRunning = true
	s.cron.Start()

	s.logger.Info("Recurring invoice scheduler started",
		zap.String("cron", s.cfg.Cron),
		zap.String("timezone", s.location.String()),
		zap.Duration("lookahead", s.cfg.Lookahead),
	)
}

// Stop stops scheduling new ticks, cancels the one in flight and waits for
// it to return or for ctx to expire. A stopped scheduler is not restarted.
func (s *RecurringScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	s.cancel()
	done := s.cron.Stop()

	select {
	case <-done.Done():
		s.logger.Info("Recurring invoice scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether Start has been called and Stop has not
func (s *RecurringScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// LastRun returns the summary of the most recent pass, skipped or not
func (s *RecurringScheduler) LastRun() (service.RunSummary, bool) {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()

	if s.lastRun == nil {
		return service.RunSummary{}, false
	}
	return *s.lastRun, true
}

func (s *RecurringScheduler) tick() {
	s.RunOnce(s.ctx)
}

func (s *RecurringScheduler) record(summary service.RunSummary) service.RunSummary {
	s.lastMu.Lock()
	s.lastRun = &summary
	s.lastMu.Unlock()
	return summary
}

// RunOnce performs one pass immediately, subject to the same overlap rules
// as scheduled ticks.
func (s *RecurringScheduler) RunOnce(ctx context.Context) service.RunSummary {
	if ctx.Err() != nil {
		return service.RunSummary{SkipReason: SkipSchedulerStopped}
	}

	if !s.tickMu.TryLock() {
		s.logger.Warn("Skipping recurring invoice tick, previous tick still running")
		return service.RunSummary{SkipReason: SkipTickInProgress}
	}
	defer s.tickMu.Unlock()

	// The pass must not outlive the distributed lock it runs under.
	ctx, cancel := context.WithTimeout(ctx, s.cfg.LockTTL)
	defer cancel()

	if s.locker != nil {
		lease, acquired, err := s.locker.Acquire(ctx, lockKey, s.cfg.LockTTL)
		if err != nil {
			s.logger.Warn("Skipping recurring invoice tick, lock unavailable", zap.Error(err))
			return s.record(service.RunSummary{StartedAt: s.clock.Now(), SkipReason: SkipLockUnavailable})
		}
		if !acquired {
			s.logger.Debug("Skipping recurring invoice tick, lock held elsewhere")
			return s.record(service.RunSummary{StartedAt: s.clock.Now(), SkipReason: SkipLockHeld})
		}
		defer s.release(lease)
	}

	now := s.clock.Now().In(s.location)
	summary, err := s.processor.ProcessDue(ctx, now)
	if err != nil {
		s.logger.Error("Recurring invoice tick failed",
			zap.Time("now", now),
			zap.Error(err),
		)
		return s.record(summary)
	}

	s.logger.Info("Recurring invoice tick finished",
		zap.Time("now", now),
		zap.Int("scanned", summary.Scanned),
		zap.Int("cloned", summary.Cloned),
		zap.Int("not_due", summary.NotDue),
		zap.Int("stale", summary.Stale),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", summary.Duration),
	)

	return s.record(summary)
}

func (s *RecurringScheduler) release(lease cache.Lease) {
	ctx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
	defer cancel()

	if err := lease.Release(ctx); err != nil {
		s.logger.Warn("Failed to release recurring invoice lock", zap.Error(err))
	}
}
