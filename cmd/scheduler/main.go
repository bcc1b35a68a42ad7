package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/segyhp/invoice-engine/internal/cache"
	"github.com/segyhp/invoice-engine/internal/config"
	"github.com/segyhp/invoice-engine/internal/logger"
	"github.com/segyhp/invoice-engine/internal/repository"
	"github.com/segyhp/invoice-engine/internal/scheduler"
	"github.com/segyhp/invoice-engine/internal/service"
	"github.com/segyhp/invoice-engine/pkg/clock"
)

func main() {
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("Failed to load configuration", zap.Error(err))
	}

	log := logger.New(cfg.Logging)
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if envErr != nil {
		log.Debug("No .env file loaded", zap.Error(envErr))
	}

	log.Info("Starting recurring invoice scheduler...")

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	recurringService := service.NewRecurringInvoiceService(
		repository.NewInvoiceRepository(db),
		repository.NewInvoiceItemRepository(db),
		cfg.Scheduler.Lookahead,
		cfg.Location(),
		log,
	)

	recurring, err := scheduler.New(cfg.Scheduler, cfg.Location(), recurringService, cache.NewRedisLocker(redisClient, ""), clock.Real(), log)
	if err != nil {
		log.Fatal("Failed to create recurring invoice scheduler", zap.Error(err))
	}

	// Catch up once at startup instead of waiting for the first cron tick
	recurring.RunOnce(context.Background())
	recurring.Start()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down scheduler...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := recurring.Stop(ctx); err != nil {
		log.Error("Scheduler did not stop cleanly", zap.Error(err))
	}

	log.Info("Scheduler stopped")
}
