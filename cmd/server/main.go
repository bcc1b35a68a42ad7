package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/segyhp/invoice-engine/internal/auth"
	"github.com/segyhp/invoice-engine/internal/cache"
	"github.com/segyhp/invoice-engine/internal/config"
	"github.com/segyhp/invoice-engine/internal/handler"
	"github.com/segyhp/invoice-engine/internal/logger"
	"github.com/segyhp/invoice-engine/internal/mail"
	"github.com/segyhp/invoice-engine/internal/middleware"
	"github.com/segyhp/invoice-engine/internal/repository"
	"github.com/segyhp/invoice-engine/internal/scheduler"
	"github.com/segyhp/invoice-engine/internal/service"
	"github.com/segyhp/invoice-engine/pkg/clock"
	"github.com/segyhp/invoice-engine/pkg/response"
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

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	productRepo := repository.NewProductRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	itemRepo := repository.NewInvoiceItemRepository(db)

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWT)
	statsCache := cache.NewRedisCache(redisClient, "")

	invoiceService := service.NewInvoiceService(invoiceRepo, itemRepo, clientRepo, statsCache, cfg.Cache.StatsTTL, log)
	handlers := handler.Handlers{
		Health:      handler.NewHealthHandler(db, redisClient, cfg.Health.Timeout),
		User:        handler.NewUserHandler(service.NewUserService(userRepo, clientRepo, productRepo, invoiceRepo, jwtService)),
		Client:      handler.NewClientHandler(service.NewClientService(clientRepo, userRepo)),
		Product:     handler.NewProductHandler(service.NewProductService(productRepo, userRepo)),
		Invoice:     handler.NewInvoiceHandler(invoiceService),
		InvoiceItem: handler.NewInvoiceItemHandler(service.NewInvoiceItemService(itemRepo, invoiceRepo, productRepo, statsCache, log)),
		Mail:        handler.NewMailHandler(service.NewMailService(invoiceService, userRepo, mail.NewSMTPMailer(cfg.Mail), log)),
	}

	// Setup routes
	router := handler.NewRouter(handlers, middleware.JWTAuth(jwtService, log), log)

	var recurring *scheduler.RecurringScheduler
	if cfg.Scheduler.Embedded {
		recurringService := service.NewRecurringInvoiceService(invoiceRepo, itemRepo, cfg.Scheduler.Lookahead, cfg.Location(), log)
		recurring, err = scheduler.New(cfg.Scheduler, cfg.Location(), recurringService, cache.NewRedisLocker(redisClient, ""), clock.Real(), log)
		if err != nil {
			log.Fatal("Failed to create recurring invoice scheduler", zap.Error(err))
		}
		recurring.Start()
		handlers.Health.WithScheduler(recurring)
	}

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      response.CORSMiddleware(router),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Server.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if recurring != nil {
		if err := recurring.Stop(ctx); err != nil {
			log.Error("Recurring invoice scheduler did not stop cleanly", zap.Error(err))
		}
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
