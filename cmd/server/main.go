package main

// Composition root. Everything is constructed here, top to bottom: config,
// Postgres, Redis, the persistence breaker, the realtime layer, the state
// manager, the worker pool, and finally the HTTP server with graceful
// shutdown.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"brewpos/internal/config"
	"brewpos/internal/handler"
	"brewpos/internal/infra"
	"brewpos/internal/middleware"
	"brewpos/internal/realtime"
	"brewpos/internal/repository"
	"brewpos/internal/router"
	"brewpos/internal/service"
	"brewpos/internal/state"
	"brewpos/internal/worker"
)

// @title           brewpos API
// @version         1.0
// @description     Multi-tenant point-of-sale backend for coffee shops.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	setupLogger(cfg)

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}

	// Repositories
	employees := repository.NewEmployeeRepository(db)
	stateDocs := repository.NewStateDocRepository(db)
	receipts := repository.NewReceiptRepository(db)
	movements := repository.NewStockMovementRepository(db)

	// Infrastructure
	persistCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	docCache := infra.NewDocCache(rdb)
	publisher := realtime.NewPublisher(rdb, cfg.InstanceID)
	listener := realtime.NewListener(rdb, cfg.InstanceID)
	mailer := infra.NewMailer(cfg)

	// Async workers
	dispatcher := worker.NewDispatcher(rdb)
	manager := state.NewManager(stateDocs, docCache, dispatcher, listener)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	handlers := &worker.WorkerHandlers{
		Persist: worker.NewPersistWorker(stateDocs, docCache, publisher, persistCB, rdb),
		Receipt: worker.NewReceiptWorker(receipts, dispatcher, cfg.PDFStoragePath),
		Email:   worker.NewEmailWorker(mailer, receipts, rdb),
	}
	worker.StartWorkerPool(workerCtx, rdb, handlers, cfg.WorkerPoolSize)

	retryCron := worker.NewRetryCron(receipts, dispatcher, persistCB, rdb, cfg.PDFStoragePath)
	go retryCron.Start(workerCtx)

	// Services
	authSvc := service.NewAuthService(employees, cfg.JWTSecret, cfg.JWTExpirationHours, cfg.JWTRefreshHours)
	orderSvc := service.NewOrderService(manager, movements, dispatcher)
	inventorySvc := service.NewInventoryService(manager, movements)
	reportSvc := service.NewReportService(manager)
	receiptSvc := service.NewReceiptService(receipts)

	// HTTP
	orgScope := middleware.NewOrgScope(employees, rdb)
	engine := router.New(cfg, &router.Handlers{
		Health:    handler.NewHealthHandler(db, rdb, persistCB),
		Auth:      handler.NewAuthHandler(authSvc),
		Orders:    handler.NewOrderHandler(orderSvc),
		Inventory: handler.NewInventoryHandler(inventorySvc),
		Reports:   handler.NewReportHandler(reportSvc),
		Receipts:  handler.NewReceiptHandler(receiptSvc),
		Employees: handler.NewEmployeeHandler(authSvc),
	}, authSvc, orgScope)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Str("env", cfg.Env).
			Str("instance_id", cfg.InstanceID).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	stopWorkers()
	manager.Close()
	log.Info().Msg("bye")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
