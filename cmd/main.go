package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"stockdesk/internal/handlers"
	"stockdesk/internal/jobs"
	"stockdesk/internal/middleware"
	"stockdesk/internal/repositories"
	"stockdesk/internal/services"
	"stockdesk/internal/stocksync"
	"stockdesk/pkg/config"
	"stockdesk/pkg/database"
	"stockdesk/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := database.NewPool(ctx, cfg.DB.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	reportSvc, err := services.NewMinioReportService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize report storage")
	}
	if err := reportSvc.EnsureBucketExists(context.Background(), cfg.Minio.Bucket); err != nil {
		log.Warn().Err(err).Str("bucket", cfg.Minio.Bucket).Msg("could not ensure report bucket, uploads may fail")
	}

	// Repositories
	productRepo := repositories.NewProductRepo(pool)
	requisitionRepo := repositories.NewRequisitionRepo(pool)
	sectorRepo := repositories.NewSectorRepo(pool)
	sectorStockRepo := repositories.NewSectorStockRepo(pool)
	movementRepo := repositories.NewInventoryMovementRepo(pool)
	portioningRepo := repositories.NewPortioningRepo(pool)
	balanceRepo := repositories.NewBalanceRepo(pool)

	// Services
	publisher := stocksync.NewPublisher(redisClient)
	notifier := services.NewRedisNotifier(redisClient, log)
	portioningSvc := services.NewPortioningService(portioningRepo)
	financeSvc := services.NewFinanceService(balanceRepo, log)
	stockSvc := services.NewStockService(productRepo, sectorStockRepo, movementRepo, portioningSvc, publisher, log)
	requisitionSvc := services.NewRequisitionService(requisitionRepo, productRepo, sectorRepo, stockSvc, financeSvc, notifier, log)

	// Background jobs
	reconciliation := jobs.NewReconciliationSweep(productRepo, requisitionRepo, sectorStockRepo, portioningRepo, reportSvc, cfg.Minio.Bucket, log)
	lowStock := jobs.NewLowStockAlertService(productRepo, log)
	scheduler, err := jobs.NewScheduler(reconciliation, lowStock, cfg.Jobs, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create job scheduler")
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("job scheduler shutdown failed")
		}
	}()

	// Handlers
	requisitionHandlers := handlers.NewRequisitionHandlers(requisitionSvc)
	productHandlers := handlers.NewProductHandlers(productRepo, movementRepo, stockSvc)
	stockHandlers := handlers.NewStockHandlers(sectorStockRepo, sectorRepo, portioningSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, redisClient)

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())

	// Health endpoints stay open.
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	api := e.Group("/api/v1")
	api.Use(echojwt.WithConfig(middleware.JWTConfig(cfg.JWT.Secret)))
	api.Use(middleware.HotelScope())

	api.POST("/requisitions", requisitionHandlers.Create)
	api.GET("/requisitions/pending", requisitionHandlers.ListPending)
	api.GET("/requisitions/history", requisitionHandlers.ListHistory)
	api.GET("/requisitions/:id", requisitionHandlers.GetByID)
	api.POST("/requisitions/:id/deliver", requisitionHandlers.Deliver)
	api.POST("/requisitions/:id/reject", requisitionHandlers.Reject)
	api.POST("/requisitions/:id/substitute", requisitionHandlers.Substitute)
	api.POST("/deliveries/direct", requisitionHandlers.DirectDeliver)

	api.GET("/products", productHandlers.List)
	api.GET("/products/:id", productHandlers.GetByID)
	api.POST("/products/:id/adjust", productHandlers.AdjustStock)
	api.GET("/products/:id/movements", productHandlers.ListMovements)

	api.GET("/sectors", stockHandlers.ListSectors)
	api.GET("/sectors/:id/stock", stockHandlers.ListSectorStock)
	api.GET("/portioning", stockHandlers.ListPortioningQueue)

	go func() {
		if err := e.Start(cfg.HTTP.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server stopped")
		}
	}()
	log.Info().Str("addr", cfg.HTTP.Addr()).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
}
