package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwapim/catalog-backend/config"
	"github.com/iwapim/catalog-backend/internal/app/controller"
	"github.com/iwapim/catalog-backend/internal/app/repository"
	"github.com/iwapim/catalog-backend/internal/app/service"
	"github.com/iwapim/catalog-backend/internal/db"
	"github.com/iwapim/catalog-backend/internal/router"
	"github.com/iwapim/catalog-backend/internal/scheduler"
	"github.com/iwapim/catalog-backend/pkg/logger"
	"github.com/iwapim/catalog-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting catalog backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, continuing without cache", map[string]interface{}{
				"error": err.Error(),
			})
		}
		defer redis.Close()
	}

	// Repositories
	productRepo := repository.NewProductRepository(db.GetDB())
	colorRepo := repository.NewColorRepository(db.GetDB())
	templateRepo := repository.NewTemplateRepository(db.GetDB())
	listingRepo := repository.NewListingRepository(db.GetDB())
	stickerRepo := repository.NewStickerRepository(db.GetDB())
	currencyRepo := repository.NewCurrencyRepository(db.GetDB())

	// Services
	codeGen := service.NewCodeGenerator(productRepo)
	productService := service.NewProductService(productRepo, codeGen)
	variantService := service.NewVariantService(productRepo, colorRepo, templateRepo, codeGen)
	stickerService := service.NewStickerService(stickerRepo, productRepo)
	listingService := service.NewListingService(listingRepo, productRepo)
	currencyService := service.NewCurrencyService(
		currencyRepo,
		service.NewTCMBFetcher(cfg.Currency.FeedURL),
		redis.GetClient(),
	)

	// Controllers
	productController := controller.NewProductController(productService)
	variantController := controller.NewVariantController(variantService)
	currencyController := controller.NewCurrencyController(currencyService)
	stickerController := controller.NewStickerController(stickerService)
	listingController := controller.NewListingController(listingService)

	// Currency refresh scheduler
	currencyScheduler := scheduler.NewCurrencyScheduler(currencyService, cfg.Currency.RefreshCron)
	if err := currencyScheduler.Start(); err != nil {
		logger.Fatal("Failed to start currency scheduler", err)
	}
	defer currencyScheduler.Stop()

	r := router.NewRouter(
		productController,
		variantController,
		currencyController,
		stickerController,
		listingController,
		cfg,
	)
	engine := r.Setup()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
}
