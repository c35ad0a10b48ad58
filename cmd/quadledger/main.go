package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"quadledger/internal/api"
	"quadledger/internal/api/handlers"
	"quadledger/internal/repository"
	"quadledger/internal/service"
	"quadledger/pkg/config"
	"quadledger/pkg/logger"
	"quadledger/pkg/mongodb"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger, err := logger.New(cfg.Logger.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting QuadLedger service")

	ctx := context.Background()
	db, err := mongodb.Connect(ctx, &cfg.Mongo, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer db.Close(ctx)

	invoiceRepo := repository.NewInvoiceRepository(db.Database(), appLogger)

	visionClient := service.NewOpenAIVisionClient(&cfg.OpenAI, appLogger)
	normalizer := service.NewNormalizerService(appLogger)
	extraction := service.NewExtractionService(visionClient, appLogger)
	ledger := service.NewLedgerService(appLogger)
	verifier := service.NewVerifyService(appLogger)
	invoiceService := service.NewInvoiceService(invoiceRepo, normalizer, extraction, ledger, verifier, appLogger)

	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, appLogger)
	impactHandler := handlers.NewImpactHandler(invoiceService, appLogger)

	app := api.SetupRouter(invoiceHandler, impactHandler, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
