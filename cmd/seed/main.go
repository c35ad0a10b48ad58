// Seeds the invoice collection with a few fully-formed demo records:
// classified, balanced and sealed, exactly as the upload pipeline would
// produce them. Useful for local dashboard development without a vision
// model configured.
package main

import (
	"context"
	"encoding/base64"
	"log"
	"time"

	"quadledger/internal/models"
	"quadledger/internal/repository"
	"quadledger/internal/service"
	"quadledger/pkg/config"
	"quadledger/pkg/logger"
	"quadledger/pkg/mongodb"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var demoInvoices = []struct {
	filename string
	data     models.InvoiceData
}{
	{
		filename: "office-depot-march.pdf",
		data: models.InvoiceData{
			Date:        "2025-03-03",
			Supplier:    "Office Depot",
			Amount:      249.99,
			Description: "Office supplies and printer equipment",
			Currency:    "USD",
		},
	},
	{
		filename: "acme-raw-materials.pdf",
		data: models.InvoiceData{
			Date:        "2025-03-10",
			Supplier:    "Acme Industrial",
			Amount:      1840.00,
			Description: "Raw materials for Q2 production",
			Currency:    "USD",
		},
	},
	{
		filename: "consulting-february.png",
		data: models.InvoiceData{
			Date:        "2025-02-28",
			Supplier:    "Northwind Consulting",
			Amount:      3200.00,
			Description: "Professional consulting services, February",
			Currency:    "USD",
		},
	},
	{
		filename: "misc-expenses.jpg",
		data: models.InvoiceData{
			Date:        "2025-03-14",
			Supplier:    "City Utilities",
			Amount:      89.50,
			Description: "Monthly utility bill",
			Currency:    "USD",
		},
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	ctx := context.Background()
	db, err := mongodb.Connect(ctx, &cfg.Mongo, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer db.Close(ctx)

	invoiceRepo := repository.NewInvoiceRepository(db.Database(), appLogger)
	ledger := service.NewLedgerService(appLogger)
	verifier := service.NewVerifyService(appLogger)

	appLogger.Info("Seeding demo invoices...")

	for _, demo := range demoInvoices {
		invoiceID := uuid.New().String()
		entries := ledger.GenerateEntries(demo.data, invoiceID)
		verified := verifier.CreateVerifiedTransaction(invoiceID, entries)

		record := &models.InvoiceRecord{
			ID:                  invoiceID,
			Filename:            demo.filename,
			UploadDate:          time.Now().Format(time.RFC3339Nano),
			Data:                demo.data,
			LedgerEntries:       entries,
			VerifiedTransaction: verified,
			FileContent:         base64.StdEncoding.EncodeToString([]byte("demo invoice: " + demo.filename)),
		}

		if err := invoiceRepo.Insert(ctx, record); err != nil {
			appLogger.Fatal("Failed to insert demo invoice",
				zap.String("filename", demo.filename),
				zap.Error(err),
			)
		}

		appLogger.Info("Seeded invoice",
			zap.String("invoice_id", invoiceID),
			zap.String("supplier", demo.data.Supplier),
			zap.String("debit_account", entries[0].Account),
		)
	}

	appLogger.Info("Seeding completed")
}
