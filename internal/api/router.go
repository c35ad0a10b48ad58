package api

import (
	"quadledger/internal/api/handlers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(
	invoiceHandler *handlers.InvoiceHandler,
	impactHandler *handlers.ImpactHandler,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		// Uploaded PDFs can be a few MB; keep headroom above the 4MB default.
		BodyLimit: 32 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "QuadLedger API",
		})
	})

	api.Post("/upload-invoice", invoiceHandler.UploadInvoice)
	api.Get("/invoices", invoiceHandler.ListInvoices)
	api.Get("/invoices/:id", invoiceHandler.GetInvoice)
	api.Get("/ledger-entries", invoiceHandler.ListLedgerEntries)
	api.Get("/verified-transactions", invoiceHandler.ListVerifiedTransactions)
	api.Get("/dashboard-summary", invoiceHandler.DashboardSummary)

	api.Post("/impact-entry", impactHandler.CreateImpactEntry)
	api.Get("/impact-entries", impactHandler.ListImpactEntries)

	return app
}
