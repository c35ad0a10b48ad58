package handlers

import (
	"errors"
	"io"

	"quadledger/internal/dto"
	"quadledger/internal/repository"
	"quadledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var allowedMediaTypes = map[string]bool{
	service.MediaTypePDF:  true,
	service.MediaTypeJPEG: true,
	service.MediaTypeJPG:  true,
	service.MediaTypePNG:  true,
}

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	logger         *zap.Logger
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// UploadInvoice accepts a multipart upload and runs the processing pipeline:
// normalization, extraction, ledger generation and verification. Media type
// validation happens here; the pipeline assumes supported input.
func (h *InvoiceHandler) UploadInvoice(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file provided",
		})
	}
	if fileHeader.Filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file provided",
		})
	}

	mediaType := fileHeader.Header.Get("Content-Type")
	if !allowedMediaTypes[mediaType] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid file type. Please upload PDF, JPEG, or PNG files.",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	fileContent, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}
	if len(fileContent) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Empty file",
		})
	}

	record, err := h.invoiceService.ProcessInvoice(c.Context(), fileContent, fileHeader.Filename, mediaType)
	if err != nil {
		h.logger.Error("Failed to process invoice", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error processing invoice: " + err.Error(),
		})
	}

	return c.JSON(dto.UploadInvoiceResponse{
		Message: "Invoice processed successfully",
		Invoice: *record,
	})
}

func (h *InvoiceHandler) ListInvoices(c *fiber.Ctx) error {
	records, err := h.invoiceService.ListInvoices(c.Context())
	if err != nil {
		h.logger.Error("Failed to list invoices", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list invoices",
		})
	}

	return c.JSON(dto.InvoiceListResponse{Invoices: records})
}

func (h *InvoiceHandler) GetInvoice(c *fiber.Ctx) error {
	record, err := h.invoiceService.GetInvoice(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Invoice not found",
			})
		}
		h.logger.Error("Failed to get invoice", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get invoice",
		})
	}

	return c.JSON(dto.InvoiceResponse{Invoice: *record})
}

func (h *InvoiceHandler) ListLedgerEntries(c *fiber.Ctx) error {
	entries, err := h.invoiceService.ListLedgerEntries(c.Context())
	if err != nil {
		h.logger.Error("Failed to list ledger entries", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list ledger entries",
		})
	}

	return c.JSON(dto.LedgerEntriesResponse{LedgerEntries: entries})
}

func (h *InvoiceHandler) ListVerifiedTransactions(c *fiber.Ctx) error {
	transactions, err := h.invoiceService.ListVerifiedTransactions(c.Context())
	if err != nil {
		h.logger.Error("Failed to list verified transactions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list verified transactions",
		})
	}

	return c.JSON(dto.VerifiedTransactionsResponse{VerifiedTransactions: transactions})
}

func (h *InvoiceHandler) DashboardSummary(c *fiber.Ctx) error {
	summary, err := h.invoiceService.DashboardSummary(c.Context())
	if err != nil {
		h.logger.Error("Failed to build dashboard summary", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build dashboard summary",
		})
	}

	return c.JSON(summary)
}
