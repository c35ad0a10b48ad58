package handlers

import (
	"errors"

	"quadledger/internal/dto"
	"quadledger/internal/repository"
	"quadledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ImpactHandler struct {
	invoiceService *service.InvoiceService
	logger         *zap.Logger
}

func NewImpactHandler(invoiceService *service.InvoiceService, logger *zap.Logger) *ImpactHandler {
	return &ImpactHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// CreateImpactEntry attaches sustainability metrics to an existing invoice.
// The attach replaces any previous entry wholesale.
func (h *ImpactHandler) CreateImpactEntry(c *fiber.Ctx) error {
	var req dto.ImpactEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.InvoiceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invoice ID is required",
		})
	}
	if req.LaborScore != nil && (*req.LaborScore < 1 || *req.LaborScore > 10) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Labor score must be between 1 and 10",
		})
	}

	entry, err := h.invoiceService.AttachImpactEntry(c.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrInvoiceNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Invoice not found",
			})
		}
		h.logger.Error("Failed to create impact entry", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create impact entry",
		})
	}

	return c.JSON(dto.ImpactEntryResponse{
		Message:     "Impact entry created successfully",
		ImpactEntry: *entry,
	})
}

func (h *ImpactHandler) ListImpactEntries(c *fiber.Ctx) error {
	entries, err := h.invoiceService.ListImpactEntries(c.Context())
	if err != nil {
		h.logger.Error("Failed to list impact entries", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list impact entries",
		})
	}

	return c.JSON(dto.ImpactEntriesResponse{ImpactEntries: entries})
}
