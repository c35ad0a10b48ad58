package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"time"

	"quadledger/internal/dto"
	"quadledger/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// listLimit caps full-collection scans used by the listing and summary
// endpoints.
const listLimit = 1000

// recentInvoicesCount is how many uploads the dashboard summary returns.
const recentInvoicesCount = 10

// InvoiceStore is the document store boundary the assembler persists to.
// It only needs exact-key lookup, full scans and a single-field replace.
type InvoiceStore interface {
	Insert(ctx context.Context, record *models.InvoiceRecord) error
	GetByID(ctx context.Context, id string) (*models.InvoiceRecord, error)
	List(ctx context.Context, limit int64) ([]models.InvoiceRecord, error)
	SetImpactEntry(ctx context.Context, invoiceID string, entry *models.ImpactEntry) error
	ListWithImpact(ctx context.Context, limit int64) ([]models.InvoiceRecord, error)
}

// InvoiceService runs the invoice-to-ledger pipeline and owns the record
// shape: it generates the invoice id, stamps the upload time and composes
// normalization, extraction, classification and verification into one
// persisted record. Each run is independent; no state is shared between
// concurrent uploads.
type InvoiceService struct {
	store      InvoiceStore
	normalizer *NormalizerService
	extraction *ExtractionService
	ledger     *LedgerService
	verifier   *VerifyService
	logger     *zap.Logger
	now        func() time.Time
}

func NewInvoiceService(
	store InvoiceStore,
	normalizer *NormalizerService,
	extraction *ExtractionService,
	ledger *LedgerService,
	verifier *VerifyService,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		store:      store,
		normalizer: normalizer,
		extraction: extraction,
		ledger:     ledger,
		verifier:   verifier,
		logger:     logger,
		now:        time.Now,
	}
}

// ProcessInvoice runs the whole pipeline for one upload. A document the
// normalizer cannot render fails outright with nothing persisted; an
// extraction failure still yields a complete record built from placeholder
// data. The ledger pair and the verification record are produced by single
// factory calls, so a partially-assembled record cannot exist.
func (s *InvoiceService) ProcessInvoice(ctx context.Context, fileContent []byte, filename, mediaType string) (*models.InvoiceRecord, error) {
	pages, err := s.normalizer.Normalize(fileContent, mediaType)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize document: %w", err)
	}

	invoiceID := uuid.New().String()

	data := s.extraction.Extract(ctx, pages)
	data.Supplier = sanitizeUTF8(data.Supplier)
	data.Description = sanitizeUTF8(data.Description)

	entries := s.ledger.GenerateEntries(data, invoiceID)
	verified := s.verifier.CreateVerifiedTransaction(invoiceID, entries)

	record := &models.InvoiceRecord{
		ID:                  invoiceID,
		Filename:            filename,
		UploadDate:          s.now().Format(time.RFC3339Nano),
		Data:                data,
		LedgerEntries:       entries,
		VerifiedTransaction: verified,
		FileContent:         base64.StdEncoding.EncodeToString(fileContent),
	}

	if err := s.store.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist invoice record: %w", err)
	}

	s.logger.Info("Invoice processed",
		zap.String("invoice_id", invoiceID),
		zap.String("filename", filename),
		zap.String("supplier", data.Supplier),
		zap.Float64("amount", data.Amount),
	)

	return record, nil
}

func (s *InvoiceService) GetInvoice(ctx context.Context, id string) (*models.InvoiceRecord, error) {
	return s.store.GetByID(ctx, id)
}

func (s *InvoiceService) ListInvoices(ctx context.Context) ([]models.InvoiceRecord, error) {
	return s.store.List(ctx, listLimit)
}

// ListLedgerEntries flattens the entries of all invoices, annotating each
// with its invoice's supplier.
func (s *InvoiceService) ListLedgerEntries(ctx context.Context) ([]dto.LedgerEntryView, error) {
	records, err := s.store.List(ctx, listLimit)
	if err != nil {
		return nil, err
	}

	views := make([]dto.LedgerEntryView, 0, len(records)*2)
	for _, record := range records {
		for _, entry := range record.LedgerEntries {
			views = append(views, dto.LedgerEntryView{
				LedgerEntry: entry,
				Supplier:    record.Data.Supplier,
			})
		}
	}

	return views, nil
}

func (s *InvoiceService) ListVerifiedTransactions(ctx context.Context) ([]dto.VerifiedTransactionView, error) {
	records, err := s.store.List(ctx, listLimit)
	if err != nil {
		return nil, err
	}

	views := make([]dto.VerifiedTransactionView, 0, len(records))
	for _, record := range records {
		views = append(views, dto.VerifiedTransactionView{
			VerifiedTransaction: record.VerifiedTransaction,
			Supplier:            record.Data.Supplier,
			Amount:              record.Data.Amount,
		})
	}

	return views, nil
}

// AttachImpactEntry creates or replaces the invoice's impact entry. The
// replace is wholesale: fields omitted from the request revert to their
// defaults rather than being merged with a previous entry.
func (s *InvoiceService) AttachImpactEntry(ctx context.Context, req *dto.ImpactEntryRequest) (*models.ImpactEntry, error) {
	if _, err := s.store.GetByID(ctx, req.InvoiceID); err != nil {
		return nil, err
	}

	entry := &models.ImpactEntry{
		ID:         uuid.New().String(),
		InvoiceID:  req.InvoiceID,
		LaborScore: 5,
	}
	if req.WaterUsage != nil {
		entry.WaterUsage = *req.WaterUsage
	}
	if req.CO2Emissions != nil {
		entry.CO2Emissions = *req.CO2Emissions
	}
	if req.LaborScore != nil {
		entry.LaborScore = *req.LaborScore
	}
	if req.RecyclingRate != nil {
		entry.RecyclingRate = *req.RecyclingRate
	}

	if err := s.store.SetImpactEntry(ctx, req.InvoiceID, entry); err != nil {
		return nil, err
	}

	s.logger.Info("Impact entry attached", zap.String("invoice_id", req.InvoiceID))

	return entry, nil
}

func (s *InvoiceService) ListImpactEntries(ctx context.Context) ([]dto.ImpactEntryView, error) {
	records, err := s.store.ListWithImpact(ctx, listLimit)
	if err != nil {
		return nil, err
	}

	views := make([]dto.ImpactEntryView, 0, len(records))
	for _, record := range records {
		if record.ImpactEntry == nil {
			continue
		}
		views = append(views, dto.ImpactEntryView{
			ImpactEntry: *record.ImpactEntry,
			Supplier:    record.Data.Supplier,
			Amount:      record.Data.Amount,
		})
	}

	return views, nil
}

// DashboardSummary aggregates totals over a full-collection scan and
// returns the most recent uploads.
func (s *InvoiceService) DashboardSummary(ctx context.Context) (*dto.DashboardSummaryResponse, error) {
	records, err := s.store.List(ctx, listLimit)
	if err != nil {
		return nil, err
	}

	var totalAmount, totalCO2, laborSum float64
	var impactCount int
	for _, record := range records {
		totalAmount += record.Data.Amount
		if record.ImpactEntry != nil {
			impactCount++
			totalCO2 += record.ImpactEntry.CO2Emissions
			laborSum += float64(record.ImpactEntry.LaborScore)
		}
	}

	avgLaborScore := 0.0
	if impactCount > 0 {
		avgLaborScore = roundToOneDecimal(laborSum / float64(impactCount))
	}

	// RFC3339Nano drops trailing zeros, so the strings do not sort
	// chronologically; compare parsed instants.
	sort.Slice(records, func(i, j int) bool {
		return parseUploadDate(records[i].UploadDate).After(parseUploadDate(records[j].UploadDate))
	})
	recent := records
	if len(recent) > recentInvoicesCount {
		recent = recent[:recentInvoicesCount]
	}

	return &dto.DashboardSummaryResponse{
		Summary: dto.DashboardSummary{
			TotalInvoices:        len(records),
			TotalAmount:          totalAmount,
			VerifiedTransactions: len(records),
			ImpactEntries:        impactCount,
			TotalCO2Emissions:    totalCO2,
			AvgLaborScore:        avgLaborScore,
		},
		RecentInvoices: recent,
	}, nil
}
