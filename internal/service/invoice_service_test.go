package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"quadledger/internal/dto"
	"quadledger/internal/models"
	"quadledger/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeInvoiceStore is an in-memory InvoiceStore.
type fakeInvoiceStore struct {
	records   map[string]*models.InvoiceRecord
	order     []string
	insertErr error
}

func newFakeInvoiceStore() *fakeInvoiceStore {
	return &fakeInvoiceStore{records: make(map[string]*models.InvoiceRecord)}
}

func (f *fakeInvoiceStore) Insert(_ context.Context, record *models.InvoiceRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	stored := *record
	f.records[record.ID] = &stored
	f.order = append(f.order, record.ID)
	return nil
}

func (f *fakeInvoiceStore) GetByID(_ context.Context, id string) (*models.InvoiceRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, repository.ErrInvoiceNotFound
	}
	copied := *record
	return &copied, nil
}

func (f *fakeInvoiceStore) List(_ context.Context, limit int64) ([]models.InvoiceRecord, error) {
	var out []models.InvoiceRecord
	for _, id := range f.order {
		if int64(len(out)) >= limit {
			break
		}
		out = append(out, *f.records[id])
	}
	return out, nil
}

func (f *fakeInvoiceStore) SetImpactEntry(_ context.Context, invoiceID string, entry *models.ImpactEntry) error {
	record, ok := f.records[invoiceID]
	if !ok {
		return repository.ErrInvoiceNotFound
	}
	record.ImpactEntry = entry
	return nil
}

func (f *fakeInvoiceStore) ListWithImpact(_ context.Context, limit int64) ([]models.InvoiceRecord, error) {
	var out []models.InvoiceRecord
	for _, id := range f.order {
		if int64(len(out)) >= limit {
			break
		}
		if f.records[id].ImpactEntry != nil {
			out = append(out, *f.records[id])
		}
	}
	return out, nil
}

func newTestInvoiceService(store InvoiceStore, model VisionModel) *InvoiceService {
	log := zap.NewNop()
	return NewInvoiceService(
		store,
		NewNormalizerService(log),
		NewExtractionService(model, log),
		NewLedgerService(log),
		NewVerifyService(log),
		log,
	)
}

func TestInvoiceService_ProcessInvoice_EndToEnd(t *testing.T) {
	store := newFakeInvoiceStore()
	model := &fakeVisionModel{
		response: `{"date":"2025-02-15","supplier":"Office Depot","amount":123.45,"description":"Description: Office supplies","currency":"USD"}`,
	}
	svc := newTestInvoiceService(store, model)

	fileContent := []byte("png-image-bytes")
	record, err := svc.ProcessInvoice(context.Background(), fileContent, "invoice.png", MediaTypePNG)
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "invoice.png", record.Filename)
	assert.NotEmpty(t, record.UploadDate)

	// Extracted data drives both ledger sides.
	require.Len(t, record.LedgerEntries, 2)
	debit, credit := record.LedgerEntries[0], record.LedgerEntries[1]
	assert.Equal(t, models.EntryTypeDebit, debit.Type)
	assert.Equal(t, models.AccountOfficeExpenses, debit.Account)
	assert.Equal(t, 123.45, debit.Amount)
	assert.Equal(t, models.EntryTypeCredit, credit.Type)
	assert.Equal(t, models.AccountAccountsPayable, credit.Account)
	assert.Equal(t, 123.45, credit.Amount)
	assert.Equal(t, "2025-02-15", debit.Date)

	// Verification record belongs to this invoice and carries a sha256 digest.
	assert.Equal(t, record.ID, record.VerifiedTransaction.InvoiceID)
	assert.Equal(t, models.TransactionStatusVerified, record.VerifiedTransaction.Status)
	assert.Regexp(t, hexDigest, record.VerifiedTransaction.Hash)

	// Original bytes are preserved for replay.
	decoded, err := base64.StdEncoding.DecodeString(record.FileContent)
	require.NoError(t, err)
	assert.Equal(t, fileContent, decoded)

	// Persisted and retrievable by the generated id.
	stored, err := svc.GetInvoice(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, stored.ID)
	assert.Equal(t, record.VerifiedTransaction.Hash, stored.VerifiedTransaction.Hash)
}

func TestInvoiceService_ProcessInvoice_ExtractionFallback(t *testing.T) {
	store := newFakeInvoiceStore()
	model := &fakeVisionModel{err: errors.New("model unavailable")}
	svc := newTestInvoiceService(store, model)

	record, err := svc.ProcessInvoice(context.Background(), []byte("png-bytes"), "invoice.png", MediaTypePNG)
	require.NoError(t, err)

	assert.Equal(t, FallbackSupplier, record.Data.Supplier)
	assert.Equal(t, FallbackAmount, record.Data.Amount)
	assert.Equal(t, DefaultCurrency, record.Data.Currency)
	assert.Contains(t, record.Data.Description, "extraction failed")

	// The record is still complete and balanced at the placeholder amount.
	require.Len(t, record.LedgerEntries, 2)
	assert.Equal(t, FallbackAmount, record.LedgerEntries[0].Amount)
	assert.Equal(t, FallbackAmount, record.LedgerEntries[1].Amount)
	assert.Regexp(t, hexDigest, record.VerifiedTransaction.Hash)
}

func TestInvoiceService_ProcessInvoice_CorruptPDF(t *testing.T) {
	store := newFakeInvoiceStore()
	svc := newTestInvoiceService(store, &fakeVisionModel{})

	_, err := svc.ProcessInvoice(context.Background(), []byte("garbage"), "broken.pdf", MediaTypePDF)
	require.Error(t, err)

	// Nothing persisted: no partially-completed invoices.
	assert.Empty(t, store.records)
}

func TestInvoiceService_ProcessInvoice_PersistFailure(t *testing.T) {
	store := newFakeInvoiceStore()
	store.insertErr = errors.New("write failed")
	model := &fakeVisionModel{
		response: `{"date":"2025-02-15","supplier":"Office Depot","amount":123.45,"description":"Office supplies","currency":"USD"}`,
	}
	svc := newTestInvoiceService(store, model)

	_, err := svc.ProcessInvoice(context.Background(), []byte("png-bytes"), "invoice.png", MediaTypePNG)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist")
}

func TestInvoiceService_AttachImpactEntry(t *testing.T) {
	store := newFakeInvoiceStore()
	model := &fakeVisionModel{
		response: `{"date":"2025-02-15","supplier":"Office Depot","amount":123.45,"description":"Office supplies","currency":"USD"}`,
	}
	svc := newTestInvoiceService(store, model)

	record, err := svc.ProcessInvoice(context.Background(), []byte("png"), "invoice.png", MediaTypePNG)
	require.NoError(t, err)

	water := 120.5
	entry, err := svc.AttachImpactEntry(context.Background(), &dto.ImpactEntryRequest{
		InvoiceID:  record.ID,
		WaterUsage: &water,
	})
	require.NoError(t, err)

	// Omitted fields take defaults, labor score included.
	assert.Equal(t, 120.5, entry.WaterUsage)
	assert.Equal(t, 0.0, entry.CO2Emissions)
	assert.Equal(t, 5, entry.LaborScore)
	assert.Equal(t, 0.0, entry.RecyclingRate)

	// A second attach replaces the entry wholesale: the water usage from the
	// first call is gone.
	co2 := 1.5
	replaced, err := svc.AttachImpactEntry(context.Background(), &dto.ImpactEntryRequest{
		InvoiceID:    record.ID,
		CO2Emissions: &co2,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, replaced.WaterUsage)
	assert.Equal(t, 1.5, replaced.CO2Emissions)
	assert.NotEqual(t, entry.ID, replaced.ID)

	stored, err := svc.GetInvoice(context.Background(), record.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ImpactEntry)
	assert.Equal(t, replaced.ID, stored.ImpactEntry.ID)
}

func TestInvoiceService_AttachImpactEntry_UnknownInvoice(t *testing.T) {
	svc := newTestInvoiceService(newFakeInvoiceStore(), &fakeVisionModel{})

	_, err := svc.AttachImpactEntry(context.Background(), &dto.ImpactEntryRequest{InvoiceID: "missing"})
	assert.ErrorIs(t, err, repository.ErrInvoiceNotFound)
}

func TestInvoiceService_ListLedgerEntries(t *testing.T) {
	store := newFakeInvoiceStore()
	model := &fakeVisionModel{
		response: `{"date":"2025-02-15","supplier":"Office Depot","amount":123.45,"description":"Office supplies","currency":"USD"}`,
	}
	svc := newTestInvoiceService(store, model)

	_, err := svc.ProcessInvoice(context.Background(), []byte("a"), "a.png", MediaTypePNG)
	require.NoError(t, err)
	_, err = svc.ProcessInvoice(context.Background(), []byte("b"), "b.png", MediaTypePNG)
	require.NoError(t, err)

	entries, err := svc.ListLedgerEntries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 4)
	for _, entry := range entries {
		assert.Equal(t, "Office Depot", entry.Supplier)
	}
}

func TestInvoiceService_DashboardSummary(t *testing.T) {
	store := newFakeInvoiceStore()
	model := &fakeVisionModel{
		response: `{"date":"2025-02-15","supplier":"Office Depot","amount":100,"description":"Office supplies","currency":"USD"}`,
	}
	svc := newTestInvoiceService(store, model)

	first, err := svc.ProcessInvoice(context.Background(), []byte("a"), "a.png", MediaTypePNG)
	require.NoError(t, err)
	_, err = svc.ProcessInvoice(context.Background(), []byte("b"), "b.png", MediaTypePNG)
	require.NoError(t, err)

	labor := 8
	co2 := 2.5
	_, err = svc.AttachImpactEntry(context.Background(), &dto.ImpactEntryRequest{
		InvoiceID:    first.ID,
		LaborScore:   &labor,
		CO2Emissions: &co2,
	})
	require.NoError(t, err)

	summary, err := svc.DashboardSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Summary.TotalInvoices)
	assert.Equal(t, 200.0, summary.Summary.TotalAmount)
	assert.Equal(t, 2, summary.Summary.VerifiedTransactions)
	assert.Equal(t, 1, summary.Summary.ImpactEntries)
	assert.Equal(t, 2.5, summary.Summary.TotalCO2Emissions)
	assert.Equal(t, 8.0, summary.Summary.AvgLaborScore)
	assert.Len(t, summary.RecentInvoices, 2)
}
