package dto

import "quadledger/internal/models"

type UploadInvoiceResponse struct {
	Message string               `json:"message"`
	Invoice models.InvoiceRecord `json:"invoice"`
}

type InvoiceListResponse struct {
	Invoices []models.InvoiceRecord `json:"invoices"`
}

type InvoiceResponse struct {
	Invoice models.InvoiceRecord `json:"invoice"`
}

// LedgerEntryView is a ledger entry annotated with its invoice's supplier,
// used by the cross-invoice listing endpoints.
type LedgerEntryView struct {
	models.LedgerEntry
	Supplier string `json:"supplier"`
}

type LedgerEntriesResponse struct {
	LedgerEntries []LedgerEntryView `json:"ledger_entries"`
}

type VerifiedTransactionView struct {
	models.VerifiedTransaction
	Supplier string  `json:"supplier"`
	Amount   float64 `json:"amount"`
}

type VerifiedTransactionsResponse struct {
	VerifiedTransactions []VerifiedTransactionView `json:"verified_transactions"`
}
