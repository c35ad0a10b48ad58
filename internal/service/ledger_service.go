package service

import (
	"strings"

	"quadledger/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// accountRule maps description keywords to a debit account. Rules are
// evaluated in order; the first match wins and no combinations are made.
type accountRule struct {
	keywords []string
	account  string
}

var accountRules = []accountRule{
	{keywords: []string{"office", "supplies", "equipment", "software"}, account: models.AccountOfficeExpenses},
	{keywords: []string{"inventory", "materials", "goods"}, account: models.AccountInventory},
	{keywords: []string{"service", "consulting", "professional"}, account: models.AccountProfessionalServices},
}

// LedgerService derives the balanced double-entry record for an invoice.
// It is pure: no external calls, no state.
type LedgerService struct {
	logger *zap.Logger
}

func NewLedgerService(logger *zap.Logger) *LedgerService {
	return &LedgerService{logger: logger}
}

// ClassifyExpense maps a free-text description to a debit account by
// case-insensitive keyword match. Total: every description yields exactly
// one of the four accounts.
func (s *LedgerService) ClassifyExpense(description string) string {
	descriptionLower := strings.ToLower(description)
	for _, rule := range accountRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(descriptionLower, keyword) {
				return rule.account
			}
		}
	}
	return models.AccountGeneralExpenses
}

// GenerateEntries builds the invoice's ledger pair in one call: a debit
// against the classified expense account and a credit against Accounts
// Payable, both at the full invoice amount and the invoice's stated date.
// Invoices are modeled as generating payables, never immediate settlement.
func (s *LedgerService) GenerateEntries(data models.InvoiceData, invoiceID string) []models.LedgerEntry {
	debitAccount := s.ClassifyExpense(data.Description)

	entries := []models.LedgerEntry{
		{
			ID:        uuid.New().String(),
			Type:      models.EntryTypeDebit,
			Account:   debitAccount,
			Amount:    data.Amount,
			InvoiceID: invoiceID,
			Date:      data.Date,
		},
		{
			ID:        uuid.New().String(),
			Type:      models.EntryTypeCredit,
			Account:   models.AccountAccountsPayable,
			Amount:    data.Amount,
			InvoiceID: invoiceID,
			Date:      data.Date,
		},
	}

	s.logger.Debug("Ledger entries generated",
		zap.String("invoice_id", invoiceID),
		zap.String("debit_account", debitAccount),
		zap.Float64("amount", data.Amount),
	)

	return entries
}
