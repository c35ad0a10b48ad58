package models

// EntryType is the side of a double-entry ledger record.
type EntryType string

const (
	EntryTypeDebit  EntryType = "debit"
	EntryTypeCredit EntryType = "credit"
)

// Expense accounts assigned by the classifier, plus the fixed credit account.
const (
	AccountOfficeExpenses       = "Office Expenses"
	AccountInventory            = "Inventory"
	AccountProfessionalServices = "Professional Services"
	AccountGeneralExpenses      = "General Expenses"
	AccountAccountsPayable      = "Accounts Payable"
)

// TransactionStatusVerified is the only status a verification record ever has.
const TransactionStatusVerified = "verified"

// InvoiceData holds the structured fields extracted from an invoice image.
// Produced once per invoice and immutable afterwards.
type InvoiceData struct {
	Date        string  `json:"date" bson:"date"`
	Supplier    string  `json:"supplier" bson:"supplier"`
	Amount      float64 `json:"amount" bson:"amount"`
	Description string  `json:"description" bson:"description"`
	Currency    string  `json:"currency" bson:"currency"`
}

// LedgerEntry is one side of the double-entry record derived from an invoice.
// Every invoice produces exactly one debit and one credit, both at the full
// invoice amount and dated with the invoice's stated date.
type LedgerEntry struct {
	ID        string    `json:"id" bson:"id"`
	Type      EntryType `json:"type" bson:"type"`
	Account   string    `json:"account" bson:"account"`
	Amount    float64   `json:"amount" bson:"amount"`
	InvoiceID string    `json:"invoice_id" bson:"invoice_id"`
	Date      string    `json:"date" bson:"date"`
}

// VerifiedTransaction seals an invoice's ledger entries with a hash taken at
// creation time. The timestamp is part of the hash input, so the stored value
// must be reused verbatim to re-derive the digest.
type VerifiedTransaction struct {
	ID        string `json:"id" bson:"id"`
	Hash      string `json:"hash" bson:"hash"`
	Timestamp string `json:"timestamp" bson:"timestamp"`
	InvoiceID string `json:"invoice_id" bson:"invoice_id"`
	Status    string `json:"status" bson:"status"`
}

// ImpactEntry carries optional sustainability metrics attached to an invoice
// after processing. At most one per invoice; attaching again replaces the
// whole entry.
type ImpactEntry struct {
	ID            string  `json:"id" bson:"id"`
	InvoiceID     string  `json:"invoice_id" bson:"invoice_id"`
	WaterUsage    float64 `json:"water_usage" bson:"water_usage"`       // liters
	CO2Emissions  float64 `json:"co2_emissions" bson:"co2_emissions"`   // tons
	LaborScore    int     `json:"labor_score" bson:"labor_score"`       // 1-10
	RecyclingRate float64 `json:"recycling_rate" bson:"recycling_rate"` // percentage
}

// InvoiceRecord is the aggregate persisted per uploaded invoice.
type InvoiceRecord struct {
	ID                  string              `json:"id" bson:"id"`
	Filename            string              `json:"filename" bson:"filename"`
	UploadDate          string              `json:"upload_date" bson:"upload_date"`
	Data                InvoiceData         `json:"data" bson:"data"`
	LedgerEntries       []LedgerEntry       `json:"ledger_entries" bson:"ledger_entries"`
	VerifiedTransaction VerifiedTransaction `json:"verified_transaction" bson:"verified_transaction"`
	ImpactEntry         *ImpactEntry        `json:"impact_entry,omitempty" bson:"impact_entry,omitempty"`
	FileContent         string              `json:"file_content" bson:"file_content"` // base64 of the original upload
}
