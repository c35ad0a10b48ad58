package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"quadledger/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VerifyService seals an invoice's ledger entries into an immutable
// verification record. The hash embeds a wall-clock timestamp captured at
// call time, so it attests "these exact entries were sealed at this exact
// instant" rather than content-addressing the entries; re-deriving it later
// requires the persisted timestamp verbatim.
type VerifyService struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewVerifyService(logger *zap.Logger) *VerifyService {
	return &VerifyService{
		logger: logger,
		now:    time.Now,
	}
}

// CreateVerifiedTransaction builds the verification record in a single call.
// Hash input, in this exact order: invoice id, creation timestamp, then for
// each entry in generation order its type, account and amount.
func (s *VerifyService) CreateVerifiedTransaction(invoiceID string, entries []models.LedgerEntry) models.VerifiedTransaction {
	timestamp := s.now().Format(time.RFC3339Nano)

	hashInput := invoiceID + timestamp
	for _, entry := range entries {
		hashInput += string(entry.Type) + entry.Account + formatAmount(entry.Amount)
	}

	digest := sha256.Sum256([]byte(hashInput))

	transaction := models.VerifiedTransaction{
		ID:        uuid.New().String(),
		Hash:      hex.EncodeToString(digest[:]),
		Timestamp: timestamp,
		InvoiceID: invoiceID,
		Status:    models.TransactionStatusVerified,
	}

	s.logger.Debug("Transaction sealed",
		zap.String("invoice_id", invoiceID),
		zap.String("hash", transaction.Hash),
	)

	return transaction
}

// formatAmount is the canonical amount rendering used in hash input. Any
// later re-verification has to format amounts exactly the same way or the
// digest drifts.
func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'g', -1, 64)
}
