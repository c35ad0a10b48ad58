package service

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"testing"
	"time"

	"quadledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

func testEntries(invoiceID string) []models.LedgerEntry {
	return []models.LedgerEntry{
		{
			ID:        "entry-1",
			Type:      models.EntryTypeDebit,
			Account:   models.AccountOfficeExpenses,
			Amount:    123.45,
			InvoiceID: invoiceID,
			Date:      "2025-02-15",
		},
		{
			ID:        "entry-2",
			Type:      models.EntryTypeCredit,
			Account:   models.AccountAccountsPayable,
			Amount:    123.45,
			InvoiceID: invoiceID,
			Date:      "2025-02-15",
		},
	}
}

func TestVerifyService_CreateVerifiedTransaction(t *testing.T) {
	verifier := NewVerifyService(zap.NewNop())
	fixed := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	verifier.now = func() time.Time { return fixed }

	transaction := verifier.CreateVerifiedTransaction("inv-1", testEntries("inv-1"))

	assert.Equal(t, "inv-1", transaction.InvoiceID)
	assert.Equal(t, models.TransactionStatusVerified, transaction.Status)
	assert.Equal(t, fixed.Format(time.RFC3339Nano), transaction.Timestamp)
	assert.NotEmpty(t, transaction.ID)
	assert.Regexp(t, hexDigest, transaction.Hash)
}

func TestVerifyService_HashConstruction(t *testing.T) {
	verifier := NewVerifyService(zap.NewNop())
	fixed := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	verifier.now = func() time.Time { return fixed }

	entries := testEntries("inv-1")
	transaction := verifier.CreateVerifiedTransaction("inv-1", entries)

	// Hash input order: invoice id, timestamp, then per entry type+account+amount.
	input := "inv-1" + fixed.Format(time.RFC3339Nano)
	for _, entry := range entries {
		input += string(entry.Type) + entry.Account + formatAmount(entry.Amount)
	}
	expected := sha256.Sum256([]byte(input))

	assert.Equal(t, hex.EncodeToString(expected[:]), transaction.Hash)
}

func TestVerifyService_HashDeterministicForSameInstant(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)

	first := NewVerifyService(zap.NewNop())
	first.now = func() time.Time { return fixed }
	second := NewVerifyService(zap.NewNop())
	second.now = func() time.Time { return fixed }

	entries := testEntries("inv-1")
	a := first.CreateVerifiedTransaction("inv-1", entries)
	b := second.CreateVerifiedTransaction("inv-1", entries)

	assert.Equal(t, a.Hash, b.Hash)
}

func TestVerifyService_HashChangesWithTimestamp(t *testing.T) {
	verifier := NewVerifyService(zap.NewNop())
	entries := testEntries("inv-1")

	verifier.now = func() time.Time { return time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC) }
	a := verifier.CreateVerifiedTransaction("inv-1", entries)

	verifier.now = func() time.Time { return time.Date(2025, 3, 1, 12, 30, 1, 0, time.UTC) }
	b := verifier.CreateVerifiedTransaction("inv-1", entries)

	// Identical entries sealed at different instants must not collide: the
	// hash attests creation time, not content identity.
	require.NotEqual(t, a.Timestamp, b.Timestamp)
	assert.NotEqual(t, a.Hash, b.Hash)
}
