package repository

import (
	"context"
	"errors"
	"fmt"

	"quadledger/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// InvoiceCollectionName is the Mongo collection holding invoice records.
const InvoiceCollectionName = "invoices"

// ErrInvoiceNotFound is returned when no record exists for the given id.
var ErrInvoiceNotFound = errors.New("invoice not found")

// InvoiceRepository persists invoice records in MongoDB, keyed by the
// application-generated id. Writes are single atomic inserts or single
// field replacements; nothing in the core needs richer query support than
// exact-key lookup and full-collection scan.
type InvoiceRepository struct {
	db     *mongo.Database
	logger *zap.Logger
}

func NewInvoiceRepository(db *mongo.Database, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

func (r *InvoiceRepository) Insert(ctx context.Context, record *models.InvoiceRecord) error {
	collection := r.db.Collection(InvoiceCollectionName)

	if _, err := collection.InsertOne(ctx, record); err != nil {
		r.logger.Error("Failed to insert invoice record",
			zap.String("invoice_id", record.ID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to insert invoice record: %w", err)
	}

	return nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*models.InvoiceRecord, error) {
	collection := r.db.Collection(InvoiceCollectionName)

	var record models.InvoiceRecord
	err := collection.FindOne(ctx, bson.M{"id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvoiceNotFound
		}
		r.logger.Error("Failed to get invoice record",
			zap.String("invoice_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to get invoice record: %w", err)
	}

	return &record, nil
}

func (r *InvoiceRepository) List(ctx context.Context, limit int64) ([]models.InvoiceRecord, error) {
	collection := r.db.Collection(InvoiceCollectionName)

	opts := options.Find().SetLimit(limit)
	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.logger.Error("Failed to list invoice records", zap.Error(err))
		return nil, fmt.Errorf("failed to list invoice records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.InvoiceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode invoice records: %w", err)
	}

	return records, nil
}

// SetImpactEntry replaces the invoice's impact entry wholesale. There is no
// partial merge; unspecified fields take their defaults.
func (r *InvoiceRepository) SetImpactEntry(ctx context.Context, invoiceID string, entry *models.ImpactEntry) error {
	collection := r.db.Collection(InvoiceCollectionName)

	result, err := collection.UpdateOne(ctx,
		bson.M{"id": invoiceID},
		bson.M{"$set": bson.M{"impact_entry": entry}},
	)
	if err != nil {
		r.logger.Error("Failed to set impact entry",
			zap.String("invoice_id", invoiceID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to set impact entry: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrInvoiceNotFound
	}

	return nil
}

// ListWithImpact returns only the invoices that have an impact entry.
func (r *InvoiceRepository) ListWithImpact(ctx context.Context, limit int64) ([]models.InvoiceRecord, error) {
	collection := r.db.Collection(InvoiceCollectionName)

	opts := options.Find().SetLimit(limit)
	cursor, err := collection.Find(ctx, bson.M{"impact_entry": bson.M{"$exists": true, "$ne": nil}}, opts)
	if err != nil {
		r.logger.Error("Failed to list invoices with impact entries", zap.Error(err))
		return nil, fmt.Errorf("failed to list invoices with impact entries: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.InvoiceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode invoice records: %w", err)
	}

	return records, nil
}
