// Package mongodb implements MongoDB adapters for the application.
package mongodb

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"time"

	"cargo_server/core/port/out"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// =============================================================================
// MongoDB Document Text Adapter
// =============================================================================

const (
	collectionDocumentTexts = "document_texts"

	// Compression threshold - only compress if content is larger than this
	compressionThreshold = 1024 // 1KB
)

// DocumentTextAdapter implements out.EmailBodyRepository using MongoDB.
// It stores the parsed text of email attachments (booking confirmations,
// bills of lading, arrival notices) keyed by email ID.
type DocumentTextAdapter struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewDocumentTextAdapter creates a new MongoDB document text adapter.
func NewDocumentTextAdapter(db *mongo.Database) *DocumentTextAdapter {
	collection := db.Collection(collectionDocumentTexts)
	return &DocumentTextAdapter{
		db:         db,
		collection: collection,
	}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *DocumentTextAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "stored_at", Value: 1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// =============================================================================
// Document Model
// =============================================================================

// documentTextDocument represents the MongoDB document structure.
type documentTextDocument struct {
	EmailID string `bson:"email_id"`

	// Content (potentially compressed)
	Text         []byte `bson:"text"`
	IsCompressed bool   `bson:"is_compressed"`

	// Source filenames the text was extracted from
	Filenames []string `bson:"filenames,omitempty"`

	// Size info
	OriginalSize   int64 `bson:"original_size"`
	CompressedSize int64 `bson:"compressed_size"`

	StoredAt time.Time `bson:"stored_at"`
}

// =============================================================================
// Operations
// =============================================================================

// SaveDocumentText stores the extracted text for an email, replacing any
// earlier extraction.
func (a *DocumentTextAdapter) SaveDocumentText(ctx context.Context, emailID uuid.UUID, text string, filenames []string) error {
	doc, err := a.toDocument(emailID, text, filenames)
	if err != nil {
		return fmt.Errorf("failed to convert document text: %w", err)
	}

	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"email_id": emailID.String()}

	if _, err := a.collection.ReplaceOne(ctx, filter, doc, opts); err != nil {
		return fmt.Errorf("failed to save document text: %w", err)
	}

	return nil
}

// GetDocumentText retrieves the extracted text for an email. Returns an
// empty string when no extraction exists.
func (a *DocumentTextAdapter) GetDocumentText(ctx context.Context, emailID uuid.UUID) (string, error) {
	var doc documentTextDocument
	filter := bson.M{"email_id": emailID.String()}

	err := a.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", nil
		}
		return "", fmt.Errorf("failed to get document text: %w", err)
	}

	textBytes := doc.Text
	if doc.IsCompressed {
		textBytes, err = decompress(doc.Text)
		if err != nil {
			return "", fmt.Errorf("failed to decompress document text: %w", err)
		}
	}

	return string(textBytes), nil
}

// DeleteDocumentText removes the extraction for an email.
func (a *DocumentTextAdapter) DeleteDocumentText(ctx context.Context, emailID uuid.UUID) error {
	filter := bson.M{"email_id": emailID.String()}

	if _, err := a.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete document text: %w", err)
	}

	return nil
}

// DeleteOlderThan deletes all extractions stored before the given time.
func (a *DocumentTextAdapter) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	filter := bson.M{"stored_at": bson.M{"$lt": before}}

	result, err := a.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old document texts: %w", err)
	}

	return result.DeletedCount, nil
}

// =============================================================================
// Conversion Helpers
// =============================================================================

func (a *DocumentTextAdapter) toDocument(emailID uuid.UUID, text string, filenames []string) (*documentTextDocument, error) {
	textBytes := []byte(text)
	originalSize := int64(len(textBytes))

	isCompressed := false
	compressedSize := originalSize

	// Compress if content is large enough
	if originalSize > compressionThreshold {
		compressed, err := compress(textBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to compress text: %w", err)
		}

		textBytes = compressed
		isCompressed = true
		compressedSize = int64(len(textBytes))
	}

	return &documentTextDocument{
		EmailID:        emailID.String(),
		Text:           textBytes,
		IsCompressed:   isCompressed,
		Filenames:      filenames,
		OriginalSize:   originalSize,
		CompressedSize: compressedSize,
		StoredAt:       time.Now(),
	}, nil
}

// =============================================================================
// Compression Helpers
// =============================================================================

func compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)

	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

// =============================================================================
// Interface Compliance
// =============================================================================

var _ out.EmailBodyRepository = (*DocumentTextAdapter)(nil)
