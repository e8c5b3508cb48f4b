// Package backfill lazily computes and persists missing document embeddings.
//
// Before each triage run the maintainer scans a collection for documents
// whose embedding is absent or empty, composes their searchable text, embeds
// it, and writes the vector back with provenance fields. Documents that
// already carry a non-empty embedding are never touched, so repeated runs
// converge to a no-op.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/mongotriage/internal/atlas"
)

// Store is the persistence surface the maintainer needs.
type Store interface {
	MissingEmbeddings(ctx context.Context, collection string) ([]atlas.Document, error)
	SetEmbedding(ctx context.Context, collection string, id bson.ObjectID, vector []float64, model string, ts time.Time) error
}

// Embedder generates one embedding per text.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
}

// FieldExtractor names a document field and pulls its text.
type FieldExtractor struct {
	Name    string
	Extract func(doc atlas.Document) string
}

var (
	// RawLogField extracts the raw production log line.
	RawLogField = FieldExtractor{
		Name:    "raw_log",
		Extract: func(doc atlas.Document) string { return doc.RawLog },
	}

	// ContentField extracts knowledge note content.
	ContentField = FieldExtractor{
		Name:    "content",
		Extract: func(doc atlas.Document) string { return doc.Content },
	}

	// NormalizedMessageField extracts the normalized error message.
	NormalizedMessageField = FieldExtractor{
		Name:    "normalized_message",
		Extract: func(doc atlas.Document) string { return doc.NormalizedMessage },
	}
)

// LogTextFields are the fields embedded for error log documents.
func LogTextFields() []FieldExtractor {
	return []FieldExtractor{RawLogField}
}

// KnowledgeTextFields are the fields embedded for knowledge documents.
func KnowledgeTextFields() []FieldExtractor {
	return []FieldExtractor{ContentField}
}

// ComposeText concatenates the extracted fields in order, separated by a
// single space. Empty fields are skipped; a document with no usable text
// yields "".
func ComposeText(doc atlas.Document, extractors []FieldExtractor) string {
	parts := make([]string, 0, len(extractors))
	for _, extractor := range extractors {
		value := strings.TrimSpace(extractor.Extract(doc))
		if value == "" {
			continue
		}
		parts = append(parts, value)
	}
	return strings.Join(parts, " ")
}

// Maintainer fills in missing embeddings for one collection at a time.
type Maintainer struct {
	store    Store
	embedder Embedder
	model    string
	logger   *zap.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewMaintainer creates a Maintainer. The model name is recorded on every
// document it embeds.
func NewMaintainer(store Store, embedder Embedder, model string, logger *zap.Logger) (*Maintainer, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if model == "" {
		return nil, errors.New("model name is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Maintainer{
		store:    store,
		embedder: embedder,
		model:    model,
		logger:   logger,
		tracer:   otel.Tracer("mongotriage/backfill"),
		now:      time.Now,
	}, nil
}

// Run embeds every document in the collection that is missing an embedding
// and returns how many documents were updated. Documents whose composed text
// is empty are skipped. Any embedding or store failure aborts the run.
func (m *Maintainer) Run(ctx context.Context, collection string, extractors []FieldExtractor) (int, error) {
	ctx, span := m.tracer.Start(ctx, "Maintainer.Run")
	defer span.End()
	span.SetAttributes(attribute.String("collection", collection))

	docs, err := m.store.MissingEmbeddings(ctx, collection)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("listing documents without embeddings: %w", err)
	}

	updated := 0
	for _, doc := range docs {
		text := ComposeText(doc, extractors)
		if text == "" {
			m.logger.Debug("skipping document with no embeddable text",
				zap.String("collection", collection),
				zap.String("id", doc.ID.Hex()))
			continue
		}

		vector, err := m.embedder.EmbedQuery(ctx, text)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return updated, fmt.Errorf("embedding document %s: %w", doc.ID.Hex(), err)
		}
		if len(vector) == 0 {
			// Empty-vector sentinel: nothing searchable, nothing to store.
			continue
		}

		if err := m.store.SetEmbedding(ctx, collection, doc.ID, vector, m.model, m.now().UTC()); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return updated, fmt.Errorf("storing embedding for %s: %w", doc.ID.Hex(), err)
		}
		updated++
	}

	span.SetAttributes(attribute.Int("updated", updated))
	if updated > 0 {
		m.logger.Info("backfilled embeddings",
			zap.String("collection", collection),
			zap.Int("updated", updated))
	}
	return updated, nil
}
