package atlas

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// MissingEmbeddings returns every document in the collection whose embedding
// is absent or empty.
func (s *Store) MissingEmbeddings(ctx context.Context, collection string) ([]Document, error) {
	ctx, span := tracer.Start(ctx, "Store.MissingEmbeddings")
	defer span.End()
	span.SetAttributes(attribute.String("collection", collection))

	cursor, err := s.db.Collection(collection).Find(ctx, missingEmbeddingFilter())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: finding documents without embeddings in %s: %v", ErrSearchFailed, collection, err)
	}

	var docs []Document
	if err := cursor.All(ctx, &docs); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: decoding documents: %v", ErrSearchFailed, err)
	}

	span.SetAttributes(attribute.Int("documents", len(docs)))
	return docs, nil
}

// SetEmbedding writes the vector and its provenance fields onto one
// document. Empty vectors are rejected so the stored data keeps the
// invariant that a present embedding is a usable one.
func (s *Store) SetEmbedding(ctx context.Context, collection string, id bson.ObjectID, vector []float64, model string, ts time.Time) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: document %s", ErrEmptyVector, id.Hex())
	}

	ctx, span := tracer.Start(ctx, "Store.SetEmbedding")
	defer span.End()
	span.SetAttributes(attribute.String("collection", collection))

	result, err := s.db.Collection(collection).UpdateByID(ctx, id, embeddingUpdate(vector, model, ts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: updating embedding on %s: %v", ErrWriteFailed, collection, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: document %s not found in %s", ErrWriteFailed, id.Hex(), collection)
	}
	return nil
}

// InsertDocuments inserts documents into the collection and returns how many
// were written. Documents are stored as-is; embeddings are usually left empty
// so the backfill pass can fill them in.
func (s *Store) InsertDocuments(ctx context.Context, collection string, docs []Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	ctx, span := tracer.Start(ctx, "Store.InsertDocuments")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("documents", len(docs)),
	)

	result, err := s.db.Collection(collection).InsertMany(ctx, docs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("%w: inserting into %s: %v", ErrWriteFailed, collection, err)
	}
	return len(result.InsertedIDs), nil
}

// CountDocuments returns the number of documents in the collection.
func (s *Store) CountDocuments(ctx context.Context, collection string) (int64, error) {
	ctx, span := tracer.Start(ctx, "Store.CountDocuments")
	defer span.End()
	span.SetAttributes(attribute.String("collection", collection))

	count, err := s.db.Collection(collection).CountDocuments(ctx, bson.D{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("%w: counting documents in %s: %v", ErrSearchFailed, collection, err)
	}
	return count, nil
}

// AppendMetric persists one strategy attempt to the metrics collection.
func (s *Store) AppendMetric(ctx context.Context, record MetricRecord) error {
	ctx, span := tracer.Start(ctx, "Store.AppendMetric")
	defer span.End()
	span.SetAttributes(
		attribute.String("strategy", record.Strategy),
		attribute.Int("pass", record.Pass),
	)

	if _, err := s.db.Collection(MetricsCollection).InsertOne(ctx, record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: appending metric: %v", ErrWriteFailed, err)
	}
	return nil
}
