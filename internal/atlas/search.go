package atlas

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// VectorSearch runs $vectorSearch over a collection's embeddings and returns
// up to k hits ordered by similarity. The query vector must be non-empty;
// callers that hold the empty-vector sentinel skip the search entirely.
func (s *Store) VectorSearch(ctx context.Context, collection string, vector []float64, k int) ([]Hit, error) {
	ctx, span := tracer.Start(ctx, "Store.VectorSearch")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("top_k", k),
	)

	cursor, err := s.db.Collection(collection).Aggregate(ctx, vectorSearchPipeline(vector, k))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: vector search on %s: %v", ErrSearchFailed, collection, err)
	}

	var hits []Hit
	if err := cursor.All(ctx, &hits); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: decoding vector hits: %v", ErrSearchFailed, err)
	}

	span.SetAttributes(attribute.Int("hits", len(hits)))
	return hits, nil
}

// KeywordSearch runs a $text query ordered by textScore and returns up to k
// hits. Collections without matching terms return no hits rather than an
// error.
func (s *Store) KeywordSearch(ctx context.Context, collection, query string, k int) ([]Hit, error) {
	ctx, span := tracer.Start(ctx, "Store.KeywordSearch")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("top_k", k),
	)

	opts := options.Find().
		SetProjection(hitProjection(textScoreMeta())).
		SetSort(textScoreSort()).
		SetLimit(int64(k))

	cursor, err := s.db.Collection(collection).Find(ctx, keywordFilter(query), opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: keyword search on %s: %v", ErrSearchFailed, collection, err)
	}

	var hits []Hit
	if err := cursor.All(ctx, &hits); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: decoding keyword hits: %v", ErrSearchFailed, err)
	}

	span.SetAttributes(attribute.Int("hits", len(hits)))
	return hits, nil
}
