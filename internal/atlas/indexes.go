package atlas

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

// EnsureSearchIndexes creates the Atlas vector search index on both content
// collections plus the text indexes backing keyword search. Indexes that
// already exist are left untouched. Atlas builds search indexes
// asynchronously, so a freshly created vector index may take a short while
// to become queryable.
func (s *Store) EnsureSearchIndexes(ctx context.Context, dimensions int) error {
	ctx, span := tracer.Start(ctx, "Store.EnsureSearchIndexes")
	defer span.End()

	if dimensions <= 0 {
		return fmt.Errorf("%w: vector dimensions must be positive, got %d", ErrInvalidConfig, dimensions)
	}

	for _, collection := range []string{ErrorLogsCollection, KnowledgeCollection} {
		if err := s.ensureVectorIndex(ctx, collection, dimensions); err != nil {
			return err
		}
	}

	if err := s.ensureTextIndex(ctx, ErrorLogsCollection, []string{"raw_log", "normalized_message"}); err != nil {
		return err
	}
	if err := s.ensureTextIndex(ctx, KnowledgeCollection, []string{"content"}); err != nil {
		return err
	}
	return nil
}

// vectorIndexDefinition is the Atlas vectorSearch index body for the
// embedding field.
func vectorIndexDefinition(dimensions int) bson.D {
	return bson.D{{Key: "fields", Value: bson.A{bson.D{
		{Key: "type", Value: "vector"},
		{Key: "path", Value: "embedding"},
		{Key: "numDimensions", Value: dimensions},
		{Key: "similarity", Value: "cosine"},
	}}}}
}

// textIndexKeys builds a compound text index over the given fields. MongoDB
// permits a single text index per collection, so all searchable fields share
// one index.
func textIndexKeys(fields []string) bson.D {
	keys := make(bson.D, 0, len(fields))
	for _, field := range fields {
		keys = append(keys, bson.E{Key: field, Value: "text"})
	}
	return keys
}

func (s *Store) ensureVectorIndex(ctx context.Context, collection string, dimensions int) error {
	coll := s.db.Collection(collection)

	exists, err := s.hasSearchIndex(ctx, coll, VectorIndexName)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Debug("vector search index present", zap.String("collection", collection))
		return nil
	}

	model := mongo.SearchIndexModel{
		Definition: vectorIndexDefinition(dimensions),
		Options:    options.SearchIndexes().SetName(VectorIndexName).SetType("vectorSearch"),
	}
	if _, err := coll.SearchIndexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("%w: creating vector index on %s: %v", ErrWriteFailed, collection, err)
	}

	s.logger.Info("created vector search index",
		zap.String("collection", collection),
		zap.String("index", VectorIndexName),
		zap.Int("dimensions", dimensions))
	return nil
}

func (s *Store) ensureTextIndex(ctx context.Context, collection string, fields []string) error {
	model := mongo.IndexModel{Keys: textIndexKeys(fields)}
	if _, err := s.db.Collection(collection).Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("%w: creating text index on %s: %v", ErrWriteFailed, collection, err)
	}

	s.logger.Info("ensured text index",
		zap.String("collection", collection),
		zap.Strings("fields", fields))
	return nil
}

func (s *Store) hasSearchIndex(ctx context.Context, coll *mongo.Collection, name string) (bool, error) {
	cursor, err := coll.SearchIndexes().List(ctx, options.SearchIndexes().SetName(name))
	if err != nil {
		return false, fmt.Errorf("%w: listing search indexes on %s: %v", ErrSearchFailed, coll.Name(), err)
	}
	defer cursor.Close(ctx)

	found := cursor.Next(ctx)
	if err := cursor.Err(); err != nil {
		return false, fmt.Errorf("%w: reading search indexes on %s: %v", ErrSearchFailed, coll.Name(), err)
	}
	return found, nil
}
