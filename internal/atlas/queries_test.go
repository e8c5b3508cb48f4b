package atlas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestMissingEmbeddingFilter(t *testing.T) {
	want := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "embedding", Value: bson.D{{Key: "$exists", Value: false}}}},
		bson.D{{Key: "embedding", Value: bson.D{{Key: "$size", Value: 0}}}},
	}}}

	assert.Equal(t, want, missingEmbeddingFilter())
}

func TestEmbeddingUpdate(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	update := embeddingUpdate([]float64{0.1, 0.2}, "voyage-code-2", ts)

	require.Len(t, update, 1)
	assert.Equal(t, "$set", update[0].Key)

	set, ok := update[0].Value.(bson.D)
	require.True(t, ok)
	assert.Equal(t, bson.D{
		{Key: "embedding", Value: []float64{0.1, 0.2}},
		{Key: "embedding_model", Value: "voyage-code-2"},
		{Key: "embedding_ts", Value: ts},
	}, set)
}

func TestVectorSearchPipeline(t *testing.T) {
	vector := []float64{0.5, 0.5, 0.5}
	pipeline := vectorSearchPipeline(vector, 5)

	require.Len(t, pipeline, 2)

	search := pipeline[0]
	require.Len(t, search, 1)
	assert.Equal(t, "$vectorSearch", search[0].Key)
	assert.Equal(t, bson.D{
		{Key: "index", Value: "vector_index"},
		{Key: "path", Value: "embedding"},
		{Key: "queryVector", Value: vector},
		{Key: "numCandidates", Value: 100},
		{Key: "limit", Value: 5},
	}, search[0].Value)

	project := pipeline[1]
	require.Len(t, project, 1)
	assert.Equal(t, "$project", project[0].Key)

	fields, ok := project[0].Value.(bson.D)
	require.True(t, ok)
	assert.Equal(t, bson.D{
		{Key: "_id", Value: 1},
		{Key: "raw_log", Value: 1},
		{Key: "content", Value: 1},
		{Key: "component", Value: 1},
		{Key: "error_code", Value: 1},
		{Key: "normalized_message", Value: 1},
		{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
	}, fields)
}

func TestKeywordQueryShape(t *testing.T) {
	filter := keywordFilter("connection pool exhausted")
	assert.Equal(t, bson.D{{Key: "$text", Value: bson.D{{Key: "$search", Value: "connection pool exhausted"}}}}, filter)

	sort := textScoreSort()
	assert.Equal(t, bson.D{{Key: "score", Value: bson.D{{Key: "$meta", Value: "textScore"}}}}, sort)
}

func TestVectorIndexDefinition(t *testing.T) {
	def := vectorIndexDefinition(1536)

	require.Len(t, def, 1)
	assert.Equal(t, "fields", def[0].Key)

	fields, ok := def[0].Value.(bson.A)
	require.True(t, ok)
	require.Len(t, fields, 1)

	assert.Equal(t, bson.D{
		{Key: "type", Value: "vector"},
		{Key: "path", Value: "embedding"},
		{Key: "numDimensions", Value: 1536},
		{Key: "similarity", Value: "cosine"},
	}, fields[0])
}

func TestTextIndexKeys(t *testing.T) {
	keys := textIndexKeys([]string{"raw_log", "normalized_message"})
	assert.Equal(t, bson.D{
		{Key: "raw_log", Value: "text"},
		{Key: "normalized_message", Value: "text"},
	}, keys)
}
