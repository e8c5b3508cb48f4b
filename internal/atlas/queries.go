package atlas

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// missingEmbeddingFilter matches documents whose embedding field is absent
// or holds an empty array. Documents with a non-empty embedding are never
// matched, so existing vectors are never recomputed.
func missingEmbeddingFilter() bson.D {
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "embedding", Value: bson.D{{Key: "$exists", Value: false}}}},
		bson.D{{Key: "embedding", Value: bson.D{{Key: "$size", Value: 0}}}},
	}}}
}

// embeddingUpdate sets the vector together with its provenance fields.
func embeddingUpdate(vector []float64, model string, ts time.Time) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "embedding", Value: vector},
		{Key: "embedding_model", Value: model},
		{Key: "embedding_ts", Value: ts},
	}}}
}

// hitProjection shapes search output to the Hit fields. The score expression
// differs between vector and keyword search, everything else is shared.
func hitProjection(score bson.D) bson.D {
	return bson.D{
		{Key: "_id", Value: 1},
		{Key: "raw_log", Value: 1},
		{Key: "content", Value: 1},
		{Key: "component", Value: 1},
		{Key: "error_code", Value: 1},
		{Key: "normalized_message", Value: 1},
		{Key: "score", Value: score},
	}
}

func vectorScoreMeta() bson.D {
	return bson.D{{Key: "$meta", Value: "vectorSearchScore"}}
}

func textScoreMeta() bson.D {
	return bson.D{{Key: "$meta", Value: "textScore"}}
}

// vectorSearchPipeline builds the $vectorSearch aggregation run against the
// Atlas vector_index.
func vectorSearchPipeline(vector []float64, k int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: VectorIndexName},
			{Key: "path", Value: "embedding"},
			{Key: "queryVector", Value: vector},
			{Key: "numCandidates", Value: vectorSearchCandidates},
			{Key: "limit", Value: k},
		}}},
		{{Key: "$project", Value: hitProjection(vectorScoreMeta())}},
	}
}

// keywordFilter is the $text match used by keyword search.
func keywordFilter(query string) bson.D {
	return bson.D{{Key: "$text", Value: bson.D{{Key: "$search", Value: query}}}}
}

// textScoreSort orders keyword hits by relevance, best first.
func textScoreSort() bson.D {
	return bson.D{{Key: "score", Value: textScoreMeta()}}
}
