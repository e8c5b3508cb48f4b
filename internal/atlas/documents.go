package atlas

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Document is one stored record from the error log or knowledge collections.
// Log documents carry raw_log and normalized fields; knowledge documents
// carry content. Embedding provenance fields are written by the backfill.
type Document struct {
	ID                bson.ObjectID `bson:"_id,omitempty"`
	RawLog            string        `bson:"raw_log,omitempty"`
	Content           string        `bson:"content,omitempty"`
	Component         string        `bson:"component,omitempty"`
	ErrorCode         any           `bson:"error_code,omitempty"`
	NormalizedMessage string        `bson:"normalized_message,omitempty"`
	Embedding         []float64     `bson:"embedding,omitempty"`
	EmbeddingModel    string        `bson:"embedding_model,omitempty"`
	EmbeddingTS       time.Time     `bson:"embedding_ts,omitempty"`
}

// Hit is a scored search result. Score is a vectorSearchScore for vector
// hits and a textScore for keyword hits; the two are not comparable.
type Hit struct {
	ID                bson.ObjectID `bson:"_id"`
	RawLog            string        `bson:"raw_log,omitempty"`
	Content           string        `bson:"content,omitempty"`
	Component         string        `bson:"component,omitempty"`
	ErrorCode         any           `bson:"error_code,omitempty"`
	NormalizedMessage string        `bson:"normalized_message,omitempty"`
	Score             float64       `bson:"score"`
}

// MetricRecord is one persisted strategy attempt. Records are append-only;
// every attempt writes exactly one record regardless of outcome.
type MetricRecord struct {
	RunID     string    `bson:"run_id"`
	Query     string    `bson:"query"`
	Strategy  string    `bson:"strategy"`
	Score     float64   `bson:"score"`
	Pass      int       `bson:"pass"`
	Timestamp time.Time `bson:"ts"`
}
