package atlas

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// Tracer for OpenTelemetry instrumentation.
var tracer = otel.Tracer("mongotriage/atlas")

const (
	// DefaultDatabase is the database holding the triage collections.
	DefaultDatabase = "adaptive_mongo"

	// ErrorLogsCollection stores raw production error log documents.
	ErrorLogsCollection = "mongo_error_logs"

	// KnowledgeCollection stores curated troubleshooting notes.
	KnowledgeCollection = "mongo_error_knowledge"

	// MetricsCollection stores one record per strategy attempt.
	MetricsCollection = "retrieval_metrics"

	// VectorIndexName is the Atlas search index queried by $vectorSearch.
	VectorIndexName = "vector_index"

	// vectorSearchCandidates is the $vectorSearch candidate pool size.
	vectorSearchCandidates = 100
)

var (
	// ErrInvalidConfig indicates invalid store configuration
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the deployment could not be reached
	ErrConnectionFailed = errors.New("connection failed")

	// ErrSearchFailed indicates a vector or keyword search failure
	ErrSearchFailed = errors.New("search failed")

	// ErrWriteFailed indicates an insert or update failure
	ErrWriteFailed = errors.New("write failed")

	// ErrEmptyVector indicates an attempt to store an empty embedding
	ErrEmptyVector = errors.New("empty embedding vector")
)

// databaseNamePattern validates database names.
// Pattern: lowercase letters, numbers, underscores, 1-64 characters.
var databaseNamePattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

// Config holds configuration for the Atlas store.
type Config struct {
	// URI is the full connection string (mongodb:// or mongodb+srv://).
	URI string

	// Database is the logical database holding the triage collections.
	Database string

	// ConnectTimeout bounds dialing and the startup ping.
	ConnectTimeout time.Duration

	// OperationTimeout is the client-wide per-operation timeout.
	OperationTimeout time.Duration
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("%w: URI required", ErrInvalidConfig)
	}
	if !databaseNamePattern.MatchString(c.Database) {
		return fmt.Errorf("%w: database name must match ^[a-z0-9_]{1,64}$, got %q", ErrInvalidConfig, c.Database)
	}
	return nil
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.OperationTimeout == 0 {
		c.OperationTimeout = 30 * time.Second
	}
}

// Store wraps a MongoDB client scoped to the triage database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	config Config
	logger *zap.Logger
}

// Connect creates a client, verifies the deployment with a ping, and returns
// a ready Store.
func Connect(ctx context.Context, config Config, logger *zap.Logger) (*Store, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := options.Client().
		ApplyURI(config.URI).
		SetConnectTimeout(config.ConnectTimeout).
		SetTimeout(config.OperationTimeout).
		SetAppName("mongotriage")

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, cancelDisconnect := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelDisconnect()
		_ = client.Disconnect(disconnectCtx)
		return nil, fmt.Errorf("%w: ping: %v", ErrConnectionFailed, err)
	}

	logger.Info("connected to MongoDB", zap.String("database", config.Database))

	return &Store{
		client: client,
		db:     client.Database(config.Database),
		config: config,
		logger: logger,
	}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
