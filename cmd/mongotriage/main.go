// Mongotriage diagnoses MongoDB production errors with adaptive retrieval.
//
// Given an error description, it runs four retrieval strategies over two
// passes against Atlas vector and text indexes, scores every attempt with a
// deterministic judge, and prints the most confident diagnosis. Each attempt
// is persisted to the retrieval_metrics collection before strategies are
// re-ranked for the next pass.
//
// Configuration is loaded from environment variables. See internal/config.
//
// Usage:
//
//	# Diagnose an error
//	MONGO_URI=mongodb+srv://... VOYAGE_API_KEY=pa-... \
//	mongotriage "connection pool timeout on primary"
//
//	# Create the vector and text search indexes (one-time setup)
//	mongotriage setup
//
//	# Embed documents that are missing vectors
//	mongotriage backfill
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/mongotriage/internal/adaptive"
	"github.com/fyrsmithlabs/mongotriage/internal/atlas"
	"github.com/fyrsmithlabs/mongotriage/internal/config"
	"github.com/fyrsmithlabs/mongotriage/internal/embeddings"
	"github.com/fyrsmithlabs/mongotriage/internal/logging"
	"github.com/fyrsmithlabs/mongotriage/internal/retriever"
	"github.com/fyrsmithlabs/mongotriage/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mongotriage [query...]",
	Short: "Diagnose MongoDB production errors with adaptive retrieval",
	Long: `mongotriage searches MongoDB error logs and a knowledge base for the most
likely cause of a production error. It tries four retrieval strategies over
two passes, re-ranking them by score between passes, and prints the winning
diagnosis.

Examples:
  # Diagnose an error
  mongotriage "connection pool timeout on primary"

  # Quoting is optional; arguments are joined into one query
  mongotriage connection pool timeout on primary`,
	Args:         cobra.ArbitraryArgs,
	RunE:         runTriage,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(versionCmd)
}

// app holds the dependencies shared by every subcommand.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	tel    *telemetry.Telemetry
	store  *atlas.Store
	voyage *embeddings.Client
}

// newApp loads configuration and connects the shared dependencies. The
// returned app must be released with Close.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	tel, err := telemetry.New(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		ServiceVersion: version,
	})
	if err != nil {
		// Telemetry is best-effort; triage still works without an exporter.
		logger.Warn("Telemetry initialization failed, continuing without it", zap.Error(err))
	}

	store, err := atlas.Connect(ctx, atlas.Config{
		URI:              cfg.Mongo.URI.Value(),
		Database:         cfg.Mongo.Database,
		ConnectTimeout:   cfg.Mongo.ConnectTimeout.Std(),
		OperationTimeout: cfg.Mongo.OperationTimeout.Std(),
	}, logger)
	if err != nil {
		logger.Error("MongoDB connection failed",
			zap.Error(err),
			logging.RedactedURI("uri", cfg.Mongo.URI.Value()))
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}

	voyage, err := embeddings.NewClient(embeddings.Config{
		APIKey:            cfg.Voyage.APIKey.Value(),
		Model:             cfg.Voyage.Model,
		BaseURL:           cfg.Voyage.BaseURL,
		Timeout:           cfg.Voyage.Timeout.Std(),
		RequestsPerSecond: cfg.Voyage.RequestsPerSecond,
	}, logger)
	if err != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout.Std())
		defer cancel()
		_ = store.Close(closeCtx)
		return nil, fmt.Errorf("initializing embedding client: %w", err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		tel:    tel,
		store:  store,
		voyage: voyage,
	}, nil
}

// Close releases connections and flushes telemetry. It uses a fresh context
// so cleanup still runs after the root context is cancelled.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Mongo.ConnectTimeout.Std())
	defer cancel()

	if err := a.store.Close(ctx); err != nil {
		a.logger.Warn("Closing MongoDB connection failed", zap.Error(err))
	}
	if a.tel != nil {
		if err := a.tel.Shutdown(ctx); err != nil {
			a.logger.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync() // Best-effort sync on shutdown
}

// runTriage executes the adaptive retrieval loop for the query assembled
// from the positional arguments.
func runTriage(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	a.logger.Info("Starting triage",
		zap.String("query", query),
		zap.String("database", a.cfg.Mongo.Database),
		zap.String("model", a.voyage.Model()))

	if err := backfillCollections(cmd.Context(), a); err != nil {
		return err
	}

	ret, err := retriever.New(a.store, a.voyage, a.logger)
	if err != nil {
		return fmt.Errorf("initializing retriever: %w", err)
	}

	engine, err := adaptive.NewEngine(ret, a.store, a.logger)
	if err != nil {
		return fmt.Errorf("initializing adaptive engine: %w", err)
	}

	outcome, err := engine.Run(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("triage failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderOutcome(outcome))
	return nil
}
