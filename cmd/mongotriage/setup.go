package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/mongotriage/internal/embeddings"
)

// setupCmd creates the Atlas search indexes
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the Atlas vector and text search indexes",
	Long: `Setup creates the vector search index on the error log and knowledge
collections, plus the text indexes used by hybrid search. Existing indexes
are left untouched, so the command is safe to run repeatedly.

Atlas builds search indexes asynchronously; a newly created index may take a
minute before it serves queries.

Examples:
  # Create indexes for the configured database
  mongotriage setup`,
	Args:         cobra.NoArgs,
	RunE:         runSetup,
	SilenceUsage: true,
}

// runSetup handles the setup command
func runSetup(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.Voyage.Model != embeddings.DefaultModel {
		a.logger.Warn("Vector index dimensions are sized for the default model",
			zap.String("model", a.cfg.Voyage.Model),
			zap.Int("dimensions", embeddings.ModelDimensions))
	}

	if err := a.store.EnsureSearchIndexes(cmd.Context(), embeddings.ModelDimensions); err != nil {
		return fmt.Errorf("creating search indexes: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Search indexes ready.")
	return nil
}
