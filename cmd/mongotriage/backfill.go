package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/mongotriage/internal/atlas"
	"github.com/fyrsmithlabs/mongotriage/internal/backfill"
)

// backfillCmd embeds documents that are missing vectors
var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Embed documents that are missing vectors",
	Long: `Backfill scans the error log and knowledge collections for documents whose
embedding field is absent or empty, embeds their text fields, and writes the
vector back onto the document.

Triage runs this automatically before retrieving; the subcommand exists so
freshly imported documents can be embedded ahead of time.

Examples:
  # Embed everything that is missing a vector
  mongotriage backfill`,
	Args:         cobra.NoArgs,
	RunE:         runBackfill,
	SilenceUsage: true,
}

// runBackfill handles the backfill command
func runBackfill(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := backfillCollections(cmd.Context(), a); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Backfill complete.")
	return nil
}

// backfillCollections embeds missing vectors in both triage collections.
func backfillCollections(ctx context.Context, a *app) error {
	maintainer, err := backfill.NewMaintainer(a.store, a.voyage, a.voyage.Model(), a.logger)
	if err != nil {
		return fmt.Errorf("initializing backfill: %w", err)
	}

	for _, target := range []struct {
		collection string
		fields     []backfill.FieldExtractor
	}{
		{atlas.ErrorLogsCollection, backfill.LogTextFields()},
		{atlas.KnowledgeCollection, backfill.KnowledgeTextFields()},
	} {
		updated, err := maintainer.Run(ctx, target.collection, target.fields)
		if err != nil {
			return fmt.Errorf("backfilling %s: %w", target.collection, err)
		}
		if updated > 0 {
			a.logger.Info("Backfilled embeddings",
				zap.String("collection", target.collection),
				zap.Int("documents", updated))
		}
	}
	return nil
}
