package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Fold recent episodes into reflections",
	Long: `Consolidate clusters recent episodes by file signature and target table
and writes one reflection per cluster with enough support. The run is
idempotent: repeating it on unchanged episodes rewrites the same patterns.

Examples:
  mapmemctl consolidate
  mapmemctl consolidate -n team-billing`,
	RunE: runConsolidate,
}

func runConsolidate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	written, err := newConsolidator().Consolidate(ctx, namespace)
	if err != nil {
		return fmt.Errorf("consolidate: %w (wrote %d reflections before aborting)", err, written)
	}

	fmt.Printf("Consolidated namespace %q: %d reflection(s) written.\n", namespace, written)
	return nil
}
