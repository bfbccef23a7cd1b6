package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	reflectionsTable string
	reflectionsLimit int
)

var reflectionsCmd = &cobra.Command{
	Use:   "reflections",
	Short: "List consolidated reflections",
	Long: `List the reflections in a namespace. When a schema catalog is configured,
each reflection is checked against the live schema version and stale ones
are marked.

Examples:
  mapmemctl reflections
  mapmemctl reflections --table fact_sales`,
	RunE: runReflections,
}

func init() {
	reflectionsCmd.Flags().StringVarP(&reflectionsTable, "table", "t", "", "filter by target table")
	reflectionsCmd.Flags().IntVar(&reflectionsLimit, "limit", 20, "max results")
}

func runReflections(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	reflections, err := dbClient.QueryReflections(ctx, namespace, reflectionsTable, reflectionsLimit)
	if err != nil {
		return fmt.Errorf("list reflections: %w", err)
	}

	if len(reflections) == 0 {
		fmt.Println("No reflections found.")
		return nil
	}

	cat := newCatalog()

	fmt.Printf("Reflections in %q (%d):\n\n", namespace, len(reflections))
	for _, r := range reflections {
		staleMark := ""
		if cat != nil {
			current, err := cat.SchemaVersion(ctx, r.TargetTable)
			if err == nil && r.Stale(current) {
				staleMark = fmt.Sprintf(" [stale: observed %s, current %s]", r.SchemaVersionObserved, current)
			}
		}
		fmt.Printf("- %s  %s  confidence %.2f  support %d%s\n",
			r.ClusterKey, r.TargetTable, r.Confidence, len(r.SupportingEpisodeIDs), staleMark)
		if verbose {
			fmt.Printf("    %s\n", r.PatternText)
			fmt.Printf("    episodes: %s\n", strings.Join(r.SupportingEpisodeIDs, ", "))
		}
	}

	return nil
}
