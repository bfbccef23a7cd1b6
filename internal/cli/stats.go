package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show episode counts for a namespace",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	count, err := dbClient.CountEpisodes(ctx, namespace)
	if err != nil {
		return fmt.Errorf("count episodes: %w", err)
	}

	reflections, err := dbClient.QueryReflections(ctx, namespace, "", 100)
	if err != nil {
		return fmt.Errorf("list reflections: %w", err)
	}

	fmt.Printf("Namespace:   %s\n", namespace)
	fmt.Printf("Episodes:    %d\n", count)
	fmt.Printf("Reflections: %d\n", len(reflections))
	return nil
}
