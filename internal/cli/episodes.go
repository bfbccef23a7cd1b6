package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mapmem/mapmem-go/internal/models"
)

var (
	episodesTable string
	episodesSig   string
	episodesSince string
	episodesLimit int
)

var episodesCmd = &cobra.Command{
	Use:   "episodes",
	Short: "List stored episodes, newest first",
	Long: `List the raw episodes in a namespace with optional filters.

Examples:
  mapmemctl episodes
  mapmemctl episodes --table fact_sales --limit 5
  mapmemctl episodes --since 2026-08-01T00:00:00Z`,
	RunE: runEpisodes,
}

func init() {
	episodesCmd.Flags().StringVarP(&episodesTable, "table", "t", "", "filter by target table")
	episodesCmd.Flags().StringVar(&episodesSig, "signature", "", "filter by exact file signature")
	episodesCmd.Flags().StringVar(&episodesSince, "since", "", "only episodes created after this RFC3339 timestamp")
	episodesCmd.Flags().IntVar(&episodesLimit, "limit", 20, "max results")
}

func runEpisodes(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	filter := models.EpisodeFilter{
		TargetTable:   episodesTable,
		FileSignature: episodesSig,
	}
	if episodesSince != "" {
		since, err := time.Parse(time.RFC3339, episodesSince)
		if err != nil {
			return fmt.Errorf("parse --since: %w", err)
		}
		filter.Since = since
	}

	episodes, err := dbClient.QueryEpisodes(ctx, namespace, filter, episodesLimit)
	if err != nil {
		return fmt.Errorf("list episodes: %w", err)
	}

	if len(episodes) == 0 {
		fmt.Println("No episodes found.")
		return nil
	}

	fmt.Printf("Episodes in %q (%d):\n\n", namespace, len(episodes))
	for _, ep := range episodes {
		status := "ok"
		if !ep.Success {
			status = "failed"
		}
		fmt.Printf("- %s  %s -> %s  [%s, match %.2f]  %s\n",
			ep.ID, ep.FilenamePattern, ep.TargetTable, status, ep.MatchRate,
			ep.CreatedAt.Format(time.RFC3339))
		if verbose {
			for column, field := range ep.ColumnMappings {
				corrected := ""
				if _, ok := ep.UserCorrections[column]; ok {
					corrected = " (corrected)"
				}
				fmt.Printf("    %s -> %s%s\n", column, field, corrected)
			}
		}
	}

	return nil
}
