package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mapmem/mapmem-go/internal/config"
	"github.com/mapmem/mapmem-go/internal/metrics"
)

// StatsInput defines the input schema for the stats tool.
type StatsInput struct {
	Namespace string `json:"namespace,omitempty" jsonschema:"Memory partition to count (defaults to the configured namespace)"`
}

// StatsResult is the response from the stats tool.
type StatsResult struct {
	Namespace    string           `json:"namespace"`
	EpisodeCount int              `json:"episode_count"`
	Runtime      metrics.Snapshot `json:"runtime"`
}

// NewStatsHandler creates the stats tool handler.
func NewStatsHandler(deps *Dependencies, cfg *config.Config) mcp.ToolHandlerFor[StatsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (
		*mcp.CallToolResult, any, error,
	) {
		namespace := input.Namespace
		if namespace == "" {
			namespace = cfg.DefaultNamespace
		}

		count, err := deps.DB.CountEpisodes(ctx, namespace)
		if err != nil {
			deps.Logger.Error("stats failed", "namespace", namespace, "error", err)
			return ErrorResult("Failed to count episodes", "Event store may be unavailable"), nil, nil
		}

		var snapshot metrics.Snapshot
		if deps.Collector != nil {
			snapshot = deps.Collector.Snapshot()
		}

		return JSONResult(StatsResult{
			Namespace:    namespace,
			EpisodeCount: count,
			Runtime:      snapshot,
		}), nil, nil
	}
}
