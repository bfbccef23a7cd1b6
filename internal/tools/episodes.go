package tools

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mapmem/mapmem-go/internal/config"
	"github.com/mapmem/mapmem-go/internal/models"
)

// ListEpisodesInput defines the input schema for list_episodes.
type ListEpisodesInput struct {
	Namespace     string `json:"namespace,omitempty" jsonschema:"Memory partition (defaults to the configured namespace)"`
	TargetTable   string `json:"target_table,omitempty" jsonschema:"Only episodes for this destination table"`
	FileSignature string `json:"file_signature,omitempty" jsonschema:"Only episodes with this exact file signature"`
	Since         string `json:"since,omitempty" jsonschema:"Only episodes created after this RFC3339 timestamp"`
	Limit         int    `json:"limit,omitempty" jsonschema:"Max episodes to return (default 20, max 100)"`
}

// episodeSummary is an episode with its embedding stripped for readable output.
type episodeSummary struct {
	ID              string            `json:"id"`
	ActorID         string            `json:"actor_id,omitempty"`
	FilenamePattern string            `json:"filename_pattern"`
	FileSignature   string            `json:"file_signature"`
	ColumnMappings  map[string]string `json:"column_mappings"`
	UserCorrections map[string]string `json:"user_corrections,omitempty"`
	Success         bool              `json:"success"`
	MatchRate       float64           `json:"match_rate"`
	SchemaVersion   string            `json:"schema_version,omitempty"`
	TargetTable     string            `json:"target_table"`
	CreatedAt       time.Time         `json:"created_at"`
}

// ListEpisodesResult is the response from list_episodes.
type ListEpisodesResult struct {
	Namespace string           `json:"namespace"`
	Episodes  []episodeSummary `json:"episodes"`
	Count     int              `json:"count"`
}

// NewListEpisodesHandler creates the list_episodes tool handler for
// inspecting raw memory.
func NewListEpisodesHandler(deps *Dependencies, cfg *config.Config) mcp.ToolHandlerFor[ListEpisodesInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListEpisodesInput) (
		*mcp.CallToolResult, any, error,
	) {
		namespace := input.Namespace
		if namespace == "" {
			namespace = cfg.DefaultNamespace
		}

		limit := input.Limit
		if limit <= 0 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}

		filter := models.EpisodeFilter{
			TargetTable:   input.TargetTable,
			FileSignature: input.FileSignature,
		}
		if input.Since != "" {
			since, err := time.Parse(time.RFC3339, input.Since)
			if err != nil {
				return ErrorResult("Invalid since timestamp", "Use RFC3339, e.g. 2026-01-02T15:04:05Z"), nil, nil
			}
			filter.Since = since
		}

		episodes, err := deps.DB.QueryEpisodes(ctx, namespace, filter, limit)
		if err != nil {
			deps.Logger.Error("list_episodes failed", "namespace", namespace, "error", err)
			return ErrorResult("Failed to list episodes", "Event store may be unavailable"), nil, nil
		}

		summaries := make([]episodeSummary, 0, len(episodes))
		for _, ep := range episodes {
			summaries = append(summaries, episodeSummary{
				ID:              ep.ID,
				ActorID:         ep.ActorID,
				FilenamePattern: ep.FilenamePattern,
				FileSignature:   ep.FileSignature,
				ColumnMappings:  ep.ColumnMappings,
				UserCorrections: ep.UserCorrections,
				Success:         ep.Success,
				MatchRate:       ep.MatchRate,
				SchemaVersion:   ep.SchemaVersion,
				TargetTable:     ep.TargetTable,
				CreatedAt:       ep.CreatedAt,
			})
		}

		return JSONResult(ListEpisodesResult{
			Namespace: namespace,
			Episodes:  summaries,
			Count:     len(summaries),
		}), nil, nil
	}
}
