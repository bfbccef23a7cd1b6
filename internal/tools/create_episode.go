package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mapmem/mapmem-go/internal/config"
	"github.com/mapmem/mapmem-go/internal/memory"
	"github.com/mapmem/mapmem-go/internal/models"
)

// CreateEpisodeInput defines the input schema for create_episode.
type CreateEpisodeInput struct {
	Namespace       string            `json:"namespace,omitempty" jsonschema:"Memory partition (defaults to the configured namespace)"`
	ActorID         string            `json:"actor_id,omitempty" jsonschema:"Identifier of the acting user or agent"`
	Filename        string            `json:"filename,omitempty" jsonschema:"Name of the imported file"`
	Columns         []string          `json:"columns" jsonschema:"required,Source column names of the file"`
	SheetCount      int               `json:"sheet_count,omitempty" jsonschema:"Number of sheets or sections in the file"`
	Shapes          []string          `json:"shapes,omitempty" jsonschema:"Structural shape hints per sheet"`
	ColumnMappings  map[string]string `json:"column_mappings" jsonschema:"required,Final column to field mappings that were applied"`
	UserCorrections map[string]string `json:"user_corrections,omitempty" jsonschema:"Subset of mappings the user supplied or corrected"`
	Success         bool              `json:"success" jsonschema:"Whether the downstream import succeeded"`
	MatchRate       float64           `json:"match_rate,omitempty" jsonschema:"Fraction of rows that imported cleanly, 0-1"`
	SchemaVersion   string            `json:"schema_version,omitempty" jsonschema:"Destination schema version at import time"`
	TargetTable     string            `json:"target_table" jsonschema:"required,Destination table of the import"`
}

// CreateEpisodeResult is the response from create_episode.
type CreateEpisodeResult struct {
	EpisodeID       string `json:"episode_id"`
	FilenamePattern string `json:"filename_pattern"`
	FileSignature   string `json:"file_signature"`
}

// NewCreateEpisodeHandler creates the create_episode tool handler. Every
// resolved interaction, corrected or not, is recorded as a new immutable
// episode.
func NewCreateEpisodeHandler(deps *Dependencies, cfg *config.Config) mcp.ToolHandlerFor[CreateEpisodeInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CreateEpisodeInput) (
		*mcp.CallToolResult, any, error,
	) {
		if len(input.Columns) == 0 {
			return ErrorResult("At least one column is required", "Provide the file's source column names"), nil, nil
		}
		if len(input.ColumnMappings) == 0 {
			return ErrorResult("column_mappings is required", "Record the mappings that were applied"), nil, nil
		}
		if input.TargetTable == "" {
			return ErrorResult("target_table is required", "Name the destination table of the import"), nil, nil
		}
		if input.MatchRate < 0 || input.MatchRate > 1 {
			return ErrorResult("match_rate must be between 0 and 1", ""), nil, nil
		}

		namespace := input.Namespace
		if namespace == "" {
			namespace = cfg.DefaultNamespace
		}

		ep, err := deps.Engine.Learn(ctx, memory.LearnRequest{
			Namespace:       namespace,
			ActorID:         input.ActorID,
			Filename:        input.Filename,
			Columns:         input.Columns,
			Sheets:          models.SheetMetadata{SheetCount: input.SheetCount, Shapes: input.Shapes},
			ColumnMappings:  input.ColumnMappings,
			UserCorrections: input.UserCorrections,
			Success:         input.Success,
			MatchRate:       input.MatchRate,
			SchemaVersion:   input.SchemaVersion,
			TargetTable:     input.TargetTable,
		})
		if err != nil {
			deps.Logger.Error("create_episode failed", "namespace", namespace, "error", err)
			return ErrorResult("Failed to store episode", "Event store may be unavailable"), nil, nil
		}

		return JSONResult(CreateEpisodeResult{
			EpisodeID:       ep.ID,
			FilenamePattern: ep.FilenamePattern,
			FileSignature:   ep.FileSignature,
		}), nil, nil
	}
}
