package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mapmem/mapmem-go/internal/config"
	"github.com/mapmem/mapmem-go/internal/memory"
	"github.com/mapmem/mapmem-go/internal/models"
)

// RetrieveInput defines the input schema for retrieve_prior_knowledge.
type RetrieveInput struct {
	Namespace   string   `json:"namespace,omitempty" jsonschema:"Memory partition (defaults to the configured namespace)"`
	ActorID     string   `json:"actor_id,omitempty" jsonschema:"Identifier of the acting user or agent"`
	Filename    string   `json:"filename,omitempty" jsonschema:"Name of the file being imported"`
	Columns     []string `json:"columns" jsonschema:"required,Source column names of the file"`
	SheetCount  int      `json:"sheet_count,omitempty" jsonschema:"Number of sheets or sections in the file"`
	Shapes      []string `json:"shapes,omitempty" jsonschema:"Structural shape hints per sheet"`
	TargetTable string   `json:"target_table" jsonschema:"required,Destination table for the import"`
}

// RetrieveResult is the response from retrieve_prior_knowledge.
type RetrieveResult struct {
	SuggestedMappings map[string]models.ColumnSuggestion `json:"suggested_mappings"`
	Decisions         map[string]memory.Decision         `json:"decisions"`
	SchemaDrift       bool                               `json:"schema_drift"`
	Degraded          bool                               `json:"degraded,omitempty"`
}

// NewRetrieveHandler creates the retrieve_prior_knowledge tool handler.
// Callers invoke it before asking the user anything about column mappings.
func NewRetrieveHandler(deps *Dependencies, cfg *config.Config) mcp.ToolHandlerFor[RetrieveInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RetrieveInput) (
		*mcp.CallToolResult, any, error,
	) {
		if len(input.Columns) == 0 {
			return ErrorResult("At least one column is required", "Provide the file's source column names"), nil, nil
		}
		if input.TargetTable == "" {
			return ErrorResult("target_table is required", "Name the destination table of the import"), nil, nil
		}

		namespace := input.Namespace
		if namespace == "" {
			namespace = cfg.DefaultNamespace
		}

		result, err := deps.Engine.Recall(ctx, memory.RecallRequest{
			Namespace:   namespace,
			ActorID:     input.ActorID,
			Filename:    input.Filename,
			Columns:     input.Columns,
			Sheets:      models.SheetMetadata{SheetCount: input.SheetCount, Shapes: input.Shapes},
			TargetTable: input.TargetTable,
		})
		if err != nil {
			deps.Logger.Error("retrieve failed", "namespace", namespace, "error", err)
			return ErrorResult("Failed to retrieve prior knowledge", "Try again or proceed without suggestions"), nil, nil
		}

		deps.Logger.Info("retrieve completed",
			"namespace", namespace,
			"target_table", input.TargetTable,
			"suggestions", len(result.Suggestions),
			"schema_drift", result.SchemaDrift,
			"degraded", result.Degraded,
		)

		return JSONResult(RetrieveResult{
			SuggestedMappings: result.Suggestions,
			Decisions:         result.Decisions,
			SchemaDrift:       result.SchemaDrift,
			Degraded:          result.Degraded,
		}), nil, nil
	}
}
