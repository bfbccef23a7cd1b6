package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mapmem/mapmem-go/internal/config"
)

// ReflectInput defines the input schema for generate_reflection.
type ReflectInput struct {
	Namespace string `json:"namespace,omitempty" jsonschema:"Memory partition to consolidate (defaults to the configured namespace)"`
}

// ReflectResult is the response from generate_reflection.
type ReflectResult struct {
	Namespace          string `json:"namespace"`
	ReflectionsWritten int    `json:"reflections_written"`
}

// NewReflectHandler creates the generate_reflection tool handler. It folds
// recent episodes into consolidated reflections; the run is safe to repeat.
func NewReflectHandler(deps *Dependencies, cfg *config.Config) mcp.ToolHandlerFor[ReflectInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ReflectInput) (
		*mcp.CallToolResult, any, error,
	) {
		namespace := input.Namespace
		if namespace == "" {
			namespace = cfg.DefaultNamespace
		}

		written, err := deps.Consolidator.Consolidate(ctx, namespace)
		if err != nil {
			deps.Logger.Error("generate_reflection failed",
				"namespace", namespace, "written_before_error", written, "error", err)
			return ErrorResult("Consolidation aborted", "Completed reflections were kept; rerun to finish"), nil, nil
		}

		return JSONResult(ReflectResult{
			Namespace:          namespace,
			ReflectionsWritten: written,
		}), nil, nil
	}
}
