package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mapmem/mapmem-go/internal/config"
)

// RegisterAll registers all tools with the MCP server.
// This is called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies, cfg *config.Config) {
	// Ping tool - test/placeholder
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ping",
		Description: "Test tool - responds with pong or echoes input",
	}, NewPingHandler(deps))

	// Recall path: call this BEFORE asking the user about column mappings
	mcp.AddTool(server, &mcp.Tool{
		Name:        "retrieve_prior_knowledge",
		Description: "Retrieve remembered column mappings for a file before asking the user. Returns per-column suggestions with confidence and auto-apply/ask-user decisions",
	}, NewRetrieveHandler(deps, cfg))

	// Learn path: record the resolved interaction
	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_episode",
		Description: "Record a resolved mapping interaction as an immutable episode, including user corrections and the import outcome",
	}, NewCreateEpisodeHandler(deps, cfg))

	// Consolidation: fold episodes into reflections
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_reflection",
		Description: "Consolidate recent episodes into durable reflection patterns; safe to rerun",
	}, NewReflectHandler(deps, cfg))

	// Inspection tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_episodes",
		Description: "List stored episodes in a namespace, newest first, with optional table/signature/time filters",
	}, NewListEpisodesHandler(deps, cfg))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "stats",
		Description: "Report episode counts and engine runtime statistics",
	}, NewStatsHandler(deps, cfg))
}
