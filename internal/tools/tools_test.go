//go:build integration

// Package tools_test contains tests for MCP tools.
package tools_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapmem/mapmem-go/internal/config"
	"github.com/mapmem/mapmem-go/internal/tools"
)

// testLogger creates a logger for test visibility.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// startTestSession registers all tools on an in-memory server and returns a
// connected client session.
func startTestSession(t *testing.T, ctx context.Context, deps *tools.Dependencies, cfg *config.Config) *mcp.ClientSession {
	t.Helper()

	impl := &mcp.Implementation{
		Name:    "test-mapmem",
		Version: "0.0.1-test",
	}
	server := mcp.NewServer(impl, nil)
	tools.RegisterAll(server, deps, cfg)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	go func() {
		_ = server.Run(ctx, serverTransport)
	}()
	time.Sleep(50 * time.Millisecond)

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err, "client should connect successfully")
	return session
}

func TestToolRegistration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	deps := &tools.Dependencies{Logger: testLogger()}
	session := startTestSession(t, ctx, deps, &config.Config{})
	defer session.Close()

	result, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, result.Tools, 6) // ping + retrieve_prior_knowledge + create_episode + generate_reflection + list_episodes + stats

	toolNames := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		toolNames[i] = tool.Name
	}
	assert.Contains(t, toolNames, "ping")
	assert.Contains(t, toolNames, "retrieve_prior_knowledge")
	assert.Contains(t, toolNames, "create_episode")
	assert.Contains(t, toolNames, "generate_reflection")
	assert.Contains(t, toolNames, "list_episodes")
	assert.Contains(t, toolNames, "stats")
}

func TestPingTool(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	deps := &tools.Dependencies{Logger: testLogger()}
	session := startTestSession(t, ctx, deps, &config.Config{})
	defer session.Close()

	t.Run("ping returns pong", func(t *testing.T) {
		result, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "ping",
			Arguments: map[string]any{},
		})
		require.NoError(t, err)
		require.Len(t, result.Content, 1)

		textContent, ok := result.Content[0].(*mcp.TextContent)
		require.True(t, ok, "content should be TextContent")
		assert.Equal(t, "pong", textContent.Text)
		assert.False(t, result.IsError)
	})

	t.Run("ping echoes input", func(t *testing.T) {
		result, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "ping",
			Arguments: map[string]any{"echo": "hello world"},
		})
		require.NoError(t, err)
		require.Len(t, result.Content, 1)

		textContent, ok := result.Content[0].(*mcp.TextContent)
		require.True(t, ok, "content should be TextContent")
		assert.Equal(t, "hello world", textContent.Text)
		assert.False(t, result.IsError)
	})
}

func TestRetrieveValidation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	deps := &tools.Dependencies{Logger: testLogger()}
	session := startTestSession(t, ctx, deps, &config.Config{DefaultNamespace: "org"})
	defer session.Close()

	t.Run("missing columns is a tool error", func(t *testing.T) {
		result, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "retrieve_prior_knowledge",
			Arguments: map[string]any{"target_table": "fact_sales"},
		})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("missing target_table is a tool error", func(t *testing.T) {
		result, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name:      "retrieve_prior_knowledge",
			Arguments: map[string]any{"columns": []string{"SKU"}},
		})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestCreateEpisodeValidation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	deps := &tools.Dependencies{Logger: testLogger()}
	session := startTestSession(t, ctx, deps, &config.Config{DefaultNamespace: "org"})
	defer session.Close()

	t.Run("missing mappings is a tool error", func(t *testing.T) {
		result, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name: "create_episode",
			Arguments: map[string]any{
				"columns":      []string{"SKU"},
				"target_table": "fact_sales",
			},
		})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("match_rate out of range is a tool error", func(t *testing.T) {
		result, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name: "create_episode",
			Arguments: map[string]any{
				"columns":         []string{"SKU"},
				"column_mappings": map[string]string{"SKU": "product_sku"},
				"target_table":    "fact_sales",
				"match_rate":      1.5,
			},
		})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}
