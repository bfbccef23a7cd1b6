// Package tools provides MCP tool handlers and registration.
package tools

import (
	"log/slog"

	"github.com/mapmem/mapmem-go/internal/db"
	"github.com/mapmem/mapmem-go/internal/memory"
	"github.com/mapmem/mapmem-go/internal/metrics"
)

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	DB           *db.Client
	Engine       *memory.Engine
	Consolidator *memory.Consolidator
	Collector    *metrics.Collector
	Logger       *slog.Logger
}
