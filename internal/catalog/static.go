package catalog

import (
	"context"
	"sync"
)

// StaticCatalog is an in-memory catalog for tests and air-gapped runs.
// Tables map to their known field sets and a version tag.
type StaticCatalog struct {
	mu       sync.RWMutex
	tables   map[string]map[string]bool
	versions map[string]string
}

var _ Catalog = (*StaticCatalog)(nil)

// NewStatic creates an empty static catalog.
func NewStatic() *StaticCatalog {
	return &StaticCatalog{
		tables:   make(map[string]map[string]bool),
		versions: make(map[string]string),
	}
}

// SetTable registers a table with its field set and version, replacing any
// previous definition.
func (c *StaticCatalog) SetTable(table, version string, fields ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	c.tables[table] = set
	c.versions[table] = version
}

// ColumnExists reports whether the field is registered on the table.
func (c *StaticCatalog) ColumnExists(_ context.Context, table, field string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tables[table][field], nil
}

// SchemaVersion returns the registered version tag, empty if unknown.
func (c *StaticCatalog) SchemaVersion(_ context.Context, table string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.versions[table], nil
}
