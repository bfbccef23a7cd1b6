// Package catalog exposes the external schema catalog the validator consults.
// The catalog is a collaborator, not part of the engine: it answers whether a
// target field still exists and which schema version a table is on.
package catalog

import "context"

// Catalog is the read surface of the live schema catalog.
type Catalog interface {
	// ColumnExists reports whether a target field exists on a table.
	ColumnExists(ctx context.Context, table, field string) (bool, error)

	// SchemaVersion returns the current schema version tag for a table.
	SchemaVersion(ctx context.Context, table string) (string, error)
}
