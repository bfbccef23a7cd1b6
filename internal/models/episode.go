// Package models defines the persisted and in-memory records of the mapping
// memory engine.
package models

import "time"

// SheetMetadata describes the sub-structures (sheets, tabs, sections) of an
// imported file.
type SheetMetadata struct {
	SheetCount int      `json:"sheet_count"`
	Shapes     []string `json:"shapes,omitempty"`
}

// Episode is an immutable record of one resolved mapping interaction.
// Corrections produce a new episode; existing episodes are never mutated.
type Episode struct {
	ID              string            `json:"id"`
	Namespace       string            `json:"namespace"`
	ActorID         string            `json:"actor_id"`
	FilenamePattern string            `json:"filename_pattern"`
	FileSignature   string            `json:"file_signature"`
	SheetMetadata   SheetMetadata     `json:"sheet_metadata"`
	ColumnMappings  map[string]string `json:"column_mappings"`
	UserCorrections map[string]string `json:"user_corrections,omitempty"`
	Success         bool              `json:"success"`
	MatchRate       float64           `json:"match_rate"`
	SchemaVersion   string            `json:"schema_version"`
	TargetTable     string            `json:"target_table"`

	// Description is free text derived from the source column names; the
	// retriever scores similarity against it.
	Description string    `json:"description"`
	Embedding   []float32 `json:"embedding,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// EpisodeInput carries caller-supplied fields for a new episode. The store
// assigns the id and created_at at append time.
type EpisodeInput struct {
	Namespace       string
	ActorID         string
	FilenamePattern string
	FileSignature   string
	SheetMetadata   SheetMetadata
	ColumnMappings  map[string]string
	UserCorrections map[string]string
	Success         bool
	MatchRate       float64
	SchemaVersion   string
	TargetTable     string
	Description     string
	Embedding       []float32
}

// EpisodeFilter narrows a namespace query. Zero values mean "no filter".
type EpisodeFilter struct {
	TargetTable   string
	FileSignature string
	Since         time.Time
}
