package models

import "time"

// FieldVote accumulates the weight behind one candidate target field and
// remembers the most recent episode that supported it, which breaks ties.
type FieldVote struct {
	Weight     float64
	LastSeen   time.Time
	EpisodeIDs []string
}

// MappingVote is the ephemeral per-query aggregation state: source column to
// candidate field to accumulated vote. It is recomputed on every recall and
// never persisted.
type MappingVote map[string]map[string]*FieldVote

// Candidate is one scored target field for a column, as surfaced to callers.
type Candidate struct {
	Field      string  `json:"field"`
	Confidence float64 `json:"confidence"`
}

// ColumnSuggestion is the aggregated answer for a single source column.
type ColumnSuggestion struct {
	Column     string      `json:"column"`
	Field      string      `json:"field"`
	Confidence float64     `json:"confidence"`
	Source     string      `json:"source"`
	Candidates []Candidate `json:"candidates,omitempty"`
}
