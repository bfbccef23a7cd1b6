package models

import "time"

// Reflection is a consolidated, reusable pattern derived from multiple
// episodes in a namespace. Reflections are recomputed whole on each
// consolidation run; the cluster key identifies which prior reflection a new
// write supersedes.
type Reflection struct {
	ID                    string    `json:"id"`
	Namespace             string    `json:"namespace"`
	ClusterKey            string    `json:"cluster_key"`
	TargetTable           string    `json:"target_table"`
	FileSignature         string    `json:"file_signature"`
	PatternText           string    `json:"pattern_text"`
	Confidence            float64   `json:"confidence"`
	SupportingEpisodeIDs  []string  `json:"supporting_episode_ids"`
	SchemaVersionObserved string    `json:"schema_version_observed"`
	CreatedAt             time.Time `json:"created_at,omitempty"`
}

// Stale reports whether the reflection was consolidated against an older
// schema version than the catalog currently serves. A stale reflection must
// be revalidated before its pattern is trusted.
func (r Reflection) Stale(currentVersion string) bool {
	return currentVersion != "" && r.SchemaVersionObserved != currentVersion
}
