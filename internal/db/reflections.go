package db

import (
	"context"
	"fmt"

	"github.com/mapmem/mapmem-go/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// UpsertReflection writes a consolidated reflection keyed by its cluster.
// The record id is the deterministic cluster key, so a re-run supersedes the
// previous reflection for that cluster in a single atomic write and an
// interrupted consolidation run can never leave a half-updated record.
func (c *Client) UpsertReflection(ctx context.Context, r models.Reflection) (*models.Reflection, error) {
	if r.Namespace == "" || r.ClusterKey == "" {
		return nil, fmt.Errorf("upsert reflection: namespace and cluster key are required")
	}
	if r.SupportingEpisodeIDs == nil {
		r.SupportingEpisodeIDs = []string{}
	}

	sql := `
		UPSERT type::record("reflection", $cluster_key) SET
			namespace = $namespace,
			cluster_key = $cluster_key,
			target_table = $target_table,
			file_signature = $file_signature,
			pattern_text = $pattern_text,
			confidence = $confidence,
			supporting_episode_ids = $supporting_episode_ids,
			schema_version_observed = $schema_version_observed,
			created_at = time::now()
		RETURN AFTER
	`

	results, err := surrealdb.Query[[]models.Reflection](ctx, c.db, sql, map[string]any{
		"cluster_key":             r.ClusterKey,
		"namespace":               r.Namespace,
		"target_table":            r.TargetTable,
		"file_signature":          r.FileSignature,
		"pattern_text":            r.PatternText,
		"confidence":              r.Confidence,
		"supporting_episode_ids":  r.SupportingEpisodeIDs,
		"schema_version_observed": r.SchemaVersionObserved,
	})
	if err != nil {
		return nil, unavailable("upsert reflection", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, unavailable("upsert reflection", fmt.Errorf("no result returned"))
	}

	out := (*results)[0].Result[0]
	return &out, nil
}

// QueryReflections returns reflections in a namespace, most recent first.
// If targetTable is non-empty only that table's reflections are returned.
func (c *Client) QueryReflections(
	ctx context.Context,
	namespace string,
	targetTable string,
	limit int,
) ([]models.Reflection, error) {
	if limit <= 0 {
		limit = 50
	}

	where := "namespace = $namespace"
	vars := map[string]any{
		"namespace": namespace,
		"limit":     limit,
	}
	if targetTable != "" {
		where += " AND target_table = $target_table"
		vars["target_table"] = targetTable
	}

	sql := fmt.Sprintf(`
		SELECT * FROM reflection
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $limit
	`, where)

	results, err := surrealdb.Query[[]models.Reflection](ctx, c.db, sql, vars)
	if err != nil {
		return nil, unavailable("query reflections", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.Reflection{}, nil
	}
	return (*results)[0].Result, nil
}

// GetReflectionByCluster retrieves the reflection for a cluster key.
// Returns nil if the cluster has not been consolidated yet.
func (c *Client) GetReflectionByCluster(ctx context.Context, clusterKey string) (*models.Reflection, error) {
	results, err := surrealdb.Query[[]models.Reflection](ctx, c.db, `
		SELECT * FROM type::record("reflection", $cluster_key)
	`, map[string]any{"cluster_key": clusterKey})
	if err != nil {
		return nil, unavailable("get reflection", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}
