package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mapmem/mapmem-go/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// AppendEpisode persists a new immutable episode and returns it with the
// assigned id. Each append creates a distinct record under a fresh uuid, so
// concurrent appends from independent callers can never overwrite each
// other. The write is durable before this returns.
func (c *Client) AppendEpisode(ctx context.Context, in models.EpisodeInput) (*models.Episode, error) {
	if in.Namespace == "" {
		return nil, fmt.Errorf("append episode: namespace is required")
	}
	if in.ColumnMappings == nil {
		in.ColumnMappings = map[string]string{}
	}

	id := uuid.NewString()

	sql := `
		CREATE type::record("episode", $id) CONTENT {
			namespace: $namespace,
			actor_id: $actor_id,
			filename_pattern: $filename_pattern,
			file_signature: $file_signature,
			sheet_metadata: $sheet_metadata,
			column_mappings: $column_mappings,
			user_corrections: $user_corrections,
			success: $success,
			match_rate: $match_rate,
			schema_version: $schema_version,
			target_table: $target_table,
			description: $description,
			embedding: $embedding,
			created_at: time::now()
		} RETURN AFTER
	`

	results, err := surrealdb.Query[[]models.Episode](ctx, c.db, sql, map[string]any{
		"id":               id,
		"namespace":        in.Namespace,
		"actor_id":         in.ActorID,
		"filename_pattern": in.FilenamePattern,
		"file_signature":   in.FileSignature,
		"sheet_metadata":   in.SheetMetadata,
		"column_mappings":  in.ColumnMappings,
		"user_corrections": in.UserCorrections,
		"success":          in.Success,
		"match_rate":       in.MatchRate,
		"schema_version":   in.SchemaVersion,
		"target_table":     in.TargetTable,
		"description":      in.Description,
		"embedding":        in.Embedding,
	})
	if err != nil {
		return nil, unavailable("append episode", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, unavailable("append episode", fmt.Errorf("no result returned"))
	}

	ep := (*results)[0].Result[0]
	return &ep, nil
}

// QueryEpisodes returns episodes in a namespace matching the optional
// structural filter, most recent first, bounded by limit. Namespace is the
// hard partition boundary: no episode outside it is ever returned.
func (c *Client) QueryEpisodes(
	ctx context.Context,
	namespace string,
	filter models.EpisodeFilter,
	limit int,
) ([]models.Episode, error) {
	if limit <= 0 {
		limit = 100
	}

	where := "namespace = $namespace"
	vars := map[string]any{
		"namespace": namespace,
		"limit":     limit,
	}
	if filter.TargetTable != "" {
		where += " AND target_table = $target_table"
		vars["target_table"] = filter.TargetTable
	}
	if filter.FileSignature != "" {
		where += " AND file_signature = $file_signature"
		vars["file_signature"] = filter.FileSignature
	}
	if !filter.Since.IsZero() {
		where += " AND created_at >= <datetime>$since"
		vars["since"] = filter.Since.UTC().Format("2006-01-02T15:04:05Z")
	}

	sql := fmt.Sprintf(`
		SELECT * FROM episode
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $limit
	`, where)

	results, err := surrealdb.Query[[]models.Episode](ctx, c.db, sql, vars)
	if err != nil {
		return nil, unavailable("query episodes", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.Episode{}, nil
	}
	return (*results)[0].Result, nil
}

// GetEpisode retrieves an episode by id. Returns nil if not found.
func (c *Client) GetEpisode(ctx context.Context, id string) (*models.Episode, error) {
	results, err := surrealdb.Query[[]models.Episode](ctx, c.db, `
		SELECT * FROM type::record("episode", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, unavailable("get episode", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

// CountEpisodes returns the number of episodes in a namespace.
func (c *Client) CountEpisodes(ctx context.Context, namespace string) (int, error) {
	results, err := surrealdb.Query[[]struct {
		C int `json:"c"`
	}](ctx, c.db, `
		SELECT count() AS c FROM episode WHERE namespace = $namespace GROUP ALL
	`, map[string]any{"namespace": namespace})
	if err != nil {
		return 0, unavailable("count episodes", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].C, nil
}
