package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mapmem/mapmem-go/internal/models"
)

const (
	// DefaultMinSupport is the minimum cluster size that produces a
	// reflection.
	DefaultMinSupport = 3

	// consolidationWindow bounds how many recent episodes one run reads.
	consolidationWindow = 500
)

// Consolidator folds raw episodes into durable reflections: one reflection
// per (file signature, target table) cluster with enough support.
type Consolidator struct {
	store      EventStore
	minSupport int
	logger     *slog.Logger
}

// NewConsolidator creates a consolidator. minSupport <= 0 selects the
// default.
func NewConsolidator(store EventStore, minSupport int, logger *slog.Logger) *Consolidator {
	if minSupport <= 0 {
		minSupport = DefaultMinSupport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consolidator{store: store, minSupport: minSupport, logger: logger}
}

// Consolidate reads recent episodes in the namespace, clusters them by file
// signature and target table, and writes one reflection per sufficiently
// supported cluster. Each reflection write is a single atomic upsert keyed
// by the cluster, so previous reflections are superseded whole and an
// interrupted run leaves committed reflections intact. Re-running on an
// unchanged episode set produces equivalent reflections.
//
// Returns the number of reflections written.
func (c *Consolidator) Consolidate(ctx context.Context, namespace string) (int, error) {
	episodes, err := c.store.QueryEpisodes(ctx, namespace, models.EpisodeFilter{}, consolidationWindow)
	if err != nil {
		return 0, fmt.Errorf("consolidate %s: %w", namespace, err)
	}

	clusters := make(map[string][]models.Episode)
	for _, ep := range episodes {
		key := ClusterKey(namespace, ep.FileSignature, ep.TargetTable)
		clusters[key] = append(clusters[key], ep)
	}

	// Deterministic run order.
	keys := make([]string, 0, len(clusters))
	for key := range clusters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	written := 0
	for _, key := range keys {
		members := clusters[key]
		if len(members) < c.minSupport {
			continue
		}

		reflection, ok := c.buildReflection(namespace, key, members)
		if !ok {
			continue
		}

		if _, err := c.store.UpsertReflection(ctx, reflection); err != nil {
			// Abort; committed reflections stay intact and the next
			// scheduled run retries.
			return written, fmt.Errorf("consolidate %s: %w", namespace, err)
		}
		written++
	}

	c.logger.Info("consolidation complete",
		"namespace", namespace, "episodes", len(episodes),
		"clusters", len(clusters), "reflections_written", written)
	return written, nil
}

// buildReflection aggregates one cluster into a reflection. Returns false if
// no mapping pattern survives (for instance when every member failed).
func (c *Consolidator) buildReflection(namespace, clusterKey string, members []models.Episode) (models.Reflection, bool) {
	// Uniform weight: within a cluster every successful episode is an
	// equally valid observation of the pattern.
	scored := make([]ScoredEpisode, 0, len(members))
	for _, ep := range members {
		scored = append(scored, ScoredEpisode{Episode: ep, Score: 1.0})
	}

	columns := Aggregate(scored)
	if len(columns) == 0 {
		return models.Reflection{}, false
	}

	pattern, confidence := BuildPattern(members[0].TargetTable, columns)

	supporting := make([]string, 0, len(members))
	latest := members[0]
	for _, ep := range members {
		supporting = append(supporting, ep.ID)
		if ep.CreatedAt.After(latest.CreatedAt) {
			latest = ep
		}
	}
	sort.Strings(supporting)

	return models.Reflection{
		Namespace:             namespace,
		ClusterKey:            clusterKey,
		TargetTable:           latest.TargetTable,
		FileSignature:         latest.FileSignature,
		PatternText:           pattern,
		Confidence:            clamp01(confidence),
		SupportingEpisodeIDs:  supporting,
		SchemaVersionObserved: latest.SchemaVersion,
	}, true
}

// BuildPattern renders the dominant mapping pattern of aggregated columns as
// reproducible text, and returns the mean winning confidence across columns.
// Columns are sorted so the same aggregation always yields the same text.
func BuildPattern(targetTable string, columns map[string]ColumnResult) (string, float64) {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	var confidenceSum float64
	counted := 0
	for _, name := range names {
		winner, ok := columns[name].Winner()
		if !ok {
			continue
		}
		parts = append(parts, name+" -> "+winner.Field)
		confidenceSum += winner.Confidence
		counted++
	}

	if counted == 0 {
		return "", 0
	}

	text := "map " + targetTable + ": " + strings.Join(parts, "; ")
	return text, confidenceSum / float64(counted)
}

// ParsePattern recovers the column -> field pairs from a reflection's
// pattern text. It is the inverse of BuildPattern.
func ParsePattern(patternText string) map[string]string {
	mappings := make(map[string]string)

	_, body, found := strings.Cut(patternText, ": ")
	if !found {
		return mappings
	}
	for _, pair := range strings.Split(body, "; ") {
		column, field, ok := strings.Cut(pair, " -> ")
		if !ok {
			continue
		}
		mappings[strings.TrimSpace(column)] = strings.TrimSpace(field)
	}
	return mappings
}
