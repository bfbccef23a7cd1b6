package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapmem/mapmem-go/internal/memory"
	"github.com/mapmem/mapmem-go/internal/models"
)

func seedCluster(store *fakeStore, namespace, table string, columns []string, mappings map[string]string, n int) {
	sig := memory.FileSignature(columns)
	for i := 0; i < n; i++ {
		store.seedEpisode(models.Episode{
			Namespace:      namespace,
			TargetTable:    table,
			FileSignature:  sig,
			ColumnMappings: mappings,
			Success:        true,
			SchemaVersion:  "v1",
			Description:    memory.DescribeColumns(table, columns),
		})
	}
}

func TestConsolidateWritesSupportedClusters(t *testing.T) {
	store := newFakeStore()
	seedCluster(store, "org", "fact_sales", []string{"SKU", "Qty"},
		map[string]string{"SKU": "product_sku", "Qty": "quantity"}, 3)
	// Under-supported cluster: only two episodes.
	seedCluster(store, "org", "fact_inventory", []string{"Item", "Count"},
		map[string]string{"Item": "item_id"}, 2)

	c := memory.NewConsolidator(store, 0, testLogger())
	written, err := c.Consolidate(context.Background(), "org")
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	reflections, err := store.QueryReflections(context.Background(), "org", "", 10)
	require.NoError(t, err)
	require.Len(t, reflections, 1)

	r := reflections[0]
	assert.Equal(t, "fact_sales", r.TargetTable)
	assert.Equal(t, "map fact_sales: Qty -> quantity; SKU -> product_sku", r.PatternText)
	assert.InDelta(t, 1.0, r.Confidence, 1e-9)
	assert.Len(t, r.SupportingEpisodeIDs, 3)
	assert.Equal(t, "v1", r.SchemaVersionObserved)
}

func TestConsolidateIsIdempotent(t *testing.T) {
	store := newFakeStore()
	seedCluster(store, "org", "fact_sales", []string{"SKU", "Qty"},
		map[string]string{"SKU": "product_sku", "Qty": "quantity"}, 4)

	c := memory.NewConsolidator(store, 3, testLogger())

	written, err := c.Consolidate(context.Background(), "org")
	require.NoError(t, err)
	require.Equal(t, 1, written)

	first, err := store.QueryReflections(context.Background(), "org", "", 10)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Rerun on the unchanged episode set: still exactly one reflection with
	// the same pattern and confidence, superseded in place.
	written, err = c.Consolidate(context.Background(), "org")
	require.NoError(t, err)
	require.Equal(t, 1, written)

	second, err := store.QueryReflections(context.Background(), "org", "", 10)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ClusterKey, second[0].ClusterKey)
	assert.Equal(t, first[0].PatternText, second[0].PatternText)
	assert.Equal(t, first[0].Confidence, second[0].Confidence)
}

func TestConsolidateSkipsAllFailedClusters(t *testing.T) {
	store := newFakeStore()
	sig := memory.FileSignature([]string{"SKU"})
	for i := 0; i < 3; i++ {
		store.seedEpisode(models.Episode{
			Namespace:      "org",
			TargetTable:    "fact_sales",
			FileSignature:  sig,
			ColumnMappings: map[string]string{"SKU": "wrong_field"},
			Success:        false,
		})
	}

	c := memory.NewConsolidator(store, 3, testLogger())
	written, err := c.Consolidate(context.Background(), "org")
	require.NoError(t, err)
	assert.Zero(t, written)
}

func TestConsolidateAbortsOnWriteFailure(t *testing.T) {
	store := newFakeStore()
	seedCluster(store, "org", "fact_sales", []string{"SKU"},
		map[string]string{"SKU": "product_sku"}, 3)
	store.upsertErr = errors.New("store gone")

	c := memory.NewConsolidator(store, 3, testLogger())
	written, err := c.Consolidate(context.Background(), "org")
	assert.Error(t, err)
	assert.Zero(t, written)
}

func TestBuildAndParsePattern(t *testing.T) {
	columns := map[string]memory.ColumnResult{
		"SKU": {Column: "SKU", Candidates: []memory.FieldCandidate{{Field: "product_sku", Confidence: 0.9}}},
		"Qty": {Column: "Qty", Candidates: []memory.FieldCandidate{{Field: "quantity", Confidence: 0.7}}},
	}

	text, confidence := memory.BuildPattern("fact_sales", columns)
	assert.Equal(t, "map fact_sales: Qty -> quantity; SKU -> product_sku", text)
	assert.InDelta(t, 0.8, confidence, 1e-9)

	parsed := memory.ParsePattern(text)
	assert.Equal(t, map[string]string{"SKU": "product_sku", "Qty": "quantity"}, parsed)
}
