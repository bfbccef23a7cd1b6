package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapmem/mapmem-go/internal/catalog"
	"github.com/mapmem/mapmem-go/internal/memory"
)

// failingCatalog errors on every lookup.
type failingCatalog struct{}

func (failingCatalog) ColumnExists(context.Context, string, string) (bool, error) {
	return false, errors.New("catalog unreachable")
}

func (failingCatalog) SchemaVersion(context.Context, string) (string, error) {
	return "", errors.New("catalog unreachable")
}

func columnsFixture() map[string]memory.ColumnResult {
	return map[string]memory.ColumnResult{
		"SKU": {
			Column: "SKU",
			Candidates: []memory.FieldCandidate{
				{Field: "product_sku", Weight: 2.0, Confidence: 0.8},
				{Field: "legacy_sku", Weight: 0.5, Confidence: 0.2},
			},
		},
		"Qty": {
			Column: "Qty",
			Candidates: []memory.FieldCandidate{
				{Field: "dropped_qty", Weight: 1.0, Confidence: 1.0},
			},
		},
	}
}

func TestValidateFiltersStaleCandidates(t *testing.T) {
	cat := catalog.NewStatic()
	// legacy_sku and dropped_qty no longer exist on the table.
	cat.SetTable("fact_sales", "v2", "product_sku")

	v := memory.NewValidator(cat, 0, testLogger())
	result := v.Validate(context.Background(), "fact_sales", columnsFixture())

	// SKU keeps product_sku, renormalized to full confidence.
	require.Contains(t, result.Columns, "SKU")
	winner, ok := result.Columns["SKU"].Winner()
	require.True(t, ok)
	assert.Equal(t, "product_sku", winner.Field)
	assert.InDelta(t, 1.0, winner.Confidence, 1e-9)

	// Qty lost its only candidate and disappears: the gate will answer
	// NoOpinion rather than suggesting a dead field.
	assert.NotContains(t, result.Columns, "Qty")

	// 2 of 3 candidates were stale, above the 0.5 default.
	assert.Equal(t, 2, result.StaleCount)
	assert.True(t, result.SchemaDrift)
}

func TestValidateNoDriftBelowThreshold(t *testing.T) {
	cat := catalog.NewStatic()
	cat.SetTable("fact_sales", "v2", "product_sku", "legacy_sku", "dropped_qty")

	v := memory.NewValidator(cat, 0, testLogger())
	result := v.Validate(context.Background(), "fact_sales", columnsFixture())

	assert.Zero(t, result.StaleCount)
	assert.False(t, result.SchemaDrift)
	assert.Len(t, result.Columns, 2)
}

func TestValidateCustomStaleFraction(t *testing.T) {
	cat := catalog.NewStatic()
	cat.SetTable("fact_sales", "v2", "product_sku", "legacy_sku")

	// 1 of 3 stale. With fraction 0.25 that is drift; default 0.5 is not.
	strict := memory.NewValidator(cat, 0.25, testLogger())
	assert.True(t, strict.Validate(context.Background(), "fact_sales", columnsFixture()).SchemaDrift)

	lax := memory.NewValidator(cat, 0.5, testLogger())
	assert.False(t, lax.Validate(context.Background(), "fact_sales", columnsFixture()).SchemaDrift)
}

func TestValidateCatalogFailureKeepsCandidates(t *testing.T) {
	v := memory.NewValidator(failingCatalog{}, 0, testLogger())
	result := v.Validate(context.Background(), "fact_sales", columnsFixture())

	// An unreachable catalog must not erase learned knowledge.
	assert.Len(t, result.Columns, 2)
	assert.Zero(t, result.StaleCount)
	assert.False(t, result.SchemaDrift)
}

func TestValidateNilCatalogPassesThrough(t *testing.T) {
	v := memory.NewValidator(nil, 0, testLogger())
	columns := columnsFixture()
	result := v.Validate(context.Background(), "fact_sales", columns)
	assert.Equal(t, columns, result.Columns)
	assert.False(t, result.SchemaDrift)
}
