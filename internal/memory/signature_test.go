package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mapmem/mapmem-go/internal/memory"
)

func TestFileSignature(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := memory.FileSignature([]string{"SKU", "Qty", "Price"})
		b := memory.FileSignature([]string{"SKU", "Qty", "Price"})
		assert.Equal(t, a, b)
	})

	t.Run("case and whitespace insensitive", func(t *testing.T) {
		a := memory.FileSignature([]string{"SKU", " Qty ", "Price"})
		b := memory.FileSignature([]string{"sku", "qty", "price"})
		assert.Equal(t, a, b)
	})

	t.Run("order sensitive", func(t *testing.T) {
		a := memory.FileSignature([]string{"SKU", "Qty"})
		b := memory.FileSignature([]string{"Qty", "SKU"})
		assert.NotEqual(t, a, b)
	})

	t.Run("column boundary matters", func(t *testing.T) {
		// "ab"+"c" must not collide with "a"+"bc"
		a := memory.FileSignature([]string{"ab", "c"})
		b := memory.FileSignature([]string{"a", "bc"})
		assert.NotEqual(t, a, b)
	})
}

func TestClusterKey(t *testing.T) {
	key := memory.ClusterKey("org", "sig", "fact_sales")
	assert.Equal(t, key, memory.ClusterKey("org", "sig", "fact_sales"))
	assert.NotEqual(t, key, memory.ClusterKey("team", "sig", "fact_sales"))
	assert.NotEqual(t, key, memory.ClusterKey("org", "sig", "fact_inventory"))
	assert.Len(t, key, 32)
}

func TestNormalizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"inventory_2025-08-12.xlsx", "inventory_{date}.xlsx"},
		{"inventory_2025-08-19.xlsx", "inventory_{date}.xlsx"},
		{"Sales Report 20250801.csv", "sales_report_{date}.csv"},
		{"export_run_001234.csv", "export_run_{n}.csv"},
		{"plain.csv", "plain.csv"},
		{"UPPER.CSV", "upper.csv"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, memory.NormalizeFilename(tt.in), "input %q", tt.in)
	}
}

func TestDescribeColumns(t *testing.T) {
	desc := memory.DescribeColumns("fact_sales", []string{"SKU", " Qty"})
	assert.Equal(t, "import into fact_sales; columns: SKU, Qty", desc)

	desc = memory.DescribeColumns("", []string{"SKU"})
	assert.Equal(t, "columns: SKU", desc)
}
