package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticCatalog(t *testing.T) {
	ctx := context.Background()
	cat := NewStatic()
	cat.SetTable("fact_sales", "v2", "product_sku", "quantity")

	exists, err := cat.ColumnExists(ctx, "fact_sales", "product_sku")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = cat.ColumnExists(ctx, "fact_sales", "dropped_field")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = cat.ColumnExists(ctx, "unknown_table", "product_sku")
	require.NoError(t, err)
	assert.False(t, exists)

	version, err := cat.SchemaVersion(ctx, "fact_sales")
	require.NoError(t, err)
	assert.Equal(t, "v2", version)

	// Redefinition replaces the field set entirely.
	cat.SetTable("fact_sales", "v3", "product_sku")
	exists, err = cat.ColumnExists(ctx, "fact_sales", "quantity")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestHTTPCatalog(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/tables/fact_sales/columns/product_sku":
			w.Write([]byte(`{"exists": true}`))
		case "/tables/fact_sales/columns/dropped_field":
			w.Write([]byte(`{"exists": false}`))
		case "/tables/fact_sales/version":
			w.Write([]byte(`{"version": "v7"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cat := NewHTTP(srv.URL, time.Second)

	exists, err := cat.ColumnExists(ctx, "fact_sales", "product_sku")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = cat.ColumnExists(ctx, "fact_sales", "dropped_field")
	require.NoError(t, err)
	assert.False(t, exists)

	version, err := cat.SchemaVersion(ctx, "fact_sales")
	require.NoError(t, err)
	assert.Equal(t, "v7", version)

	t.Run("non-200 is an error", func(t *testing.T) {
		_, err := cat.SchemaVersion(ctx, "unknown_table")
		assert.Error(t, err)
	})

	t.Run("unconfigured endpoint is an error", func(t *testing.T) {
		t.Setenv("MAPMEM_CATALOG_URL", "")
		empty := NewHTTP("", time.Second)
		_, err := empty.ColumnExists(ctx, "fact_sales", "product_sku")
		assert.Error(t, err)
	})
}
