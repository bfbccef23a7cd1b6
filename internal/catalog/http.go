package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

// HTTPCatalog queries a schema catalog service over HTTP JSON.
//
// Endpoints:
//
//	GET {base}/tables/{table}/columns/{field} -> {"exists": bool}
//	GET {base}/tables/{table}/version         -> {"version": "..."}
type HTTPCatalog struct {
	endpoint   string
	httpClient *http.Client
}

var _ Catalog = (*HTTPCatalog)(nil)

// NewHTTP creates an HTTP catalog client. If endpoint is empty, the
// MAPMEM_CATALOG_URL env var is used. Timeout defaults to 5s.
func NewHTTP(endpoint string, timeout time.Duration) *HTTPCatalog {
	if endpoint == "" {
		endpoint = os.Getenv("MAPMEM_CATALOG_URL")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPCatalog{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type existsResponse struct {
	Exists bool `json:"exists"`
}

type versionResponse struct {
	Version string `json:"version"`
}

// ColumnExists asks the catalog whether table.field still exists.
func (c *HTTPCatalog) ColumnExists(ctx context.Context, table, field string) (bool, error) {
	var resp existsResponse
	path := fmt.Sprintf("tables/%s/columns/%s", url.PathEscape(table), url.PathEscape(field))
	if err := c.get(ctx, path, &resp); err != nil {
		return false, fmt.Errorf("column exists %s.%s: %w", table, field, err)
	}
	return resp.Exists, nil
}

// SchemaVersion returns the table's current schema version tag.
func (c *HTTPCatalog) SchemaVersion(ctx context.Context, table string) (string, error) {
	var resp versionResponse
	path := fmt.Sprintf("tables/%s/version", url.PathEscape(table))
	if err := c.get(ctx, path, &resp); err != nil {
		return "", fmt.Errorf("schema version %s: %w", table, err)
	}
	return resp.Version, nil
}

func (c *HTTPCatalog) get(ctx context.Context, path string, out any) error {
	if c.endpoint == "" {
		return fmt.Errorf("catalog endpoint not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/"+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
