// Package catalog defines the astronomical catalogs the query client
// knows about and the shapes of their query results.
package catalog

import "fmt"

// Default positional column names used when a catalog definition does
// not override them. Most VizieR radio tables use these.
const (
	DefaultRAColumn  = "RAJ2000"
	DefaultDecColumn = "DEJ2000"
)

// Definition describes one queryable catalog. Definitions are created
// at startup (built-in registry plus optional config file) and never
// mutated afterwards.
type Definition struct {
	ID          string `toml:"id" json:"id"`                     // Stable identifier used in keys and results (e.g., "nvss")
	Name        string `toml:"name" json:"name"`                 // Display name (e.g., "NVSS")
	Table       string `toml:"table" json:"table"`               // Remote table name (e.g., "VIII/65/nvss")
	RAColumn    string `toml:"ra_column" json:"ra_column"`       // RA column override (empty → DefaultRAColumn)
	DecColumn   string `toml:"dec_column" json:"dec_column"`     // Dec column override (empty → DefaultDecColumn)
	Color       string `toml:"color" json:"color"`               // Overlay display color (hex)
	Symbol      string `toml:"symbol" json:"symbol"`             // Overlay marker symbol
	Description string `toml:"description" json:"description"`   // Free-text description
}

// RACol returns the catalog's RA column, falling back to the default.
func (d Definition) RACol() string {
	if d.RAColumn != "" {
		return d.RAColumn
	}
	return DefaultRAColumn
}

// DecCol returns the catalog's Dec column, falling back to the default.
func (d Definition) DecCol() string {
	if d.DecColumn != "" {
		return d.DecColumn
	}
	return DefaultDecColumn
}

// Validate reports whether the definition is usable.
func (d Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("catalog definition missing id")
	}
	if d.Table == "" {
		return fmt.Errorf("catalog %q missing table", d.ID)
	}
	return nil
}

// Source is one row of a catalog query result.
//
// RA and Dec are always finite; rows whose coordinates fail to parse
// are dropped during response parsing and never surface here. Extra
// holds the remaining response columns keyed by column name, with
// values kept as the raw strings the service returned.
type Source struct {
	ID      string            `json:"id"`      // "{catalogID}_{rowIndex}", unique within one result
	Catalog string            `json:"catalog"` // Owning catalog ID
	RA      float64           `json:"ra"`      // Right ascension, degrees
	Dec     float64           `json:"dec"`     // Declination, degrees
	Extra   map[string]string `json:"extra,omitempty"`
}

// QueryResult holds the outcome of one catalog cone search.
//
// Sources preserve remote response order. Error is set (and Sources is
// empty, Count 0) when the query failed for any reason other than
// caller cancellation; a result never carries both sources and an
// error.
type QueryResult struct {
	Catalog   string   `json:"catalog"`
	Sources   []Source `json:"sources"`
	Count     int      `json:"count"`
	Truncated bool     `json:"truncated"` // Count hit the server-side row cap; more rows may exist
	Error     string   `json:"error,omitempty"`
}

// Failed creates a QueryResult describing a failed query.
func Failed(catalogID string, err error) *QueryResult {
	return &QueryResult{Catalog: catalogID, Error: err.Error()}
}
