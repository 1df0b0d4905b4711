package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/dsa110/skysearch/pkg/catalog"
)

type fakeQuerier struct {
	results map[string]*catalog.QueryResult
	err     error

	gotRA, gotDec, gotRadius float64
	gotDefs                  []catalog.Definition
}

func (f *fakeQuerier) QueryMultipleCatalogs(ctx context.Context, defs []catalog.Definition, ra, dec, radius float64) (map[string]*catalog.QueryResult, error) {
	f.gotRA, f.gotDec, f.gotRadius = ra, dec, radius
	f.gotDefs = defs
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func newTestServer(t *testing.T, q Querier) http.Handler {
	t.Helper()
	srv := New(catalog.DefaultRegistry(), q, log.New(io.Discard))
	return srv.Router()
}

func TestCatalogsEndpoint(t *testing.T) {
	h := newTestServer(t, &fakeQuerier{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/catalogs", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Catalogs []catalog.Definition `json:"catalogs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Catalogs) != catalog.DefaultRegistry().Len() {
		t.Errorf("got %d catalogs, want %d", len(body.Catalogs), catalog.DefaultRegistry().Len())
	}
}

func TestConeSearch(t *testing.T) {
	q := &fakeQuerier{results: map[string]*catalog.QueryResult{
		"nvss": {Catalog: "nvss", Count: 2, Sources: []catalog.Source{
			{ID: "nvss_0", Catalog: "nvss", RA: 180.1, Dec: 35.2},
			{ID: "nvss_1", Catalog: "nvss", RA: 180.2, Dec: 35.3},
		}},
	}}
	h := newTestServer(t, q)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/conesearch?ra=180.1&dec=35.2&radius=30&catalogs=nvss", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if q.gotRA != 180.1 || q.gotDec != 35.2 || q.gotRadius != 30 {
		t.Errorf("querier got (%v, %v, %v)", q.gotRA, q.gotDec, q.gotRadius)
	}
	if len(q.gotDefs) != 1 || q.gotDefs[0].ID != "nvss" {
		t.Errorf("querier got defs %v, want [nvss]", q.gotDefs)
	}
	var body struct {
		Results map[string]*catalog.QueryResult `json:"results"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := body.Results["nvss"].Count; got != 2 {
		t.Errorf("nvss count = %d, want 2", got)
	}
}

func TestConeSearchDefaultsToAllCatalogs(t *testing.T) {
	q := &fakeQuerier{results: map[string]*catalog.QueryResult{}}
	h := newTestServer(t, q)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/conesearch?ra=10&dec=-45&radius=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(q.gotDefs) != catalog.DefaultRegistry().Len() {
		t.Errorf("got %d defs, want full registry", len(q.gotDefs))
	}
}

func TestConeSearchValidation(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		status   int
		wantCode string
	}{
		{"missing ra", "dec=35&radius=30", http.StatusBadRequest, "INVALID_COORDINATES"},
		{"ra out of range", "ra=400&dec=35&radius=30", http.StatusBadRequest, "INVALID_COORDINATES"},
		{"dec out of range", "ra=180&dec=95&radius=30", http.StatusBadRequest, "INVALID_COORDINATES"},
		{"non-numeric ra", "ra=abc&dec=35&radius=30", http.StatusBadRequest, "INVALID_COORDINATES"},
		{"radius too large", "ra=180&dec=35&radius=500", http.StatusBadRequest, "INVALID_RADIUS"},
		{"unknown catalog", "ra=180&dec=35&radius=30&catalogs=bogus", http.StatusNotFound, "CATALOG_NOT_FOUND"},
		{"empty catalog list", "ra=180&dec=35&radius=30&catalogs=,,", http.StatusBadRequest, "INVALID_CATALOG"},
	}
	h := newTestServer(t, &fakeQuerier{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/conesearch?"+tt.query, nil))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			var body struct {
				Code string `json:"code"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

func TestRequestIDAssigned(t *testing.T) {
	h := newTestServer(t, &fakeQuerier{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	id := rec.Header().Get(RequestIDHeader)
	if id == "" {
		t.Fatal("expected a generated request ID")
	}
	if strings.Count(id, "-") != 4 {
		t.Errorf("request ID %q does not look like a UUID", id)
	}
}

func TestRequestIDPreserved(t *testing.T) {
	h := newTestServer(t, &fakeQuerier{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "console-123")
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "console-123" {
		t.Errorf("request ID = %q, want console-123", got)
	}
}
