// Package server exposes the cone-search client over a small JSON API
// for the operations console to call.
package server

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/dsa110/skysearch/pkg/catalog"
	skyerr "github.com/dsa110/skysearch/pkg/errors"
)

// MaxRadiusArcmin bounds server-side search radii; wider cones belong
// in batch tooling, not the console API.
const MaxRadiusArcmin = 120

// Querier is the slice of the vizier client the server needs.
type Querier interface {
	QueryMultipleCatalogs(ctx context.Context, defs []catalog.Definition, raDeg, decDeg, radiusArcmin float64) (map[string]*catalog.QueryResult, error)
}

// Server routes console requests to the catalog query client.
type Server struct {
	registry *catalog.Registry
	querier  Querier
	logger   *log.Logger
}

// New creates a Server. A nil logger falls back to the default logger.
func New(registry *catalog.Registry, querier Querier, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{registry: registry, querier: querier, logger: logger}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)

	r.Get("/v1/catalogs", s.handleCatalogs)
	r.Get("/v1/conesearch", s.handleConeSearch)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}

func (s *Server) handleCatalogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"catalogs": s.registry.All()})
}

func (s *Server) handleConeSearch(w http.ResponseWriter, r *http.Request) {
	ra, err := parseCoord(r.URL.Query().Get("ra"), 0, 360, skyerr.ErrCodeInvalidCoordinates, "ra")
	if err != nil {
		writeError(w, err)
		return
	}
	dec, err := parseCoord(r.URL.Query().Get("dec"), -90, 90, skyerr.ErrCodeInvalidCoordinates, "dec")
	if err != nil {
		writeError(w, err)
		return
	}
	radius, err := parseCoord(r.URL.Query().Get("radius"), 0, MaxRadiusArcmin, skyerr.ErrCodeInvalidRadius, "radius")
	if err != nil {
		writeError(w, err)
		return
	}

	defs, err := s.resolveCatalogs(r.URL.Query().Get("catalogs"))
	if err != nil {
		writeError(w, err)
		return
	}

	results, err := s.querier.QueryMultipleCatalogs(r.Context(), defs, ra, dec, radius)
	if err != nil {
		// Only cancellation reaches here; the client has gone away.
		s.logger.Debug("cone search aborted", "err", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// resolveCatalogs maps a comma-separated ID list to definitions; an
// empty list selects the whole registry.
func (s *Server) resolveCatalogs(param string) ([]catalog.Definition, error) {
	if param == "" {
		return s.registry.All(), nil
	}
	var defs []catalog.Definition
	for _, id := range strings.Split(param, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		d, ok := s.registry.Lookup(id)
		if !ok {
			return nil, skyerr.New(skyerr.ErrCodeCatalogNotFound, "unknown catalog %q", id)
		}
		defs = append(defs, d)
	}
	if len(defs) == 0 {
		return nil, skyerr.New(skyerr.ErrCodeInvalidCatalog, "no catalogs selected")
	}
	return defs, nil
}

func parseCoord(raw string, min, max float64, code skyerr.Code, name string) (float64, error) {
	if raw == "" {
		return 0, skyerr.New(code, "missing %s parameter", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, skyerr.New(code, "%s must be a finite number", name)
	}
	if v < min || v > max {
		return 0, skyerr.New(code, "%s %v out of range [%v, %v]", name, v, min, max)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch skyerr.GetCode(err) {
	case skyerr.ErrCodeCatalogNotFound, skyerr.ErrCodeNotFound:
		status = http.StatusNotFound
	case skyerr.ErrCodeInternal:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]string{
		"code":  string(skyerr.GetCode(err)),
		"error": skyerr.UserMessage(err),
	})
}
