package vizier

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dsa110/skysearch/pkg/catalog"
)

// parseSources decodes a CSV TAP response into catalog sources.
//
// The RA/Dec columns are located by the canonical lowercase names the
// service may alias them to, falling back to the catalog's configured
// column names. If neither is present the response yields zero rows
// with a logged warning rather than an error. Rows whose RA or Dec do
// not parse as finite numbers are dropped silently.
func parseSources(r io.Reader, def catalog.Definition, logger *log.Logger) ([]catalog.Source, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	raIdx := findColumn(header, "ra", def.RACol())
	decIdx := findColumn(header, "dec", def.DecCol())
	if raIdx < 0 || decIdx < 0 {
		logger.Warn("catalog response missing coordinate columns",
			"catalog", def.ID, "ra_column", def.RACol(), "dec_column", def.DecCol())
		return nil, nil
	}

	var sources []catalog.Source
	for row := 0; ; row++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		if raIdx >= len(record) || decIdx >= len(record) {
			continue
		}

		ra, raErr := parseFinite(record[raIdx])
		dec, decErr := parseFinite(record[decIdx])
		if raErr != nil || decErr != nil {
			continue
		}

		src := catalog.Source{
			ID:      fmt.Sprintf("%s_%d", def.ID, row),
			Catalog: def.ID,
			RA:      ra,
			Dec:     dec,
		}
		for i, cell := range record {
			if i == raIdx || i == decIdx || i >= len(header) {
				continue
			}
			if cell == "" {
				continue
			}
			if src.Extra == nil {
				src.Extra = make(map[string]string)
			}
			src.Extra[header[i]] = cell
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// findColumn locates a coordinate column by its aliased canonical name
// first, then by the catalog's configured name. Matching is
// case-insensitive.
func findColumn(header []string, canonical, configured string) int {
	for i, h := range header {
		if strings.EqualFold(h, canonical) {
			return i
		}
	}
	for i, h := range header {
		if strings.EqualFold(h, configured) {
			return i
		}
	}
	return -1
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
