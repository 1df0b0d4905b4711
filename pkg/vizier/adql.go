package vizier

import (
	"fmt"

	"github.com/dsa110/skysearch/pkg/catalog"
)

// buildConeQuery renders the ADQL cone search for one catalog.
// Coordinates and radius are in degrees. Table and column names are
// double-quoted because VizieR table designations contain slashes and
// plus signs.
func buildConeQuery(def catalog.Definition, raDeg, decDeg, radiusDeg float64, maxRows int) string {
	return fmt.Sprintf(
		`SELECT TOP %d * FROM %q WHERE 1=CONTAINS(POINT('ICRS', %q, %q), CIRCLE('ICRS', %.6f, %.6f, %.6f))`,
		maxRows, def.Table, def.RACol(), def.DecCol(), raDeg, decDeg, radiusDeg,
	)
}
