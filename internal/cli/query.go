package cli

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dsa110/skysearch/pkg/catalog"
	skyerr "github.com/dsa110/skysearch/pkg/errors"
)

// maxSourcesShown caps per-catalog source listings in human output.
const maxSourcesShown = 10

// queryCommand creates the cone-search command.
func (c *CLI) queryCommand() *cobra.Command {
	var (
		ra, dec  float64
		radius   float64
		catalogs string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a cone search against one or more catalogs",
		Example: `  skysearch query --ra 180.5 --dec 35.2 --radius 30
  skysearch query --ra 83.633 --dec 22.014 --catalogs nvss,first --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateCone(ra, dec, radius); err != nil {
				return err
			}

			registry, err := c.loadRegistry()
			if err != nil {
				return err
			}
			defs, err := selectCatalogs(registry, catalogs)
			if err != nil {
				return err
			}

			client := c.newClient()
			prog := newProgress(c.Logger)
			results, err := client.QueryMultipleCatalogs(cmd.Context(), defs, ra, dec, radius)
			if err != nil {
				return err
			}
			total := 0
			for _, res := range results {
				total += res.Count
			}
			prog.done(fmt.Sprintf("Queried %d catalogs, %d sources", len(defs), total))

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			printResults(defs, results)
			return nil
		},
	}

	cmd.Flags().Float64Var(&ra, "ra", math.NaN(), "right ascension in degrees (ICRS)")
	cmd.Flags().Float64Var(&dec, "dec", math.NaN(), "declination in degrees (ICRS)")
	cmd.Flags().Float64Var(&radius, "radius", 30, "search radius in arcminutes")
	cmd.Flags().StringVar(&catalogs, "catalogs", "", "comma-separated catalog IDs (default all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	_ = cmd.MarkFlagRequired("ra")
	_ = cmd.MarkFlagRequired("dec")

	return cmd
}

// validateCone checks a cone-search position and radius.
func validateCone(ra, dec, radius float64) error {
	if math.IsNaN(ra) || ra < 0 || ra >= 360 {
		return skyerr.New(skyerr.ErrCodeInvalidCoordinates, "ra %v out of range [0, 360)", ra)
	}
	if math.IsNaN(dec) || dec < -90 || dec > 90 {
		return skyerr.New(skyerr.ErrCodeInvalidCoordinates, "dec %v out of range [-90, 90]", dec)
	}
	if math.IsNaN(radius) || radius <= 0 {
		return skyerr.New(skyerr.ErrCodeInvalidRadius, "radius must be positive, got %v", radius)
	}
	return nil
}

// selectCatalogs resolves a comma-separated ID list against the
// registry; an empty list selects everything.
func selectCatalogs(registry *catalog.Registry, param string) ([]catalog.Definition, error) {
	if param == "" {
		return registry.All(), nil
	}
	var defs []catalog.Definition
	for _, id := range strings.Split(param, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		d, ok := registry.Lookup(id)
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

func printResults(defs []catalog.Definition, results map[string]*catalog.QueryResult) {
	for _, def := range defs {
		res, ok := results[def.ID]
		if !ok {
			continue
		}
		fmt.Println(StyleTitle.Render(def.Name))
		if res.Error != "" {
			printError("query failed: %s", res.Error)
			continue
		}
		line := fmt.Sprintf("%s sources", StyleNumber.Render(fmt.Sprintf("%d", res.Count)))
		if res.Truncated {
			line += " " + StyleWarning.Render("(truncated)")
		}
		printInfo("%s", line)

		shown := res.Sources
		sort.Slice(shown, func(i, j int) bool { return shown[i].ID < shown[j].ID })
		if len(shown) > maxSourcesShown {
			shown = shown[:maxSourcesShown]
		}
		for _, src := range shown {
			printDetail("%-24s ra=%.5f dec=%.5f", src.ID, src.RA, src.Dec)
		}
		if res.Count > maxSourcesShown {
			printDetail("... %d more", res.Count-maxSourcesShown)
		}
	}
}
