package cli

import (
	"math"
	"testing"

	"github.com/dsa110/skysearch/pkg/catalog"
	skyerr "github.com/dsa110/skysearch/pkg/errors"
)

func TestValidateCone(t *testing.T) {
	tests := []struct {
		name             string
		ra, dec, radius  float64
		wantErr          bool
		wantCode         skyerr.Code
	}{
		{"valid", 180.5, 35.2, 30, false, ""},
		{"ra at zero", 0, -90, 1, false, ""},
		{"ra negative", -1, 35, 30, true, skyerr.ErrCodeInvalidCoordinates},
		{"ra at 360", 360, 35, 30, true, skyerr.ErrCodeInvalidCoordinates},
		{"ra NaN", math.NaN(), 35, 30, true, skyerr.ErrCodeInvalidCoordinates},
		{"dec too low", 180, -90.1, 30, true, skyerr.ErrCodeInvalidCoordinates},
		{"dec too high", 180, 90.1, 30, true, skyerr.ErrCodeInvalidCoordinates},
		{"radius zero", 180, 35, 0, true, skyerr.ErrCodeInvalidRadius},
		{"radius negative", 180, 35, -5, true, skyerr.ErrCodeInvalidRadius},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCone(tt.ra, tt.dec, tt.radius)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateCone() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && skyerr.GetCode(err) != tt.wantCode {
				t.Errorf("code = %q, want %q", skyerr.GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestSelectCatalogs(t *testing.T) {
	registry := catalog.DefaultRegistry()

	t.Run("empty selects all", func(t *testing.T) {
		defs, err := selectCatalogs(registry, "")
		if err != nil {
			t.Fatalf("selectCatalogs() error: %v", err)
		}
		if len(defs) != registry.Len() {
			t.Errorf("got %d defs, want %d", len(defs), registry.Len())
		}
	})

	t.Run("subset preserves order", func(t *testing.T) {
		defs, err := selectCatalogs(registry, "first, nvss")
		if err != nil {
			t.Fatalf("selectCatalogs() error: %v", err)
		}
		if len(defs) != 2 || defs[0].ID != "first" || defs[1].ID != "nvss" {
			t.Errorf("got %v, want [first nvss]", defs)
		}
	})

	t.Run("unknown catalog", func(t *testing.T) {
		_, err := selectCatalogs(registry, "bogus")
		if !skyerr.Is(err, skyerr.ErrCodeCatalogNotFound) {
			t.Errorf("error = %v, want CATALOG_NOT_FOUND", err)
		}
	})

	t.Run("only separators", func(t *testing.T) {
		_, err := selectCatalogs(registry, ", ,")
		if !skyerr.Is(err, skyerr.ErrCodeInvalidCatalog) {
			t.Errorf("error = %v, want INVALID_CATALOG", err)
		}
	})
}
