// Package config loads the optional catalogs configuration file.
//
// The file is TOML and extends or overrides the built-in catalog
// registry. A missing file is not an error; the built-ins are used
// as-is.
//
//	[[catalog]]
//	id = "sumss"
//	name = "SUMSS"
//	table = "VIII/81B/sumss212"
//	color = "#748ffc"
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/dsa110/skysearch/pkg/catalog"
	skyerr "github.com/dsa110/skysearch/pkg/errors"
)

// DefaultPath returns the default config location
// (~/.config/skysearch/catalogs.toml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "skysearch", "catalogs.toml"), nil
}

type fileFormat struct {
	Catalogs []catalog.Definition `toml:"catalog"`
}

// LoadRegistry builds the catalog registry from the built-in
// definitions plus the TOML file at path. An empty path selects
// [DefaultPath]; a file that does not exist yields the built-ins alone.
func LoadRegistry(path string) (*catalog.Registry, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	defs := catalog.BuiltinDefinitions()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return catalog.NewRegistry(defs), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var file fileFormat
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, skyerr.Wrap(skyerr.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	for _, d := range file.Catalogs {
		if err := d.Validate(); err != nil {
			return nil, skyerr.Wrap(skyerr.ErrCodeInvalidConfig, err, "catalog entry in %s", path)
		}
	}

	return catalog.NewRegistry(append(defs, file.Catalogs...)), nil
}
