// Package cli implements the skysearch command-line interface.
//
// The CLI wraps the VizieR cone-search client in commands for one-off
// queries, catalog inspection, cache management, and a small HTTP API
// server. It is built using cobra with structured logging via the
// charmbracelet/log library; all commands support --verbose (-v) for
// debug-level output.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dsa110/skysearch/internal/config"
	"github.com/dsa110/skysearch/pkg/buildinfo"
	"github.com/dsa110/skysearch/pkg/cache"
	"github.com/dsa110/skysearch/pkg/catalog"
	"github.com/dsa110/skysearch/pkg/vizier"
)

// appName is the application name used for directories and display.
const appName = "skysearch"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	redisAddr  string
	cacheTTL   time.Duration
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Skysearch queries astronomical catalogs via VizieR",
		Long:         `Skysearch is a rate-limited, cached client for VizieR TAP cone searches, querying radio and infrared survey catalogs around a sky position.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to catalogs.toml (default ~/.config/skysearch/catalogs.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the query result cache")
	root.PersistentFlags().StringVar(&c.redisAddr, "redis", "", "use a Redis cache at this address instead of the file cache")
	root.PersistentFlags().DurationVar(&c.cacheTTL, "cache-ttl", vizier.DefaultCacheTTL, "how long query results stay cached")

	root.AddCommand(c.queryCommand())
	root.AddCommand(c.catalogsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newClient builds a vizier client from the persistent flags.
func (c *CLI) newClient() *vizier.Client {
	return vizier.NewClient(
		vizier.WithCache(c.newCache()),
		vizier.WithCacheTTL(c.cacheTTL),
		vizier.WithLogger(c.Logger),
	)
}

func (c *CLI) newCache() cache.Cache {
	if c.noCache {
		return cache.NewNullCache()
	}
	if c.redisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: c.redisAddr})
		if err != nil {
			c.Logger.Warn("redis unavailable, caching disabled", "addr", c.redisAddr, "err", err)
			return cache.NewNullCache()
		}
		return rc
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// loadRegistry loads catalog definitions from the config file, layered
// over the builtins.
func (c *CLI) loadRegistry() (*catalog.Registry, error) {
	path := c.configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return catalog.DefaultRegistry(), nil
		}
	}
	return config.LoadRegistry(path)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/skysearch/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
