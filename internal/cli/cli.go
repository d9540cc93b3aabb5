// Package cli implements the bomend command-line interface.
//
// This package provides commands for enriching CycloneDX BOM documents with
// license data, managing the lookup response cache, and serving the
// enrichment API over HTTP. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - enrich: Apply an enrichment plan to a BOM document
//   - cache: Manage the lookup response cache
//   - serve: Run the enrichment HTTP API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// attached to the command context and shared by all subcommands.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bomend/bomend/pkg/cache"
)

// appName is the application name used for directories and display.
const appName = "bomend"

// redisEnv names the environment variable that, when set to a redis:// URL,
// switches the lookup cache from local files to a shared Redis instance.
const redisEnv = "BOMEND_REDIS_URL"

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version. Called by
// the main package with values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the bomend CLI and returns an error if any command fails.
//
// Logging defaults to info level on stderr; --verbose (-v) switches to
// debug. The logger is attached to the context and accessible to all
// commands via loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "bomend enriches CycloneDX BOMs with license data",
		Long:         `bomend applies an enrichment plan to a CycloneDX Bill-of-Materials: literal license replacements by bom-ref, and license lookups from ClearlyDefined by package type. A plan either applies completely or not at all.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", appName, version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newEnrichCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}

// newCache selects the lookup cache backend: disabled, shared Redis when
// BOMEND_REDIS_URL is set, or local files under the XDG cache directory.
// A cache that cannot be opened degrades to no caching rather than failing
// the enrichment.
func newCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	if url := os.Getenv(redisEnv); url != "" {
		if c, err := cache.NewRedisCache(ctx, url, appName+":"); err == nil {
			return c
		}
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	c, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return c
}

// cacheDir returns the cache directory using XDG standard (~/.cache/bomend/).
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
