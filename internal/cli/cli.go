package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pvmviz/pkg/buildinfo"
	"github.com/matzehuels/pvmviz/pkg/cache"
	"github.com/matzehuels/pvmviz/pkg/compile"
	"github.com/matzehuels/pvmviz/pkg/pipeline"
	"github.com/matzehuels/pvmviz/pkg/style"
	"github.com/matzehuels/pvmviz/pkg/stylestore"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pvmviz"

	// redisKeyScope prefixes artifact keys in a shared Redis cache.
	redisKeyScope = appName + ":"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	getenv     func(string) string

	// styleRetry is the connection policy for remote style stores.
	styleRetry cache.Backoff
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		getenv: os.Getenv,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "pvmviz renders process definitions as Graphviz diagrams",
		Long:         `pvmviz compiles process definitions into styled diagrams, overlays the state of running tokens, and renders the result as DOT, SVG or PNG.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/pvmviz/config.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.stylesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	walk(root, registerCompletions)
	return root
}

// walk calls fn for cmd and every command below it.
func walk(cmd *cobra.Command, fn func(*cobra.Command)) {
	fn(cmd)
	for _, sub := range cmd.Commands() {
		walk(sub, fn)
	}
}

// =============================================================================
// Runner Factory
// =============================================================================

// openResolver opens the style source and wraps it in a resolver. An
// unreachable remote store degrades to the built-in styles. The returned
// close function releases the source.
func (c *CLI) openResolver(ctx context.Context, src string) (*style.Resolver, func(), error) {
	store, err := stylestore.OpenWith(ctx, src, stylestore.Options{
		Logger:   c.Logger,
		Retry:    c.styleRetry,
		Fallback: true,
	})
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := store.Close(); err != nil {
			c.Logger.Debug("close style source", "error", err)
		}
	}
	return style.NewResolver(store, c.Logger), closeFn, nil
}

// newRunner creates a pipeline runner for cfg. The returned close function
// releases the cache and the style source.
func (c *CLI) newRunner(ctx context.Context, cfg Config, noCache bool) (*pipeline.Runner, func(), error) {
	resolver, closeStyles, err := c.openResolver(ctx, cfg.Styles)
	if err != nil {
		return nil, nil, err
	}
	ch, keyer, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		closeStyles()
		return nil, nil, err
	}
	runner := pipeline.NewRunner(ch, keyer, compile.New(resolver, c.Logger), c.Logger)
	return runner, func() {
		_ = runner.Close()
		closeStyles()
	}, nil
}

// newCache picks the artifact cache: none, Redis when an address is
// configured, else the file cache.
func (c *CLI) newCache(ctx context.Context, cfg Config, noCache bool) (cache.Cache, cache.Keyer, error) {
	if noCache || !cfg.CacheEnabled() {
		return cache.NewNullCache(), nil, nil
	}
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, "")
		if err != nil {
			return nil, nil, err
		}
		return rc, cache.NewScopedKeyer(nil, redisKeyScope), nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Debug("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, err
	}
	return fc, nil, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/pvmviz/).
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

// configDir returns the config directory using XDG standard (~/.config/pvmviz/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{pipeline.DefaultFormat}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
