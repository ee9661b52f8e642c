package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tiergraph/pkg/buildinfo"
	"github.com/matzehuels/tiergraph/pkg/cache"
	"github.com/matzehuels/tiergraph/pkg/config"
	"github.com/matzehuels/tiergraph/pkg/observability"
	"github.com/matzehuels/tiergraph/pkg/pipeline"
)

// appName is the application name used for display and output names.
const appName = "tiergraph"

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

	// ConfigPath is the --config flag. Empty means tiergraph.toml in the
	// working directory, if present.
	ConfigPath string
}

// New creates a new CLI instance writing logs to w.
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
		Use:   appName,
		Short: "Tiergraph lays out concept triples as four-tier graphs",
		Long: `Tiergraph turns (source, relation, target, layer) concept triples into a
four-tier concept graph and positions it with a layered or force-directed layout.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			observability.SetPipelineHooks(observability.NewLogPipelineHooks(c.Logger))
			observability.SetCacheHooks(&observability.LogCacheHooks{Logger: c.Logger})
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: ./"+config.FileName+" if present)")

	root.AddCommand(c.parseCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file named by --config.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("config loaded", "path", c.ConfigPath, "cache", cfg.Cache.Backend, "engine", cfg.Selector.Engine)
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cc, nil, c.Logger)
	if cfg.Cache.TTL.Duration > 0 {
		r.TTL = cfg.Cache.TTL.Duration
	}
	return r, nil
}

// newCache opens the backend named in cfg. An unusable file cache
// directory degrades to no caching; a bad redis URL is an error.
func newCache(cfg config.Cache, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		var opts []cache.RedisOption
		if cfg.Prefix != "" {
			opts = append(opts, cache.WithRedisPrefix(cfg.Prefix))
		}
		rc, err := cache.NewRedisCache(cfg.RedisURL, opts...)
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return rc, nil
	default:
		dir := cfg.Dir
		if dir == "" {
			dir = config.DefaultCacheDir()
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return fc, nil
	}
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// outputBase strips the extension and any ".graph" or ".layout" suffix from
// an input path, so "photo.graph.json" becomes "photo".
func outputBase(input string) string {
	if input == "-" || input == "" {
		return appName
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	for _, suffix := range []string{".graph", ".layout", ".triples"} {
		base = strings.TrimSuffix(base, suffix)
	}
	return base
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
