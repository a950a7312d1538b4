// Package cli implements the zonemap command line: it fetches the zone
// envelope from an upstream endpoint, runs the map pipeline and prints
// summaries, share links, GeoJSON and PNG snapshots.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jengzang/zonemap-backend-go/internal/config"
	"github.com/jengzang/zonemap-backend-go/internal/logging"
	"github.com/jengzang/zonemap-backend-go/internal/upstream"
	"github.com/jengzang/zonemap-backend-go/internal/zonemap"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// Build metadata, injected with -ldflags at release time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global flags shared by every subcommand.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Upstream     string
	RedisAddr    string
	NoCache      bool
	Timeout      time.Duration
	Zoom         int
	Radius       float64
}

// Dependencies lets callers replace the collaborators built from config.
// Nil fields are built in the pre-run hook.
type Dependencies struct {
	Source    zonemap.Source
	Clipboard zonemap.Clipboard
	Logger    logging.Logger
}

// CLIContext is what subcommands get from the pre-run hook.
type CLIContext struct {
	Config    *config.Config
	Logger    logging.Logger
	Source    zonemap.Source
	Cache     *upstream.CachedSource // nil unless redis is configured
	Clipboard zonemap.Clipboard
	Options   *RootOptions

	redis *redis.Client
}

type cliContextKey struct{}

// NewRootCommand builds the command tree. deps may be nil.
func NewRootCommand(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = &Dependencies{}
	}
	opts := &RootOptions{}

	root := &cobra.Command{
		Use:   "zonemap",
		Short: "Industrial zone map toolkit",
		Long: `zonemap fetches industrial zones from an upstream endpoint and runs the
map pipeline on them: occupancy filters, colors, heat points and marker
clusters. Filters are given as the share-link query string, for example

  zonemap summary "filter=high&statut=actif&heatmap=true"`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, opts, deps)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPostRun(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (YAML)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format: text or json")
	pf.StringVar(&opts.Upstream, "upstream", "", "zones endpoint URL (overrides config)")
	pf.StringVar(&opts.RedisAddr, "redis", "", "redis address for the envelope cache (overrides config)")
	pf.BoolVar(&opts.NoCache, "no-cache", false, "bypass the redis envelope cache")
	pf.DurationVar(&opts.Timeout, "timeout", 0, "upstream request timeout (overrides config)")
	pf.IntVar(&opts.Zoom, "zoom", 0, "map zoom level used for clustering")
	pf.Float64Var(&opts.Radius, "radius", 0, "cluster radius in screen pixels, negative disables clustering")

	root.AddCommand(
		newSummaryCommand(),
		newRenderCommand(),
		newClustersCommand(),
		newShareCommand(),
		newSnapshotCommand(),
		newGeoJSONCommand(),
		newEncodeCommand(),
		newDecodeCommand(),
		newCacheCommand(),
		newVersionCommand(),
	)
	return root
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions, deps *Dependencies) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	if opts.Upstream != "" {
		cfg.Upstream.ZonesURL = opts.Upstream
	}
	if opts.RedisAddr != "" {
		cfg.Redis.Addr = opts.RedisAddr
	}
	if opts.Timeout > 0 {
		cfg.Upstream.Timeout = opts.Timeout
	}

	log := deps.Logger
	if log == nil {
		logCfg := cfg.Log
		logCfg.Format = "console"
		logCfg.Outputs = []string{"stderr"}
		if opts.LogLevel != "" {
			logCfg.Level = opts.LogLevel
		} else {
			logCfg.Level = "warn"
		}
		if log, err = logging.New(logCfg); err != nil {
			return fmt.Errorf("logger initialization failed: %w", err)
		}
	}
	logging.SetDefault(log)

	cliCtx := &CLIContext{
		Config:    cfg,
		Logger:    log,
		Source:    deps.Source,
		Clipboard: deps.Clipboard,
		Options:   opts,
	}
	if cliCtx.Clipboard == nil {
		cliCtx.Clipboard = SystemClipboard{}
	}
	if cliCtx.Source == nil {
		if err := initSource(cliCtx); err != nil {
			return err
		}
	}

	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

func initSource(cliCtx *CLIContext) error {
	cfg := cliCtx.Config
	client := upstream.NewClient(cfg.Upstream.ZonesURL, cfg.Upstream.Timeout, cliCtx.Logger)
	cliCtx.Source = client

	if cfg.Redis.Addr == "" || cliCtx.Options.NoCache {
		return nil
	}
	cliCtx.redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	cached, err := upstream.NewCachedSource(client, cliCtx.redis, "", cfg.Redis.TTL, cliCtx.Logger)
	if err != nil {
		return fmt.Errorf("cache initialization failed: %w", err)
	}
	cliCtx.Cache = cached
	cliCtx.Source = cached
	return nil
}

func persistentPostRun(cmd *cobra.Command) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil || cliCtx.redis == nil {
		return nil
	}
	return cliCtx.redis.Close()
}

// GetCLIContext returns the context installed by the root pre-run hook.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New("cli context not found in command context")
	}
	return cliCtx, nil
}

// Viewport resolves the --zoom and --radius flags against the map defaults.
func (c *CLIContext) Viewport() zonemap.Viewport {
	vp := zonemap.Viewport{Zoom: c.Options.Zoom, ClusterRadiusPx: c.Options.Radius}
	if vp.Zoom <= 0 {
		vp.Zoom = c.Config.Map.DefaultZoom
	}
	if vp.Zoom > c.Config.Map.MaxZoom {
		vp.Zoom = c.Config.Map.MaxZoom
	}
	if vp.ClusterRadiusPx == 0 {
		vp.ClusterRadiusPx = c.Config.Map.ClusterRadiusPx
	}
	return vp
}

// JSONOutput reports whether --output json was requested.
func (c *CLIContext) JSONOutput() bool {
	return strings.EqualFold(c.Options.OutputFormat, "json")
}

// Execute runs the root command with the process arguments.
func Execute() error {
	root := NewRootCommand(nil)
	if err := root.Execute(); err != nil {
		PrintError(root, err)
		return err
	}
	return nil
}

// PrintJSON writes data as indented JSON to the command's output.
func PrintJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// PrintError writes err to the command's error stream.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// queryArg extracts the filter query from the optional positional argument.
// Both bare query strings and full share URLs are accepted.
func queryArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	raw := strings.TrimSpace(args[0])
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
		return u.RawQuery
	}
	return strings.TrimPrefix(raw, "?")
}
