package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/routegraph/pkg/buildinfo"
	"github.com/matzehuels/routegraph/pkg/cache"
	"github.com/matzehuels/routegraph/pkg/config"
	"github.com/matzehuels/routegraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "routegraph"

	// defaultEnvFile is loaded before the environment when present.
	defaultEnvFile = ".env"
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
	envFile    string
	settings   *config.Settings

	// newSource overrides the upstream client factory (tests).
	newSource pipeline.SourceFactory
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), envFile: defaultEnvFile}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Routegraph maps PBX call routing as a graph",
		Long: `Routegraph crawls a NetSapiens PBX domain and builds the graph of where
every public phone number routes: users, answer rules, auto attendants,
call queues, voicemail and external numbers.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadSettings,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML settings file")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", c.envFile, "dotenv file loaded before the environment")

	// Register all subcommands
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.entriesCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadSettings resolves configuration once per invocation and attaches the
// logger to the command context.
func (c *CLI) loadSettings(cmd *cobra.Command, _ []string) error {
	s, err := config.Load(c.configPath, c.envFile)
	if err != nil {
		return err
	}
	c.settings = s
	if s.Debug {
		c.SetLogLevel(LogDebug)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// conf returns the loaded settings, falling back to defaults when a
// command runs without the root pre-run (tests).
func (c *CLI) conf() *config.Settings {
	if c.settings == nil {
		s := config.Defaults()
		c.settings = &s
	}
	return c.settings
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner using the cache named by cacheURL.
// "" selects the per-user file cache; "none" disables caching.
func (c *CLI) newRunner(ctx context.Context, cacheURL string, cacheTTL time.Duration) (*pipeline.Runner, error) {
	s := c.conf()
	store, err := openCache(ctx, cacheURL)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(store, pipeline.ClientSettings{
		Timeout:   s.Timeout,
		Retries:   s.Retries,
		RateLimit: s.RateLimit,
		CacheTTL:  cacheTTL,
	}, loggerFromContext(ctx))
	if c.newSource != nil {
		r.NewSource = c.newSource
	}
	return r, nil
}

func openCache(ctx context.Context, cacheURL string) (cache.Cache, error) {
	if cacheURL == "" {
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
	return cache.Open(ctx, cacheURL)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/routegraph/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// apiURLs picks the upstream hosts: the flag when given, else settings.
func (c *CLI) apiURLs(flag string) []string {
	if flag != "" {
		return strings.Split(flag, ",")
	}
	return c.conf().APIURLs
}

// token picks the upstream token: the flag when given, else settings.
func (c *CLI) token(flag string) string {
	if flag != "" {
		return flag
	}
	return c.conf().Token
}
