package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/routegraph/pkg/cache"
	"github.com/matzehuels/routegraph/pkg/integrations"
	"github.com/matzehuels/routegraph/pkg/integrations/netsapiens"
	"github.com/matzehuels/routegraph/pkg/routing"
)

// Source is a routing source that also reports upstream call statistics.
type Source interface {
	routing.Source
	Stats() integrations.CallStats
	LogStats()
}

// SourceFactory creates the upstream client for one run.
type SourceFactory func(opts integrations.Options) Source

// ClientSettings holds the upstream client knobs shared by every run.
type ClientSettings struct {
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	RateLimit  float64
	CacheTTL   time.Duration
	Page       integrations.PageOptions
}

// Runner encapsulates pipeline execution with a shared response cache.
//
// The Runner is stateless except for the cache and logger. Every run gets
// its own upstream client, so multiple goroutines can safely use the same
// Runner with different credentials.
type Runner struct {
	Cache     cache.Cache
	Client    ClientSettings
	Logger    *log.Logger
	NewSource SourceFactory
}

// NewRunner creates a runner with the given cache and client settings.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, client ClientSettings, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Client: client,
		Logger: logger,
		NewSource: func(opts integrations.Options) Source {
			return netsapiens.NewClient(opts, client.Page)
		},
	}
}

// Source creates the upstream client for opts.
func (r *Runner) Source(opts Options) Source {
	return r.NewSource(integrations.Options{
		BaseURLs:   opts.APIURLs,
		Token:      opts.Token,
		Timeout:    r.Client.Timeout,
		Retries:    r.Client.Retries,
		RetryDelay: r.Client.RetryDelay,
		RateLimit:  r.Client.RateLimit,
		Cache:      r.Cache,
		CacheTTL:   r.Client.CacheTTL,
		Logger:     opts.Logger,
	})
}

// Execute runs the complete build → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	result, err := r.Build(ctx, opts)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	artifacts, err := Render(ctx, result.Graph.Elements, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.logger(opts).Debug("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Build runs only the build stage. The returned Result has no artifacts.
func (r *Runner) Build(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForBuild(); err != nil {
		return nil, err
	}

	src := r.Source(opts)
	start := time.Now()
	g, err := routing.Build(ctx, src, opts.Domain, routing.Options{
		Logger:      opts.Logger,
		EntryFilter: opts.EntryFilter(),
		BuildID:     opts.BuildID,
	})
	src.LogStats()
	if err != nil {
		return nil, err
	}

	return &Result{
		Graph:     g,
		Artifacts: make(map[string][]byte),
		Calls:     src.Stats(),
		Stats:     Stats{BuildTime: time.Since(start)},
	}, nil
}

// ListEntries returns the domain's entry points without building anything.
func (r *Runner) ListEntries(ctx context.Context, opts Options) ([]routing.EntryPoint, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForBuild(); err != nil {
		return nil, err
	}
	return r.Source(opts).ListEntryPoints(ctx, opts.Domain)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
