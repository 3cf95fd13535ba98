// Package pipeline runs routing graph builds for the CLI and the HTTP service.
//
// This package implements the complete fetch → build → render pipeline so
// both entry points share validation, upstream client construction and
// output encoding.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Build: crawl the PBX API for one domain and produce routing elements
//  2. Render: encode the elements as JSON, DOT or SVG
//
// # Usage
//
//	runner := pipeline.NewRunner(c, pipeline.ClientSettings{Retries: 2}, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Domain:  "acme",
//	    Token:   token,
//	    APIURLs: []string{"pbx.example.com"},
//	    Formats: []string{"json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	body := result.Artifacts["json"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	rgerrors "github.com/matzehuels/routegraph/pkg/errors"
	"github.com/matzehuels/routegraph/pkg/integrations"
	"github.com/matzehuels/routegraph/pkg/routing"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains the configuration for one pipeline run.
type Options struct {
	// Build options
	Domain  string   `json:"domain"`
	Token   string   `json:"-"`
	APIURLs []string `json:"api_urls,omitempty"`

	// EntryPoint restricts the build to one phone number. Empty builds all.
	EntryPoint string `json:"entry_point,omitempty"`

	// BuildID correlates logs; empty lets the builder generate one.
	BuildID string `json:"build_id,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Indent   bool     `json:"indent,omitempty"`   // pretty-print JSON
	Detailed bool     `json:"detailed,omitempty"` // details in DOT labels
	Clusters bool     `json:"clusters,omitempty"` // parent hints as DOT clusters
	RankDir  string   `json:"rank_dir,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the built routing graph.
	Graph *routing.Graph

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Calls counts upstream requests per endpoint template.
	Calls integrations.CallStats

	// Stats contains timing information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	BuildTime  time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := rgerrors.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateForBuild checks the fields required to reach the upstream API and
// applies defaults.
func (o *Options) ValidateForBuild() error {
	if err := rgerrors.ValidateDomain(o.Domain); err != nil {
		return err
	}
	if o.Token == "" {
		return rgerrors.New(rgerrors.ErrCodeInvalidInput, "token is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForRender applies render defaults and checks formats.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	return ValidateFormats(o.Formats)
}

// EntryFilter returns the routing filter selecting o.EntryPoint, or nil when
// every entry point is built.
func (o *Options) EntryFilter() func(routing.EntryPoint) bool {
	if o.EntryPoint == "" {
		return nil
	}
	want := o.EntryPoint
	return func(ep routing.EntryPoint) bool { return ep.Number == want }
}
