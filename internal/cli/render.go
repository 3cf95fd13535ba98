package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	rgio "github.com/matzehuels/routegraph/pkg/io"
	"github.com/matzehuels/routegraph/pkg/pipeline"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	formats  string
	output   string
	detailed bool
	clusters bool
	rankDir  string
}

// renderCommand creates the render command, which turns a saved Cytoscape
// JSON file into other formats without contacting the PBX.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <graph.json>",
		Short: "Render a saved routing graph",
		Long: `Render a routing graph saved by "build" into DOT or SVG.

Examples:
  routegraph render acme.json -f dot             # DOT on stdout
  routegraph render acme.json -f dot,svg         # acme.dot and acme.svg
  routegraph render acme.json -f svg -o out.svg  # one file`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.formats, "format", "f", "dot", "output formats: json, dot, svg (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty and one format)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include node details in DOT and SVG labels")
	cmd.Flags().BoolVar(&opts.clusters, "clusters", false, "group DOT and SVG nodes by parent")
	cmd.Flags().StringVar(&opts.rankDir, "rankdir", "LR", "DOT rank direction (LR, TB)")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	formats := parseFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	elements, err := rgio.ImportJSON(input)
	if err != nil {
		return err
	}
	logger.Debug("graph loaded", "path", input, "elements", len(elements))

	toStdout := opts.output == "" && len(formats) == 1
	artifacts, err := pipeline.Render(ctx, elements, pipeline.Options{
		Formats:  formats,
		Indent:   !toStdout,
		Detailed: opts.detailed,
		Clusters: opts.clusters,
		RankDir:  opts.rankDir,
	})
	if err != nil {
		return fmt.Errorf("render %s: %w", input, err)
	}

	if toStdout {
		_, err := cmd.OutOrStdout().Write(artifacts[formats[0]])
		return err
	}

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input))
	}
	base := basePath(output, "")
	for _, format := range formats {
		path := base + "." + format
		if len(formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if path == input {
			return fmt.Errorf("refusing to overwrite input %s", input)
		}
		if err := writeArtifact(path, artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}
