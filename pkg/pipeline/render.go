package pipeline

import (
	"bytes"
	"context"
	"fmt"

	rgio "github.com/matzehuels/routegraph/pkg/io"
	"github.com/matzehuels/routegraph/pkg/render/nodelink"
	"github.com/matzehuels/routegraph/pkg/routing"
)

// Render generates output artifacts in the requested formats. DOT source is
// generated once and shared by the dot and svg outputs.
func Render(ctx context.Context, elements []routing.Element, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	dotSource := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(elements, nodelink.Options{
				Detailed: opts.Detailed,
				Clusters: opts.Clusters,
				RankDir:  opts.RankDir,
			})
		}
		return dot
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = renderJSON(elements, opts.Indent)
		case FormatDOT:
			data = []byte(dotSource())
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dotSource())
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func renderJSON(elements []routing.Element, indent bool) ([]byte, error) {
	if !indent {
		return rgio.Marshal(elements)
	}
	var buf bytes.Buffer
	if err := rgio.WriteJSON(elements, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
