package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/routegraph/pkg/routing"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed appends node details (extension, email, department...) to
	// node labels and timeframe names to answer-rule edge labels.
	Detailed bool

	// Clusters draws each parent node and its children inside a shared
	// subgraph box. When false, parent hints are ignored.
	Clusters bool

	// RankDir is the Graphviz layout direction (default "LR").
	RankDir string
}

// ToDOT converts routing elements to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Nodes are filled with their kind color. Edges whose source or target is
// missing from elements are still written; Graphviz creates a bare node for
// the dangling end.
func ToDOT(elements []routing.Element, opts Options) string {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "LR"
	}

	var nodes []*routing.Node
	var edges []*routing.Edge
	for _, el := range elements {
		switch {
		case el.Node != nil:
			nodes = append(nodes, el.Node)
		case el.Edge != nil:
			edges = append(edges, el.Edge)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if opts.Clusters {
		writeClustered(&buf, nodes, opts.Detailed)
	} else {
		for _, n := range nodes {
			writeNode(&buf, "  ", n, opts.Detailed)
		}
	}

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(edgeAttrs(e, opts.Detailed), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// writeClustered groups nodes by parent. A node that leads a group is drawn
// inside its own cluster even when it also names a parent.
func writeClustered(buf *bytes.Buffer, nodes []*routing.Node, detailed bool) {
	byID := make(map[string]*routing.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	members := make(map[string][]*routing.Node)
	var order []string
	for _, n := range nodes {
		if n.Parent == "" || n.Parent == n.ID {
			continue
		}
		if _, ok := members[n.Parent]; !ok {
			order = append(order, n.Parent)
		}
		members[n.Parent] = append(members[n.Parent], n)
	}

	placed := make(map[string]bool, len(nodes))
	for i, parent := range order {
		fmt.Fprintf(buf, "  subgraph %q {\n", "cluster_"+strconv.Itoa(i))
		buf.WriteString("    style=\"rounded,dashed\";\n")
		buf.WriteString("    color=\"#888888\";\n")
		if p, ok := byID[parent]; ok {
			fmt.Fprintf(buf, "    label=%q;\n", p.Label)
			writeNode(buf, "    ", p, detailed)
			placed[p.ID] = true
		} else {
			fmt.Fprintf(buf, "    label=%q;\n", parent)
		}
		for _, n := range members[parent] {
			if placed[n.ID] || slices.Contains(order, n.ID) {
				continue
			}
			writeNode(buf, "    ", n, detailed)
			placed[n.ID] = true
		}
		buf.WriteString("  }\n")
	}

	for _, n := range nodes {
		if !placed[n.ID] {
			writeNode(buf, "  ", n, detailed)
		}
	}
}

func writeNode(buf *bytes.Buffer, indent string, n *routing.Node, detailed bool) {
	fmt.Fprintf(buf, "%s%q [%s];\n", indent, n.ID, strings.Join(nodeAttrs(n, detailed), ", "))
}

func nodeAttrs(n *routing.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(n, detailed))}
	if n.Color != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", n.Color))
	}
	if n.Link != "" {
		attrs = append(attrs, fmt.Sprintf("URL=%q", n.Link), `target="_blank"`)
	}
	switch n.Type {
	case routing.KindIngress:
		attrs = append(attrs, "shape=cds")
	case routing.KindHangup:
		attrs = append(attrs, "shape=octagon")
	case routing.KindOffnet:
		attrs = append(attrs, "shape=parallelogram")
	}
	return attrs
}

func nodeLabel(n *routing.Node, detailed bool) string {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	if !detailed || len(n.Details) == 0 {
		return label
	}

	keys := make([]string, 0, len(n.Details))
	for k := range n.Details {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := []string{label}
	for _, k := range keys {
		if v := n.Details[k]; v != "" {
			parts = append(parts, k+": "+v)
		}
	}
	return strings.Join(parts, "\n")
}

func edgeAttrs(e *routing.Edge, detailed bool) []string {
	label := e.Label
	if detailed && e.Timeframe != "" {
		label += "\n(" + e.Timeframe + ")"
	}
	var attrs []string
	if label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", label))
	}
	if e.Priority != nil {
		attrs = append(attrs, "style=bold")
	}
	if len(attrs) == 0 {
		attrs = append(attrs, `label=""`)
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag so the document scales from a
// zero origin, which browsers embed more predictably than Graphviz's pt
// width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(root))
}
