// Package nodelink renders routing graphs as node-link diagrams.
//
// # Overview
//
// The interactive view of a routing graph is the Cytoscape JSON served by
// the graph endpoint. This package produces a static alternative: Graphviz
// DOT source, and SVG rendered in-process from it. It is used by the CLI's
// dot and svg output formats.
//
// # Usage
//
//	dot := nodelink.ToDOT(graph.Elements, nodelink.Options{Clusters: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Detailed: node labels include details, edge labels include timeframes
//   - Clusters: parent hints become dashed subgraph boxes
//   - RankDir: layout direction, left-to-right by default
//
// # Styling
//
// Nodes are filled with their kind color from [routing.Colors]. Ingress
// numbers are drawn as arrows, hangups as octagons and offnet targets as
// parallelograms. Answer-rule edges, which carry a priority, are bold.
// Nodes with a portal link get a clickable URL in the SVG.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz], a WebAssembly build of
// Graphviz, so no system Graphviz installation is needed.
package nodelink
