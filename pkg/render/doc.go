// Package render groups the static renderers for routing graphs.
//
// The [nodelink] subpackage converts routing elements to Graphviz DOT and
// renders SVG from it:
//
//	dot := nodelink.ToDOT(elements, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/routegraph/pkg/render/nodelink
package render
