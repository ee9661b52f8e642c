// Package nodelink renders concept graphs as node-link diagrams.
//
// [ToDOT] produces Graphviz DOT source with one rank per layer, coloured by
// node type, with relation labels on the edges. [RenderSVG] lays it out and
// renders it in-process through [github.com/goccy/go-graphviz]:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Set [Options].Pinned to carry the positions computed by a layout engine
// into the DOT source.
package nodelink
