// Package render turns positioned concept graphs into files.
//
// The [nodelink] subpackage writes Graphviz DOT and renders it to SVG
// in-process. [ToPDF] and [ToPNG] convert any SVG further using the external
// rsvg-convert tool (from librsvg):
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [nodelink]: github.com/matzehuels/tiergraph/pkg/render/nodelink
package render
