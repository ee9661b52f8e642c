package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/tiergraph/pkg/concept"
	tgio "github.com/matzehuels/tiergraph/pkg/io"
	"github.com/matzehuels/tiergraph/pkg/render"
	"github.com/matzehuels/tiergraph/pkg/render/nodelink"
)

// pngScale renders PNGs at twice the SVG resolution.
const pngScale = 2.0

// RenderFormat renders a positioned graph in one output format.
func RenderFormat(ctx context.Context, g *concept.Graph, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		if err := tgio.WriteGraph(&buf, g); err != nil {
			return nil, fmt.Errorf("serialize graph: %w", err)
		}
		return buf.Bytes(), nil
	case FormatDOT:
		return []byte(toDOT(g, opts)), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, toDOT(g, opts))
	case FormatPNG:
		svg, err := nodelink.RenderSVG(ctx, toDOT(g, opts))
		if err != nil {
			return nil, err
		}
		return render.ToPNG(ctx, svg, pngScale)
	case FormatPDF:
		svg, err := nodelink.RenderSVG(ctx, toDOT(g, opts))
		if err != nil {
			return nil, err
		}
		return render.ToPDF(ctx, svg)
	default:
		return nil, ValidateFormat(format)
	}
}

func toDOT(g *concept.Graph, opts Options) string {
	return nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed, Pinned: true})
}

// renderVariant is the part of the render cache key beyond the graph.
func renderVariant(format string, opts Options) string {
	if opts.Detailed && format != FormatJSON {
		return format + "+detailed"
	}
	return format
}
