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

	"github.com/matzehuels/tiergraph/pkg/concept"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the layer and importance to node labels.
	Detailed bool

	// Pinned emits each node's computed position as a pinned pos attribute,
	// for engines such as neato that honour it. dot ignores it and ranks
	// nodes by layer instead.
	Pinned bool
}

var typeFill = map[concept.NodeType]string{
	concept.NodeTypeMain:   "#fde68a",
	concept.NodeTypeCore:   "#bfdbfe",
	concept.NodeTypeDetail: "white",
}

// ToDOT converts a concept graph to Graphviz DOT format. Nodes on the same
// layer share a rank and appear left to right in order of their x
// coordinate, so a graph positioned by a layout engine keeps its ordering.
func ToDOT(g *concept.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10, color=\"#64748b\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if g.IsEmpty() {
		buf.WriteString("}\n")
		return buf.String()
	}
	buf.WriteString("\n")

	focus := strings.ToLower(g.Metadata.Keyword)
	for _, layer := range layers(g) {
		fmt.Fprintf(&buf, "  { rank=same;")
		for _, n := range layer {
			fmt.Fprintf(&buf, " %q;", n.ID)
		}
		buf.WriteString(" }\n")
		for _, n := range layer {
			attrs := fmtAttrs(*n, opts, focus != "" && strings.ToLower(n.Label) == focus)
			fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("\n")
	for _, l := range g.Links {
		attrs := []string{}
		if l.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", l.Label))
		}
		if l.Strength > 1 {
			attrs = append(attrs, fmt.Sprintf("penwidth=%.1f", min(l.Strength, 5)))
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", l.Source, l.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", l.Source, l.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// layers groups nodes by layer, sorted by x within a layer. Nodes without a
// layer form the last group.
func layers(g *concept.Graph) [][]*concept.Node {
	byLayer := map[int][]*concept.Node{}
	var keys []int
	for _, n := range g.Nodes {
		if _, ok := byLayer[n.Layer]; !ok {
			keys = append(keys, n.Layer)
		}
		byLayer[n.Layer] = append(byLayer[n.Layer], n)
	}
	slices.SortFunc(keys, func(a, b int) int {
		switch {
		case a == b:
			return 0
		case a == 0:
			return 1
		case b == 0:
			return -1
		}
		return a - b
	})
	out := make([][]*concept.Node, 0, len(keys))
	for _, k := range keys {
		nodes := byLayer[k]
		slices.SortStableFunc(nodes, func(a, b *concept.Node) int {
			switch {
			case a.X < b.X:
				return -1
			case a.X > b.X:
				return 1
			}
			return 0
		})
		out = append(out, nodes)
	}
	return out
}

func fmtLabel(n concept.Node, detailed bool) string {
	if !detailed {
		return n.Label
	}
	return fmt.Sprintf("%s\nlayer: %d\nimportance: %g", n.Label, n.Layer, n.Importance)
}

func fmtAttrs(n concept.Node, opts Options, focus bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	if fill, ok := typeFill[n.Type]; ok && fill != "white" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	if focus {
		attrs = append(attrs, "penwidth=2", "fontname=\"Helvetica-Bold\"")
	}
	if opts.Pinned {
		// Graphviz's y axis points up.
		attrs = append(attrs, fmt.Sprintf("pos=\"%.1f,%.1f!\"", n.X, -n.Y))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [render.ToPDF] or [render.ToPNG].
//
// [render.ToPDF]: github.com/matzehuels/tiergraph/pkg/render.ToPDF
// [render.ToPNG]: github.com/matzehuels/tiergraph/pkg/render.ToPNG
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
