package layout

import (
	"math"

	"github.com/matzehuels/tiergraph/pkg/concept"
)

// Engine names recorded in [concept.LayoutInfo].
const (
	EngineLayered = "layered"
	EngineForce   = "force"
)

// Default canvas dimensions in user units.
const (
	DefaultWidth  = 1200.0
	DefaultHeight = 800.0
)

// Canvas is the drawing area a layout targets.
type Canvas struct {
	Width  float64
	Height float64
}

// DefaultCanvas returns a canvas with the default dimensions.
func DefaultCanvas() Canvas { return Canvas{Width: DefaultWidth, Height: DefaultHeight} }

// OrDefault fills zero or negative dimensions with the defaults.
func (c Canvas) OrDefault() Canvas {
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	return c
}

// Size is a measured width and height.
type Size struct {
	Width, Height float64
}

// Measurer reports the rendered size of a label. It stands in for whatever
// text-metrics facility the renderer has.
type Measurer interface {
	Measure(text, font string) Size
}

// MeasurerFunc adapts a function to [Measurer].
type MeasurerFunc func(text, font string) Size

// Measure calls f.
func (f MeasurerFunc) Measure(text, font string) Size { return f(text, font) }

// ApplySizes fills Width and Height of nodes that have none using m.
// Nodes with supplied dimensions are left alone. A nil m is a no-op.
func ApplySizes(nodes []*concept.Node, m Measurer, font string) {
	if m == nil {
		return
	}
	for _, n := range nodes {
		if n.Width > 0 && n.Height > 0 {
			continue
		}
		s := m.Measure(n.Label, font)
		if n.Width <= 0 {
			n.Width = s.Width
		}
		if n.Height <= 0 {
			n.Height = s.Height
		}
	}
}

// Rect is an axis-aligned rectangle given by its center and size.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// FitView returns the smallest view box containing the canvas, every node
// (using its size or the defaults) and the extra rectangles, grown by pad on
// each side where content spills over the canvas edge.
func FitView(c Canvas, nodes []*concept.Node, pad float64, extra ...Rect) concept.ViewBox {
	minX, minY := 0.0, 0.0
	maxX, maxY := c.Width, c.Height
	grow := func(x, y, w, h float64) {
		minX = math.Min(minX, x-w/2-pad)
		minY = math.Min(minY, y-h/2-pad)
		maxX = math.Max(maxX, x+w/2+pad)
		maxY = math.Max(maxY, y+h/2+pad)
	}
	for _, n := range nodes {
		w, h := n.Size()
		grow(n.X, n.Y, w, h)
	}
	for _, r := range extra {
		grow(r.X, r.Y, r.Width, r.Height)
	}
	return concept.ViewBox{MinX: minX, MinY: minY, Width: maxX - minX, Height: maxY - minY}
}
