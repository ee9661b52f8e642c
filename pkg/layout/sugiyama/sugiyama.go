package sugiyama

import (
	"cmp"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tiergraph/pkg/concept"
	"github.com/matzehuels/tiergraph/pkg/layout"
)

// Config controls coordinate assignment.
type Config struct {
	Canvas layout.Canvas

	// MarginX is the horizontal margin on each side of every level.
	MarginX float64
	// FocusY is the vertical center of the externally drawn focus element.
	FocusY float64
	// FocusOffset separates the focus element from level 0. It is larger
	// than LevelSpacing so the question box stands apart from the graph.
	FocusOffset float64
	// LevelSpacing is the distance between consecutive levels.
	LevelSpacing float64

	// FocusWidth and FocusHeight size the focus element for view fitting.
	FocusWidth  float64
	FocusHeight float64
	ViewPadding float64

	// Measurer, when set, sizes nodes that carry no dimensions.
	Measurer layout.Measurer
	Font     string

	Logger *log.Logger
}

// DefaultConfig returns the standard layered configuration.
func DefaultConfig() Config {
	return Config{
		Canvas:       layout.DefaultCanvas(),
		MarginX:      80,
		FocusY:       60,
		FocusOffset:  140,
		LevelSpacing: 120,
		FocusWidth:   240,
		FocusHeight:  50,
		ViewPadding:  20,
		Font:         "14px sans-serif",
	}
}

func (c *Config) setDefaults() {
	def := DefaultConfig()
	c.Canvas = c.Canvas.OrDefault()
	if c.MarginX <= 0 {
		c.MarginX = def.MarginX
	}
	if c.LevelSpacing <= 0 {
		c.LevelSpacing = def.LevelSpacing
	}
	if c.FocusOffset <= 0 {
		c.FocusOffset = def.FocusOffset
	}
	if c.FocusY <= 0 {
		c.FocusY = def.FocusY
	}
	if c.FocusWidth <= 0 {
		c.FocusWidth = def.FocusWidth
	}
	if c.FocusHeight <= 0 {
		c.FocusHeight = def.FocusHeight
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
}

// BaseY is the y coordinate of level 0.
func (c Config) BaseY() float64 { return c.FocusY + c.FocusOffset }

// Result describes a layered layout pass.
type Result struct {
	Levels          [][]*concept.Node
	Trusted         bool
	CrossingsBefore int
	CrossingsAfter  int
	View            concept.ViewBox
}

// Layout positions a copy of g and returns it. An empty or nil graph is
// returned as is.
func Layout(g *concept.Graph, cfg Config) (*concept.Graph, Result) {
	if g.IsEmpty() {
		return g, Result{}
	}
	cfg.setDefaults()

	out := g.Clone()
	layout.ApplySizes(out.Nodes, cfg.Measurer, cfg.Font)
	idx := out.Index()

	levels, trusted := AssignLevels(out, idx)
	if !trusted {
		for i, lv := range levels {
			for _, n := range lv {
				n.Layer = i + 1
			}
		}
	}

	before := concept.CountCrossings(idx, concept.LevelIDs(levels))
	levels = OrderLevels(idx, levels)
	after := concept.CountCrossings(idx, concept.LevelIDs(levels))

	AssignCoordinates(levels, cfg)

	res := Result{
		Levels:          levels,
		Trusted:         trusted,
		CrossingsBefore: before,
		CrossingsAfter:  after,
		View: layout.FitView(cfg.Canvas, out.Nodes, cfg.ViewPadding, layout.Rect{
			X: cfg.Canvas.Width / 2, Y: cfg.FocusY, Width: cfg.FocusWidth, Height: cfg.FocusHeight,
		}),
	}
	out.Metadata.Layout = &concept.LayoutInfo{
		Engine:          layout.EngineLayered,
		View:            res.View,
		CrossingsBefore: before,
		CrossingsAfter:  after,
	}
	out.Metadata.LayerInfo = out.CountLayers()

	cfg.Logger.Debug("layered layout", "levels", len(levels), "trusted", trusted,
		"crossings_before", before, "crossings_after", after)
	return out, res
}

// AssignLevels groups nodes into zero-based levels. When every node carries a
// layer in 1..[concept.Graph.LayerLimit], level = layer-1 and nothing is
// recomputed; empty layers stay as empty levels so spacing follows the layer
// numbers. Otherwise levels come from [layout.BFSLevels] and any layers the
// nodes carried are ignored; [Layout] then rewrites every layer to level+1.
func AssignLevels(g *concept.Graph, idx *concept.Index) ([][]*concept.Node, bool) {
	if g.HasLayers() {
		depth := 0
		for _, n := range g.Nodes {
			depth = max(depth, n.Layer)
		}
		levels := make([][]*concept.Node, depth)
		for _, n := range g.Nodes {
			levels[n.Layer-1] = append(levels[n.Layer-1], n)
		}
		return levels, true
	}
	return layout.BFSLevels(idx).Order, false
}

// OrderLevels makes one top-down barycenter pass and returns the reordered
// levels. A node's barycenter is the mean rank of its parents in the level
// above; nodes without such parents use their children in the level below,
// and nodes with neither keep their current rank. Ties keep input order.
func OrderLevels(idx *concept.Index, levels [][]*concept.Node) [][]*concept.Node {
	out := make([][]*concept.Node, len(levels))
	for i, lv := range levels {
		out[i] = slices.Clone(lv)
	}

	for i := range out {
		if len(out[i]) < 2 {
			continue
		}
		var above, below map[string]int
		if i > 0 {
			above = rankMap(out[i-1])
		}
		if i+1 < len(out) {
			below = rankMap(out[i+1])
		}

		type ranked struct {
			node *concept.Node
			bary float64
		}
		items := make([]ranked, len(out[i]))
		for j, n := range out[i] {
			b, ok := barycenter(idx.Incoming[n.ID], above)
			if !ok {
				b, ok = barycenter(idx.Outgoing[n.ID], below)
			}
			if !ok {
				b = float64(j)
			}
			items[j] = ranked{n, b}
		}
		slices.SortStableFunc(items, func(a, b ranked) int { return cmp.Compare(a.bary, b.bary) })
		for j, it := range items {
			out[i][j] = it.node
		}
	}
	return out
}

func rankMap(level []*concept.Node) map[string]int {
	m := make(map[string]int, len(level))
	for i, n := range level {
		m[n.ID] = i
	}
	return m
}

func barycenter(neighbors []string, ranks map[string]int) (float64, bool) {
	sum, count := 0, 0
	for _, id := range neighbors {
		if r, ok := ranks[id]; ok {
			sum += r
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return float64(sum) / float64(count), true
}

// AssignCoordinates places level i at y = BaseY + i*LevelSpacing and spreads
// its nodes evenly between the horizontal margins. A single node sits on the
// vertical midline.
func AssignCoordinates(levels [][]*concept.Node, cfg Config) {
	cfg.setDefaults()
	avail := cfg.Canvas.Width - 2*cfg.MarginX
	for i, lv := range levels {
		y := cfg.BaseY() + float64(i)*cfg.LevelSpacing
		step := avail / float64(len(lv)+1)
		for j, n := range lv {
			n.X = cfg.MarginX + step*float64(j+1)
			n.Y = y
		}
	}
}
