package force

import (
	"io"
	"math"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tiergraph/pkg/concept"
	"github.com/matzehuels/tiergraph/pkg/layout"
)

// DefaultLabels are relation labels too generic to form an aggregated group.
var DefaultLabels = []string{"", "related", "related to", "relates to", "is related to"}

// Config controls the simulation.
type Config struct {
	Canvas layout.Canvas

	Iterations         int
	Cooling            float64 // temperature multiplier per iteration
	InitialTemperature float64
	MinTemperature     float64 // loop stops below this

	Repulsion     float64 // inverse-square constant
	Attraction    float64 // spring constant
	IdealDistance float64 // spring rest length
	MinDistance   float64 // repulsion distance floor
	Damping       float64
	MaxVelocity   float64

	// Margin is the inner band in which boundary forces push nodes back.
	Margin   float64
	Boundary float64

	// Focus names the node to anchor. Matching follows [layout.MatchFocus].
	Focus           string
	FocusAttraction float64 // multiplier for links touching the focus
	AnchorY         float64
	AnchorStrength  float64

	// ClusterStrength multiplies a link's attraction for the centroid pull
	// of aggregated groups.
	ClusterStrength float64
	DefaultLabels   []string

	// Rand seeds initial positions. When nil a PCG source seeded from Seed
	// is used.
	Rand *rand.Rand
	Seed uint64

	Measurer layout.Measurer
	Font     string

	Logger *log.Logger
}

// DefaultConfig returns the default profile settings.
func DefaultConfig() Config {
	return Config{
		Canvas:             layout.DefaultCanvas(),
		Iterations:         300,
		Cooling:            0.985,
		InitialTemperature: 1,
		MinTemperature:     0.01,
		Repulsion:          12000,
		Attraction:         0.05,
		IdealDistance:      150,
		MinDistance:        30,
		Damping:            0.85,
		MaxVelocity:        50,
		Margin:             50,
		Boundary:           0.5,
		FocusAttraction:    1.5,
		AnchorY:            80,
		AnchorStrength:     0.3,
		ClusterStrength:    2.5,
		DefaultLabels:      DefaultLabels,
		Font:               "14px sans-serif",
	}
}

func (c *Config) setDefaults() {
	def := DefaultConfig()
	c.Canvas = c.Canvas.OrDefault()
	if c.Iterations <= 0 {
		c.Iterations = def.Iterations
	}
	if c.Cooling <= 0 || c.Cooling >= 1 {
		c.Cooling = def.Cooling
	}
	if c.InitialTemperature <= 0 {
		c.InitialTemperature = def.InitialTemperature
	}
	if c.MinTemperature <= 0 {
		c.MinTemperature = def.MinTemperature
	}
	if c.Repulsion <= 0 {
		c.Repulsion = def.Repulsion
	}
	if c.Attraction <= 0 {
		c.Attraction = def.Attraction
	}
	if c.IdealDistance <= 0 {
		c.IdealDistance = def.IdealDistance
	}
	if c.MinDistance <= 0 {
		c.MinDistance = def.MinDistance
	}
	if c.Damping <= 0 || c.Damping > 1 {
		c.Damping = def.Damping
	}
	if c.MaxVelocity <= 0 {
		c.MaxVelocity = def.MaxVelocity
	}
	if c.Margin <= 0 {
		c.Margin = def.Margin
	}
	if c.Boundary <= 0 {
		c.Boundary = def.Boundary
	}
	if c.FocusAttraction <= 0 {
		c.FocusAttraction = def.FocusAttraction
	}
	if c.AnchorY <= 0 {
		c.AnchorY = def.AnchorY
	}
	if c.AnchorStrength <= 0 || c.AnchorStrength > 1 {
		c.AnchorStrength = def.AnchorStrength
	}
	if c.ClusterStrength <= 0 {
		c.ClusterStrength = def.ClusterStrength
	}
	if c.DefaultLabels == nil {
		c.DefaultLabels = DefaultLabels
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewPCG(c.Seed, c.Seed^0xdeadbeef))
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
}

// Result describes a simulation pass.
type Result struct {
	Iterations       int
	FinalTemperature float64
	// Focus is the ID of the anchored node, empty when none matched.
	Focus string
	// Groups is the number of aggregated edge groups that were clustered.
	Groups int
	View   concept.ViewBox
}

type body struct {
	x, y   float64
	vx, vy float64
	fx, fy float64
	w, h   float64
}

type spring struct {
	a, b int
	k    float64
}

type group struct {
	targets []int
	k       float64
}

// Layout positions a copy of g with a force-directed simulation and returns
// it along with run statistics. The input graph is never modified.
//
// Nodes start at random positions inside the canvas margins, drawn from
// cfg.Rand (or a PCG source seeded from cfg.Seed), so equal seeds give equal
// coordinates. Each iteration applies inverse-square repulsion between every
// pair of nodes, Hooke springs along links, boundary forces inside the
// margin and, when present, the focus anchor and the centroid pull of
// aggregated groups. Forces are scaled by a temperature that decays by
// cfg.Cooling per iteration; the loop ends after cfg.Iterations steps or
// once the temperature drops below cfg.MinTemperature. Final positions are
// clamped so every node lies fully inside the canvas.
//
// The focus node, matched with [layout.MatchFocus], starts at the anchor
// near the top center and is pulled back to it every step; its links
// attract with cfg.FocusAttraction times the normal spring constant.
//
// Example:
//
//	cfg := force.ProfileConfig(force.ProfileQuick)
//	cfg.Focus = "photosynthesis"
//	cfg.Seed = 42
//	out, res := force.Layout(g, cfg)
//	fmt.Println(res.Iterations, out.Metadata.Layout.Engine) // e.g. 150 force
//
// An empty or nil graph is returned as is; a single node is placed at the
// anchor without simulating. Each iteration costs O(V² + E) for V nodes and
// E links, which is comfortable for graphs of a few hundred nodes.
func Layout(g *concept.Graph, cfg Config) (*concept.Graph, Result) {
	if g.IsEmpty() {
		return g, Result{}
	}
	cfg.setDefaults()

	out := g.Clone()
	layout.ApplySizes(out.Nodes, cfg.Measurer, cfg.Font)
	idx := out.Index()

	focus := -1
	if n, ok := layout.MatchFocus(out.Nodes, cfg.Focus); ok {
		focus = idx.Pos[n.ID]
	}
	anchorX, anchorY := cfg.Canvas.Width/2, cfg.AnchorY

	arena := make([]body, len(out.Nodes))
	for i, n := range out.Nodes {
		w, h := n.Size()
		b := &arena[i]
		b.w, b.h = w, h
		if i == focus || len(out.Nodes) == 1 {
			b.x, b.y = anchorX, anchorY
			continue
		}
		b.x = randIn(cfg.Rand, cfg.Margin+w/2, cfg.Canvas.Width-cfg.Margin-w/2)
		b.y = randIn(cfg.Rand, cfg.Margin+h/2, cfg.Canvas.Height-cfg.Margin-h/2)
	}

	springs := buildSprings(out, idx, focus, cfg)
	groups := buildGroups(out, idx, springs, cfg)

	temp := cfg.InitialTemperature
	iter := 0
	if len(out.Nodes) > 1 {
		for ; iter < cfg.Iterations; iter++ {
			if temp < cfg.MinTemperature {
				break
			}
			step(arena, springs, groups, focus, anchorX, anchorY, temp, cfg)
			temp *= cfg.Cooling
		}
	}

	for i, n := range out.Nodes {
		b := arena[i]
		n.X = clamp(b.x, b.w/2, cfg.Canvas.Width-b.w/2)
		n.Y = clamp(b.y, b.h/2, cfg.Canvas.Height-b.h/2)
	}

	res := Result{
		Iterations:       iter,
		FinalTemperature: temp,
		Groups:           len(groups),
		View:             layout.FitView(cfg.Canvas, out.Nodes, 0),
	}
	if focus >= 0 {
		res.Focus = out.Nodes[focus].ID
	}
	out.Metadata.Layout = &concept.LayoutInfo{
		Engine:     layout.EngineForce,
		View:       res.View,
		Iterations: iter,
	}

	cfg.Logger.Debug("force layout", "nodes", len(out.Nodes), "iterations", iter,
		"temperature", temp, "focus", res.Focus, "groups", len(groups))
	return out, res
}

func buildSprings(g *concept.Graph, idx *concept.Index, focus int, cfg Config) []spring {
	springs := make([]spring, 0, len(g.Links))
	for _, l := range g.Links {
		a, okA := idx.Pos[l.Source]
		b, okB := idx.Pos[l.Target]
		if !okA || !okB || a == b {
			continue
		}
		k := cfg.Attraction * max(l.Strength, 1)
		if a == focus || b == focus {
			k *= cfg.FocusAttraction
		}
		springs = append(springs, spring{a: a, b: b, k: k})
	}
	return springs
}

// buildGroups finds links that share a source and a non-default label. Each
// group with at least two distinct targets gets a centroid pull using the
// strongest attraction among its links.
func buildGroups(g *concept.Graph, idx *concept.Index, springs []spring, cfg Config) []group {
	type key struct {
		source int
		label  string
	}
	strength := make(map[[2]int]float64, len(springs))
	for _, s := range springs {
		strength[[2]int{s.a, s.b}] = max(strength[[2]int{s.a, s.b}], s.k)
	}

	var order []key
	byKey := make(map[key]*group)
	for _, l := range g.Links {
		label := concept.NormalizeLabel(l.Label)
		if isDefaultLabel(label, cfg.DefaultLabels) {
			continue
		}
		a, okA := idx.Pos[l.Source]
		b, okB := idx.Pos[l.Target]
		if !okA || !okB || a == b {
			continue
		}
		k := key{a, label}
		grp, ok := byKey[k]
		if !ok {
			grp = &group{}
			byKey[k] = grp
			order = append(order, k)
		}
		if !slices.Contains(grp.targets, b) {
			grp.targets = append(grp.targets, b)
		}
		grp.k = max(grp.k, strength[[2]int{a, b}]*cfg.ClusterStrength)
	}

	var out []group
	for _, k := range order {
		if grp := byKey[k]; len(grp.targets) >= 2 {
			out = append(out, *grp)
		}
	}
	return out
}

func isDefaultLabel(label string, defaults []string) bool {
	for _, d := range defaults {
		if strings.EqualFold(label, d) {
			return true
		}
	}
	return false
}

func step(arena []body, springs []spring, groups []group, focus int, ax, ay, temp float64, cfg Config) {
	for i := range arena {
		arena[i].fx, arena[i].fy = 0, 0
	}

	for i := 0; i < len(arena); i++ {
		for j := i + 1; j < len(arena); j++ {
			a, b := &arena[i], &arena[j]
			dx, dy := a.x-b.x, a.y-b.y
			d := math.Hypot(dx, dy)
			if d == 0 {
				// Coincident nodes separate along a fixed per-pair direction.
				angle := float64(i*31+j*17) * 0.618
				dx, dy, d = math.Cos(angle), math.Sin(angle), 1
			}
			ux, uy := dx/d, dy/d
			d = max(d, cfg.MinDistance)
			f := cfg.Repulsion / (d * d)
			a.fx += ux * f
			a.fy += uy * f
			b.fx -= ux * f
			b.fy -= uy * f
		}
	}

	for _, s := range springs {
		a, b := &arena[s.a], &arena[s.b]
		dx, dy := b.x-a.x, b.y-a.y
		d := math.Hypot(dx, dy)
		if d == 0 {
			continue
		}
		f := s.k * (d - cfg.IdealDistance)
		fx, fy := dx/d*f, dy/d*f
		a.fx += fx
		a.fy += fy
		b.fx -= fx
		b.fy -= fy
	}

	for _, grp := range groups {
		var cx, cy float64
		for _, t := range grp.targets {
			cx += arena[t].x
			cy += arena[t].y
		}
		cx /= float64(len(grp.targets))
		cy /= float64(len(grp.targets))
		for _, t := range grp.targets {
			arena[t].fx += (cx - arena[t].x) * grp.k
			arena[t].fy += (cy - arena[t].y) * grp.k
		}
	}

	for i := range arena {
		b := &arena[i]
		left, right := cfg.Margin+b.w/2, cfg.Canvas.Width-cfg.Margin-b.w/2
		top, bottom := cfg.Margin+b.h/2, cfg.Canvas.Height-cfg.Margin-b.h/2
		if b.x < left {
			b.fx += (left - b.x) * cfg.Boundary
		} else if b.x > right {
			b.fx += (right - b.x) * cfg.Boundary
		}
		if b.y < top {
			b.fy += (top - b.y) * cfg.Boundary
		} else if b.y > bottom {
			b.fy += (bottom - b.y) * cfg.Boundary
		}
	}

	for i := range arena {
		b := &arena[i]
		if i == focus {
			b.x += (ax - b.x) * cfg.AnchorStrength
			b.y += (ay - b.y) * cfg.AnchorStrength
			b.vx, b.vy = 0, 0
			continue
		}
		b.vx = (b.vx + b.fx*temp) * cfg.Damping
		b.vy = (b.vy + b.fy*temp) * cfg.Damping
		if v := math.Hypot(b.vx, b.vy); v > cfg.MaxVelocity {
			b.vx = b.vx / v * cfg.MaxVelocity
			b.vy = b.vy / v * cfg.MaxVelocity
		}
		b.x += b.vx
		b.y += b.vy
	}
}

func randIn(r *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return (lo + hi) / 2
	}
	return lo + r.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, v))
}
