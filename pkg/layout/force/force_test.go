package force

import (
	"math"
	"testing"

	"github.com/matzehuels/tiergraph/pkg/concept"
	"github.com/matzehuels/tiergraph/pkg/layout"
)

func star() *concept.Graph {
	g := &concept.Graph{Nodes: []*concept.Node{{ID: "1", Label: "Climate"}}}
	for _, id := range []string{"2", "3", "4", "5", "6"} {
		g.Nodes = append(g.Nodes, &concept.Node{ID: id, Label: "c" + id})
		g.Links = append(g.Links, &concept.Link{ID: "1->" + id, Source: "1", Target: id, Strength: 1})
	}
	g.Links = append(g.Links, &concept.Link{ID: "3->2", Source: "3", Target: "2"})
	return g
}

func seeded(seed uint64) Config {
	cfg := DefaultConfig()
	cfg.Seed = seed
	return cfg
}

func TestLayout_Deterministic(t *testing.T) {
	a, _ := Layout(star(), seeded(7))
	b, _ := Layout(star(), seeded(7))
	for i := range a.Nodes {
		if a.Nodes[i].X != b.Nodes[i].X || a.Nodes[i].Y != b.Nodes[i].Y {
			t.Fatalf("node %s: (%v,%v) vs (%v,%v)", a.Nodes[i].ID,
				a.Nodes[i].X, a.Nodes[i].Y, b.Nodes[i].X, b.Nodes[i].Y)
		}
	}

	c, _ := Layout(star(), seeded(8))
	same := true
	for i := range a.Nodes {
		if a.Nodes[i].X != c.Nodes[i].X {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical layouts")
	}
}

func TestLayout_FiniteAndInCanvas(t *testing.T) {
	cfg := seeded(1)
	cfg.Canvas = layout.Canvas{Width: 400, Height: 300}
	out, _ := Layout(star(), cfg)
	for _, n := range out.Nodes {
		if math.IsNaN(n.X) || math.IsInf(n.X, 0) || math.IsNaN(n.Y) || math.IsInf(n.Y, 0) {
			t.Fatalf("node %s has non-finite position (%v,%v)", n.ID, n.X, n.Y)
		}
		w, h := n.Size()
		if n.X < w/2 || n.X > 400-w/2 || n.Y < h/2 || n.Y > 300-h/2 {
			t.Errorf("node %s at (%v,%v) outside canvas", n.ID, n.X, n.Y)
		}
	}
}

func TestLayout_DoesNotMutateInput(t *testing.T) {
	g := star()
	Layout(g, seeded(1))
	for _, n := range g.Nodes {
		if n.X != 0 || n.Y != 0 {
			t.Fatalf("input node %s moved", n.ID)
		}
	}
}

func TestLayout_FocusAnchored(t *testing.T) {
	cfg := seeded(3)
	cfg.Focus = "climate"
	out, res := Layout(star(), cfg)

	if res.Focus != "1" {
		t.Fatalf("Focus = %q, want 1", res.Focus)
	}
	n, _ := out.Node("1")
	if math.Abs(n.X-cfg.Canvas.Width/2) > 1e-6 || math.Abs(n.Y-cfg.AnchorY) > 1e-6 {
		t.Errorf("focus at (%v,%v), want (%v,%v)", n.X, n.Y, cfg.Canvas.Width/2, cfg.AnchorY)
	}
}

func TestLayout_EarlyTermination(t *testing.T) {
	cfg := seeded(1)
	cfg.Cooling = 0.5
	_, res := Layout(star(), cfg)
	// 1, 0.5, ..., 0.0078125 falls below 0.01 after seven steps.
	if res.Iterations != 7 {
		t.Errorf("Iterations = %d, want 7", res.Iterations)
	}
	if res.FinalTemperature >= 0.01 {
		t.Errorf("FinalTemperature = %v", res.FinalTemperature)
	}
}

func TestLayout_Profiles(t *testing.T) {
	tests := []struct {
		profile Profile
		want    int
	}{
		{ProfileDefault, 300},
		{ProfileQuick, 150},
		{ProfilePrecise, 500},
	}
	for _, tt := range tests {
		t.Run(string(tt.profile), func(t *testing.T) {
			_, res := Layout(star(), ProfileConfig(tt.profile))
			if res.Iterations != tt.want {
				t.Errorf("Iterations = %d, want %d", res.Iterations, tt.want)
			}
		})
	}
}

func TestParseProfile(t *testing.T) {
	if p, err := ParseProfile(""); err != nil || p != ProfileDefault {
		t.Errorf("ParseProfile(\"\") = %q, %v", p, err)
	}
	if p, err := ParseProfile(" Quick "); err != nil || p != ProfileQuick {
		t.Errorf("ParseProfile(Quick) = %q, %v", p, err)
	}
	if _, err := ParseProfile("slow"); err == nil {
		t.Error("ParseProfile(slow) succeeded")
	}
}

func TestLayout_AggregatedGroups(t *testing.T) {
	g := &concept.Graph{
		Nodes: []*concept.Node{
			{ID: "1", Label: "root"}, {ID: "2", Label: "a"}, {ID: "3", Label: "b"},
			{ID: "4", Label: "c"}, {ID: "5", Label: "d"},
		},
		Links: []*concept.Link{
			{ID: "1->2", Source: "1", Target: "2", Label: "causes"},
			{ID: "1->3", Source: "1", Target: "3", Label: "Causes"},
			{ID: "1->4", Source: "1", Target: "4", Label: "related to"},
			{ID: "1->5", Source: "1", Target: "5", Label: "related to"},
		},
	}
	_, res := Layout(g, seeded(2))
	if res.Groups != 1 {
		t.Errorf("Groups = %d, want 1", res.Groups)
	}
}

func TestLayout_ClusteringPullsTargetsTogether(t *testing.T) {
	g := &concept.Graph{Nodes: []*concept.Node{{ID: "1", Label: "root"}}}
	for _, id := range []string{"2", "3", "4", "5", "6", "7"} {
		g.Nodes = append(g.Nodes, &concept.Node{ID: id, Label: "n" + id})
	}
	link := func(t, label string) *concept.Link {
		return &concept.Link{ID: "1->" + t, Source: "1", Target: t, Label: label}
	}
	spread := func(label string) float64 {
		g := g.Clone()
		g.Links = []*concept.Link{link("2", label), link("3", label), link("4", label),
			link("5", ""), link("6", ""), link("7", "")}
		out, _ := Layout(g, seeded(4))
		return dist(out, "2", "3") + dist(out, "3", "4") + dist(out, "2", "4")
	}
	if clustered, plain := spread("enables"), spread(""); clustered >= plain {
		t.Errorf("clustered spread %v not below unclustered %v", clustered, plain)
	}
}

func dist(g *concept.Graph, a, b string) float64 {
	na, _ := g.Node(a)
	nb, _ := g.Node(b)
	return math.Hypot(na.X-nb.X, na.Y-nb.Y)
}

func TestLayout_SingleAndEmpty(t *testing.T) {
	empty := &concept.Graph{}
	if out, _ := Layout(empty, DefaultConfig()); out != empty {
		t.Error("empty graph not returned as is")
	}

	one := &concept.Graph{Nodes: []*concept.Node{{ID: "1", Label: "solo"}}}
	out, res := Layout(one, DefaultConfig())
	if res.Iterations != 0 {
		t.Errorf("Iterations = %d, want 0", res.Iterations)
	}
	if out.Nodes[0].X != DefaultConfig().Canvas.Width/2 {
		t.Errorf("single node x = %v", out.Nodes[0].X)
	}
	if out.Metadata.Layout == nil || out.Metadata.Layout.Engine != layout.EngineForce {
		t.Errorf("Metadata.Layout = %+v", out.Metadata.Layout)
	}
}
