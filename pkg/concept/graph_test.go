package concept

import (
	"errors"
	"testing"
)

func layered() *Graph {
	return &Graph{
		Nodes: []*Node{
			{ID: "1", Label: "root", Layer: 1},
			{ID: "2", Label: "a", Layer: 2},
			{ID: "3", Label: "b", Layer: 2},
			{ID: "4", Label: "c", Layer: 3},
		},
		Links: []*Link{
			{ID: "1->2", Source: "1", Target: "2"},
			{ID: "1->3", Source: "1", Target: "3"},
			{ID: "2->4", Source: "2", Target: "4"},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := layered().Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *Graph)
		want   error
	}{
		{"duplicate id", func(g *Graph) { g.Nodes = append(g.Nodes, &Node{ID: "1", Layer: 4}) }, ErrDuplicateNodeID},
		{"unknown endpoint", func(g *Graph) { g.Links = append(g.Links, &Link{ID: "x", Source: "1", Target: "9"}) }, ErrUnknownEndpoint},
		{"skip layer", func(g *Graph) { g.Links = append(g.Links, &Link{ID: "1->4", Source: "1", Target: "4"}) }, ErrNonAdjacentLayers},
		{"reverse", func(g *Graph) { g.Links = append(g.Links, &Link{ID: "2->1", Source: "2", Target: "1"}) }, ErrNonAdjacentLayers},
		{"out of range", func(g *Graph) { g.Nodes[3].Layer = 5 }, ErrLayerOutOfRange},
		{"two roots", func(g *Graph) { g.Nodes[1].Layer = 1 }, ErrRootCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := layered()
			tt.mutate(g)
			if err := g.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestIndex(t *testing.T) {
	g := layered()
	g.Links = append(g.Links, &Link{ID: "dangling", Source: "1", Target: "missing"})
	idx := g.Index()

	if got := idx.Outgoing["1"]; len(got) != 2 || got[0] != "2" || got[1] != "3" {
		t.Errorf("Outgoing[1] = %v", got)
	}
	if idx.InDegree("4") != 1 {
		t.Errorf("InDegree(4) = %d, want 1", idx.InDegree("4"))
	}
	roots := idx.Roots()
	if len(roots) != 1 || roots[0].ID != "1" {
		t.Errorf("Roots() = %v", roots)
	}
}

func TestCloneIsDeep(t *testing.T) {
	g := layered()
	g.Metadata.Layout = &LayoutInfo{Engine: "layered"}
	c := g.Clone()
	c.Nodes[0].X = 42
	c.Links[0].Label = "changed"
	c.Metadata.Layout.Engine = "force"

	if g.Nodes[0].X != 0 || g.Links[0].Label != "" || g.Metadata.Layout.Engine != "layered" {
		t.Error("Clone() shares state with the original")
	}
}

func TestCountLayers(t *testing.T) {
	li := layered().CountLayers()
	if li.Counts() != [4]int{1, 2, 1, 0} {
		t.Errorf("CountLayers() = %+v", li)
	}
}

func TestHasLayers(t *testing.T) {
	g := layered()
	if !g.HasLayers() {
		t.Error("HasLayers() = false, want true")
	}
	g.Nodes[2].Layer = 0
	if g.HasLayers() {
		t.Error("HasLayers() = true with an unlayered node")
	}
	if (&Graph{}).HasLayers() {
		t.Error("HasLayers() = true for empty graph")
	}
}

func TestHasLayers_Bounded(t *testing.T) {
	g := layered()
	g.Nodes[3].Layer = 4
	if !g.HasLayers() {
		t.Error("HasLayers() = false for layer 4")
	}
	g.Nodes[3].Layer = 1 << 50
	if g.HasLayers() {
		t.Error("HasLayers() = true for a layer beyond the limit")
	}
}

func TestCheckLayers(t *testing.T) {
	tests := []struct {
		name    string
		layer   int
		wantErr bool
	}{
		{"unassigned", 0, false},
		{"tier", 4, false},
				{"negative", -1, true},
		{"beyond node count", 5, true},
		{"huge", 1 << 50, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := layered()
			g.Nodes[3].Layer = tt.layer
			err := g.CheckLayers()
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckLayers() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrLayerOutOfRange) {
				t.Errorf("CheckLayers() = %v, want ErrLayerOutOfRange", err)
			}
		})
	}

	g := &Graph{}
	for i := range 6 {
		g.Nodes = append(g.Nodes, &Node{ID: string(rune('a' + i)), Layer: i + 1})
	}
	if err := g.CheckLayers(); err != nil {
		t.Errorf("CheckLayers() on a six-level BFS graph = %v", err)
	}
}

func TestNodeSizeDefaults(t *testing.T) {
	n := &Node{}
	if w, h := n.Size(); w != DefaultNodeWidth || h != DefaultNodeHeight {
		t.Errorf("Size() = %v,%v", w, h)
	}
	n.Width, n.Height = 120, 40
	if w, h := n.Size(); w != 120 || h != 40 {
		t.Errorf("Size() = %v,%v", w, h)
	}
}
