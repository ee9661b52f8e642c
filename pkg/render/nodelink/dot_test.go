package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/tiergraph/pkg/concept"
)

func testGraph() *concept.Graph {
	return &concept.Graph{
		Nodes: []*concept.Node{
			{ID: "1", Label: "Photosynthesis", Layer: 1, Type: concept.NodeTypeMain, X: 600, Y: 200, Importance: 2},
			{ID: "3", Label: "Water", Layer: 2, Type: concept.NodeTypeCore, X: 800, Y: 320},
			{ID: "2", Label: "Light", Layer: 2, Type: concept.NodeTypeCore, X: 400, Y: 320},
		},
		Links: []*concept.Link{
			{ID: "1->2", Source: "1", Target: "2", Label: "requires", Strength: 1},
			{ID: "1->3", Source: "1", Target: "3", Label: "consumes", Strength: 3},
		},
		Metadata: concept.Metadata{Keyword: "photosynthesis"},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testGraph(), Options{})

	for _, want := range []string{
		"digraph G {",
		`{ rank=same; "1"; }`,
		`{ rank=same; "2"; "3"; }`,
		`"1" [label="Photosynthesis", fillcolor="#fde68a", penwidth=2`,
		`"1" -> "2" [label="requires"];`,
		`"1" -> "3" [label="consumes", penwidth=3.0];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "pos=") {
		t.Error("unpinned DOT contains pos attributes")
	}
}

func TestToDOT_Options(t *testing.T) {
	dot := ToDOT(testGraph(), Options{Detailed: true, Pinned: true})

	if !strings.Contains(dot, `label="Photosynthesis\nlayer: 1\nimportance: 2"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
	if !strings.Contains(dot, `pos="400.0,-320.0!"`) {
		t.Errorf("pinned position missing:\n%s", dot)
	}
}

func TestToDOT_Empty(t *testing.T) {
	dot := ToDOT(&concept.Graph{}, Options{})
	if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("ToDOT(empty) = %q", dot)
	}
	if strings.Contains(dot, "->") {
		t.Error("empty graph has edges")
	}
}

func TestLayers_UnassignedLast(t *testing.T) {
	g := &concept.Graph{Nodes: []*concept.Node{
		{ID: "a"}, {ID: "b", Layer: 2}, {ID: "c", Layer: 1},
	}}
	got := layers(g)
	if len(got) != 3 || got[0][0].ID != "c" || got[1][0].ID != "b" || got[2][0].ID != "a" {
		t.Errorf("layers() order wrong: %v", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %q, want %q", got, want)
	}
}
