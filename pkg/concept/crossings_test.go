package concept

import "testing"

func crossGraph() *Graph {
	return &Graph{
		Nodes: []*Node{{ID: "a"}, {ID: "b"}, {ID: "x"}, {ID: "y"}},
		Links: []*Link{
			{Source: "a", Target: "y"},
			{Source: "b", Target: "x"},
		},
	}
}

func TestCountLayerCrossings(t *testing.T) {
	idx := crossGraph().Index()

	if got := CountLayerCrossings(idx, []string{"a", "b"}, []string{"x", "y"}); got != 1 {
		t.Errorf("crossed order = %d, want 1", got)
	}
	if got := CountLayerCrossings(idx, []string{"a", "b"}, []string{"y", "x"}); got != 0 {
		t.Errorf("uncrossed order = %d, want 0", got)
	}
	if got := CountLayerCrossings(idx, nil, []string{"x"}); got != 0 {
		t.Errorf("empty upper = %d, want 0", got)
	}
}

func TestCountCrossings(t *testing.T) {
	idx := crossGraph().Index()
	levels := [][]string{{"a", "b"}, {"x", "y"}}
	if got := CountCrossings(idx, levels); got != 1 {
		t.Errorf("CountCrossings() = %d, want 1", got)
	}
}

func TestLevelIDs(t *testing.T) {
	levels := [][]*Node{{{ID: "a"}}, {{ID: "b"}, {ID: "c"}}}
	ids := LevelIDs(levels)
	if len(ids) != 2 || ids[1][1] != "c" {
		t.Errorf("LevelIDs() = %v", ids)
	}
}
