package concept

import "slices"

// CountCrossings returns the total number of link crossings between each pair
// of consecutive levels. Each level lists node IDs in left-to-right order.
func CountCrossings(idx *Index, levels [][]string) int {
	crossings := 0
	for i := 0; i+1 < len(levels); i++ {
		crossings += CountLayerCrossings(idx, levels[i], levels[i+1])
	}
	return crossings
}

// CountLayerCrossings counts crossings between two adjacent levels using a
// Fenwick tree. Two links (u1,v1) and (u2,v2) cross if and only if
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
//
// which is an inversion count over target positions once links are sorted by
// source position.
func CountLayerCrossings(idx *Index, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerPos := PosMap(lower)

	type edge struct{ upper, lower int }
	edges := make([]edge, 0, len(upper)*2)
	for i, id := range upper {
		for _, child := range idx.Outgoing[id] {
			if pos, ok := lowerPos[child]; ok {
				edges = append(edges, edge{i, pos})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}

	slices.SortFunc(edges, func(a, b edge) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		lessOrEqual := 0
		for q := e.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual

		total++
		for i := e.lower + 1; i < len(fenwick); i += i & (-i) {
			fenwick[i]++
		}
	}
	return crossings
}

// PosMap maps each ID to its index in order.
func PosMap(order []string) map[string]int {
	m := make(map[string]int, len(order))
	for i, id := range order {
		m[id] = i
	}
	return m
}

// LevelIDs converts levels of nodes into levels of IDs.
func LevelIDs(levels [][]*Node) [][]string {
	out := make([][]string, len(levels))
	for i, lv := range levels {
		ids := make([]string, len(lv))
		for j, n := range lv {
			ids[j] = n.ID
		}
		out[i] = ids
	}
	return out
}
