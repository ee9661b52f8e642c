package layout

import "github.com/matzehuels/tiergraph/pkg/concept"

// Levels is the result of a breadth-first level computation. Level holds the
// zero-based level of every node; Order groups nodes by level in graph order.
type Levels struct {
	Level map[string]int
	Order [][]*concept.Node
	// Isolated is the index of the trailing level holding nodes the traversal
	// never reached, or -1 when every node was reached.
	Isolated int
}

// BFSLevels seeds level 0 with the in-degree-zero nodes (in graph order) and
// expands breadth-first along links. A node gets the level one below the node
// that first reached it. Nodes the traversal never reaches are placed
// together in one trailing level.
func BFSLevels(idx *concept.Index) Levels {
	lv := Levels{Level: make(map[string]int, len(idx.Nodes)), Isolated: -1}

	queue := make([]string, 0, len(idx.Nodes))
	for _, n := range idx.Roots() {
		lv.Level[n.ID] = 0
		queue = append(queue, n.ID)
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range idx.Outgoing[curr] {
			if _, seen := lv.Level[child]; seen {
				continue
			}
			lv.Level[child] = lv.Level[curr] + 1
			queue = append(queue, child)
		}
	}

	depth := 0
	for _, l := range lv.Level {
		depth = max(depth, l+1)
	}
	lv.Order = make([][]*concept.Node, depth)

	var isolated []*concept.Node
	for _, n := range idx.Nodes {
		l, ok := lv.Level[n.ID]
		if !ok {
			isolated = append(isolated, n)
			continue
		}
		lv.Order[l] = append(lv.Order[l], n)
	}
	if len(isolated) > 0 {
		lv.Isolated = len(lv.Order)
		for _, n := range isolated {
			lv.Level[n.ID] = lv.Isolated
		}
		lv.Order = append(lv.Order, isolated)
	}
	return lv
}
