package concept

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateNodeID is reported by [Graph.Validate] when two nodes share an ID.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownEndpoint is reported by [Graph.Validate] when a link references
	// a node that is not in the graph.
	ErrUnknownEndpoint = errors.New("link references unknown node")

	// ErrNonAdjacentLayers is reported by [Graph.Validate] when a link does not
	// connect layer k to layer k+1.
	ErrNonAdjacentLayers = errors.New("link must connect adjacent layers")

	// ErrLayerOutOfRange is reported by [Graph.Validate] for layers outside 1..4.
	ErrLayerOutOfRange = errors.New("layer out of range")

	// ErrRootCount is reported by [Graph.Validate] when the graph does not have
	// exactly one layer-1 node.
	ErrRootCount = errors.New("graph must have exactly one layer-1 node")
)

// Index is an adjacency view over a graph. It is built once per layout pass
// and never outlives it. Neighbour lists keep link order.
type Index struct {
	Nodes    []*Node
	Pos      map[string]int      // node ID -> position in Nodes
	Outgoing map[string][]string // node ID -> target IDs
	Incoming map[string][]string // node ID -> source IDs
}

// Index builds the adjacency view of g. Links with unknown endpoints are
// skipped.
func (g *Graph) Index() *Index {
	idx := &Index{
		Nodes:    g.Nodes,
		Pos:      make(map[string]int, len(g.Nodes)),
		Outgoing: make(map[string][]string),
		Incoming: make(map[string][]string),
	}
	for i, n := range g.Nodes {
		if _, dup := idx.Pos[n.ID]; !dup {
			idx.Pos[n.ID] = i
		}
	}
	for _, l := range g.Links {
		_, okS := idx.Pos[l.Source]
		_, okT := idx.Pos[l.Target]
		if !okS || !okT {
			continue
		}
		idx.Outgoing[l.Source] = append(idx.Outgoing[l.Source], l.Target)
		idx.Incoming[l.Target] = append(idx.Incoming[l.Target], l.Source)
	}
	return idx
}

// InDegree returns the number of links into id.
func (idx *Index) InDegree(id string) int { return len(idx.Incoming[id]) }

// Roots returns the nodes without incoming links, in graph order.
func (idx *Index) Roots() []*Node {
	var out []*Node
	for _, n := range idx.Nodes {
		if len(idx.Incoming[n.ID]) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// LayerLimit is the deepest layer a graph can meaningfully carry: the four
// tiers, or one layer per node for graphs layered by BFS.
func (g *Graph) LayerLimit() int {
	return max(MaxLayer, len(g.Nodes))
}

// HasLayers reports whether every node carries a layer within
// MinLayer..LayerLimit.
func (g *Graph) HasLayers() bool {
	if len(g.Nodes) == 0 {
		return false
	}
	limit := g.LayerLimit()
	for _, n := range g.Nodes {
		if n.Layer < MinLayer || n.Layer > limit {
			return false
		}
	}
	return true
}

// CheckLayers rejects layers no layout can place: negative values, or values
// beyond [Graph.LayerLimit]. Zero means unassigned and is accepted.
func (g *Graph) CheckLayers() error {
	limit := g.LayerLimit()
	var errs []error
	for _, n := range g.Nodes {
		if n.Layer < 0 || n.Layer > limit {
			errs = append(errs, fmt.Errorf("%w: node %s has layer %d", ErrLayerOutOfRange, n.ID, n.Layer))
		}
	}
	return errors.Join(errs...)
}

// Validate checks the structural invariants of a layered graph: unique IDs,
// known link endpoints, layers within 1..4, adjacency of every link and a
// single layer-1 node. All violations are joined into one error.
func (g *Graph) Validate() error {
	var errs []error
	seen := make(map[string]*Node, len(g.Nodes))
	roots := 0
	for _, n := range g.Nodes {
		if _, dup := seen[n.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID))
			continue
		}
		seen[n.ID] = n
		if n.Layer < MinLayer || n.Layer > MaxLayer {
			errs = append(errs, fmt.Errorf("%w: node %s has layer %d", ErrLayerOutOfRange, n.ID, n.Layer))
		}
		if n.Layer == 1 {
			roots++
		}
	}
	if len(g.Nodes) > 0 && roots != 1 {
		errs = append(errs, fmt.Errorf("%w: found %d", ErrRootCount, roots))
	}
	for _, l := range g.Links {
		src, okS := seen[l.Source]
		dst, okT := seen[l.Target]
		if !okS || !okT {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownEndpoint, l.ID))
			continue
		}
		if dst.Layer != src.Layer+1 {
			errs = append(errs, fmt.Errorf("%w: %s (%d -> %d)", ErrNonAdjacentLayers, l.ID, src.Layer, dst.Layer))
		}
	}
	return errors.Join(errs...)
}
