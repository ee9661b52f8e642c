package concept

import "slices"

// Layer bounds. Layers are 1-based; 0 means "unassigned".
const (
	MinLayer = 1
	MaxLayer = 4
)

// Default node dimensions used when neither the caller nor a text measurer
// supplies a size.
const (
	DefaultNodeWidth  = 70.0
	DefaultNodeHeight = 35.0
)

// NodeType classifies a node by its layer.
type NodeType string

const (
	NodeTypeMain   NodeType = "main"
	NodeTypeCore   NodeType = "core"
	NodeTypeDetail NodeType = "detail"
)

// TypeForLayer returns the node type a builder assigns to a layer.
func TypeForLayer(layer int) NodeType {
	switch layer {
	case 1:
		return NodeTypeMain
	case 2:
		return NodeTypeCore
	default:
		return NodeTypeDetail
	}
}

// Triple is one candidate relation between two concepts, tagged with the
// layer transition it claims ("L1-L2", "L2-L3" or "L3-L4").
type Triple struct {
	Source          string `json:"source" toml:"source"`
	Relation        string `json:"relation" toml:"relation"`
	Target          string `json:"target" toml:"target"`
	LayerTransition string `json:"layerTransition" toml:"layer"`
}

// Node is a concept placed on a layer. X and Y are filled by a layout engine.
// Width and Height are optional; zero means the renderer picks its own size.
type Node struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Layer      int      `json:"layer,omitempty"`
	Type       NodeType `json:"type,omitempty"`
	Importance float64  `json:"importance"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Width      float64  `json:"width,omitempty"`
	Height     float64  `json:"height,omitempty"`
}

// Size returns the node's dimensions, falling back to the defaults.
func (n *Node) Size() (w, h float64) {
	w, h = n.Width, n.Height
	if w <= 0 {
		w = DefaultNodeWidth
	}
	if h <= 0 {
		h = DefaultNodeHeight
	}
	return w, h
}

// Link is a directed relation between two node IDs.
type Link struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Label    string  `json:"label"`
	Strength float64 `json:"strength"`
}

// LayerInfo counts nodes per layer.
type LayerInfo struct {
	Layer1Count int `json:"layer1Count"`
	Layer2Count int `json:"layer2Count"`
	Layer3Count int `json:"layer3Count"`
	Layer4Count int `json:"layer4Count"`
}

// Counts returns the four counts as an array indexed by layer-1.
func (li LayerInfo) Counts() [4]int {
	return [4]int{li.Layer1Count, li.Layer2Count, li.Layer3Count, li.Layer4Count}
}

// ViewBox is the rectangle a renderer should show so that every node and the
// externally drawn focus element are visible.
type ViewBox struct {
	MinX   float64 `json:"minX"`
	MinY   float64 `json:"minY"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LayoutInfo describes how a graph was positioned.
type LayoutInfo struct {
	Engine          string  `json:"engine"`
	Reason          string  `json:"reason,omitempty"`
	HierarchyScore  float64 `json:"hierarchyScore"`
	View            ViewBox `json:"view"`
	CrossingsBefore int     `json:"crossingsBefore,omitempty"`
	CrossingsAfter  int     `json:"crossingsAfter,omitempty"`
	Iterations      int     `json:"iterations,omitempty"`
}

// Metadata is attached to every graph handed back to a caller.
type Metadata struct {
	ID        string      `json:"id,omitempty"`
	Summary   string      `json:"summary"`
	Domain    string      `json:"domain"`
	Keyword   string      `json:"keyword"`
	LayerInfo LayerInfo   `json:"layerInfo"`
	Layout    *LayoutInfo `json:"layout,omitempty"`
}

// Graph is a layered concept graph.
type Graph struct {
	Nodes    []*Node  `json:"nodes"`
	Links    []*Link  `json:"links"`
	Metadata Metadata `json:"metadata"`
}

// IsEmpty reports whether g is nil or has no nodes.
func (g *Graph) IsEmpty() bool { return g == nil || len(g.Nodes) == 0 }

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// NodesInLayer returns the nodes on layer in graph order.
func (g *Graph) NodesInLayer(layer int) []*Node {
	var out []*Node
	for _, n := range g.Nodes {
		if n.Layer == layer {
			out = append(out, n)
		}
	}
	return out
}

// CountLayers recomputes the per-layer counts from the nodes.
func (g *Graph) CountLayers() LayerInfo {
	var li LayerInfo
	for _, n := range g.Nodes {
		switch n.Layer {
		case 1:
			li.Layer1Count++
		case 2:
			li.Layer2Count++
		case 3:
			li.Layer3Count++
		case 4:
			li.Layer4Count++
		}
	}
	return li
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	out := &Graph{
		Nodes:    make([]*Node, len(g.Nodes)),
		Links:    make([]*Link, len(g.Links)),
		Metadata: g.Metadata,
	}
	for i, n := range g.Nodes {
		c := *n
		out.Nodes[i] = &c
	}
	for i, l := range g.Links {
		c := *l
		out.Links[i] = &c
	}
	if g.Metadata.Layout != nil {
		li := *g.Metadata.Layout
		out.Metadata.Layout = &li
	}
	return out
}

// Labels returns the node labels in graph order.
func (g *Graph) Labels() []string {
	out := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		out[i] = n.Label
	}
	return out
}

// SortedLabels returns the labels on layer sorted alphabetically.
func (g *Graph) SortedLabels(layer int) []string {
	var out []string
	for _, n := range g.NodesInLayer(layer) {
		out = append(out, n.Label)
	}
	slices.Sort(out)
	return out
}
