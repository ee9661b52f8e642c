// Package selector chooses between the layered and force-directed engines.
package selector

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tiergraph/pkg/concept"
	"github.com/matzehuels/tiergraph/pkg/layout"
	"github.com/matzehuels/tiergraph/pkg/layout/force"
	"github.com/matzehuels/tiergraph/pkg/layout/sugiyama"
)

// Threshold is the hierarchy score above which the layered engine is used.
const Threshold = 0.6

// EngineAuto lets [Choose] decide.
const EngineAuto = "auto"

// Decision reasons.
const (
	ReasonFocus     = "focus matches a node"
	ReasonHierarchy = "hierarchy score above threshold"
	ReasonFlat      = "hierarchy score below threshold"
	ReasonTrivial   = "graph has at most one node"
	ReasonRequested = "engine requested"
)

// Decision records which engine runs and why.
type Decision struct {
	Engine         string
	Reason         string
	HierarchyScore float64
	// Focus is the ID of the node matching the focus keyword, if any.
	Focus string
}

// ParseEngine validates an engine name. The empty string means auto.
func ParseEngine(s string) (string, error) {
	switch e := strings.ToLower(strings.TrimSpace(s)); e {
	case "", EngineAuto:
		return EngineAuto, nil
	case layout.EngineLayered, layout.EngineForce:
		return e, nil
	default:
		return "", fmt.Errorf("unknown layout engine %q", s)
	}
}

// HierarchyScore is the fraction of links that point from a shallower to a
// deeper breadth-first level, in [0, 1]. Levels come from
// [layout.BFSLevels], the same traversal the layered engine uses when a
// graph carries no layers: roots (in-degree zero) are level 0 and nodes
// unreachable from any root share one trailing level.
//
// A tree or a layered DAG scores 1. Links that close cycles or join nodes on
// the same level lower the score:
//
//	A -> B, B -> C, C -> B   // C -> B points upward: score 2/3
//	A -> B, A -> C, B -> D   // all downward:        score 1
//
// Links with unknown endpoints are ignored; a graph without links scores 0.
// The score costs one BFS, O(V + E).
func HierarchyScore(g *concept.Graph) float64 {
	if g.IsEmpty() {
		return 0
	}
	idx := g.Index()
	lv := layout.BFSLevels(idx)

	total, down := 0, 0
	for _, l := range g.Links {
		ls, okS := lv.Level[l.Source]
		lt, okT := lv.Level[l.Target]
		if !okS || !okT {
			continue
		}
		total++
		if ls < lt {
			down++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(down) / float64(total)
}

// Choose picks an engine for g. A focus keyword that matches a node label, or
// a hierarchy score above [Threshold], selects the layered engine; anything
// else, including graphs with at most one node, goes to the force engine.
func Choose(g *concept.Graph, focus string) Decision {
	if g == nil || len(g.Nodes) <= 1 {
		return Decision{Engine: layout.EngineForce, Reason: ReasonTrivial}
	}
	d := Decision{HierarchyScore: HierarchyScore(g)}
	if n, ok := layout.MatchFocus(g.Nodes, focus); ok {
		d.Focus = n.ID
		d.Engine, d.Reason = layout.EngineLayered, ReasonFocus
		return d
	}
	if d.HierarchyScore > Threshold {
		d.Engine, d.Reason = layout.EngineLayered, ReasonHierarchy
		return d
	}
	d.Engine, d.Reason = layout.EngineForce, ReasonFlat
	return d
}

// Options configures [Apply].
type Options struct {
	Focus string
	// Engine is auto, layered or force.
	Engine   string
	Sugiyama sugiyama.Config
	Force    force.Config
	Logger   *log.Logger
}

// Apply chooses an engine (unless one is requested), runs it on a copy of g
// and records the decision in the result's layout metadata. A graph with at
// most one node is returned unchanged when the choice is automatic.
func Apply(g *concept.Graph, opts Options) (*concept.Graph, Decision, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	engine, err := ParseEngine(opts.Engine)
	if err != nil {
		return nil, Decision{}, err
	}

	var d Decision
	if engine == EngineAuto {
		d = Choose(g, opts.Focus)
		if d.Reason == ReasonTrivial {
			opts.Logger.Debug("layout skipped", "reason", d.Reason)
			return g, d, nil
		}
	} else {
		d = Decision{Engine: engine, Reason: ReasonRequested, HierarchyScore: HierarchyScore(g)}
		if n, ok := layout.MatchFocus(nodesOf(g), opts.Focus); ok {
			d.Focus = n.ID
		}
	}

	var out *concept.Graph
	switch d.Engine {
	case layout.EngineLayered:
		cfg := opts.Sugiyama
		if cfg.Logger == nil {
			cfg.Logger = opts.Logger
		}
		out, _ = sugiyama.Layout(g, cfg)
	default:
		cfg := opts.Force
		if cfg.Focus == "" {
			cfg.Focus = opts.Focus
		}
		if cfg.Logger == nil {
			cfg.Logger = opts.Logger
		}
		out, _ = force.Layout(g, cfg)
	}

	if out != nil && out.Metadata.Layout != nil {
		out.Metadata.Layout.Reason = d.Reason
		out.Metadata.Layout.HierarchyScore = d.HierarchyScore
	}
	opts.Logger.Info("layout", "engine", d.Engine, "reason", d.Reason, "score", d.HierarchyScore)
	return out, d, nil
}

func nodesOf(g *concept.Graph) []*concept.Node {
	if g == nil {
		return nil
	}
	return g.Nodes
}
