package build

import (
	"cmp"
	"io"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tiergraph/pkg/concept"
)

// Node count bounds.
const (
	// MaxNodesTriples is the node ceiling for graphs built from triples.
	MaxNodesTriples = 19
	// MaxNodesKeyword is the node ceiling for the keyword-driven variant.
	MaxNodesKeyword = 17
	// DefaultMinNodes is the node floor below which a warning is recorded.
	DefaultMinNodes = 13
	// MaxTierSize is the largest allowed count for layers 2-4.
	MaxTierSize = 6
)

// TierSizes are the allowed node counts for layers 2-4.
var TierSizes = [3]int{4, 5, 6}

// QuotaPolicy selects how the tier sizes are matched to layers 2-4 when the
// graph must be trimmed.
type QuotaPolicy int

const (
	// QuotaDeterministic gives the largest layer the largest quota.
	// Ties go to the shallower layer.
	QuotaDeterministic QuotaPolicy = iota
	// QuotaRandom draws a uniform permutation of the tier sizes.
	QuotaRandom
)

// Options configures [Build]. The zero value builds a triple-driven graph
// with deterministic quotas.
type Options struct {
	// Focus is the concept that should occupy the single layer-1 slot.
	// When empty, the most frequently mentioned concept is used if needed.
	Focus string

	// Summary and Domain are copied into the graph metadata.
	Summary string
	Domain  string

	// Concepts are standalone labels delivered alongside the triples.
	// Labels no triple places land on layer 4.
	Concepts []string

	// MaxNodes defaults to MaxNodesTriples; MinNodes to DefaultMinNodes.
	MaxNodes int
	MinNodes int

	Quota QuotaPolicy
	// Rand drives QuotaRandom. When nil a PCG source seeded with Seed is used.
	Rand *rand.Rand
	Seed uint64

	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.MaxNodes <= 0 {
		o.MaxNodes = MaxNodesTriples
	}
	if o.MinNodes <= 0 {
		o.MinNodes = DefaultMinNodes
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.Quota == QuotaRandom && o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(o.Seed, o.Seed^0xdeadbeef))
	}
}

// entry is a concept under construction. order is its first-seen position.
type entry struct {
	label     string
	layer     int
	mentions  int
	order     int
	truncated bool
}

// edge is an accepted relation between two labels.
type edge struct {
	src, dst string
	relation string
	strength float64
}

type builder struct {
	opts    Options
	log     *log.Logger
	report  *Report
	entries map[string]*entry
	order   []*entry
	edges   []*edge
	edgeIdx map[[2]string]*edge
	focus   *entry
}

// Build constructs a four-tier concept graph from triples processed in
// order. It never fails: everything it skips or changes is recorded in the
// returned [Report], and soft warnings are logged through opts.Logger.
//
// Construction proceeds in these steps:
//
//  1. Each triple's layer transition is classified with
//     [concept.ValidateTriple]; anything but L1-L2, L2-L3 or L3-L4 is
//     rejected with its verdict.
//  2. Every concept keeps the layer of its first valid mention. Later
//     triples that imply another layer are listed as conflicts.
//  3. Standalone concepts never placed by a triple land on layer 4.
//  4. The focus (or, without one, the most mentioned concept) is promoted
//     to layer 1, and any other layer-1 concepts are demoted to layer 2.
//  5. If a tier overruns six concepts or the total exceeds opts.MaxNodes,
//     layers 2-4 are trimmed to distinct quotas from {4, 5, 6}, keeping
//     the most mentioned concepts.
//  6. Nodes receive dense IDs (layer ascending, then importance
//     ascending), and only links between adjacent layers are admitted.
//
// Example:
//
//	g, report := build.Build([]concept.Triple{
//	    {Source: "X", Relation: "a", Target: "Y", LayerTransition: "L1-L2"},
//	    {Source: "Y", Relation: "b", Target: "X", LayerTransition: "L2-L1"},
//	}, build.Options{Focus: "X"})
//	// g has nodes X (layer 1) and Y (layer 2) and one link X -> Y;
//	// report.Rejected holds the reverse triple.
//
// Build runs in O(T + N log N) time for T triples and N concepts. Empty
// input yields an empty graph and an empty report.
func Build(triples []concept.Triple, opts Options) (*concept.Graph, *Report) {
	opts.setDefaults()
	b := &builder{
		opts:    opts,
		log:     opts.Logger,
		report:  &Report{},
		entries: make(map[string]*entry),
		edgeIdx: make(map[[2]string]*edge),
	}

	if len(triples) == 0 && len(opts.Concepts) == 0 {
		return b.emptyGraph(), b.report
	}

	b.ingest(triples)
	b.addConcepts()
	b.defaultLayers()
	b.resolveFocus()
	b.enforceSingleRoot()
	b.enforceBounds()
	b.checkCardinality()

	g := b.assemble()
	b.log.Debug("built concept graph",
		"nodes", len(g.Nodes), "links", len(g.Links),
		"rejected", len(b.report.Rejected), "conflicts", len(b.report.Conflicts))
	return g, b.report
}

func (b *builder) emptyGraph() *concept.Graph {
	return &concept.Graph{
		Metadata: concept.Metadata{
			Summary: b.opts.Summary,
			Domain:  b.opts.Domain,
			Keyword: concept.NormalizeLabel(b.opts.Focus),
		},
	}
}

// ingest classifies each triple, fixes first-seen layers and records
// candidate links.
func (b *builder) ingest(triples []concept.Triple) {
	for i, t := range triples {
		tr := concept.ValidateTriple(t)
		if !tr.Valid() {
			b.report.Rejected = append(b.report.Rejected, Rejection{
				Index: i, Triple: t, Verdict: tr.Verdict, Reason: tr.Verdict.String(),
			})
			b.log.Debug("rejected triple", "index", i, "category", tr.Verdict,
				"source", t.Source, "target", t.Target, "transition", t.LayerTransition)
			continue
		}
		b.report.Accepted++

		src := b.place(concept.NormalizeLabel(t.Source), tr.From, i)
		dst := b.place(concept.NormalizeLabel(t.Target), tr.To, i)

		key := [2]string{src.label, dst.label}
		if e, ok := b.edgeIdx[key]; ok {
			e.strength++
			continue
		}
		e := &edge{src: src.label, dst: dst.label, relation: strings.TrimSpace(t.Relation), strength: 1}
		b.edgeIdx[key] = e
		b.edges = append(b.edges, e)
	}
}

// place records a mention of label at layer. The first placement wins.
func (b *builder) place(label string, layer, index int) *entry {
	e, ok := b.entries[label]
	if !ok {
		e = b.add(label, layer)
	} else if e.layer == 0 {
		e.layer = layer
	} else if e.layer != layer {
		b.report.Conflicts = append(b.report.Conflicts, Conflict{
			Index: index, Label: label, Kept: e.layer, Proposed: layer,
		})
		b.log.Debug("layer conflict", "index", index, "label", label, "kept", e.layer, "proposed", layer)
	}
	e.mentions++
	return e
}

func (b *builder) add(label string, layer int) *entry {
	e := &entry{label: label, layer: layer, order: len(b.order)}
	b.entries[label] = e
	b.order = append(b.order, e)
	return e
}

func (b *builder) addConcepts() {
	for _, c := range b.opts.Concepts {
		label := concept.NormalizeLabel(c)
		if label == "" {
			continue
		}
		if _, ok := b.entries[label]; !ok {
			b.add(label, 0)
		}
	}
}

func (b *builder) defaultLayers() {
	for _, e := range b.order {
		if e.layer == 0 {
			e.layer = concept.MaxLayer
			b.log.Debug("defaulted concept to deepest layer", "label", e.label)
		}
	}
}

// lookup finds a concept by exact label, then case-insensitively.
func (b *builder) lookup(label string) *entry {
	if e, ok := b.entries[label]; ok {
		return e
	}
	for _, e := range b.order {
		if strings.EqualFold(e.label, label) {
			return e
		}
	}
	return nil
}

func (b *builder) layer(n int) []*entry {
	var out []*entry
	for _, e := range b.order {
		if e.layer == n && !e.truncated {
			out = append(out, e)
		}
	}
	return out
}

// resolveFocus moves the focus concept to layer 1, or promotes the most
// mentioned concept when no focus is given and the graph has no root.
func (b *builder) resolveFocus() {
	focus := concept.NormalizeLabel(b.opts.Focus)
	roots := b.layer(1)

	if focus == "" {
		if len(roots) > 0 || len(b.order) == 0 {
			return
		}
		best := b.order[0]
		for _, e := range b.order[1:] {
			if e.mentions > best.mentions {
				best = e
			}
		}
		b.promote(best)
		return
	}

	e := b.lookup(focus)
	if e == nil {
		if len(roots) > 0 {
			b.log.Warn(b.report.warnf("focus %q matches no concept; keeping existing root", focus))
			return
		}
		e = b.add(focus, 1)
		b.focus = e
		b.report.Promoted = e.label
		b.log.Warn(b.report.warnf("focus %q matches no concept; added it as root", focus))
		return
	}
	b.promote(e)
}

func (b *builder) promote(e *entry) {
	b.focus = e
	if e.layer == 1 {
		return
	}
	b.log.Debug("promoted concept to root", "label", e.label, "from", e.layer)
	e.layer = 1
	b.report.Promoted = e.label
}

// enforceSingleRoot keeps the focus (or the first-seen root) on layer 1 and
// demotes every other layer-1 concept to layer 2.
func (b *builder) enforceSingleRoot() {
	roots := b.layer(1)
	if len(roots) <= 1 {
		return
	}
	keep := roots[0]
	if b.focus != nil && b.focus.layer == 1 {
		keep = b.focus
	}
	for _, e := range roots {
		if e == keep {
			continue
		}
		e.layer = 2
		b.report.Demoted = append(b.report.Demoted, e.label)
		b.log.Debug("demoted extra root", "label", e.label, "kept", keep.label)
	}
}

func (b *builder) total() int {
	n := 0
	for _, e := range b.order {
		if !e.truncated {
			n++
		}
	}
	return n
}

// needsQuotas reports whether layers 2-4 must be trimmed: a layer overruns
// MaxTierSize, the total overruns MaxNodes, or the deterministic policy can
// turn duplicated counts into a distinct {4,5,6} assignment.
func (b *builder) needsQuotas() bool {
	counts := b.tierCounts()
	total := b.total()
	for _, c := range counts {
		if c > MaxTierSize {
			return true
		}
	}
	if total > b.opts.MaxNodes {
		return true
	}
	if b.opts.Quota != QuotaDeterministic || tiersOK(counts) {
		return false
	}
	sorted := slices.Clone(counts[:])
	slices.SortFunc(sorted, func(a, b int) int { return cmp.Compare(b, a) })
	return sorted[0] >= TierSizes[2] && sorted[1] >= TierSizes[1] && sorted[2] >= TierSizes[0]
}

func (b *builder) tierCounts() [3]int {
	var c [3]int
	for _, e := range b.order {
		if !e.truncated && e.layer >= 2 && e.layer <= 4 {
			c[e.layer-2]++
		}
	}
	return c
}

func tiersOK(counts [3]int) bool {
	seen := map[int]bool{}
	for _, c := range counts {
		if !slices.Contains(TierSizes[:], c) || seen[c] {
			return false
		}
		seen[c] = true
	}
	return true
}

// quotas matches the tier sizes to layers 2-4.
func (b *builder) quotas() map[int]int {
	out := make(map[int]int, 3)
	if b.opts.Quota == QuotaRandom {
		perm := b.opts.Rand.Perm(len(TierSizes))
		for i, p := range perm {
			out[i+2] = TierSizes[p]
		}
		return out
	}
	counts := b.tierCounts()
	layers := []int{2, 3, 4}
	slices.SortStableFunc(layers, func(x, y int) int {
		return cmp.Compare(counts[y-2], counts[x-2])
	})
	for i, l := range layers {
		out[l] = TierSizes[len(TierSizes)-1-i]
	}
	return out
}

// enforceBounds trims layers 2-4 to their quotas, keeping the concepts with
// the most mentions (first-seen breaks ties).
func (b *builder) enforceBounds() {
	if !b.needsQuotas() {
		return
	}
	q := b.quotas()
	b.report.Quotas = q
	b.log.Debug("redistributing tier sizes", "layer2", q[2], "layer3", q[3], "layer4", q[4])

	for layer := 2; layer <= 4; layer++ {
		members := b.layer(layer)
		if len(members) <= q[layer] {
			continue
		}
		ranked := slices.Clone(members)
		slices.SortStableFunc(ranked, func(x, y *entry) int {
			return cmp.Compare(y.mentions, x.mentions)
		})
		for _, e := range ranked[q[layer]:] {
			e.truncated = true
			b.report.Truncated = append(b.report.Truncated, e.label)
			b.log.Debug("truncated concept", "label", e.label, "layer", layer, "mentions", e.mentions)
		}
	}
}

// checkCardinality records soft warnings for bounds the input could not meet.
func (b *builder) checkCardinality() {
	total := b.total()
	if total < b.opts.MinNodes {
		b.log.Warn(b.report.warnf("graph has %d nodes, below the minimum of %d", total, b.opts.MinNodes))
	}
	counts := b.tierCounts()
	if !tiersOK(counts) {
		b.log.Warn(b.report.warnf("layers 2-4 have %d/%d/%d nodes; want distinct sizes from {4,5,6}",
			counts[0], counts[1], counts[2]))
	}
}

// assemble assigns dense IDs and admits links between adjacent layers.
func (b *builder) assemble() *concept.Graph {
	kept := make([]*entry, 0, len(b.order))
	for _, e := range b.order {
		if !e.truncated {
			kept = append(kept, e)
		}
	}
	slices.SortStableFunc(kept, func(x, y *entry) int {
		if c := cmp.Compare(x.layer, y.layer); c != 0 {
			return c
		}
		if c := cmp.Compare(x.mentions, y.mentions); c != 0 {
			return c
		}
		return cmp.Compare(x.order, y.order)
	})

	g := b.emptyGraph()
	ids := make(map[string]string, len(kept))
	for i, e := range kept {
		id := strconv.Itoa(i + 1)
		ids[e.label] = id
		g.Nodes = append(g.Nodes, &concept.Node{
			ID:         id,
			Label:      e.label,
			Layer:      e.layer,
			Type:       concept.TypeForLayer(e.layer),
			Importance: float64(e.mentions),
		})
	}
	if b.focus != nil && !b.focus.truncated {
		g.Metadata.Keyword = b.focus.label
	}

	for _, e := range b.edges {
		src, dst := b.entries[e.src], b.entries[e.dst]
		switch {
		case src.truncated || dst.truncated:
			b.drop(e, ReasonTruncated)
		case dst.layer != src.layer+1:
			b.drop(e, ReasonNotAdjacent)
		default:
			s, t := ids[e.src], ids[e.dst]
			g.Links = append(g.Links, &concept.Link{
				ID:       s + "->" + t,
				Source:   s,
				Target:   t,
				Label:    e.relation,
				Strength: e.strength,
			})
		}
	}

	g.Metadata.LayerInfo = g.CountLayers()
	return g
}

func (b *builder) drop(e *edge, reason string) {
	b.report.DroppedLinks = append(b.report.DroppedLinks, DroppedLink{
		Source: e.src, Target: e.dst, Relation: e.relation, Reason: reason,
	})
	b.log.Debug("dropped link", "source", e.src, "target", e.dst, "reason", reason)
}
