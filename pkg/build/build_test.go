package build

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/tiergraph/pkg/concept"
)

func tr(src, rel, dst, tag string) concept.Triple {
	return concept.Triple{Source: src, Relation: rel, Target: dst, LayerTransition: tag}
}

func layerOf(t *testing.T, g *concept.Graph, label string) int {
	t.Helper()
	for _, n := range g.Nodes {
		if n.Label == label {
			return n.Layer
		}
	}
	t.Fatalf("node %q not found", label)
	return 0
}

func hasLabel(g *concept.Graph, label string) bool {
	for _, n := range g.Nodes {
		if n.Label == label {
			return true
		}
	}
	return false
}

func assertAdjacent(t *testing.T, g *concept.Graph) {
	t.Helper()
	for _, l := range g.Links {
		src, ok1 := g.Node(l.Source)
		dst, ok2 := g.Node(l.Target)
		if !ok1 || !ok2 {
			t.Fatalf("link %s has unknown endpoint", l.ID)
		}
		if dst.Layer-src.Layer != 1 {
			t.Errorf("link %s connects layer %d to %d", l.ID, src.Layer, dst.Layer)
		}
	}
}

func assertSingleRoot(t *testing.T, g *concept.Graph) {
	t.Helper()
	if n := len(g.NodesInLayer(1)); n != 1 {
		t.Errorf("layer 1 has %d nodes, want 1", n)
	}
}

func TestBuild_ExampleScenario(t *testing.T) {
	triples := []concept.Triple{
		tr("X", "a", "Y", "L1-L2"),
		tr("X", "b", "Z", "L1-L2"),
		tr("X", "c", "W", "L1-L2"),
		tr("X", "d", "V", "L1-L2"),
	}
	g, rep := Build(triples, Options{Focus: "X"})

	if got := g.SortedLabels(1); !slices.Equal(got, []string{"X"}) {
		t.Errorf("layer 1 = %v, want [X]", got)
	}
	if got := g.SortedLabels(2); !slices.Equal(got, []string{"V", "W", "Y", "Z"}) {
		t.Errorf("layer 2 = %v", got)
	}
	if len(g.Links) != 4 {
		t.Errorf("links = %d, want 4", len(g.Links))
	}
	assertAdjacent(t, g)
	if rep.Accepted != 4 || len(rep.Rejected) != 0 || len(rep.Conflicts) != 0 {
		t.Errorf("report = %+v", rep)
	}
	if g.Metadata.Keyword != "X" {
		t.Errorf("keyword = %q, want X", g.Metadata.Keyword)
	}
	if g.Metadata.LayerInfo.Counts() != [4]int{1, 4, 0, 0} {
		t.Errorf("layerInfo = %+v", g.Metadata.LayerInfo)
	}
	// Five nodes is below the minimum: surfaced, not hidden.
	if len(rep.Warnings) == 0 {
		t.Error("expected a below-minimum warning")
	}
}

func TestBuild_FirstSeenLayerWins(t *testing.T) {
	triples := []concept.Triple{
		tr("A", "has", "B", "L1-L2"),
		tr("C", "has", "B", "L2-L3"), // proposes layer 3 for B
		tr("B", "has", "D", "L2-L3"),
	}
	g, rep := Build(triples, Options{})

	if got := layerOf(t, g, "B"); got != 2 {
		t.Errorf("B layer = %d, want 2", got)
	}
	if len(rep.Conflicts) != 1 {
		t.Fatalf("conflicts = %+v, want 1", rep.Conflicts)
	}
	c := rep.Conflicts[0]
	if c.Label != "B" || c.Kept != 2 || c.Proposed != 3 || c.Index != 1 {
		t.Errorf("conflict = %+v", c)
	}
	// C->B now joins two layer-2 nodes and must not become a link.
	assertAdjacent(t, g)
	if len(rep.DroppedLinks) != 1 || rep.DroppedLinks[0].Reason != ReasonNotAdjacent {
		t.Errorf("dropped = %+v", rep.DroppedLinks)
	}
}

func TestBuild_FirstSeenOrderMatters(t *testing.T) {
	a := tr("P", "r", "Q", "L1-L2")
	b := tr("Q", "r", "S", "L3-L4")

	g1, _ := Build([]concept.Triple{a, b}, Options{})
	g2, _ := Build([]concept.Triple{b, a}, Options{Focus: "P"})

	if got := layerOf(t, g1, "Q"); got != 2 {
		t.Errorf("Q layer (a first) = %d, want 2", got)
	}
	if got := layerOf(t, g2, "Q"); got != 3 {
		t.Errorf("Q layer (b first) = %d, want 3", got)
	}
}

func TestBuild_RejectsInvalidTransitions(t *testing.T) {
	triples := []concept.Triple{
		tr("A", "r", "B", "L1-L2"),
		tr("B", "r", "A", "L2-L1"),
		tr("B", "r", "C", "L2-L2"),
		tr("A", "r", "D", "L1-L3"),
		tr("A", "r", "E", ""),
		tr("A", "r", "F", "level 2"),
		tr("", "r", "G", "L1-L2"),
	}
	_, rep := Build(triples, Options{})

	want := map[string]int{
		"reverse": 1, "same-layer": 1, "skip-layer": 1,
		"missing": 1, "unrecognized": 1, "incomplete": 1,
	}
	got := rep.RejectedByVerdict()
	for k, v := range want {
		if got[k] != v {
			t.Errorf("rejected[%s] = %d, want %d", k, got[k], v)
		}
	}
	if rep.Accepted != 1 {
		t.Errorf("accepted = %d, want 1", rep.Accepted)
	}
}

func TestBuild_ReverseNeverLinked(t *testing.T) {
	base := []concept.Triple{
		tr("A", "r", "B", "L1-L2"),
		tr("B", "back", "A", "L2-L1"),
		tr("B", "r", "C", "L2-L3"),
		tr("C", "back", "B", "L3-L2"),
	}
	rng := rand.New(rand.NewPCG(7, 7))
	for i := range 20 {
		triples := slices.Clone(base)
		rng.Shuffle(len(triples), func(a, b int) { triples[a], triples[b] = triples[b], triples[a] })
		g, _ := Build(triples, Options{})
		for _, l := range g.Links {
			if l.Label == "back" {
				t.Fatalf("shuffle %d: reversed triple became link %s", i, l.ID)
			}
		}
	}
}

func TestBuild_SingleRoot(t *testing.T) {
	triples := []concept.Triple{
		tr("A", "r", "B", "L1-L2"),
		tr("C", "r", "D", "L1-L2"),
		tr("E", "r", "F", "L1-L2"),
	}
	g, rep := Build(triples, Options{})

	assertSingleRoot(t, g)
	if layerOf(t, g, "A") != 1 {
		t.Error("first root A should be kept")
	}
	if !slices.Equal(rep.Demoted, []string{"C", "E"}) {
		t.Errorf("demoted = %v, want [C E]", rep.Demoted)
	}
	assertAdjacent(t, g)
}

func TestBuild_FocusPromoted(t *testing.T) {
	triples := []concept.Triple{
		tr("A", "r", "B", "L1-L2"),
		tr("B", "r", "C", "L2-L3"),
	}
	g, rep := Build(triples, Options{Focus: "b"})

	assertSingleRoot(t, g)
	if layerOf(t, g, "B") != 1 {
		t.Error("focus B should be on layer 1")
	}
	if layerOf(t, g, "A") != 2 {
		t.Error("previous root A should be demoted to layer 2")
	}
	if rep.Promoted != "B" {
		t.Errorf("promoted = %q, want B", rep.Promoted)
	}
	if g.Metadata.Keyword != "B" {
		t.Errorf("keyword = %q, want B", g.Metadata.Keyword)
	}
	assertAdjacent(t, g)
}

func TestBuild_FocusCreatedWhenNoRoot(t *testing.T) {
	triples := []concept.Triple{tr("A", "r", "B", "L2-L3")}
	g, rep := Build(triples, Options{Focus: "Topic"})

	if layerOf(t, g, "Topic") != 1 {
		t.Error("focus should be added on layer 1")
	}
	if g.Nodes[0].Label != "Topic" || g.Nodes[0].ID != "1" {
		t.Errorf("first node = %+v, want focus with id 1", g.Nodes[0])
	}
	if len(rep.Warnings) == 0 {
		t.Error("expected a focus warning")
	}
}

func TestBuild_FocusMissingKeepsRoot(t *testing.T) {
	triples := []concept.Triple{tr("A", "r", "B", "L1-L2")}
	g, rep := Build(triples, Options{Focus: "Nope"})

	if hasLabel(g, "Nope") {
		t.Error("unmatched focus should not be fabricated when a root exists")
	}
	assertSingleRoot(t, g)
	if len(rep.Warnings) == 0 {
		t.Error("expected a focus warning")
	}
}

func TestBuild_MostFrequentPromoted(t *testing.T) {
	triples := []concept.Triple{
		tr("A", "r", "B", "L2-L3"),
		tr("C", "r", "B", "L2-L3"),
		tr("B", "r", "D", "L3-L4"),
	}
	g, rep := Build(triples, Options{})

	if rep.Promoted != "B" {
		t.Errorf("promoted = %q, want B", rep.Promoted)
	}
	assertSingleRoot(t, g)
	assertAdjacent(t, g)
}

func TestBuild_ConceptsDefaultToDeepestLayer(t *testing.T) {
	triples := []concept.Triple{tr("A", "r", "B", "L1-L2")}
	g, _ := Build(triples, Options{Concepts: []string{"lonely", "A", "  "}})

	if layerOf(t, g, "lonely") != 4 {
		t.Error("unplaced concept should default to layer 4")
	}
	if layerOf(t, g, "A") != 1 {
		t.Error("placed concept keeps its layer")
	}
}

func TestBuild_DuplicateLinksMerged(t *testing.T) {
	triples := []concept.Triple{
		tr("A", "r", "B", "L1-L2"),
		tr("A", "again", "B", "L1-L2"),
	}
	g, _ := Build(triples, Options{})

	if len(g.Links) != 1 {
		t.Fatalf("links = %d, want 1", len(g.Links))
	}
	if l := g.Links[0]; l.Strength != 2 || l.Label != "r" {
		t.Errorf("link = %+v", l)
	}
}

func TestBuild_DenseIDs(t *testing.T) {
	triples := []concept.Triple{
		tr("R", "r", "busy", "L1-L2"),
		tr("R", "r", "quiet", "L1-L2"),
		tr("busy", "r", "x", "L2-L3"),
		tr("busy", "r", "y", "L2-L3"),
	}
	g, _ := Build(triples, Options{})

	for i, n := range g.Nodes {
		if n.ID != fmt.Sprint(i+1) {
			t.Errorf("node %d id = %s", i, n.ID)
		}
		if i > 0 {
			prev := g.Nodes[i-1]
			if prev.Layer > n.Layer || (prev.Layer == n.Layer && prev.Importance > n.Importance) {
				t.Errorf("nodes out of order at %d: %+v then %+v", i, prev, n)
			}
		}
	}
	if g.Nodes[0].Label != "R" {
		t.Errorf("root should get the smallest id, got %+v", g.Nodes[0])
	}
	// quiet has fewer mentions than busy and sorts first within layer 2.
	if g.Nodes[1].Label != "quiet" || g.Nodes[2].Label != "busy" {
		t.Errorf("layer 2 order = %s, %s", g.Nodes[1].Label, g.Nodes[2].Label)
	}
	for _, n := range g.Nodes {
		if n.Type != concept.TypeForLayer(n.Layer) {
			t.Errorf("node %s type = %s", n.Label, n.Type)
		}
	}
}

// wide builds a root with eight concepts on each of layers 2-4. a7 gets an
// extra mention so it must survive trimming.
func wide() []concept.Triple {
	var out []concept.Triple
	for i := range 8 {
		out = append(out, tr("R", "has", fmt.Sprintf("a%d", i), "L1-L2"))
	}
	for i := range 8 {
		out = append(out, tr(fmt.Sprintf("a%d", i), "has", fmt.Sprintf("b%d", i), "L2-L3"))
	}
	for i := range 8 {
		out = append(out, tr(fmt.Sprintf("b%d", i), "has", fmt.Sprintf("c%d", i), "L3-L4"))
	}
	out = append(out, tr("R", "also", "a7", "L1-L2"))
	return out
}

func TestBuild_RedistributesDeterministically(t *testing.T) {
	g, rep := Build(wide(), Options{Focus: "R"})

	li := g.Metadata.LayerInfo
	if li.Counts() != [4]int{1, 6, 5, 4} {
		t.Errorf("layer counts = %v, want [1 6 5 4]", li.Counts())
	}
	if !rep.Redistributed() {
		t.Error("expected quotas in report")
	}
	if len(g.Nodes) > MaxNodesTriples {
		t.Errorf("total = %d exceeds %d", len(g.Nodes), MaxNodesTriples)
	}
	if !hasLabel(g, "a7") {
		t.Error("a7 has the most mentions and must be kept")
	}
	if hasLabel(g, "a6") {
		t.Error("a6 should be truncated")
	}
	for _, label := range rep.Truncated {
		if hasLabel(g, label) {
			t.Errorf("truncated %q still in graph", label)
		}
	}
	assertAdjacent(t, g)
	assertSingleRoot(t, g)
	for _, d := range rep.DroppedLinks {
		if d.Reason != ReasonTruncated {
			t.Errorf("unexpected drop reason %+v", d)
		}
	}
}

func TestBuild_RedistributesRandomlyWithSeed(t *testing.T) {
	opts := Options{Focus: "R", Quota: QuotaRandom, Seed: 99}
	g1, rep1 := Build(wide(), opts)
	g2, rep2 := Build(wide(), opts)

	if fmt.Sprint(rep1.Quotas) != fmt.Sprint(rep2.Quotas) {
		t.Errorf("same seed gave different quotas: %v vs %v", rep1.Quotas, rep2.Quotas)
	}
	if !slices.Equal(g1.Labels(), g2.Labels()) {
		t.Error("same seed gave different graphs")
	}
	counts := g1.Metadata.LayerInfo.Counts()
	tiers := []int{counts[1], counts[2], counts[3]}
	slices.Sort(tiers)
	if !slices.Equal(tiers, []int{4, 5, 6}) {
		t.Errorf("tier counts = %v, want a permutation of 4,5,6", counts)
	}
}

func TestBuild_KeywordVariantCeiling(t *testing.T) {
	g, _ := Build(wide(), Options{Focus: "R", MaxNodes: MaxNodesKeyword})
	if len(g.Nodes) > MaxNodesKeyword {
		t.Errorf("total = %d exceeds %d", len(g.Nodes), MaxNodesKeyword)
	}
}

func TestBuild_EqualFullTiersAreSeparated(t *testing.T) {
	var triples []concept.Triple
	for i := range 6 {
		triples = append(triples,
			tr("R", "r", fmt.Sprintf("a%d", i), "L1-L2"),
			tr(fmt.Sprintf("a%d", i), "r", fmt.Sprintf("b%d", i), "L2-L3"),
			tr(fmt.Sprintf("b%d", i), "r", fmt.Sprintf("c%d", i), "L3-L4"),
		)
	}
	g, _ := Build(triples, Options{})
	if g.Metadata.LayerInfo.Counts() != [4]int{1, 6, 5, 4} {
		t.Errorf("counts = %v", g.Metadata.LayerInfo.Counts())
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	g, rep := Build(nil, Options{Focus: "X", Summary: "s"})
	if !g.IsEmpty() || len(g.Links) != 0 {
		t.Errorf("graph = %+v, want empty", g)
	}
	if rep.Accepted != 0 || len(rep.Warnings) != 0 {
		t.Errorf("report = %+v", rep)
	}
	if g.Metadata.Summary != "s" || g.Metadata.Keyword != "X" {
		t.Errorf("metadata = %+v", g.Metadata)
	}
}

func TestBuild_InvariantsOnRandomInput(t *testing.T) {
	tags := []string{"L1-L2", "L2-L3", "L3-L4", "L2-L1", "L1-L3", "L2-L2", ""}
	for seed := range uint64(30) {
		rng := rand.New(rand.NewPCG(seed, seed))
		var triples []concept.Triple
		for range 60 {
			triples = append(triples, tr(
				fmt.Sprintf("c%d", rng.IntN(30)),
				"rel",
				fmt.Sprintf("c%d", rng.IntN(30)),
				tags[rng.IntN(len(tags))],
			))
		}
		g, _ := Build(triples, Options{Seed: seed})
		if g.IsEmpty() {
			continue
		}
		assertSingleRoot(t, g)
		assertAdjacent(t, g)
		if len(g.Nodes) > MaxNodesTriples {
			t.Errorf("seed %d: %d nodes", seed, len(g.Nodes))
		}
		for l := 2; l <= 4; l++ {
			if n := len(g.NodesInLayer(l)); n > MaxTierSize {
				t.Errorf("seed %d: layer %d has %d nodes", seed, l, n)
			}
		}
		if err := g.Validate(); err != nil {
			t.Errorf("seed %d: Validate() = %v", seed, err)
		}
	}
}
