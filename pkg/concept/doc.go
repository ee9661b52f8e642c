// Package concept defines the data model shared by the tiergraph builder and
// layout engines.
//
// # Overview
//
// A concept graph is built from [Triple] values. Each triple names a source
// concept, a relation label, a target concept and a layer transition tag such
// as "L1-L2". The builder turns accepted triples into a [Graph] of [Node] and
// [Link] values where every concept sits on one of four fixed layers:
//
//	layer 1   the single root (focus) concept
//	layer 2   core concepts
//	layer 3   details
//	layer 4   finer details
//
// Links always connect adjacent layers, pointing from the shallower layer to
// the deeper one (target.Layer == source.Layer+1).
//
// # Transition Tags
//
// [ClassifyTransition] validates a tag and reports a [Verdict]. Only the three
// forward adjacent tags are valid; reversed, same-layer, skip-layer, missing
// and unrecognized tags each get their own verdict so callers can surface
// them separately.
//
// # Structure
//
// [Graph.Index] builds an adjacency view used by the layout engines, and
// [Graph.Validate] checks the structural invariants of a pre-built graph.
// [CountCrossings] counts edge crossings between consecutive ordered levels.
package concept
