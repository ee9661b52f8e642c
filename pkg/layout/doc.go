// Package layout holds the primitives shared by the tiergraph layout engines.
//
// The engines themselves live in sub-packages:
//
//   - [github.com/matzehuels/tiergraph/pkg/layout/sugiyama] positions a graph
//     level by level (layer assignment, barycenter ordering, coordinates).
//   - [github.com/matzehuels/tiergraph/pkg/layout/force] runs a cooled
//     force-directed simulation.
//   - [github.com/matzehuels/tiergraph/pkg/layout/selector] inspects a graph
//     and dispatches to one of the two.
//
// This package provides the [Canvas] both engines draw into, the injected
// [Measurer] text-metrics capability, and [BFSLevels], the root-finding
// breadth-first level computation shared by the Sugiyama layer assigner and
// the selector's hierarchy score.
package layout
