// Package sugiyama positions a concept graph level by level.
//
// The engine runs three phases:
//
//  1. [AssignLevels] trusts the layer already carried by every node
//     (level = layer-1) or, when any node lacks one, derives levels with
//     [layout.BFSLevels].
//  2. [OrderLevels] makes a single top-down barycenter pass: each node is
//     ranked by the mean position of its parents in the level above, or of
//     its children in the level below when it has no parents.
//  3. [AssignCoordinates] spaces levels uniformly below the externally drawn
//     focus element and spreads each level evenly across the canvas width.
//
// [Layout] runs all three on a copy of the graph and records the view box
// that keeps every node and the focus element visible.
package sugiyama
