// Package build turns an ordered list of concept triples into a validated,
// size-bounded, four-layer [concept.Graph].
//
// # Pipeline
//
// [Build] processes triples in encounter order:
//
//  1. Each triple is classified with [concept.ValidateTriple]; anything but a
//     forward adjacent transition is rejected and recorded.
//  2. The first accepted triple that mentions a concept fixes its layer.
//     Later triples that disagree are recorded as conflicts and never
//     overwrite the first assignment.
//  3. Standalone concepts that no triple placed default to layer 4.
//  4. The focus concept is moved to layer 1. Without a focus, the most
//     frequently mentioned concept is promoted if no layer-1 node exists.
//  5. Extra layer-1 nodes are demoted to layer 2.
//  6. When a layer exceeds six nodes or the total exceeds the maximum, the
//     quotas {4,5,6} are redistributed over layers 2-4 and each layer is cut
//     down to its quota, keeping the most important concepts.
//  7. Node IDs are assigned densely, layer ascending then importance
//     ascending, and links are admitted only between adjacent layers.
//
// Nothing in the builder fails: every anomaly is recorded in the returned
// [Report] and logged, and the best-effort graph is returned.
//
// # Randomness
//
// The default [QuotaDeterministic] policy gives the largest remaining layer
// the largest quota. [QuotaRandom] draws a uniform permutation of {4,5,6}
// from Options.Rand (or a PCG source seeded with Options.Seed), so tests can
// pin the outcome.
package build
