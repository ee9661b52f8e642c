// Package force positions a concept graph with an iterative physics
// simulation.
//
// Every iteration applies inverse-square repulsion between node pairs,
// Hookean attraction along links and boundary forces near the canvas edge.
// A geometric cooling schedule scales the forces and stops the loop once the
// temperature drops below [Config.MinTemperature]. The focus node, when one
// matches [Config.Focus], is anchored near the top of the canvas, and targets
// of aggregated edge groups (links sharing a source and a non-default label)
// are pulled toward their common centroid.
//
// Simulation state lives in a per-pass arena and never touches the
// [concept.Node] records except for the final X and Y.
package force
