// Package io reads triple sets and writes concept graphs.
//
// # Triple files
//
// [ImportTriples] picks a decoder from the file extension:
//
//   - .json: either a bare array of triples or an object with "triples"
//     plus optional "focus", "summary", "domain" and "concepts"
//   - .jsonl / .ndjson: one triple object per line
//   - .toml: top-level focus/summary/domain/concepts and [[triples]] tables
//   - .txt / .md / anything else: free text handed to [parse.ParseText]
//
// A triple object looks like:
//
//	{"source": "Photosynthesis", "relation": "requires", "target": "Light", "layerTransition": "L1-L2"}
//
// In TOML the tag key is "layer":
//
//	focus = "Photosynthesis"
//
//	[[triples]]
//	source = "Photosynthesis"
//	relation = "requires"
//	target = "Light"
//	layer = "L1-L2"
//
// # Graphs
//
// [WriteGraph] and [ReadGraph] use the JSON form of [concept.Graph]:
// "nodes", "links" and "metadata". Reading does not validate layering;
// call [concept.Graph.Validate] when the source is untrusted.
//
// [parse.ParseText]: github.com/matzehuels/tiergraph/pkg/parse.ParseText
package io
