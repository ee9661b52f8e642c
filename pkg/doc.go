// Package pkg provides the core libraries for tiergraph concept graphs.
//
// # Overview
//
// Tiergraph turns (source, relation, target, layer transition) triples, as
// produced by a language model asked to explain a topic, into a concept
// graph with four tiers: one main concept, its core components, details and
// fine details. It then positions the graph for drawing. The pkg directory
// is organized into these areas:
//
//  1. [concept] - Data model (triples, nodes, links, graphs, transitions)
//  2. [parse] and [io] - Reading triples from text and files
//  3. [build] - Triple validation and four-tier graph construction
//  4. [layout] - Layered and force-directed engines and the selector
//  5. [render] - DOT, SVG, PNG and PDF output
//  6. [pipeline] - Orchestration (build → layout → render) with caching
//
// # Architecture
//
// The typical data flow:
//
//	Free text / triple file
//	         ↓
//	    [parse], [io] (extract triples)
//	         ↓
//	    [build] (validate, layer, cap, redistribute)
//	         ↓
//	    [layout/selector] (layered or force-directed)
//	         ↓
//	    [render/nodelink] (DOT, SVG; PNG and PDF via rsvg-convert)
//
// # Quick Start
//
//	triples, _ := parse.ParseText(answer)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(ctx, triples, pipeline.Options{
//	    Focus:   "photosynthesis",
//	    Formats: []string{pipeline.FormatJSON, pipeline.FormatSVG},
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Decision.Engine, len(result.Graph.Nodes))
//
// # Main Packages
//
// ## Domain
//
// [concept] - Triples, nodes, links and graphs, layer-transition
// classification and crossing counts. Graph JSON uses the field names
// front ends already consume.
//
// [build] - Validates each triple's layer transition, fixes every concept
// on its first-seen layer, enforces the single layer-1 root, caps the node
// count and redistributes tiers. Everything skipped or moved is listed in a
// [build.Report].
//
// [layout/sugiyama] - Layered layout: BFS levels for graphs without tiers,
// barycentric crossing reduction and proportional spacing around the focus.
//
// [layout/force] - Force-directed layout with seeded initial positions,
// cooling and canvas clamping. Profiles trade speed for quality.
//
// [layout/selector] - Chooses the engine from the focus match and the
// hierarchy score, and records the decision in the graph metadata.
//
// ## Infrastructure
//
// [pipeline] - Runner shared by the CLI and the HTTP API. Every stage is
// cached by content hash; equal inputs give equal result IDs.
//
// [cache] - File, Redis and null caches with a keyer and retry helpers.
//
// [config] - tiergraph.toml loading with defaults and validation.
//
// [errors] - Coded errors that map onto HTTP statuses.
//
// [observability] - Hook registry for pipeline and server events.
//
// # Testing
//
//	go test ./pkg/...            # All library tests
//	go test ./pkg/layout/...     # Layout engines
//	go test -run Example ./...   # Examples only
//
// [concept]: https://pkg.go.dev/github.com/matzehuels/tiergraph/pkg/concept
// [parse]: https://pkg.go.dev/github.com/matzehuels/tiergraph/pkg/parse
// [io]: https://pkg.go.dev/github.com/matzehuels/tiergraph/pkg/io
// [build]: https://pkg.go.dev/github.com/matzehuels/tiergraph/pkg/build
// [build.Report]: https://pkg.go.dev/github.com/matzehuels/tiergraph/pkg/build#Report
// [layout]: https://pkg.go.dev/github.com/matzehuels/tiergraph/pkg/layout
// [layout/sugiyama]: https://pkg.go.dev/github.com/matzehuels/tiergraph/pkg/layout/sugiyama
// [layout/force]: https://pkg.go.dev/github.com/matzehuels/tiergraph/pkg/layout/force
// [layout/selector]: https://pkg.go.dev/github.com/matzehuels/tiergraph/pkg/layout/selector
// [render]: https://pkg.go.dev/github.com/matzehuels/tiergraph/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/tiergraph/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/tiergraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/tiergraph/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/tiergraph/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/tiergraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/tiergraph/pkg/observability
package pkg
