package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/tiergraph/pkg/build"
	"github.com/matzehuels/tiergraph/pkg/cache"
	"github.com/matzehuels/tiergraph/pkg/concept"
	"github.com/matzehuels/tiergraph/pkg/errors"
	"github.com/matzehuels/tiergraph/pkg/layout/selector"
	"github.com/matzehuels/tiergraph/pkg/observability"
)

// Cache key kinds reported to the cache hooks.
const (
	kindGraph  = "graph"
	kindLayout = "layout"
	kindRender = "render"
)

// idSpace is the UUID namespace of result IDs.
var idSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/tiergraph"))

// ResultID derives the stable ID of a result from its layout cache key.
func ResultID(layoutKey string) string {
	return uuid.NewSHA1(idSpace, []byte(layoutKey)).String()
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-stage entry lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

type buildEntry struct {
	Graph  *concept.Graph `json:"graph"`
	Report *build.Report  `json:"report"`
}

type layoutEntry struct {
	Graph    *concept.Graph    `json:"graph"`
	Decision selector.Decision `json:"decision"`
}

// Execute runs the complete build → layout → render pipeline with caching.
// A build that leaves no nodes fails with an EMPTY_GRAPH error; the result
// of such a build is still available from [Runner.Build].
func (r *Runner) Execute(ctx context.Context, triples []concept.Triple, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	inputHash, err := hashTriples(triples)
	if err != nil {
		return nil, err
	}
	result := &Result{InputHash: inputHash}
	result.Stats.Triples = len(triples)

	// Stage 1: Build
	buildStart := time.Now()
	g, report, buildHit, err := r.build(ctx, inputHash, triples, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Report = report
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.Rejected = len(report.Rejected)
	result.CacheInfo.BuildHit = buildHit
	if g.IsEmpty() {
		return nil, errors.New(errors.ErrCodeEmptyGraph,
			"no concepts survived the build (%d of %d triples rejected)", len(report.Rejected), len(triples))
	}

	r.Logger.Info("built graph",
		"nodes", len(g.Nodes),
		"links", len(g.Links),
		"rejected", len(report.Rejected),
		"duration", result.Stats.BuildTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	layoutKey := r.Keyer.LayoutKey(inputHash, opts.GraphKeyOpts(), opts.LayoutKeyOpts())
	positioned, decision, layoutHit, err := r.layout(ctx, layoutKey, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.ID = positioned.Metadata.ID
	result.Graph = positioned
	result.Decision = decision
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = len(positioned.Nodes)
	result.Stats.LinkCount = len(positioned.Links)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"engine", decision.Engine,
		"reason", decision.Reason,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.render(ctx, layoutKey, positioned, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Build constructs the layered graph for triples, consulting the cache
// first. Unlike [Runner.Execute] it returns an empty graph without error.
func (r *Runner) Build(ctx context.Context, triples []concept.Triple, opts Options) (*concept.Graph, *build.Report, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForBuild(); err != nil {
		return nil, nil, err
	}
	inputHash, err := hashTriples(triples)
	if err != nil {
		return nil, nil, err
	}
	g, report, _, err := r.build(ctx, inputHash, triples, opts)
	return g, report, err
}

func (r *Runner) build(ctx context.Context, inputHash string, triples []concept.Triple, opts Options) (*concept.Graph, *build.Report, bool, error) {
	key := r.Keyer.GraphKey(inputHash, opts.GraphKeyOpts())

	if data, hit := r.get(ctx, kindGraph, key, opts.Refresh); hit {
		var entry buildEntry
		if err := json.Unmarshal(data, &entry); err == nil && entry.Graph != nil && entry.Report != nil {
			return entry.Graph, entry.Report, true, nil
		}
		// If deserialization fails, fall through to rebuild
	}

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, len(triples))
	start := time.Now()
	g, report := build.Build(triples, opts.BuildOptions())
	hooks.OnBuildComplete(ctx, observability.BuildStats{
		Triples:  len(triples),
		Nodes:    len(g.Nodes),
		Links:    len(g.Links),
		Rejected: len(report.Rejected),
	}, time.Since(start), nil)

	for _, w := range report.Warnings {
		opts.Logger.Warn(w)
	}

	r.set(ctx, kindGraph, key, buildEntry{Graph: g, Report: report}, cache.TTLGraph)
	return g, report, false, nil
}

// Layout positions a graph that was built elsewhere, for example one read
// back from JSON. The graph is keyed by its own content.
func (r *Runner) Layout(ctx context.Context, g *concept.Graph, opts Options) (*concept.Graph, selector.Decision, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, selector.Decision{}, err
	}
	if g.IsEmpty() {
		return nil, selector.Decision{}, errors.New(errors.ErrCodeEmptyGraph, "graph has no nodes")
	}
	if err := g.CheckLayers(); err != nil {
		return nil, selector.Decision{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "graph layers")
	}
	if err := g.Validate(); err != nil {
		opts.Logger.Debug("graph is not strictly layered", "err", err)
	}
	graphHash, err := cache.HashJSON(g)
	if err != nil {
		return nil, selector.Decision{}, errors.Wrap(errors.ErrCodeInternal, err, "hash graph")
	}
	key := r.Keyer.LayoutKey(graphHash, cache.GraphKeyOpts{Focus: opts.Focus}, opts.LayoutKeyOpts())
	out, d, _, err := r.layout(ctx, key, g, opts)
	return out, d, err
}

func (r *Runner) layout(ctx context.Context, key string, g *concept.Graph, opts Options) (*concept.Graph, selector.Decision, bool, error) {
	if data, hit := r.get(ctx, kindLayout, key, opts.Refresh); hit {
		var entry layoutEntry
		if err := json.Unmarshal(data, &entry); err == nil && entry.Graph != nil {
			return entry.Graph, entry.Decision, true, nil
		}
	}

	sel, err := opts.SelectorOptions()
	if err != nil {
		return nil, selector.Decision{}, false, err
	}
	opts.Logger.Debug("layout", "options", opts.describe())

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Engine, len(g.Nodes))
	start := time.Now()
	out, d, err := selector.Apply(g, sel)
	hooks.OnLayoutComplete(ctx, d.Engine, time.Since(start), err)
	if err != nil {
		return nil, selector.Decision{}, false, errors.Wrap(errors.ErrCodeInvalidEngine, err, "select engine")
	}
	if out == g {
		out = g.Clone()
	}
	out.Metadata.ID = ResultID(key)

	r.set(ctx, kindLayout, key, layoutEntry{Graph: out, Decision: d}, cache.TTLLayout)
	return out, d, false, nil
}

// Render produces every requested format for a positioned graph.
func (r *Runner) Render(ctx context.Context, g *concept.Graph, opts Options) (map[string][]byte, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if g.IsEmpty() {
		return nil, errors.New(errors.ErrCodeEmptyGraph, "graph has no nodes")
	}
	graphHash, err := cache.HashJSON(g)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash graph")
	}
	artifacts, _, err := r.render(ctx, graphHash, g, opts)
	return artifacts, err
}

func (r *Runner) render(ctx context.Context, baseKey string, g *concept.Graph, opts Options) (map[string][]byte, bool, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.RenderKey(baseKey, renderVariant(format, opts))
		if data, hit := r.get(ctx, kindRender, key, opts.Refresh); hit {
			artifacts[format] = data
			continue
		}
		allCached = false

		hooks := observability.Pipeline()
		hooks.OnRenderStart(ctx, format)
		start := time.Now()
		data, err := RenderFormat(ctx, g, format, opts)
		hooks.OnRenderComplete(ctx, format, time.Since(start), err)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		r.setRaw(ctx, kindRender, key, data, cache.TTLRender)
	}
	return artifacts, allCached, nil
}

// get reads key unless refresh is set. Backend failures are logged and
// treated as misses.
func (r *Runner) get(ctx context.Context, kind, key string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	var (
		data []byte
		hit  bool
	)
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, hit, err = r.Cache.Get(ctx, key)
		return err
	})
	if err != nil {
		r.Logger.Warn("cache read failed", "kind", kind, "err", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, kind)
	} else {
		observability.Cache().OnCacheMiss(ctx, kind)
	}
	return data, hit
}

func (r *Runner) set(ctx context.Context, kind, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		r.Logger.Warn("cache encode failed", "kind", kind, "err", err)
		return
	}
	r.setRaw(ctx, kind, key, data, ttl)
}

func (r *Runner) setRaw(ctx context.Context, kind, key string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	err := cache.RetryWithBackoff(ctx, func() error {
		return r.Cache.Set(ctx, key, data, ttl)
	})
	if err != nil {
		r.Logger.Warn("cache write failed", "kind", kind, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func hashTriples(triples []concept.Triple) (string, error) {
	if err := errors.ValidateTripleCount(len(triples)); err != nil {
		return "", err
	}
	h, err := cache.HashJSON(triples)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hash triples")
	}
	return h, nil
}
