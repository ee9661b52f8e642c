// Package pipeline runs the build → layout → render pipeline for tiergraph.
//
// The CLI and the HTTP server both go through this package so that defaults,
// validation, caching and hooks behave the same for every entry point.
//
// # Stages
//
//  1. Build: turn triples into a validated four-layer concept graph
//  2. Layout: pick an engine (or use the requested one) and position the nodes
//  3. Render: export the positioned graph as JSON, DOT, SVG, PNG or PDF
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, triples, pipeline.Options{
//	    Focus:   "Photosynthesis",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Each stage can also be run on its own with [Runner.Build],
// [Runner.Layout] and [Runner.Render].
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tiergraph/pkg/build"
	"github.com/matzehuels/tiergraph/pkg/cache"
	"github.com/matzehuels/tiergraph/pkg/concept"
	"github.com/matzehuels/tiergraph/pkg/config"
	"github.com/matzehuels/tiergraph/pkg/errors"
	"github.com/matzehuels/tiergraph/pkg/layout"
	"github.com/matzehuels/tiergraph/pkg/layout/force"
	"github.com/matzehuels/tiergraph/pkg/layout/selector"
	"github.com/matzehuels/tiergraph/pkg/layout/sugiyama"
)

// DefaultSeed is the default random seed for reproducibility.
const DefaultSeed = uint64(42)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options
	Focus    string   `json:"focus,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Domain   string   `json:"domain,omitempty"`
	Concepts []string `json:"concepts,omitempty"`
	MaxNodes int      `json:"max_nodes,omitempty"`
	MinNodes int      `json:"min_nodes,omitempty"`
	Quota    string   `json:"quota,omitempty"`

	// Layout options
	Engine   string          `json:"engine,omitempty"`
	Profile  string          `json:"profile,omitempty"`
	Width    float64         `json:"width,omitempty"`
	Height   float64         `json:"height,omitempty"`
	Seed     uint64          `json:"seed,omitempty"`
	Sugiyama config.Sugiyama `json:"sugiyama,omitzero"`
	Force    config.Force    `json:"force,omitzero"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Refresh skips cache reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Measurer layout.Measurer `json:"-"`
	Logger   *log.Logger     `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// FromConfig returns options seeded from a loaded configuration file.
// Flags and request fields are applied on top.
func FromConfig(cfg config.Config) Options {
	return Options{
		MaxNodes: cfg.Builder.MaxNodes,
		MinNodes: cfg.Builder.MinNodes,
		Quota:    cfg.Builder.Quota,
		Engine:   cfg.Selector.Engine,
		Profile:  cfg.Force.Profile,
		Width:    cfg.Canvas.Width,
		Height:   cfg.Canvas.Height,
		Seed:     cfg.Builder.Seed,
		Sugiyama: cfg.Sugiyama,
		Force:    cfg.Force,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ID identifies the result. Equal inputs and options give equal IDs.
	ID string

	// InputHash is the content hash of the triples.
	InputHash string

	// Graph is the positioned graph.
	Graph *concept.Graph

	// Report lists what the builder rejected, moved or cut.
	Report *build.Report

	// Decision records the layout engine and why it was chosen.
	Decision selector.Decision

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Triples    int
	Rejected   int
	NodeCount  int
	LinkCount  int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool
	LayoutHit bool
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid format: %q (must be one of: %s)", format, strings.Join(formatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

func formatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// ValidateAndSetDefaults checks every field and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild checks build fields and applies their defaults.
func (o *Options) ValidateForBuild() error {
	if o.MaxNodes == 0 {
		o.MaxNodes = build.MaxNodesTriples
	}
	if o.MinNodes == 0 {
		o.MinNodes = build.DefaultMinNodes
	}
	if o.MaxNodes < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "max_nodes must be positive, got %d", o.MaxNodes)
	}
	if o.MinNodes < 0 || o.MinNodes > o.MaxNodes {
		return errors.New(errors.ErrCodeInvalidInput, "min_nodes must be in [0, %d], got %d", o.MaxNodes, o.MinNodes)
	}
	if o.Quota == "" {
		o.Quota = config.QuotaDeterministic
	}
	if _, err := config.ParseQuota(o.Quota); err != nil {
		return err
	}
	if len(o.Focus) > errors.MaxLabelLength {
		return errors.New(errors.ErrCodeInvalidInput, "focus exceeds %d characters", errors.MaxLabelLength)
	}
	o.setCommonDefaults()
	return nil
}

// ValidateForLayout checks layout fields and applies their defaults.
func (o *Options) ValidateForLayout() error {
	engine, err := selector.ParseEngine(o.Engine)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidEngine, err, "engine")
	}
	o.Engine = engine
	if o.Profile == "" {
		o.Profile = o.Force.Profile
	}
	p, err := force.ParseProfile(o.Profile)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "profile")
	}
	o.Profile = string(p)
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "canvas dimensions must not be negative, got %vx%v", o.Width, o.Height)
	}
	if o.Width == 0 {
		o.Width = layout.DefaultWidth
	}
	if o.Height == 0 {
		o.Height = layout.DefaultHeight
	}
	o.setCommonDefaults()
	return nil
}

// ValidateForRender checks render fields and applies their defaults.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	o.setCommonDefaults()
	return ValidateFormats(o.Formats)
}

func (o *Options) setCommonDefaults() {
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// BuildOptions returns the builder configuration.
func (o *Options) BuildOptions() build.Options {
	quota, _ := config.ParseQuota(o.Quota)
	return build.Options{
		Focus:    o.Focus,
		Summary:  o.Summary,
		Domain:   o.Domain,
		Concepts: o.Concepts,
		MaxNodes: o.MaxNodes,
		MinNodes: o.MinNodes,
		Quota:    quota,
		Seed:     o.Seed,
		Logger:   o.Logger,
	}
}

// SelectorOptions returns the engine configuration for the layout stage.
func (o *Options) SelectorOptions() (selector.Options, error) {
	canvas := layout.Canvas{Width: o.Width, Height: o.Height}

	sc := sugiyama.DefaultConfig()
	o.Sugiyama.Apply(&sc)
	sc.Canvas = canvas
	sc.Measurer = o.Measurer
	sc.Logger = o.Logger

	fo := o.Force
	fo.Profile = o.Profile
	fc, err := fo.Engine()
	if err != nil {
		return selector.Options{}, err
	}
	fc.Canvas = canvas
	if fc.Seed == 0 {
		fc.Seed = o.Seed
	}
	fc.Measurer = o.Measurer
	if o.Sugiyama.Font != "" {
		fc.Font = o.Sugiyama.Font
	}
	fc.Logger = o.Logger

	return selector.Options{
		Focus:    o.Focus,
		Engine:   o.Engine,
		Sugiyama: sc,
		Force:    fc,
		Logger:   o.Logger,
	}, nil
}

// GraphKeyOpts returns cache key options for the build stage.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	opts := cache.GraphKeyOpts{
		Focus:    o.Focus,
		Concepts: o.Concepts,
		MaxNodes: o.MaxNodes,
		MinNodes: o.MinNodes,
		Quota:    o.Quota,
	}
	// The seed only changes a build when quotas are drawn at random.
	if o.Quota == config.QuotaRandom {
		opts.Seed = o.Seed
	}
	return opts
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Engine:  o.Engine,
		Profile: o.Profile,
		Width:   o.Width,
		Height:  o.Height,
		Seed:    o.Seed,
		Tuning:  []any{o.Sugiyama, o.Force},
	}
}

// describe is the one-line form used in log output.
func (o *Options) describe() string {
	return fmt.Sprintf("engine=%s profile=%s canvas=%vx%v", o.Engine, o.Profile, o.Width, o.Height)
}
