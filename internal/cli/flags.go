package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/tiergraph/pkg/config"
	"github.com/matzehuels/tiergraph/pkg/pipeline"
)

// pipelineFlags are the flags shared by build, layout and inspect. They are
// applied over the config file only when given, so an unset flag never
// hides a configured value.
type pipelineFlags struct {
	format   string
	noCache  bool
	refresh  bool
	focus    string
	domain   string
	maxNodes int
	minNodes int
	quota    string
	seed     uint64
	engine   string
	profile  string
	width    float64
	height   float64
	detailed bool
}

func (f *pipelineFlags) bindInput(fs *pflag.FlagSet) {
	fs.StringVar(&f.format, "input-format", "", "triple format: text, json, jsonl, toml (default: detect)")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fs.BoolVar(&f.refresh, "refresh", false, "recompute even if cached")
}

func (f *pipelineFlags) bindBuild(fs *pflag.FlagSet) {
	fs.StringVar(&f.focus, "focus", "", "focus keyword; the matching concept becomes the layer-1 root")
	fs.StringVar(&f.domain, "domain", "", "domain recorded in the graph metadata")
	fs.IntVar(&f.maxNodes, "max-nodes", 0, "node budget (default from config)")
	fs.IntVar(&f.minNodes, "min-nodes", 0, "minimum node count before a warning")
	fs.StringVar(&f.quota, "quota", "", "tier quota policy: deterministic, random")
	fs.Uint64Var(&f.seed, "seed", 0, "random seed for the random quota and force layout")
}

func (f *pipelineFlags) bindLayout(fs *pflag.FlagSet) {
	fs.StringVarP(&f.engine, "engine", "e", "", "layout engine: auto, layered, force")
	fs.StringVar(&f.profile, "profile", "", "force profile: default, quick, precise")
	fs.Float64Var(&f.width, "width", 0, "canvas width")
	fs.Float64Var(&f.height, "height", 0, "canvas height")
}

func (f *pipelineFlags) bindRender(fs *pflag.FlagSet) {
	fs.BoolVar(&f.detailed, "detailed", false, "show layer and importance in node labels")
}

// options builds pipeline options from cfg with the given flags applied.
func (f *pipelineFlags) options(cmd *cobra.Command, cfg config.Config) pipeline.Options {
	opts := pipeline.FromConfig(cfg)
	changed := cmd.Flags().Changed

	opts.Refresh = f.refresh
	if changed("focus") {
		opts.Focus = f.focus
	}
	if changed("domain") {
		opts.Domain = f.domain
	}
	if changed("max-nodes") {
		opts.MaxNodes = f.maxNodes
	}
	if changed("min-nodes") {
		opts.MinNodes = f.minNodes
	}
	if changed("quota") {
		opts.Quota = f.quota
	}
	if changed("seed") {
		opts.Seed = f.seed
	}
	if changed("engine") {
		opts.Engine = f.engine
	}
	if changed("profile") {
		opts.Profile = f.profile
	}
	if changed("width") {
		opts.Width = f.width
	}
	if changed("height") {
		opts.Height = f.height
	}
	if changed("detailed") {
		opts.Detailed = f.detailed
	}
	return opts
}
