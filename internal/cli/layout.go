package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tiergraph/pkg/build"
	"github.com/matzehuels/tiergraph/pkg/concept"
	"github.com/matzehuels/tiergraph/pkg/config"
	"github.com/matzehuels/tiergraph/pkg/layout/selector"
	"github.com/matzehuels/tiergraph/pkg/pipeline"
)

// layoutCommand creates the layout command for positioning a graph.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		flags   pipelineFlags
		output  string
		formats string
	)

	cmd := &cobra.Command{
		Use:   "layout [triples|graph.json]",
		Short: "Position a concept graph",
		Long: `Position a concept graph with the layered or force-directed engine.

The input is either a triple file, which is built first, or a graph.json
produced by 'build'. With --engine auto the layered engine is used when the
focus keyword matches a concept or the graph is strongly hierarchical, and
the force-directed engine otherwise.

Results are cached; --refresh recomputes and --no-cache disables the cache.`,
		Example: `  tiergraph layout photosynthesis.json --focus photosynthesis
  tiergraph layout photo.graph.json -e force --profile precise -f json,svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := flags.options(cmd, cfg)
			opts.Formats = parseLayoutFormats(formats)
			return c.runLayout(cmd.Context(), args[0], flags, opts, cfg, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: <input> without extension)")
	cmd.Flags().StringVarP(&formats, "format", "f", pipeline.FormatJSON, "output formats: json, dot, svg, png, pdf (comma-separated)")
	flags.bindInput(cmd.Flags())
	flags.bindBuild(cmd.Flags())
	flags.bindLayout(cmd.Flags())
	flags.bindRender(cmd.Flags())

	return cmd
}

// layoutResult is what runLayout reports, for triples and graph inputs alike.
type layoutResult struct {
	graph     *concept.Graph
	report    *build.Report
	decision  selector.Decision
	artifacts map[string][]byte
	cached    bool
}

// runLayout loads the input, runs the pipeline and writes every artifact.
func (c *CLI) runLayout(ctx context.Context, path string, flags pipelineFlags, opts pipeline.Options, cfg config.Config, output string) error {
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	in, err := readInput(path, flags.format)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	var res layoutResult
	if in.Graph != nil {
		res, err = layoutGraph(ctx, runner, in.Graph, opts)
	} else {
		applyTripleSet(&opts, in.Triples)
		res, err = layoutTriples(ctx, runner, in.Triples.Triples, opts)
	}
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := output
	if base == "" {
		base = outputBase(path)
	}
	paths, err := writeArtifacts(base, opts.Formats, res.artifacts)
	if err != nil {
		return err
	}

	printSuccess("Layout complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(len(res.graph.Nodes), len(res.graph.Links), res.cached)
	printDecision(res.decision)
	printReport(res.report, false)
	if len(paths) > 0 && opts.Formats[0] == pipeline.FormatJSON {
		printNewline()
		printNextStep("Render", appName+" render "+paths[0]+" -f svg")
	}
	return nil
}

func layoutTriples(ctx context.Context, runner *pipeline.Runner, triples []concept.Triple, opts pipeline.Options) (layoutResult, error) {
	result, err := runner.Execute(ctx, triples, opts)
	if err != nil {
		return layoutResult{}, err
	}
	return layoutResult{
		graph:     result.Graph,
		report:    result.Report,
		decision:  result.Decision,
		artifacts: result.Artifacts,
		cached:    result.CacheInfo.LayoutHit,
	}, nil
}

func layoutGraph(ctx context.Context, runner *pipeline.Runner, g *concept.Graph, opts pipeline.Options) (layoutResult, error) {
	laid, decision, err := runner.Layout(ctx, g, opts)
	if err != nil {
		return layoutResult{}, err
	}
	artifacts, err := runner.Render(ctx, laid, opts)
	if err != nil {
		return layoutResult{}, err
	}
	return layoutResult{graph: laid, decision: decision, artifacts: artifacts}, nil
}

// parseLayoutFormats is parseFormats with JSON as the default.
func parseLayoutFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	return parseFormats(s)
}

// writeArtifacts writes each format to <base>.<ext> and returns the paths
// in format order. JSON goes to <base>.layout.json. A base of "-" writes
// the single requested format to stdout.
func writeArtifacts(base string, formats []string, artifacts map[string][]byte) ([]string, error) {
	if base == "-" && len(formats) > 1 {
		return nil, fmt.Errorf("stdout output takes a single format, got %d", len(formats))
	}
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base
		if base != "-" {
			path = artifactPath(base, format)
		}
		if err := writeOutput(path, data); err != nil {
			return paths, fmt.Errorf("write output %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func artifactPath(base, format string) string {
	if format == pipeline.FormatJSON {
		return base + ".layout.json"
	}
	return base + "." + format
}
