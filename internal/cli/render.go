package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tiergraph/pkg/config"
	tgio "github.com/matzehuels/tiergraph/pkg/io"
	"github.com/matzehuels/tiergraph/pkg/pipeline"
	"github.com/matzehuels/tiergraph/pkg/render"
)

// renderCommand creates the render command for drawing a positioned graph.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags   pipelineFlags
		output  string
		formats string
	)

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Render a positioned graph to DOT, SVG, PNG or PDF",
		Long: `Render a positioned graph to DOT, SVG, PNG or PDF.

Node positions are pinned, so the drawing matches the layout. A graph without
layout metadata is positioned first with the configured engine. PNG and PDF
need rsvg-convert on the PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := flags.options(cmd, cfg)
			opts.Formats = parseFormats(formats)
			return c.runRender(cmd.Context(), args[0], flags, opts, cfg, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: <input> without extension)")
	cmd.Flags().StringVarP(&formats, "format", "f", pipeline.FormatSVG, "output formats: dot, svg, png, pdf, json (comma-separated)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	flags.bindRender(cmd.Flags())
	flags.bindLayout(cmd.Flags())

	return cmd
}

// runRender loads a graph, lays it out if needed and writes each format.
func (c *CLI) runRender(ctx context.Context, path string, flags pipelineFlags, opts pipeline.Options, cfg config.Config, output string) error {
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	if needsConverter(opts.Formats) && !render.Available() {
		return fmt.Errorf("png and pdf output need rsvg-convert on the PATH")
	}

	g, err := tgio.ImportGraph(path)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", path, err)
	}

	runner, err := c.newRunner(cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if g.Metadata.Layout == nil && len(g.Nodes) > 1 {
		printInfo("%s has no layout, positioning it first", path)
		laid, decision, err := runner.Layout(ctx, g, opts)
		if err != nil {
			return fmt.Errorf("compute layout: %w", err)
		}
		printDecision(decision)
		g = laid
	}

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	artifacts, err := runner.Render(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	base := output
	if base == "" {
		base = outputBase(path)
	}
	paths, err := writeArtifacts(base, opts.Formats, artifacts)
	if err != nil {
		return err
	}

	printSuccess("Rendered %d file(s)", len(paths))
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

func needsConverter(formats []string) bool {
	for _, f := range formats {
		if f == pipeline.FormatPNG || f == pipeline.FormatPDF {
			return true
		}
	}
	return false
}
