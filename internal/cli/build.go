package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tiergraph/pkg/config"
	"github.com/matzehuels/tiergraph/pkg/errors"
	tgio "github.com/matzehuels/tiergraph/pkg/io"
	"github.com/matzehuels/tiergraph/pkg/pipeline"
)

// buildCommand creates the build command for turning triples into a graph.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		flags   pipelineFlags
		output  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "build [triples]",
		Short: "Build the four-tier concept graph from triples",
		Long: `Build the four-tier concept graph from a triple file.

Triples whose layer tag is not an adjacent step (L1-L2, L2-L3, L3-L4) are
rejected and listed in the build report. The result is an unpositioned
graph.json that 'layout' can position.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.runBuild(cmd.Context(), args[0], flags, flags.options(cmd, cfg), cfg, output, verbose)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.graph.json)")
	cmd.Flags().BoolVar(&verbose, "report", false, "list every rejected triple")
	flags.bindInput(cmd.Flags())
	flags.bindBuild(cmd.Flags())

	return cmd
}

// runBuild loads triples, builds the graph and writes it.
func (c *CLI) runBuild(ctx context.Context, path string, flags pipelineFlags, opts pipeline.Options, cfg config.Config, output string, verbose bool) error {
	in, err := readInput(path, flags.format)
	if err != nil {
		return err
	}
	if in.Graph != nil {
		return errors.New(errors.ErrCodeInvalidInput, "%s is already a graph; use 'layout' to position it", path)
	}
	applyTripleSet(&opts, in.Triples)

	runner, err := c.newRunner(cfg, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	g, report, err := runner.Build(ctx, in.Triples.Triples, opts)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}
	prog.done(fmt.Sprintf("Built %d nodes", len(g.Nodes)))

	if len(g.Nodes) == 0 {
		printWarning("No valid triples in %s", path)
		printReport(report, verbose)
		return errors.New(errors.ErrCodeEmptyGraph, "no nodes could be built from %s", path)
	}

	if output == "" {
		output = outputBase(path) + ".graph.json"
	}
	if err := tgio.ExportGraph(g, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Graph built")
	printFile(output)
	printKeyValue("Graph", fmt.Sprintf("%d nodes, %d links", len(g.Nodes), len(g.Links)))
	printLayers(g.Metadata.LayerInfo)
	printReport(report, verbose)
	if output != "-" {
		printNewline()
		printNextStep("Layout", appName+" layout "+output)
	}
	return nil
}
