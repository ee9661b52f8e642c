package cli

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tiergraph/pkg/concept"
	tgio "github.com/matzehuels/tiergraph/pkg/io"
	"github.com/matzehuels/tiergraph/pkg/parse"
)

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	format string // input format; empty detects from the extension
	output string // output file path ("-" for stdout)
}

// parseCommand creates the parse command for extracting triples.
func (c *CLI) parseCommand() *cobra.Command {
	opts := parseOpts{output: "-"}

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Extract concept triples from text or a triple file",
		Long: `Extract concept triples from free text or a JSON, JSONL or TOML triple file.

Free text may mix JSON objects, ("a", "rel", "b", "L1-L2") tuples,
a -[rel]-> b (L1-L2) arrows and a | rel | b | L1-L2 pipe rows. Lines that
match none of them are skipped. The result is a JSON array of triples.`,
		Example: `  tiergraph parse notes.txt -o photosynthesis.json
  cat answer.txt | tiergraph parse -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "input format: text, json, jsonl, toml (default: from extension)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output file (- for stdout)")

	return cmd
}

// runParse reads the input, extracts triples and writes them as JSON.
func (c *CLI) runParse(ctx context.Context, path string, opts parseOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	data, err := readFile(path)
	if err != nil {
		return err
	}
	format, err := tgio.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if format == "" {
		format = tgio.DetectFormat(path)
	}

	var (
		triples []concept.Triple
		stats   *parse.Stats
	)
	if format == tgio.FormatText {
		ts, st := parse.New(logger).Parse(string(data))
		triples, stats = ts, &st
	} else {
		set, err := tgio.ReadTriples(bytes.NewReader(data), format)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		triples = set.Triples
	}

	var buf bytes.Buffer
	if err := tgio.WriteTriples(&buf, triples); err != nil {
		return err
	}
	if err := writeOutput(opts.output, buf.Bytes()); err != nil {
		return fmt.Errorf("write output %s: %w", opts.output, err)
	}
	prog.done(fmt.Sprintf("Parsed %d triples", len(triples)))

	if len(triples) == 0 {
		printWarning("No triples found in %s", path)
	} else {
		printSuccess("Extracted %d triples", len(triples))
	}
	printFile(opts.output)
	if stats != nil {
		printParseStats(*stats)
	}
	if opts.output != "-" && len(triples) > 0 {
		printNewline()
		printNextStep("Build", appName+" build "+opts.output)
	}
	return nil
}

// printParseStats prints the per-pattern match counts of a text parse.
func printParseStats(s parse.Stats) {
	printDetail("%d lines, %d matched, %d unparsed, %d blank", s.Lines, s.Matched, s.Unparsed, s.Blank)
	patterns := make([]string, 0, len(s.ByPattern))
	for p := range s.ByPattern {
		patterns = append(patterns, string(p))
	}
	sort.Strings(patterns)
	for _, p := range patterns {
		printDetail("  %-6s %d", p, s.ByPattern[parse.Pattern(p)])
	}
}
