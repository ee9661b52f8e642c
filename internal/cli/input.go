package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/tiergraph/pkg/concept"
	tgio "github.com/matzehuels/tiergraph/pkg/io"
	"github.com/matzehuels/tiergraph/pkg/pipeline"
)

// input is a loaded command argument: either a triple set or a graph that
// was already built.
type input struct {
	Triples *tgio.TripleSet
	Graph   *concept.Graph
}

// readInput loads path ("-" for stdin). Graph JSON is recognised unless
// format forces a triple encoding; otherwise the format is taken from the
// flag or the file extension.
func readInput(path, format string) (*input, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if format == "" && tgio.IsGraphJSON(data) {
		g, err := tgio.ReadGraph(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &input{Graph: g}, nil
	}
	f, err := tgio.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if f == "" {
		f = tgio.DetectFormat(path)
	}
	set, err := tgio.ReadTriples(bytes.NewReader(data), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &input{Triples: set}, nil
}

func readFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// applyTripleSet copies the focus and metadata a triple file carries into
// opts. Values given on the command line win.
func applyTripleSet(opts *pipeline.Options, set *tgio.TripleSet) {
	if set == nil {
		return
	}
	if opts.Focus == "" {
		opts.Focus = set.Focus
	}
	if opts.Summary == "" {
		opts.Summary = set.Summary
	}
	if opts.Domain == "" {
		opts.Domain = set.Domain
	}
	if len(opts.Concepts) == 0 {
		opts.Concepts = set.Concepts
	}
}
