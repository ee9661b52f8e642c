package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/tiergraph/pkg/concept"
	"github.com/matzehuels/tiergraph/pkg/errors"
)

// ReadGraph decodes a JSON graph from r. It does not close r.
func ReadGraph(r io.Reader) (*concept.Graph, error) {
	var g concept.Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph")
	}
	for i, n := range g.Nodes {
		if n == nil || n.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "node %d has no id", i)
		}
	}
	for i, l := range g.Links {
		if l == nil || l.Source == "" || l.Target == "" {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "link %d has no endpoints", i)
		}
	}
	return &g, nil
}

// ImportGraph reads the JSON graph file at path; "-" reads standard input.
func ImportGraph(path string) (*concept.Graph, error) {
	if path == "-" {
		return ReadGraph(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}

// WriteGraph encodes g as indented JSON.
func WriteGraph(w io.Writer, g *concept.Graph) error {
	if g == nil {
		g = &concept.Graph{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

// ExportGraph writes g to path, or to standard output when path is "-" or
// empty.
func ExportGraph(g *concept.Graph, path string) error {
	if path == "" || path == "-" {
		return WriteGraph(os.Stdout, g)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteGraph(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// IsGraphJSON reports whether data looks like a serialized graph rather than
// a triple file: a JSON object with a "nodes" key.
func IsGraphJSON(data []byte) bool {
	var probe struct {
		Nodes json.RawMessage `json:"nodes"`
	}
	return json.Unmarshal(data, &probe) == nil && len(probe.Nodes) > 0
}
