package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tiergraph/pkg/concept"
	"github.com/matzehuels/tiergraph/pkg/errors"
	"github.com/matzehuels/tiergraph/pkg/parse"
)

// Format identifies a triple file encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatTOML  Format = "toml"
	FormatText  Format = "text"
)

// TripleSet is the decoded content of a triple file.
type TripleSet struct {
	Focus    string           `json:"focus,omitempty" toml:"focus"`
	Summary  string           `json:"summary,omitempty" toml:"summary"`
	Domain   string           `json:"domain,omitempty" toml:"domain"`
	Concepts []string         `json:"concepts,omitempty" toml:"concepts"`
	Triples  []concept.Triple `json:"triples" toml:"triples"`

	// Parse is set when the triples were extracted from free text.
	Parse *parse.Stats `json:"-" toml:"-"`
}

// DetectFormat maps a file name to a format. Unknown extensions are text.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".jsonl", ".ndjson":
		return FormatJSONL
	case ".toml":
		return FormatTOML
	default:
		return FormatText
	}
}

// ParseFormat validates a format name given on the command line or in a
// request. The empty string means auto-detect and is returned as is.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case "", FormatJSON, FormatJSONL, FormatTOML, FormatText:
		return f, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown input format %q", name)
	}
}

// ImportTriples reads the triple file at path. "-" reads standard input as
// free text unless format says otherwise.
func ImportTriples(path string, format Format) (*TripleSet, error) {
	if format == "" {
		format = DetectFormat(path)
	}
	if path == "-" {
		return ReadTriples(os.Stdin, format)
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	set, err := ReadTriples(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// ReadTriples decodes a triple set from r. It does not close r.
func ReadTriples(r io.Reader, format Format) (*TripleSet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatJSONL:
		return decodeJSONL(data)
	case FormatTOML:
		return decodeTOML(data)
	case FormatText, "":
		triples, stats := parse.ParseText(string(data))
		return &TripleSet{Triples: triples, Parse: &stats}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown input format %q", format)
	}
}

func decodeJSON(data []byte) (*TripleSet, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var triples []concept.Triple
		if err := json.Unmarshal(trimmed, &triples); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode triple array")
		}
		return &TripleSet{Triples: triples}, nil
	}
	var set TripleSet
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&set); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode triple set")
	}
	return &set, nil
}

func decodeJSONL(data []byte) (*TripleSet, error) {
	set := &TripleSet{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		var t concept.Triple
		if err := json.Unmarshal(text, &t); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d", line)
		}
		set.Triples = append(set.Triples, t)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return set, nil
}

func decodeTOML(data []byte) (*TripleSet, error) {
	var set TripleSet
	md, err := toml.Decode(string(data), &set)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown toml key %s", undecoded[0])
	}
	return &set, nil
}

// WriteTriples encodes triples as an indented JSON array.
func WriteTriples(w io.Writer, triples []concept.Triple) error {
	if triples == nil {
		triples = []concept.Triple{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(triples)
}
