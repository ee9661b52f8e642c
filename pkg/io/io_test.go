package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/tiergraph/pkg/concept"
	"github.com/matzehuels/tiergraph/pkg/errors"
)

var want = []concept.Triple{
	{Source: "Photosynthesis", Relation: "requires", Target: "Light", LayerTransition: "L1-L2"},
	{Source: "Light", Relation: "excites", Target: "Chlorophyll", LayerTransition: "L2-L3"},
}

func assertTriples(t *testing.T, got []concept.Triple) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d triples, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("triple %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadTriples(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		focus  string
	}{
		{"json array", FormatJSON, `[
  {"source": "Photosynthesis", "relation": "requires", "target": "Light", "layerTransition": "L1-L2"},
  {"source": "Light", "relation": "excites", "target": "Chlorophyll", "layerTransition": "L2-L3"}
]`, ""},
		{"json object", FormatJSON, `{"focus": "Photosynthesis", "triples": [
  {"source": "Photosynthesis", "relation": "requires", "target": "Light", "layerTransition": "L1-L2"},
  {"source": "Light", "relation": "excites", "target": "Chlorophyll", "layerTransition": "L2-L3"}
]}`, "Photosynthesis"},
		{"jsonl", FormatJSONL, `{"source": "Photosynthesis", "relation": "requires", "target": "Light", "layerTransition": "L1-L2"}

{"source": "Light", "relation": "excites", "target": "Chlorophyll", "layerTransition": "L2-L3"}
`, ""},
		{"toml", FormatTOML, `focus = "Photosynthesis"

[[triples]]
source = "Photosynthesis"
relation = "requires"
target = "Light"
layer = "L1-L2"

[[triples]]
source = "Light"
relation = "excites"
target = "Chlorophyll"
layer = "L2-L3"
`, "Photosynthesis"},
		{"text", FormatText, `Relationships:
(Photosynthesis, requires, Light, L1-L2)
Light --excites--> Chlorophyll [L2-L3]
`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := ReadTriples(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("ReadTriples() = %v", err)
			}
			assertTriples(t, set.Triples)
			if set.Focus != tt.focus {
				t.Errorf("Focus = %q, want %q", set.Focus, tt.focus)
			}
			if (tt.format == FormatText) != (set.Parse != nil) {
				t.Errorf("Parse stats = %+v", set.Parse)
			}
		})
	}
}

func TestReadTriples_Errors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"bad json", FormatJSON, `[{"source": `},
		{"unknown json field", FormatJSON, `{"triplez": []}`},
		{"bad jsonl line", FormatJSONL, "{\"source\": \"a\"}\nnot json\n"},
		{"unknown toml key", FormatTOML, "topic = \"x\"\n"},
		{"unknown format", Format("yaml"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTriples(strings.NewReader(tt.input), tt.format)
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("ReadTriples() = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"a.json":       FormatJSON,
		"a.JSONL":      FormatJSONL,
		"a.ndjson":     FormatJSONL,
		"triples.toml": FormatTOML,
		"answer.md":    FormatText,
		"-":            FormatText,
	}
	for path, want := range tests {
		if got := DetectFormat(path); got != want {
			t.Errorf("DetectFormat(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("TOML"); err != nil || f != FormatTOML {
		t.Errorf("ParseFormat(TOML) = %q, %v", f, err)
	}
	if _, err := ParseFormat("yaml"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ParseFormat(yaml) = %v", err)
	}
}

func TestImportTriples(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.jsonl")
	body := `{"source": "Photosynthesis", "relation": "requires", "target": "Light", "layerTransition": "L1-L2"}
{"source": "Light", "relation": "excites", "target": "Chlorophyll", "layerTransition": "L2-L3"}
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	set, err := ImportTriples(path, "")
	if err != nil {
		t.Fatalf("ImportTriples() = %v", err)
	}
	assertTriples(t, set.Triples)

	_, err = ImportTriples(filepath.Join(dir, "missing.json"), "")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestWriteTriples(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTriples(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("WriteTriples(nil) = %q", buf.String())
	}

	buf.Reset()
	if err := WriteTriples(&buf, want); err != nil {
		t.Fatal(err)
	}
	set, err := ReadTriples(&buf, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	assertTriples(t, set.Triples)
}

func TestGraphRoundTrip(t *testing.T) {
	g := &concept.Graph{
		Nodes: []*concept.Node{
			{ID: "1", Label: "Photosynthesis", Layer: 1, Type: concept.NodeTypeMain, X: 600, Y: 200},
			{ID: "2", Label: "Light", Layer: 2, Type: concept.NodeTypeCore, X: 600, Y: 320},
		},
		Links:    []*concept.Link{{ID: "1->2", Source: "1", Target: "2", Label: "requires", Strength: 1}},
		Metadata: concept.Metadata{Keyword: "Photosynthesis", Layout: &concept.LayoutInfo{Engine: "layered"}},
	}
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := ExportGraph(g, path); err != nil {
		t.Fatalf("ExportGraph() = %v", err)
	}
	data, _ := os.ReadFile(path)
	if !IsGraphJSON(data) {
		t.Error("IsGraphJSON(exported graph) = false")
	}

	got, err := ImportGraph(path)
	if err != nil {
		t.Fatalf("ImportGraph() = %v", err)
	}
	if len(got.Nodes) != 2 || got.Nodes[1].Y != 320 || got.Links[0].Label != "requires" {
		t.Errorf("graph = %+v", got)
	}
	if got.Metadata.Layout == nil || got.Metadata.Layout.Engine != "layered" {
		t.Errorf("metadata = %+v", got.Metadata)
	}
}

func TestReadGraph_Errors(t *testing.T) {
	inputs := []string{
		`{"nodes": [`,
		`{"nodes": [{"label": "x"}]}`,
		`{"nodes": [{"id": "1"}], "links": [{"source": "1"}]}`,
	}
	for _, in := range inputs {
		if _, err := ReadGraph(strings.NewReader(in)); !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ReadGraph(%q) = %v", in, err)
		}
	}
}

func TestIsGraphJSON(t *testing.T) {
	if IsGraphJSON([]byte(`[{"source": "a"}]`)) {
		t.Error("triple array detected as graph")
	}
	if IsGraphJSON([]byte(`{"triples": []}`)) {
		t.Error("triple set detected as graph")
	}
}
