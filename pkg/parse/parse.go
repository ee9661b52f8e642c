// Package parse extracts concept triples from loosely formatted text.
//
// Each non-blank line is normalised (full-width punctuation folded to ASCII,
// list markers stripped) and offered to an ordered list of [Matcher]s. The
// first matcher that recognises the line wins; lines no matcher recognises
// are skipped and counted in [Stats]. Triples are returned in encounter
// order and are not validated here: layer tags are checked by the builder.
//
// Recognised forms:
//
//	{"source": "A", "relation": "r", "target": "B", "layerTransition": "L1-L2"}
//	(A, r, B, L1-L2)   or   [A, r, B, L1-L2]
//	A -[r]-> B (L1-L2)  or  A --r--> B [L1-L2]
//	A | r | B | L1-L2
package parse

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tiergraph/pkg/concept"
)

// Stats summarises a parse.
type Stats struct {
	Lines     int             `json:"lines"`
	Blank     int             `json:"blank"`
	Matched   int             `json:"matched"`
	Unparsed  int             `json:"unparsed"`
	ByPattern map[Pattern]int `json:"byPattern,omitempty"`
}

// Parser runs a fixed list of matchers over text.
type Parser struct {
	Matchers []Matcher
	Logger   *log.Logger
}

// New returns a parser using [DefaultMatchers].
func New(logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Parser{Matchers: DefaultMatchers(), Logger: logger}
}

// ParseText parses text with the default matchers.
func ParseText(text string) ([]concept.Triple, Stats) {
	return New(nil).Parse(text)
}

// Parse returns every triple found in text, in encounter order. Text that is
// a single JSON array of triple objects is decoded as a whole.
func (p *Parser) Parse(text string) ([]concept.Triple, Stats) {
	stats := Stats{ByPattern: make(map[Pattern]int)}

	if triples, ok := parseJSONArray(text); ok {
		stats.Lines = len(triples)
		stats.Matched = len(triples)
		stats.ByPattern[PatternJSON] = len(triples)
		return triples, stats
	}

	var out []concept.Triple
	for raw := range strings.Lines(text) {
		stats.Lines++
		line := Normalize(raw)
		if line == "" {
			stats.Blank++
			continue
		}
		m := p.Line(line)
		if !m.OK {
			stats.Unparsed++
			p.logger().Debug("unparsed line", "line", stats.Lines, "text", line)
			continue
		}
		stats.Matched++
		stats.ByPattern[m.Pattern]++
		out = append(out, m.Triple)
	}
	return out, stats
}

// Line offers an already normalised line to each matcher in order.
func (p *Parser) Line(line string) Match {
	for _, m := range p.Matchers {
		if res := m.Match(line); res.OK {
			return res
		}
	}
	return Match{}
}

func (p *Parser) logger() *log.Logger {
	if p.Logger == nil {
		return log.New(io.Discard)
	}
	return p.Logger
}

var fullWidth = strings.NewReplacer(
	"（", "(", "）", ")",
	"【", "[", "】", "]",
	"［", "[", "］", "]",
	"｛", "{", "｝", "}",
	"｜", "|", "，", ",", "、", ",",
	"：", ":", "；", ";",
	"“", `"`, "”", `"`, "‘", "'", "’", "'",
	"－", "-", "\u2014", "-", "＞", ">", "→", "->",
	"　", " ",
)

// Normalize folds full-width punctuation to ASCII, strips a leading list
// marker and trims surrounding space and trailing commas.
func Normalize(line string) string {
	s := strings.TrimSpace(fullWidth.Replace(line))
	s = listMarker.ReplaceAllString(s, "")
	s = strings.TrimRight(s, ", ")
	return strings.TrimSpace(s)
}

func parseJSONArray(text string) ([]concept.Triple, bool) {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, false
	}
	var raw []jsonTriple
	if err := json.Unmarshal([]byte(s), &raw); err != nil || len(raw) == 0 {
		return nil, false
	}
	out := make([]concept.Triple, 0, len(raw))
	for _, r := range raw {
		t, ok := r.triple()
		if !ok {
			return nil, false
		}
		out = append(out, t)
	}
	return out, true
}
