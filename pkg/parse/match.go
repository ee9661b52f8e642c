package parse

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/matzehuels/tiergraph/pkg/concept"
)

// Pattern names the form a triple was recognised in.
type Pattern string

const (
	PatternJSON  Pattern = "json"
	PatternTuple Pattern = "tuple"
	PatternArrow Pattern = "arrow"
	PatternPipe  Pattern = "pipe"
)

// Match is the result of offering a line to a matcher. OK is false when the
// matcher does not recognise the line.
type Match struct {
	Triple  concept.Triple
	OK      bool
	Pattern Pattern
}

// Matcher recognises one textual form.
type Matcher interface {
	Pattern() Pattern
	Match(line string) Match
}

// MatcherFunc adapts a function to [Matcher].
type MatcherFunc struct {
	Name Pattern
	Fn   func(line string) (concept.Triple, bool)
}

func (m MatcherFunc) Pattern() Pattern { return m.Name }

func (m MatcherFunc) Match(line string) Match {
	t, ok := m.Fn(line)
	if !ok {
		return Match{}
	}
	return Match{Triple: t, OK: true, Pattern: m.Name}
}

// DefaultMatchers returns the built-in matchers in priority order.
func DefaultMatchers() []Matcher {
	return []Matcher{
		MatcherFunc{PatternJSON, matchJSON},
		MatcherFunc{PatternTuple, matchTuple},
		MatcherFunc{PatternArrow, matchArrow},
		MatcherFunc{PatternPipe, matchPipe},
	}
}

var (
	listMarker = regexp.MustCompile(`^(?:[-*+•]|\d+[.)])\s+`)
	layerTag   = regexp.MustCompile(`(?i)^L\d\s*(?:-|->|–)\s*L\d$`)
	arrow      = regexp.MustCompile(`^(.+?)\s+-{1,2}\[?(.+?)\]?-{1,2}>\s+(.+?)\s*[(\[]([^()\[\]]+)[)\]]$`)
)

type jsonTriple struct {
	Source     string `json:"source"`
	Relation   string `json:"relation"`
	Target     string `json:"target"`
	Transition string `json:"layerTransition"`
	Layer      string `json:"layer"`
}

func (j jsonTriple) triple() (concept.Triple, bool) {
	tag := j.Transition
	if tag == "" {
		tag = j.Layer
	}
	t := concept.Triple{
		Source:          clean(j.Source),
		Relation:        clean(j.Relation),
		Target:          clean(j.Target),
		LayerTransition: strings.TrimSpace(tag),
	}
	return t, t.Source != "" || t.Target != ""
}

func matchJSON(line string) (concept.Triple, bool) {
	if !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
		return concept.Triple{}, false
	}
	var j jsonTriple
	if err := json.Unmarshal([]byte(line), &j); err != nil {
		return concept.Triple{}, false
	}
	return j.triple()
}

// matchTuple accepts four or more comma-separated fields in parentheses or
// brackets. The last field is the layer tag; extra middle fields belong to
// the relation.
func matchTuple(line string) (concept.Triple, bool) {
	if len(line) < 2 {
		return concept.Triple{}, false
	}
	l, r := line[0], line[len(line)-1]
	if !(l == '(' && r == ')') && !(l == '[' && r == ']') {
		return concept.Triple{}, false
	}
	fields := strings.Split(line[1:len(line)-1], ",")
	if len(fields) < 4 {
		return concept.Triple{}, false
	}
	tag := clean(fields[len(fields)-1])
	if !layerTag.MatchString(tag) {
		return concept.Triple{}, false
	}
	rel := make([]string, 0, len(fields)-3)
	for _, f := range fields[1 : len(fields)-2] {
		rel = append(rel, clean(f))
	}
	return concept.Triple{
		Source:          clean(fields[0]),
		Relation:        strings.Join(rel, ", "),
		Target:          clean(fields[len(fields)-2]),
		LayerTransition: tag,
	}, true
}

func matchArrow(line string) (concept.Triple, bool) {
	m := arrow.FindStringSubmatch(line)
	if m == nil {
		return concept.Triple{}, false
	}
	tag := clean(m[4])
	if !layerTag.MatchString(tag) {
		return concept.Triple{}, false
	}
	return concept.Triple{
		Source:          clean(m[1]),
		Relation:        clean(m[2]),
		Target:          clean(m[3]),
		LayerTransition: tag,
	}, true
}

// matchPipe accepts exactly four pipe-separated fields. Leading and trailing
// pipes, as in markdown tables, are ignored.
func matchPipe(line string) (concept.Triple, bool) {
	s := strings.TrimSuffix(strings.TrimPrefix(line, "|"), "|")
	fields := strings.Split(s, "|")
	if len(fields) != 4 {
		return concept.Triple{}, false
	}
	tag := clean(fields[3])
	if !layerTag.MatchString(tag) {
		return concept.Triple{}, false
	}
	return concept.Triple{
		Source:          clean(fields[0]),
		Relation:        clean(fields[1]),
		Target:          clean(fields[2]),
		LayerTransition: tag,
	}, true
}

// clean trims space, quotes and markdown emphasis from a field.
func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`*_")
	return concept.NormalizeLabel(s)
}
