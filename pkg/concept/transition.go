package concept

import (
	"fmt"
	"regexp"
	"strings"
)

// Verdict is the outcome of classifying a triple.
type Verdict int

const (
	// VerdictValid marks a forward, adjacent transition (L1-L2, L2-L3, L3-L4).
	VerdictValid Verdict = iota
	// VerdictReverse marks a backward transition such as L2-L1.
	VerdictReverse
	// VerdictSameLayer marks a transition within one layer such as L2-L2.
	VerdictSameLayer
	// VerdictSkipLayer marks a forward transition that skips a layer (L1-L3).
	VerdictSkipLayer
	// VerdictMissing marks an empty transition tag.
	VerdictMissing
	// VerdictUnrecognized marks a tag that is not of the form Ln-Lm with n, m in 1..4.
	VerdictUnrecognized
	// VerdictIncomplete marks a triple without a source or target concept.
	VerdictIncomplete
)

var verdictNames = [...]string{
	VerdictValid:        "valid",
	VerdictReverse:      "reverse",
	VerdictSameLayer:    "same-layer",
	VerdictSkipLayer:    "skip-layer",
	VerdictMissing:      "missing",
	VerdictUnrecognized: "unrecognized",
	VerdictIncomplete:   "incomplete",
}

// String returns the log category of the verdict.
func (v Verdict) String() string {
	if v < 0 || int(v) >= len(verdictNames) {
		return "unknown"
	}
	return verdictNames[v]
}

// MarshalText encodes the verdict as its log category.
func (v Verdict) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText decodes a log category. Unknown names are an error.
func (v *Verdict) UnmarshalText(text []byte) error {
	for i, name := range verdictNames {
		if name == string(text) {
			*v = Verdict(i)
			return nil
		}
	}
	return fmt.Errorf("unknown verdict %q", text)
}

// Transition is a classified layer transition tag.
type Transition struct {
	From, To int
	Verdict  Verdict
}

// Valid reports whether the transition may become a link.
func (t Transition) Valid() bool { return t.Verdict == VerdictValid }

var transitionRe = regexp.MustCompile(`^L([1-4])\s*(?:-|->|→|–)\s*L([1-4])$`)

// ClassifyTransition parses a tag such as "L2-L3". Case and surrounding
// whitespace are ignored; "->", "→" and dashes are accepted as separators.
func ClassifyTransition(tag string) Transition {
	tag = strings.ToUpper(strings.TrimSpace(tag))
	if tag == "" {
		return Transition{Verdict: VerdictMissing}
	}
	m := transitionRe.FindStringSubmatch(tag)
	if m == nil {
		return Transition{Verdict: VerdictUnrecognized}
	}
	from, to := int(m[1][0]-'0'), int(m[2][0]-'0')
	t := Transition{From: from, To: to}
	switch {
	case to == from+1:
		t.Verdict = VerdictValid
	case to < from:
		t.Verdict = VerdictReverse
	case to == from:
		t.Verdict = VerdictSameLayer
	default:
		t.Verdict = VerdictSkipLayer
	}
	return t
}

// ValidateTriple classifies a whole triple. Empty concepts are reported as
// [VerdictIncomplete] before the tag is looked at.
func ValidateTriple(t Triple) Transition {
	if NormalizeLabel(t.Source) == "" || NormalizeLabel(t.Target) == "" {
		return Transition{Verdict: VerdictIncomplete}
	}
	return ClassifyTransition(t.LayerTransition)
}

// NormalizeLabel trims a concept label and collapses inner whitespace.
func NormalizeLabel(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TransitionTag formats a forward transition tag for layer from.
func TransitionTag(from int) string {
	return "L" + string(rune('0'+from)) + "-L" + string(rune('0'+from+1))
}
