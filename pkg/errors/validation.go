package errors

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Limits applied to externally supplied triples.
const (
	MaxLabelLength = 200
	MaxTriples     = 1000
)

// ValidateLabel rejects concept and relation labels that are too long or
// contain control characters. Empty labels pass; the builder classifies
// them as incomplete.
func ValidateLabel(field, label string) error {
	if n := utf8.RuneCountInString(label); n > MaxLabelLength {
		return New(ErrCodeInvalidInput, "%s too long (%d > %d characters)", field, n, MaxLabelLength)
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains control characters", field)
		}
	}
	return nil
}

// ValidateTripleCount rejects batches larger than [MaxTriples].
func ValidateTripleCount(n int) error {
	if n > MaxTriples {
		return New(ErrCodeInvalidInput, "too many triples (%d > %d)", n, MaxTriples)
	}
	return nil
}

// ValidateTriple checks every field of one triple. index is reported in the
// message.
func ValidateTriple(index int, source, relation, target, tag string) error {
	fields := [...]struct{ name, value string }{
		{"source", source}, {"relation", relation}, {"target", target}, {"layer transition", tag},
	}
	for _, f := range fields {
		if err := ValidateLabel(fmt.Sprintf("triple %d %s", index, f.name), f.value); err != nil {
			return err
		}
	}
	return nil
}
