package errors

import (
	"strings"
	"testing"
)

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Photosynthesis", false},
		{"unicode", "光合作用", false},
		{"empty", "", false},
		{"max length", strings.Repeat("a", MaxLabelLength), false},
		{"too long", strings.Repeat("a", MaxLabelLength+1), true},
		{"newline", "foo\nbar", true},
		{"null byte", "foo\x00bar", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabel("source", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLabel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateTripleCount(t *testing.T) {
	if err := ValidateTripleCount(MaxTriples); err != nil {
		t.Errorf("ValidateTripleCount(max) = %v", err)
	}
	if err := ValidateTripleCount(MaxTriples + 1); err == nil {
		t.Error("ValidateTripleCount(max+1) = nil")
	}
}

func TestValidateTriple(t *testing.T) {
	if err := ValidateTriple(0, "A", "r", "B", "L1-L2"); err != nil {
		t.Errorf("ValidateTriple() = %v", err)
	}
	err := ValidateTriple(3, "A", "r\t", "B", "L1-L2")
	if err == nil || !strings.Contains(err.Error(), "triple 3 relation") {
		t.Errorf("ValidateTriple() = %v", err)
	}
}
