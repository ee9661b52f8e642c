package layout

import (
	"testing"

	"github.com/matzehuels/tiergraph/pkg/concept"
)

func TestMatchFocus(t *testing.T) {
	nodes := []*concept.Node{
		{ID: "1", Label: "Machine Learning Models"},
		{ID: "2", Label: "learning"},
		{ID: "3", Label: "Data"},
	}
	tests := []struct {
		focus string
		want  string
	}{
		{"LEARNING", "2"},
		{"machine  learning", "1"},
		{"What is data engineering?", "3"},
		{"graphs", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.focus, func(t *testing.T) {
			n, ok := MatchFocus(nodes, tt.focus)
			if tt.want == "" {
				if ok {
					t.Errorf("MatchFocus(%q) = %s, want no match", tt.focus, n.ID)
				}
				return
			}
			if !ok || n.ID != tt.want {
				t.Errorf("MatchFocus(%q) = %v, want %s", tt.focus, n, tt.want)
			}
		})
	}
}
