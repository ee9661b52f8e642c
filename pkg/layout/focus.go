package layout

import (
	"strings"

	"github.com/matzehuels/tiergraph/pkg/concept"
)

// MatchFocus returns the node whose label matches focus. A case-insensitive
// exact match wins; otherwise the first node whose label contains focus, or
// is contained in it, is returned. An empty focus matches nothing.
func MatchFocus(nodes []*concept.Node, focus string) (*concept.Node, bool) {
	f := strings.ToLower(concept.NormalizeLabel(focus))
	if f == "" {
		return nil, false
	}
	for _, n := range nodes {
		if strings.ToLower(concept.NormalizeLabel(n.Label)) == f {
			return n, true
		}
	}
	for _, n := range nodes {
		l := strings.ToLower(concept.NormalizeLabel(n.Label))
		if l == "" {
			continue
		}
		if strings.Contains(l, f) || strings.Contains(f, l) {
			return n, true
		}
	}
	return nil, false
}
