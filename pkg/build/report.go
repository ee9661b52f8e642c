package build

import (
	"fmt"

	"github.com/matzehuels/tiergraph/pkg/concept"
)

// Reasons recorded on dropped links.
const (
	ReasonNotAdjacent = "layers not adjacent"
	ReasonTruncated   = "endpoint truncated"
)

// Rejection records a triple that failed validation.
type Rejection struct {
	Index   int             `json:"index"`
	Triple  concept.Triple  `json:"triple"`
	Verdict concept.Verdict `json:"verdict"`
	Reason  string          `json:"reason"`
}

// Conflict records a triple that proposed a different layer for a concept
// that was already placed.
type Conflict struct {
	Index    int    `json:"index"`
	Label    string `json:"label"`
	Kept     int    `json:"kept"`
	Proposed int    `json:"proposed"`
}

// DroppedLink records an accepted relation that did not make it into the graph.
type DroppedLink struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
	Reason   string `json:"reason"`
}

// Report is the observability channel of a build. It lists everything the
// builder skipped, kept, moved or cut.
type Report struct {
	Accepted     int           `json:"accepted"`
	Rejected     []Rejection   `json:"rejected,omitempty"`
	Conflicts    []Conflict    `json:"conflicts,omitempty"`
	DroppedLinks []DroppedLink `json:"droppedLinks,omitempty"`
	Promoted     string        `json:"promoted,omitempty"`
	Demoted      []string      `json:"demoted,omitempty"`
	Truncated    []string      `json:"truncated,omitempty"`
	Quotas       map[int]int   `json:"quotas,omitempty"`
	Warnings     []string      `json:"warnings,omitempty"`
}

// RejectedByVerdict counts rejections per log category.
func (r *Report) RejectedByVerdict() map[string]int {
	out := make(map[string]int)
	for _, rej := range r.Rejected {
		out[rej.Verdict.String()]++
	}
	return out
}

// Redistributed reports whether the tier quotas were applied.
func (r *Report) Redistributed() bool { return len(r.Quotas) > 0 }

func (r *Report) warnf(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	return msg
}
