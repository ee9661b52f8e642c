package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/tiergraph/pkg/build"
	"github.com/matzehuels/tiergraph/pkg/concept"
	"github.com/matzehuels/tiergraph/pkg/layout"
	"github.com/matzehuels/tiergraph/pkg/layout/selector"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings, main tier
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands, core tier
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	// Node type tints, matching the DOT fills.
	styleMain   = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	styleCore   = lipgloss.NewStyle().Foreground(colorBlue)
	styleDetail = lipgloss.NewStyle().Foreground(colorWhite)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// out receives all status output. Data written with "-o -" goes to stdout,
// so status lines stay on stderr.
var out io.Writer = os.Stderr

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(out, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(out, styleIconError.Render(iconError)+" "+msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(out, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(out, styleIconInfo.Render(iconInfo)+" "+msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(out, "  "+StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	if path == "-" {
		return
	}
	fmt.Fprintln(out, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(out, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Stats Display
// =============================================================================

// printStats prints graph statistics on a single line.
func printStats(nodeCount, linkCount int, cached bool) {
	var parts []string
	if nodeCount > 0 {
		parts = append(parts, fmt.Sprintf("%d nodes", nodeCount))
	}
	if linkCount > 0 {
		parts = append(parts, fmt.Sprintf("%d links", linkCount))
	}

	status := iconFresh
	statusStyle := styleComputed
	if cached {
		status = iconCached
		statusStyle = styleCached
	}
	parts = append(parts, statusStyle.Render(status))

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	fmt.Fprintln(out, line)
}

// printLayers prints the node count of each tier.
func printLayers(info concept.LayerInfo) {
	printKeyValue("Tiers", fmt.Sprintf("%s %d  %s %d  %s %d  %s %d",
		styleMain.Render("L1"), info.Layer1Count,
		styleCore.Render("L2"), info.Layer2Count,
		styleDetail.Render("L3"), info.Layer3Count,
		styleDetail.Render("L4"), info.Layer4Count))
}

// printReport summarises what the builder skipped, moved or cut.
func printReport(r *build.Report, verbose bool) {
	if r == nil {
		return
	}
	printKeyValue("Accepted", fmt.Sprintf("%d triples", r.Accepted))
	if len(r.Rejected) > 0 {
		counts := r.RejectedByVerdict()
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = fmt.Sprintf("%s %d", name, counts[name])
		}
		printKeyValue("Rejected", fmt.Sprintf("%d (%s)", len(r.Rejected), strings.Join(parts, ", ")))
		if verbose {
			for _, rej := range r.Rejected {
				printDetail("#%d %s -> %s [%s]: %s", rej.Index, rej.Triple.Source, rej.Triple.Target, rej.Triple.LayerTransition, rej.Reason)
			}
		}
	}
	if len(r.Conflicts) > 0 {
		printKeyValue("Conflicts", fmt.Sprintf("%d", len(r.Conflicts)))
	}
	if r.Promoted != "" {
		printKeyValue("Promoted", r.Promoted)
	}
	if len(r.Demoted) > 0 {
		printKeyValue("Demoted", strings.Join(r.Demoted, ", "))
	}
	if len(r.Truncated) > 0 {
		printKeyValue("Truncated", fmt.Sprintf("%d nodes", len(r.Truncated)))
	}
	if len(r.DroppedLinks) > 0 {
		printKeyValue("Dropped", fmt.Sprintf("%d links", len(r.DroppedLinks)))
	}
	for _, w := range r.Warnings {
		printWarning("%s", w)
	}
}

// printDecision prints the chosen layout engine and why.
func printDecision(d selector.Decision) {
	detail := d.Reason
	if d.Engine != layout.EngineLayered || d.Focus == "" {
		detail = fmt.Sprintf("%s, hierarchy %.2f", d.Reason, d.HierarchyScore)
	}
	printKeyValue("Engine", StyleHighlight.Render(d.Engine)+" "+StyleDim.Render("("+detail+")"))
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(out, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Fprintln(out)
}

// typeStyle picks the tint for a node type.
func typeStyle(t concept.NodeType) lipgloss.Style {
	switch t {
	case concept.NodeTypeMain:
		return styleMain
	case concept.NodeTypeCore:
		return styleCore
	default:
		return styleDetail
	}
}
