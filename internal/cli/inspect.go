package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tiergraph/pkg/concept"
	"github.com/matzehuels/tiergraph/pkg/config"
	"github.com/matzehuels/tiergraph/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	tabActiveStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Underline(true)
	tabStyle          = lipgloss.NewStyle().Foreground(colorGray)
)

// inspectCommand creates the inspect command for browsing a graph.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		flags pipelineFlags
		plain bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [triples|graph.json]",
		Short: "Browse a concept graph layer by layer",
		Long: `Browse a concept graph layer by layer in the terminal.

Triple files are built and laid out first. Use ←/→ to switch layers, ↑/↓
to select a concept and q to quit. The panel below the table lists the
selected concept's relations. --plain prints every layer and exits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return c.runInspect(cmd.Context(), args[0], flags, flags.options(cmd, cfg), cfg, plain)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print all layers instead of starting the browser")
	flags.bindInput(cmd.Flags())
	flags.bindBuild(cmd.Flags())
	flags.bindLayout(cmd.Flags())

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, path string, flags pipelineFlags, opts pipeline.Options, cfg config.Config, plain bool) error {
	in, err := readInput(path, flags.format)
	if err != nil {
		return err
	}
	g := in.Graph
	if g == nil {
		runner, err := c.newRunner(cfg, flags.noCache)
		if err != nil {
			return fmt.Errorf("initialize runner: %w", err)
		}
		defer runner.Close()

		applyTripleSet(&opts, in.Triples)
		opts.Formats = []string{pipeline.FormatJSON}
		result, err := runner.Execute(ctx, in.Triples.Triples, opts)
		if err != nil {
			return err
		}
		g = result.Graph
	}

	m := NewLayerModel(g)
	if plain {
		m.Height = len(g.Nodes) + 1
		for i := range m.tabs {
			m.Tab, m.Cursor = i, 0
			fmt.Fprintln(out, m.View())
		}
		return nil
	}

	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(LayerModel); ok && fm.Selected() != nil {
		printDetail("Last selected: %s (%s)", fm.Selected().Label, fm.Selected().ID)
	}
	return nil
}

// =============================================================================
// LayerModel - Interactive layer browser
// =============================================================================

// layerTab is one layer's nodes in display order.
type layerTab struct {
	Layer int // 0 for nodes without a layer
	Nodes []*concept.Node
}

// LayerModel is the bubbletea model for browsing a graph one layer at a time.
type LayerModel struct {
	Graph  *concept.Graph
	Tab    int
	Cursor int
	Offset int
	Height int

	tabs  []layerTab
	byID  map[string]*concept.Node
	links map[string][]*concept.Link // node ID -> links touching it
}

// NewLayerModel groups g's nodes by layer. Layers come in ascending order
// with unassigned nodes last; within a layer nodes are ordered by X, then
// by descending importance.
func NewLayerModel(g *concept.Graph) LayerModel {
	m := LayerModel{
		Graph:  g,
		Height: 12,
		byID:   make(map[string]*concept.Node, len(g.Nodes)),
		links:  make(map[string][]*concept.Link),
	}
	groups := make(map[int][]*concept.Node)
	for _, n := range g.Nodes {
		m.byID[n.ID] = n
		groups[n.Layer] = append(groups[n.Layer], n)
	}
	for _, l := range g.Links {
		m.links[l.Source] = append(m.links[l.Source], l)
		if l.Target != l.Source {
			m.links[l.Target] = append(m.links[l.Target], l)
		}
	}

	layers := make([]int, 0, len(groups))
	for layer := range groups {
		layers = append(layers, layer)
	}
	sort.Slice(layers, func(i, j int) bool {
		a, b := layers[i], layers[j]
		if (a == 0) != (b == 0) {
			return b == 0
		}
		return a < b
	})
	for _, layer := range layers {
		nodes := groups[layer]
		sort.SliceStable(nodes, func(i, j int) bool {
			if nodes[i].X != nodes[j].X {
				return nodes[i].X < nodes[j].X
			}
			return nodes[i].Importance > nodes[j].Importance
		})
		m.tabs = append(m.tabs, layerTab{Layer: layer, Nodes: nodes})
	}
	return m
}

// Selected returns the node under the cursor, or nil for an empty graph.
func (m LayerModel) Selected() *concept.Node {
	if m.Tab >= len(m.tabs) {
		return nil
	}
	nodes := m.tabs[m.Tab].Nodes
	if m.Cursor >= len(nodes) {
		return nil
	}
	return nodes[m.Cursor]
}

func (m LayerModel) Init() tea.Cmd {
	return nil
}

func (m LayerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h", "shift+tab":
			if m.Tab > 0 {
				m.Tab--
				m.Cursor, m.Offset = 0, 0
			}
		case "right", "l", "tab":
			if m.Tab < len(m.tabs)-1 {
				m.Tab++
				m.Cursor, m.Offset = 0, 0
			}
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Tab < len(m.tabs) && m.Cursor < len(m.tabs[m.Tab].Nodes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 14
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m LayerModel) View() string {
	var b strings.Builder

	title := m.Graph.Metadata.Keyword
	if title == "" {
		title = "Concept graph"
	}
	b.WriteString(StyleTitle.Render(title))
	if m.Graph.Metadata.Domain != "" {
		b.WriteString(" " + listDimStyle.Render(m.Graph.Metadata.Domain))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ layer  ↑/↓ concept  q quit"))
	b.WriteString("\n\n")

	if len(m.tabs) == 0 {
		b.WriteString(listDimStyle.Render("  (empty graph)"))
		return b.String()
	}

	tabs := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		name := fmt.Sprintf("%s (%d)", layerName(t.Layer), len(t.Nodes))
		if i == m.Tab {
			tabs[i] = tabActiveStyle.Render(name)
		} else {
			tabs[i] = tabStyle.Render(name)
		}
	}
	b.WriteString(strings.Join(tabs, "  "))
	b.WriteString("\n")

	nodes := m.tabs[m.Tab].Nodes
	end := min(m.Offset+m.Height, len(nodes))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		in, outDeg := m.degree(n.ID)
		rows = append(rows, []string{
			cursor,
			n.Label,
			string(n.Type),
			strconv.FormatFloat(n.Importance, 'g', 4, 64),
			strconv.Itoa(in),
			strconv.Itoa(outDeg),
			fmt.Sprintf("%.0f, %.0f", n.X, n.Y),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Concept", "Type", "Importance", "In", "Out", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(nodes) {
				return lipgloss.NewStyle()
			}
			if idx == m.Cursor {
				return listSelectedStyle
			}
			if col == 1 {
				return typeStyle(nodes[idx].Type)
			}
			return listDimStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(nodes))))
	b.WriteString("\n\n")
	b.WriteString(m.relations(m.Selected()))

	return b.String()
}

// degree counts the links entering and leaving id.
func (m LayerModel) degree(id string) (in, outgoing int) {
	for _, l := range m.links[id] {
		if l.Target == id {
			in++
		}
		if l.Source == id {
			outgoing++
		}
	}
	return in, outgoing
}

// relations lists the links of n as "→ relation target" and
// "← source relation" lines.
func (m LayerModel) relations(n *concept.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	for _, l := range m.links[n.ID] {
		if l.Source == n.ID {
			fmt.Fprintf(&b, "  %s %s %s\n", StyleHighlight.Render(iconArrow), listDimStyle.Render(l.Label), m.label(l.Target))
		}
	}
	for _, l := range m.links[n.ID] {
		if l.Target == n.ID && l.Source != n.ID {
			fmt.Fprintf(&b, "  %s %s %s\n", listDimStyle.Render("←"), m.label(l.Source), listDimStyle.Render(l.Label))
		}
	}
	if b.Len() == 0 {
		return listDimStyle.Render("  no relations") + "\n"
	}
	return b.String()
}

func (m LayerModel) label(id string) string {
	if n, ok := m.byID[id]; ok {
		return n.Label
	}
	return id
}

func layerName(layer int) string {
	if layer == 0 {
		return "unassigned"
	}
	return "L" + strconv.Itoa(layer)
}
