package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/collatz/pkg/graph"
)

var (
	viewerLevelStyle    = lipgloss.NewStyle().Foreground(colorDim)
	viewerValueStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	viewerSelectedStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true).Reverse(true)
	viewerKeyStyle      = lipgloss.NewStyle().Foreground(colorGray)
)

// viewerModel is the bubbletea model of the layout viewer: one line per
// level, a cursor over nodes and a detail line for the selected node.
type viewerModel struct {
	layout graph.Layout

	level  int // cursor level
	index  int // cursor position within the level
	offset int // first visible level
	height int // visible levels
	width  int
}

func newViewerModel(l graph.Layout) viewerModel {
	return viewerModel{layout: l, height: 20}
}

func (m viewerModel) Init() tea.Cmd {
	return nil
}

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.moveLevel(-1)
		case "down", "j":
			m.moveLevel(1)
		case "left", "h":
			if m.index > 0 {
				m.index--
			}
		case "right", "l":
			if m.index < len(m.currentLevel())-1 {
				m.index++
			}
		case "home", "g":
			m.moveLevel(-len(m.layout.Levels))
		case "end", "G":
			m.moveLevel(len(m.layout.Levels))
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = max(msg.Height-6, 3)
		m.scroll()
	}
	return m, nil
}

// moveLevel moves the cursor by delta levels, keeping its position within
// the level when the target is wide enough.
func (m *viewerModel) moveLevel(delta int) {
	if len(m.layout.Levels) == 0 {
		return
	}
	m.level = min(max(m.level+delta, 0), len(m.layout.Levels)-1)
	m.index = min(m.index, max(len(m.currentLevel())-1, 0))
	m.scroll()
}

func (m *viewerModel) scroll() {
	if m.level < m.offset {
		m.offset = m.level
	}
	if m.level >= m.offset+m.height {
		m.offset = m.level - m.height + 1
	}
}

func (m viewerModel) currentLevel() []int {
	if m.level < len(m.layout.Levels) {
		return m.layout.Levels[m.level]
	}
	return nil
}

// selected returns the node under the cursor.
func (m viewerModel) selected() (graph.LayoutNode, bool) {
	ids := m.currentLevel()
	if m.index >= len(ids) {
		return graph.LayoutNode{}, false
	}
	return m.layout.NodeByID(ids[m.index])
}

func (m viewerModel) View() string {
	var b strings.Builder

	title := m.layout.Title
	if title == "" {
		title = "Collatz graph"
	}
	b.WriteString(styleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(styleDim.Render("↑/↓ level  ←/→ node  g/G first/last  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.layout.Levels))
	line := lipgloss.NewStyle()
	if m.width > 0 {
		line = line.MaxWidth(m.width)
	}
	for lvl := m.offset; lvl < end; lvl++ {
		b.WriteString(line.Render(m.levelLine(lvl)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.detailLine())
	b.WriteString("\n")
	b.WriteString(styleDim.Render(fmt.Sprintf("  [level %d/%d]", m.level+1, len(m.layout.Levels))))
	return b.String()
}

func (m viewerModel) levelLine(lvl int) string {
	var b strings.Builder
	b.WriteString(viewerLevelStyle.Render(fmt.Sprintf("%4d │", lvl)))
	b.WriteString(" ")
	for i, id := range m.layout.Levels[lvl] {
		if i > 0 {
			b.WriteString(" ")
		}
		label := strconv.Itoa(id)
		if n, ok := m.layout.NodeByID(id); ok {
			label = n.Label()
		}
		if lvl == m.level && i == m.index {
			b.WriteString(viewerSelectedStyle.Render(label))
		} else {
			b.WriteString(viewerValueStyle.Render(label))
		}
	}
	return b.String()
}

func (m viewerModel) detailLine() string {
	n, ok := m.selected()
	if !ok {
		return styleDim.Render("  no nodes")
	}
	parts := []string{
		viewerKeyStyle.Render("value") + " " + styleNumber.Render(n.Label()),
		viewerKeyStyle.Render("level") + " " + strconv.Itoa(n.Row),
		viewerKeyStyle.Render("at") + " " + fmt.Sprintf("(%g, %g)", n.X, n.Y),
		viewerKeyStyle.Render("from") + " " + m.values(m.layout.Predecessors(n.ID)),
		viewerKeyStyle.Render("to") + " " + m.values(m.layout.Successors(n.ID)),
	}
	return "  " + strings.Join(parts, styleDim.Render(" · "))
}

// values lists the values of ids, or "-" when empty.
func (m viewerModel) values(ids []int) string {
	if len(ids) == 0 {
		return "-"
	}
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		if n, ok := m.layout.NodeByID(id); ok {
			labels = append(labels, n.Label())
		}
	}
	return strings.Join(labels, ", ")
}

// runViewer opens the viewer for l. When stdout is not a terminal it prints
// the level listing once instead.
func runViewer(ctx context.Context, l graph.Layout) error {
	m := newViewerModel(l)
	if !isTerminal(os.Stdout) {
		m.height = len(l.Levels)
		fmt.Println(m.View())
		return nil
	}
	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// isTerminal reports whether f is an interactive terminal, including
// Cygwin and MSYS ptys on Windows.
func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
