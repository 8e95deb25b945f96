package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/collatz/pkg/graph"
)

// testLayout is the inverse tree of 16 at depth 2, drawn top down:
//
//	64 10
//	32  5
//	  16
func testLayout() graph.Layout {
	node := func(id int, v uint64, row int, x, y float64) graph.LayoutNode {
		return graph.LayoutNode{Node: graph.Node{ID: id, Value: v, Row: row}, X: x, Y: y}
	}
	return graph.Layout{
		VizType: graph.VizTypeLevels,
		Title:   "Inverse Collatz Tree leading to 16 (depth: 2)",
		Nodes: []graph.LayoutNode{
			node(0, 16, 2, 400, 260),
			node(1, 32, 1, 340, 180),
			node(2, 5, 1, 460, 180),
			node(3, 64, 0, 340, 100),
			node(4, 10, 0, 460, 100),
		},
		Edges:  []graph.Edge{{From: 1, To: 0}, {From: 2, To: 0}, {From: 3, To: 1}, {From: 4, To: 2}},
		Levels: [][]int{{3, 4}, {1, 2}, {0}},
	}
}

func press(m viewerModel, keys ...string) viewerModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(viewerModel)
	}
	return m
}

func TestViewerNavigation(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want uint64
	}{
		{"initial", nil, 64},
		{"right", []string{"right"}, 10},
		{"right stops at level end", []string{"right", "right", "right"}, 10},
		{"left stops at level start", []string{"left"}, 64},
		{"down keeps index", []string{"right", "down"}, 5},
		{"down clamps index", []string{"right", "down", "down"}, 16},
		{"up stops at first level", []string{"up", "up"}, 64},
		{"vim keys", []string{"l", "j"}, 5},
		{"last level", []string{"G"}, 16},
		{"first level", []string{"G", "g"}, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(newViewerModel(testLayout()), tt.keys...)
			n, ok := m.selected()
			if !ok {
				t.Fatal("no node selected")
			}
			if n.Value != tt.want {
				t.Errorf("selected %d, want %d", n.Value, tt.want)
			}
		})
	}
}

func TestViewerQuit(t *testing.T) {
	for _, key := range []string{"q", "esc", "ctrl+c"} {
		var msg tea.KeyMsg
		switch key {
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}
		_, cmd := newViewerModel(testLayout()).Update(msg)
		if cmd == nil {
			t.Errorf("%s: expected quit command", key)
			continue
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", key)
		}
	}
}

func TestViewerView(t *testing.T) {
	m := press(newViewerModel(testLayout()), "right", "down")
	view := m.View()

	for _, want := range []string{
		"Inverse Collatz Tree leading to 16 (depth: 2)",
		"64 10",
		"32 5",
		"16",
		"value 5",
		"level 1",
		"at (460, 180)",
		"from 10",
		"to 16",
		"[level 2/3]",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestViewerScroll(t *testing.T) {
	m := newViewerModel(testLayout())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 7})
	m = next.(viewerModel)
	if m.height != 3 {
		t.Fatalf("height = %d, want minimum of 3", m.height)
	}

	m.height = 1
	m = press(m, "down", "down")
	if m.offset != 2 {
		t.Errorf("offset = %d, want 2", m.offset)
	}
	if strings.Contains(m.View(), "64") {
		t.Error("scrolled-out level still rendered")
	}
	m = press(m, "up")
	if m.offset != 1 {
		t.Errorf("offset = %d, want 1", m.offset)
	}
}

func TestViewerEmptyLayout(t *testing.T) {
	m := press(newViewerModel(graph.Layout{}), "down", "right")
	if _, ok := m.selected(); ok {
		t.Error("empty layout should have no selection")
	}
	if !strings.Contains(m.View(), "no nodes") {
		t.Errorf("view = %q", m.View())
	}
}

func TestIsTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if isTerminal(f) {
		t.Error("regular file reported as terminal")
	}

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()
	if isTerminal(w) {
		t.Error("pipe reported as terminal")
	}
}
