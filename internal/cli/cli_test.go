package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/collatz/pkg/collatz"
	"github.com/matzehuels/collatz/pkg/errors"
	"github.com/matzehuels/collatz/pkg/graph"
	"github.com/matzehuels/collatz/pkg/pipeline"
)

// execute runs the root command with args and returns what it wrote to its
// output stream.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// writeConfig writes a config file that keeps the cache inside the test's
// temp dir, followed by extra.
func writeConfig(t *testing.T, extra string) (path, cacheDir string) {
	t.Helper()
	dir := t.TempDir()
	cacheDir = filepath.Join(dir, "cache")
	path = filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("[cache]\ndir = %q\n\n%s", cacheDir, extra)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path, cacheDir
}

func readLayout(t *testing.T, path string) graph.Layout {
	t.Helper()
	l, err := graph.ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return l
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"27", 27, false},
		{" 6 ", 6, false},
		{"18446744073709551615", 18446744073709551615, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"18446744073709551616", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseNumber(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Errorf("parseNumber(%q) error = %v, want INVALID_INPUT", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseNumber(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseNumber(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	seq := pipeline.Options{Mode: collatz.ModeSequence, Number: 27}
	inv := pipeline.Options{Mode: collatz.ModeInverse, Number: 16, Depth: 5}

	tests := []struct {
		name   string
		output string
		opts   pipeline.Options
		want   string
	}{
		{"sequence default", "", seq, "collatz-sequence-27"},
		{"inverse default", "", inv, "collatz-inverse-16-d5"},
		{"known extension stripped", "out/tree.svg", inv, "out/tree"},
		{"dot extension stripped", "tree.dot", inv, "tree"},
		{"unknown extension kept", "tree.v2", inv, "tree.v2"},
		{"no extension", "out/six", seq, "out/six"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.opts); got != tt.want {
				t.Errorf("basePath(%q) = %q, want %q", tt.output, got, tt.want)
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags graphFlags
		want  []string
	}{
		{"viewer only renders json", graphFlags{}, []string{pipeline.FormatJSON}},
		{"explicit formats", graphFlags{formats: "svg, DOT"}, []string{"svg", "dot"}},
		{"format from extension", graphFlags{output: "tree.dot"}, []string{"dot"}},
		{"config default for bare output", graphFlags{output: "tree"}, []string{pipeline.FormatSVG}},
		{"flag beats extension", graphFlags{output: "tree.dot", formats: "json"}, []string{"json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(io.Discard, LogInfo)
			var opts pipeline.Options
			c.applyFlags(&opts, &tt.flags)
			if !slices.Equal(opts.Formats, tt.want) {
				t.Errorf("formats = %v, want %v", opts.Formats, tt.want)
			}
			if opts.VizType != pipeline.DefaultVizType {
				t.Errorf("viz type = %q, want config default", opts.VizType)
			}
		})
	}
}

func TestGraphFlagsInteractive(t *testing.T) {
	tests := []struct {
		flags graphFlags
		want  bool
	}{
		{graphFlags{}, true},
		{graphFlags{output: "x"}, false},
		{graphFlags{formats: "svg"}, false},
		{graphFlags{output: "x", view: true}, true},
	}
	for _, tt := range tests {
		if got := tt.flags.interactive(); got != tt.want {
			t.Errorf("%+v interactive = %v, want %v", tt.flags, got, tt.want)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "six")
	artifacts := map[string][]byte{"json": []byte("{}"), "dot": []byte("digraph G {}")}

	paths, err := writeArtifacts(artifacts, []string{"json", "dot"}, base)
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	want := []string{base + ".json", base + ".dot"}
	if !slices.Equal(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	data, _ := os.ReadFile(base + ".dot")
	if string(data) != "digraph G {}" {
		t.Errorf("dot file = %q", data)
	}

	if _, err := writeArtifacts(artifacts, []string{"svg"}, base); err == nil {
		t.Error("expected error for a format that was not rendered")
	}
}

func TestSequenceCommand(t *testing.T) {
	cfg, _ := writeConfig(t, "")
	base := filepath.Join(t.TempDir(), "six")

	if _, err := execute(t, "--config", cfg, "sequence", "6", "-f", "json,dot", "-o", base); err != nil {
		t.Fatalf("sequence: %v", err)
	}

	l := readLayout(t, base+".json")
	if l.Title != "Collatz Sequence starting from 6" {
		t.Errorf("title = %q", l.Title)
	}
	if len(l.Nodes) != 9 || len(l.Levels) != 9 {
		t.Errorf("got %d nodes in %d levels, want 9 and 9", len(l.Nodes), len(l.Levels))
	}
	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(dot), "digraph G {") {
		t.Errorf("dot output = %.40q", dot)
	}
}

func TestInverseCommandDepth(t *testing.T) {
	cfg, _ := writeConfig(t, "[inverse]\ndepth = 2\n")
	dir := t.TempDir()

	tests := []struct {
		name      string
		args      []string
		wantTitle string
		wantNodes int
	}{
		{"depth from config", nil, "Inverse Collatz Tree leading to 16 (depth: 2)", 5},
		{"depth flag", []string{"-d", "1"}, "Inverse Collatz Tree leading to 16 (depth: 1)", 3},
		{"depth zero", []string{"--depth", "0"}, "Inverse Collatz Tree leading to 16 (depth: 0)", 1},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, fmt.Sprintf("tree%d.json", i))
			args := append([]string{"--config", cfg, "inverse", "16", "-o", out}, tt.args...)
			if _, err := execute(t, args...); err != nil {
				t.Fatalf("inverse: %v", err)
			}
			l := readLayout(t, out)
			if l.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", l.Title, tt.wantTitle)
			}
			if len(l.Nodes) != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", len(l.Nodes), tt.wantNodes)
			}
		})
	}
}

func TestNodelinkOutput(t *testing.T) {
	cfg, _ := writeConfig(t, "")
	out := filepath.Join(t.TempDir(), "tree.json")

	if _, err := execute(t, "--config", cfg, "inverse", "16", "-d", "1", "-t", "nodelink", "--detailed", "-o", out); err != nil {
		t.Fatalf("inverse: %v", err)
	}
	l := readLayout(t, out)
	if !l.IsNodelink() {
		t.Errorf("viz type = %q", l.VizType)
	}
	if !strings.Contains(l.DOT, `label="16\nlevel: 1`) {
		t.Errorf("detailed DOT labels missing:\n%s", l.DOT)
	}
}

func TestCommandErrors(t *testing.T) {
	cfg, _ := writeConfig(t, "")
	out := filepath.Join(t.TempDir(), "x")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"zero", []string{"sequence", "0", "-o", out}, errors.ErrCodeInvalidInput},
		{"not a number", []string{"inverse", "abc", "-o", out}, errors.ErrCodeInvalidInput},
		{"negative depth", []string{"inverse", "16", "-d", "-1", "-o", out}, errors.ErrCodeInvalidInput},
		{"bad format", []string{"sequence", "6", "-f", "gif", "-o", out}, errors.ErrCodeInvalidFormat},
		{"bad viz type", []string{"sequence", "6", "-t", "tower", "-o", out}, errors.ErrCodeInvalidVizType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append([]string{"--config", cfg}, tt.args...)...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg, _ := writeConfig(t, "[render]\ncolour = \"red\"\n")
	_, err := execute(t, "--config", cfg, "sequence", "6", "-o", filepath.Join(t.TempDir(), "x"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestConfigCommands(t *testing.T) {
	cfg, _ := writeConfig(t, "[layout]\nhorizontal_spacing = 90.0\n")

	out, err := execute(t, "--config", cfg, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != cfg {
		t.Errorf("config path = %q, want %q", out, cfg)
	}

	out, err = execute(t, "--config", cfg, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[layout]", "horizontal_spacing = 90.0", "vertical_spacing = 80.0", "[server]"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := execute(t, "completion", shell)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, "collatz") {
				t.Errorf("%s completion does not mention collatz", shell)
			}
		})
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "collatz ") {
		t.Errorf("version output = %q", out)
	}
}
