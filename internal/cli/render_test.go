package cli

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/pvmviz/pkg/style"
)

const reviewJSON = `{
  "nodes": [
    {"id": "review", "options": {"type": "gateway"}},
    {"id": "approved", "options": {"database_id": 7}},
    {"id": "rejected"}
  ],
  "transitions": [
    {"id": "submit", "to": "review"},
    {"id": "ok", "from": "review", "to": "approved"},
    {"id": "nok", "from": "review", "to": "rejected"}
  ]
}`

const reviewTokensJSON = `[
  {"id": "tok-1", "transitions": [
    {"transition": "submit", "state": "passed"},
    {"transition": "ok", "state": "waiting"}
  ]}
]`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"blank defaults to svg", "  ", []string{"svg"}},
		{"single format", "png", []string{"png"}},
		{"multiple formats", "svg,png,dot", []string{"svg", "png", "dot"}},
		{"whitespace and empty entries", " svg , ,dot", []string{"svg", "dot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "flows/review.json", "flows/review"},
		{"out.svg", "review.json", "out"},
		{"out.png", "review.json", "out"},
		{"out.pdf", "review.json", "out.pdf"},
		{"build/review", "review.json", "build/review"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output, base, format string
		count                int
		want                 string
	}{
		{"", "review", "svg", 1, "review.svg"},
		{"diagram.svg", "diagram", "svg", 1, "diagram.svg"},
		{"diagram.svg", "diagram", "png", 2, "diagram.png"},
		{"", "review", "dot", 3, "review.dot"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.output, tt.base, tt.format, tt.count); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q, %d) = %q, want %q", tt.output, tt.base, tt.format, tt.count, got, tt.want)
		}
	}
}

func TestLoadRequest(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "review.json", reviewJSON)
	tokens := writeFile(t, dir, "tokens.json", reviewTokensJSON)

	req, err := loadRequest(input, tokens, Config{Mode: "dark", URLTemplate: "/p/%s"})
	if err != nil {
		t.Fatalf("loadRequest: %v", err)
	}
	if req.Process.ID != "review" {
		t.Errorf("process id = %q, want file base name", req.Process.ID)
	}
	if req.Mode != style.ModeDark || req.URLTemplate != "/p/%s" || !req.ShowExceptions {
		t.Errorf("request = %+v", req)
	}
	if len(req.Tokens) != 1 || len(req.Tokens[0].Transitions) != 2 {
		t.Errorf("tokens = %+v", req.Tokens)
	}

	if _, err := loadRequest(filepath.Join(dir, "missing.json"), "", Config{}); err == nil {
		t.Error("missing process file should fail")
	}
}
