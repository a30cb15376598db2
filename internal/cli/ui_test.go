package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/pvmviz/pkg/overlay"
	"github.com/matzehuels/pvmviz/pkg/pipeline"
	"github.com/matzehuels/pvmviz/pkg/process"
)

func TestStatsLine(t *testing.T) {
	stats := pipeline.Stats{VertexCount: 5, EdgeCount: 6, CompileTime: 1234 * time.Microsecond}

	line := statsLine(stats, false)
	for _, want := range []string{"5 vertices", "6 edges", "rendered", "compiled in 1.23ms"} {
		if !strings.Contains(line, want) {
			t.Errorf("statsLine missing %q: %s", want, line)
		}
	}
	if !strings.Contains(statsLine(stats, true), "cached") {
		t.Error("cached render should say so")
	}
}

func TestStyleRow(t *testing.T) {
	tests := []struct {
		key, value string
		swatches   int
		want       string
	}{
		{"shape", "box", 0, "box"},
		{"color", "#2f65fa", 1, "#2f65fa"},
		{"fillcolor_gradient", "#ffffff:#000000", 2, "#ffffff:#000000"},
		{"fontcolor", "black", 0, "black"},
		{"label", "", 0, "-"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			row := styleRow(tt.key, tt.value)
			if !strings.HasPrefix(row, tt.key) || !strings.HasSuffix(row, tt.want) {
				t.Errorf("styleRow = %q", row)
			}
			if got := strings.Count(row, iconSwatch); got != tt.swatches {
				t.Errorf("swatches = %d, want %d", got, tt.swatches)
			}
		})
	}
}

func TestStateSummary(t *testing.T) {
	states := []overlay.EdgeState{
		{TransitionID: "a", State: process.StatePassed},
		{TransitionID: "b", State: process.StatePassed},
		{TransitionID: "c", State: process.StateWaiting},
		{TransitionID: "d"},
	}
	if got, want := stateSummary(states), "2 passed  1 waiting  1 untouched"; got != want {
		t.Errorf("stateSummary = %q, want %q", got, want)
	}
	if got := stateSummary(nil); got != "" {
		t.Errorf("stateSummary(nil) = %q", got)
	}
}
