package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pvmviz/pkg/cache"
	"github.com/matzehuels/pvmviz/pkg/compile"
	"github.com/matzehuels/pvmviz/pkg/errors"
	"github.com/matzehuels/pvmviz/pkg/process"
	"github.com/matzehuels/pvmviz/pkg/style"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// review is start -> review -> {approved, rejected}.
func review() *process.Process {
	return &process.Process{
		ID: "review",
		Nodes: []process.Node{
			{ID: "review", Options: map[string]any{"type": "gateway"}},
			{ID: "approved", Options: map[string]any{"database_id": 7}},
			{ID: "rejected"},
		},
		Transitions: []process.Transition{
			{ID: "submit", To: "review"},
			{ID: "ok", From: "review", To: "approved", DatabaseID: "11"},
			{ID: "nok", From: "review", To: "rejected"},
		},
	}
}

func passedTokens(ids ...string) []process.Token {
	tok := process.Token{ID: "tok-1"}
	for _, id := range ids {
		tok.Transitions = append(tok.Transitions, process.TokenTransition{TransitionID: id, State: process.StatePassed})
	}
	return []process.Token{tok}
}

// countingCache records Set calls on top of a real cache.
type countingCache struct {
	cache.Cache
	sets int
}

func (c *countingCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.sets++
	return c.Cache.Set(ctx, key, data, ttl)
}

func newRunner(t *testing.T) (*Runner, *countingCache) {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	cc := &countingCache{Cache: fc}
	return NewRunner(cc, nil, nil, quietLogger()), cc
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		code errors.Code
	}{
		{"missing process", Request{}, errors.ErrCodeInvalidInput},
		{"duplicate node", Request{Process: &process.Process{Nodes: []process.Node{{ID: "a"}, {ID: "a"}}}}, errors.ErrCodeInvalidProcess},
		{"bad mode", Request{Process: review(), Mode: "sepia"}, errors.ErrCodeInvalidMode},
		{"bad format", Request{Process: review(), Formats: []string{"pdf"}}, errors.ErrCodeInvalidFormat},
		{"bad template", Request{Process: review(), URLTemplate: "edit(%d)"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.ValidateAndSetDefaults()
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err = %v)", got, tt.code, err)
			}
		})
	}
}

func TestRequestDefaults(t *testing.T) {
	req := Request{Process: review(), Mode: "DARK"}
	if err := req.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if req.Mode != style.ModeDark {
		t.Errorf("Mode = %q, want dark", req.Mode)
	}
	if len(req.Formats) != 1 || req.Formats[0] != DefaultFormat {
		t.Errorf("Formats = %v, want [%s]", req.Formats, DefaultFormat)
	}

	// Idempotent.
	req.Formats = []string{"png"}
	if err := req.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if req.Formats[0] != "png" {
		t.Errorf("second call changed formats: %v", req.Formats)
	}
}

func TestRunDOT(t *testing.T) {
	r, cc := newRunner(t)
	res, err := r.Run(context.Background(), Request{
		Process:     review(),
		Formats:     []string{"dot"},
		URLTemplate: "javascript:edit('%s')",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if string(res.Artifacts["dot"]) != res.DOT {
		t.Error("dot artifact differs from Result.DOT")
	}
	for _, want := range []string{`"__start"`, `"__end"`, `"approved" -> "__end"`, `javascript:edit('7')`, `javascript:edit('11')`} {
		if !strings.Contains(res.DOT, want) {
			t.Errorf("DOT missing %s", want)
		}
	}
	if res.Stats.VertexCount != 5 || res.Stats.EdgeCount != 5 {
		t.Errorf("counts = %d vertices, %d edges; want 5, 5", res.Stats.VertexCount, res.Stats.EdgeCount)
	}
	if !res.CacheInfo.RenderHit {
		t.Error("dot output should not need Graphviz")
	}
	if cc.sets != 0 {
		t.Errorf("dot output was cached %d times", cc.sets)
	}
	if res.DOTHash != cache.Hash([]byte(res.DOT)) {
		t.Error("DOTHash does not match DOT")
	}
}

func TestRunOverlay(t *testing.T) {
	r, _ := newRunner(t)
	res, err := r.Run(context.Background(), Request{
		Process: review(),
		Tokens:  passedTokens("submit", "ok"),
		Formats: []string{"dot"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Overlay.Applied != 2 {
		t.Errorf("Applied = %d, want 2", res.Overlay.Applied)
	}
	end, ok := res.Graph.FirstEdge("approved", "__end")
	if !ok {
		t.Fatal("missing end edge")
	}
	if end.Attrs["color"] != "#2f65fa" {
		t.Errorf("end edge color = %q, want passed color", end.Attrs["color"])
	}

	plain, err := r.Run(context.Background(), Request{Process: review(), Formats: []string{"dot"}})
	if err != nil {
		t.Fatalf("Run without tokens: %v", err)
	}
	if plain.DOTHash == res.DOTHash {
		t.Error("token state should change the DOT hash")
	}
}

func TestRunIgnoresStoredTakenColor(t *testing.T) {
	src := style.BuiltinTable()
	tr := *src.Transition
	tr.TakenColor = style.V("#ff0000", "#00ff00")
	src.Transition = &tr
	r := NewRunner(cache.NewNullCache(), nil, compile.New(style.NewResolver(src, quietLogger()), quietLogger()), quietLogger())

	for _, m := range []style.Mode{style.ModeLight, style.ModeDark} {
		res, err := r.Run(context.Background(), Request{
			Process: review(),
			Mode:    m,
			Tokens:  passedTokens("submit", "ok"),
			Formats: []string{"dot"},
		})
		if err != nil {
			t.Fatalf("Run(%s): %v", m, err)
		}
		e, ok := res.Graph.FirstEdge("review", "approved")
		if !ok {
			t.Fatalf("Run(%s): missing edge review -> approved", m)
		}
		if e.Attrs["color"] != "#2f65fa" {
			t.Errorf("Run(%s): passed color = %q, want #2f65fa", m, e.Attrs["color"])
		}
	}
}

func TestRunLogsCompileOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	r := NewRunner(cache.NewNullCache(), nil, nil, logger)
	if _, err := r.Run(context.Background(), Request{Process: review(), Formats: []string{"dot"}}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := strings.Count(buf.String(), "compiled process"); n != 1 {
		t.Errorf("compile summary logged %d times, want 1:\n%s", n, buf.String())
	}
}

func TestRunUnknownTransition(t *testing.T) {
	r, _ := newRunner(t)
	_, err := r.Run(context.Background(), Request{
		Process: review(),
		Tokens:  passedTokens("submit", "nope"),
		Formats: []string{"dot"},
	})
	if !errors.Is(err, errors.ErrCodeTransitionNotFound) {
		t.Fatalf("err = %v, want TRANSITION_NOT_FOUND", err)
	}
}

func TestRunCachesArtifacts(t *testing.T) {
	r, cc := newRunner(t)
	ctx := context.Background()
	req := Request{Process: review(), Formats: []string{"svg"}}

	first, err := r.Run(ctx, req)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run should miss the cache")
	}
	if !bytes.Contains(first.Artifacts["svg"], []byte("<svg")) {
		t.Error("svg artifact does not look like SVG")
	}

	second, err := r.Run(ctx, req)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the cache")
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached artifact differs")
	}

	req.Refresh = true
	third, err := r.Run(ctx, req)
	if err != nil {
		t.Fatalf("refresh Run: %v", err)
	}
	if len(third.CacheInfo.Hits) != 0 {
		t.Errorf("refresh should skip reads, hits = %v", third.CacheInfo.Hits)
	}
	if cc.sets != 2 {
		t.Errorf("sets = %d, want 2", cc.sets)
	}
}

func TestBuild(t *testing.T) {
	r, _ := newRunner(t)
	g, stats, err := r.Build(context.Background(), Request{Process: review(), Tokens: passedTokens("submit")})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stats.Applied != 1 {
		t.Errorf("Applied = %d, want 1", stats.Applied)
	}
	if !g.HasVertex("__start") {
		t.Error("graph missing start vertex")
	}
}
