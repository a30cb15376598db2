package digraph

import (
	"errors"
	"testing"
)

func TestAddVertex(t *testing.T) {
	g := New(nil)

	if _, err := g.AddVertex(Vertex{ID: "a"}); err != nil {
		t.Fatalf("AddVertex(a): %v", err)
	}
	if _, err := g.AddVertex(Vertex{ID: "a"}); !errors.Is(err, ErrDuplicateVertexID) {
		t.Errorf("duplicate AddVertex error = %v, want ErrDuplicateVertexID", err)
	}
	if _, err := g.AddVertex(Vertex{}); !errors.Is(err, ErrInvalidVertexID) {
		t.Errorf("empty AddVertex error = %v, want ErrInvalidVertexID", err)
	}

	v, ok := g.Vertex("a")
	if !ok {
		t.Fatal("Vertex(a) not found")
	}
	if v.Attrs == nil || v.Meta == nil {
		t.Error("AddVertex should initialize Attrs and Meta")
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	g := New(nil)
	calls := 0
	init := func(v *Vertex) {
		calls++
		v.Attrs["label"] = "Start"
	}

	first, err := g.Ensure("__start", init)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	second, err := g.Ensure("__start", init)
	if err != nil {
		t.Fatalf("Ensure again: %v", err)
	}

	if first != second {
		t.Error("Ensure should return the same vertex")
	}
	if calls != 1 {
		t.Errorf("init called %d times, want 1", calls)
	}
	if g.VertexCount() != 1 {
		t.Errorf("VertexCount() = %d, want 1", g.VertexCount())
	}
}

func TestAddEdge(t *testing.T) {
	g := New(nil)
	g.AddVertex(Vertex{ID: "a"})
	g.AddVertex(Vertex{ID: "b"})

	tests := []struct {
		name    string
		edge    Edge
		wantErr error
	}{
		{"valid", Edge{From: "a", To: "b"}, nil},
		{"parallel", Edge{From: "a", To: "b"}, nil},
		{"self loop", Edge{From: "a", To: "a"}, nil},
		{"unknown source", Edge{From: "x", To: "b"}, ErrUnknownSourceVertex},
		{"unknown target", Edge{From: "a", To: "x"}, ErrUnknownTargetVertex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.AddEdge(tt.edge)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddEdge() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", g.EdgeCount())
	}
	if got := len(g.EdgesBetween("a", "b")); got != 2 {
		t.Errorf("EdgesBetween(a, b) = %d, want 2", got)
	}
	if g.OutDegree("a") != 3 || g.InDegree("b") != 2 {
		t.Errorf("degrees: out(a)=%d in(b)=%d", g.OutDegree("a"), g.InDegree("b"))
	}
}

func TestEdgesKeepInsertionOrder(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"c", "a", "b"} {
		g.AddVertex(Vertex{ID: id})
	}
	g.AddEdge(Edge{ID: "2", From: "c", To: "a"})
	g.AddEdge(Edge{ID: "1", From: "a", To: "b"})

	var vs []string
	for _, v := range g.Vertices() {
		vs = append(vs, v.ID)
	}
	if vs[0] != "c" || vs[1] != "a" || vs[2] != "b" {
		t.Errorf("Vertices() order = %v, want [c a b]", vs)
	}
	es := g.Edges()
	if es[0].ID != "2" || es[1].ID != "1" {
		t.Errorf("Edges() order = [%s %s], want [2 1]", es[0].ID, es[1].ID)
	}
}

func TestEdgeMutationIsVisible(t *testing.T) {
	g := New(nil)
	g.AddVertex(Vertex{ID: "a"})
	g.AddVertex(Vertex{ID: "b"})
	g.AddEdge(Edge{From: "a", To: "b", Meta: Metadata{"transition_id": "t1"}})

	e, ok := g.FindEdge(func(e *Edge) bool { return e.Meta.String("transition_id") == "t1" })
	if !ok {
		t.Fatal("FindEdge did not find t1")
	}
	e.Attrs["color"] = "red"

	first, _ := g.FirstEdge("a", "b")
	if first.Attrs["color"] != "red" {
		t.Error("mutation through FindEdge should be visible through FirstEdge")
	}
}

func TestClone(t *testing.T) {
	g := New(Attrs{"rankdir": "TB"})
	g.AddVertex(Vertex{ID: "a", Attrs: Attrs{"color": "blue"}})
	g.AddVertex(Vertex{ID: "b"})
	g.AddEdge(Edge{From: "a", To: "b", Meta: Metadata{"state": "passed"}})

	c := g.Clone()
	v, _ := c.Vertex("a")
	v.Attrs["color"] = "red"
	c.Edges()[0].Meta["state"] = "waiting"
	c.Attrs()["rankdir"] = "LR"

	orig, _ := g.Vertex("a")
	if orig.Attrs["color"] != "blue" {
		t.Error("Clone should copy vertex attrs")
	}
	if g.Edges()[0].Meta["state"] != "passed" {
		t.Error("Clone should copy edge meta")
	}
	if g.Attrs()["rankdir"] != "TB" {
		t.Error("Clone should copy graph attrs")
	}
	if c.VertexCount() != 2 || c.EdgeCount() != 1 {
		t.Errorf("Clone counts = %d/%d, want 2/1", c.VertexCount(), c.EdgeCount())
	}
}
