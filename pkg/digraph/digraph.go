package digraph

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidVertexID is returned by [Graph.AddVertex] when the id is empty.
	ErrInvalidVertexID = errors.New("vertex ID must not be empty")

	// ErrDuplicateVertexID is returned by [Graph.AddVertex] when a vertex with
	// the same id already exists.
	ErrDuplicateVertexID = errors.New("duplicate vertex ID")

	// ErrUnknownSourceVertex is returned by [Graph.AddEdge] when the From
	// vertex does not exist.
	ErrUnknownSourceVertex = errors.New("unknown source vertex")

	// ErrUnknownTargetVertex is returned by [Graph.AddEdge] when the To
	// vertex does not exist.
	ErrUnknownTargetVertex = errors.New("unknown target vertex")
)

// Attrs holds render attributes keyed by Graphviz attribute name
// (label, shape, color, fillcolor, ...). Values are emitted verbatim.
type Attrs map[string]string

// Metadata stores internal key-value pairs that are never rendered, such as
// correlation ids and overlay state.
type Metadata map[string]any

// String returns the metadata value for key as a string, or "" when absent.
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Vertex is a graph node. Attrs and Meta are never nil after AddVertex.
type Vertex struct {
	ID    string
	Attrs Attrs
	Meta  Metadata
}

// Edge is a directed connection. Edges are stored by pointer so callers can
// mutate Attrs and Meta in place.
type Edge struct {
	ID    string
	From  string
	To    string
	Attrs Attrs
	Meta  Metadata
}

// Graph is a directed multigraph that preserves insertion order of vertices
// and edges. Cycles and parallel edges are allowed.
//
// The zero value is not usable; use [New]. Graph is not safe for concurrent
// use without external synchronization.
type Graph struct {
	attrs    Attrs
	vertices map[string]*Vertex
	order    []string
	edges    []*Edge
	outgoing map[string][]*Edge
	incoming map[string][]*Edge
}

// New creates an empty graph with optional graph-level render attributes.
func New(attrs Attrs) *Graph {
	if attrs == nil {
		attrs = Attrs{}
	}
	return &Graph{
		attrs:    attrs,
		vertices: make(map[string]*Vertex),
		outgoing: make(map[string][]*Edge),
		incoming: make(map[string][]*Edge),
	}
}

// Attrs returns the graph-level render attributes. The map can be modified.
func (g *Graph) Attrs() Attrs { return g.attrs }

// AddVertex adds a vertex and returns the stored pointer.
func (g *Graph) AddVertex(v Vertex) (*Vertex, error) {
	if v.ID == "" {
		return nil, ErrInvalidVertexID
	}
	if _, exists := g.vertices[v.ID]; exists {
		return nil, ErrDuplicateVertexID
	}
	if v.Attrs == nil {
		v.Attrs = Attrs{}
	}
	if v.Meta == nil {
		v.Meta = Metadata{}
	}
	vertex := &v
	g.vertices[v.ID] = vertex
	g.order = append(g.order, v.ID)
	return vertex, nil
}

// Ensure returns the vertex with the given id, creating it with init when it
// does not exist yet. init runs at most once per id and may be nil. Ensure is
// safe to call any number of times.
func (g *Graph) Ensure(id string, init func(*Vertex)) (*Vertex, error) {
	if v, ok := g.vertices[id]; ok {
		return v, nil
	}
	v := Vertex{ID: id, Attrs: Attrs{}, Meta: Metadata{}}
	if init != nil {
		init(&v)
	}
	v.ID = id
	return g.AddVertex(v)
}

// Vertex returns the vertex with the given id.
func (g *Graph) Vertex(id string) (*Vertex, bool) {
	v, ok := g.vertices[id]
	return v, ok
}

// HasVertex reports whether a vertex with the given id exists.
func (g *Graph) HasVertex(id string) bool {
	_, ok := g.vertices[id]
	return ok
}

// Vertices returns all vertices in insertion order.
func (g *Graph) Vertices() []*Vertex {
	vs := make([]*Vertex, len(g.order))
	for i, id := range g.order {
		vs[i] = g.vertices[id]
	}
	return vs
}

// AddEdge adds a directed edge between two existing vertices and returns
// the stored pointer. Parallel edges are allowed.
func (g *Graph) AddEdge(e Edge) (*Edge, error) {
	if _, ok := g.vertices[e.From]; !ok {
		return nil, ErrUnknownSourceVertex
	}
	if _, ok := g.vertices[e.To]; !ok {
		return nil, ErrUnknownTargetVertex
	}
	if e.Attrs == nil {
		e.Attrs = Attrs{}
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	edge := &e
	g.edges = append(g.edges, edge)
	g.outgoing[e.From] = append(g.outgoing[e.From], edge)
	g.incoming[e.To] = append(g.incoming[e.To], edge)
	return edge, nil
}

// Edges returns all edges in insertion order. The slice is a copy, the
// edges are not.
func (g *Graph) Edges() []*Edge { return slices.Clone(g.edges) }

// EdgesBetween returns the edges from→to in insertion order.
func (g *Graph) EdgesBetween(from, to string) []*Edge {
	var result []*Edge
	for _, e := range g.outgoing[from] {
		if e.To == to {
			result = append(result, e)
		}
	}
	return result
}

// FirstEdge returns the first edge from→to.
func (g *Graph) FirstEdge(from, to string) (*Edge, bool) {
	for _, e := range g.outgoing[from] {
		if e.To == to {
			return e, true
		}
	}
	return nil, false
}

// FindEdge returns the first edge, in insertion order, for which match
// returns true.
func (g *Graph) FindEdge(match func(*Edge) bool) (*Edge, bool) {
	for _, e := range g.edges {
		if match(e) {
			return e, true
		}
	}
	return nil, false
}

// OutDegree returns the number of outgoing edges of the vertex.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming edges of the vertex.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return len(g.vertices) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Clone returns a deep copy of the graph. Attribute and metadata maps are
// copied; metadata values are copied shallowly.
func (g *Graph) Clone() *Graph {
	c := New(maps.Clone(g.attrs))
	for _, id := range g.order {
		v := g.vertices[id]
		_, _ = c.AddVertex(Vertex{ID: v.ID, Attrs: maps.Clone(v.Attrs), Meta: maps.Clone(v.Meta)})
	}
	for _, e := range g.edges {
		_, _ = c.AddEdge(Edge{ID: e.ID, From: e.From, To: e.To, Attrs: maps.Clone(e.Attrs), Meta: maps.Clone(e.Meta)})
	}
	return c
}
