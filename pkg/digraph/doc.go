// Package digraph provides the attributed directed multigraph used to carry a
// compiled process diagram from the compiler, through the token overlay, to
// the render gateway.
//
// # Overview
//
// Every [Vertex] and [Edge] carries two maps:
//
//   - Attrs: render attributes using Graphviz attribute names, emitted
//     verbatim by the render gateway
//   - Meta: internal values that are never rendered, such as the transition
//     id an edge was created for and the overlay state
//
// Vertices and edges keep insertion order, which makes compilation output
// deterministic for a given process.
//
// # Idempotent vertices
//
// [Graph.Ensure] creates a vertex only when it is missing. The compiler and
// the overlay both ask for the synthetic start and end vertices through it,
// so repeated requests on an already-compiled graph are harmless.
//
// # Concurrency
//
// A Graph is owned by one caller at a time. The overlay mutates edges and
// vertices in place and must not run concurrently on the same graph.
package digraph
