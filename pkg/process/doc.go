// Package process models a workflow definition and its execution history as
// consumed by the diagram compiler.
//
// # Overview
//
// A [Process] is an ordered set of [Node] values connected by directed
// [Transition] values. A transition without a From node is a start
// transition; a transition whose To node has no outgoing transitions leads
// into a terminal node. Both can hold at once for a single-step process.
//
// Execution history is described by [Token] values. Each token records the
// transitions it took, waited on, or was interrupted on as an ordered list of
// [TokenTransition] records.
//
// The types in this package are read-only from the point of view of the
// compiler and overlay: nothing in this module mutates a process after it has
// been decoded.
//
// # JSON
//
// [ReadJSON] and [ReadTokensJSON] decode the wire format:
//
//	{
//	  "nodes": [{"id": "a", "label": "Approve", "options": {"type": "gateway"}}],
//	  "transitions": [{"id": "t1", "to": "a"}, {"id": "t2", "from": "a", "to": "b"}]
//	}
//
//	[{"id": "tok1", "transitions": [{"transition": "t1", "state": "passed"}]}]
//
// The exception field of a token transition accepts either a boolean or a
// message string.
package process
