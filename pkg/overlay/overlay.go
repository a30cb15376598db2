// Package overlay paints the execution state of process tokens onto a
// compiled diagram.
//
// Each token transition recolors the edge compiled for its transition. A
// passed edge is final: later token transitions for it are ignored, which
// makes repeated application with the same or a growing token set converge
// to the same result. Call [Apply] again whenever new token data arrives;
// a single graph must not be overlaid from several goroutines at once.
package overlay

import (
	"github.com/matzehuels/pvmviz/pkg/compile"
	"github.com/matzehuels/pvmviz/pkg/digraph"
	"github.com/matzehuels/pvmviz/pkg/errors"
	"github.com/matzehuels/pvmviz/pkg/process"
)

// Fixed state colors.
const (
	ColorInterrupted = "red"
	ColorPassed      = "#2f65fa"
	ColorWaiting     = "orange"
	ColorUnknown     = "#808080"
	ColorException   = "red"
)

// Options configures an overlay pass.
type Options struct {
	// ShowExceptions colors the destination vertex of a token transition
	// that carries an exception.
	ShowExceptions bool

	// TakenStyle, when set, replaces the line style of passed edges
	// (for example "bold").
	TakenStyle string
}

// Stats summarizes an overlay pass.
type Stats struct {
	Applied    int `json:"applied"`    // token transitions that changed an edge
	Skipped    int `json:"skipped"`    // token transitions whose edge was already passed
	Exceptions int `json:"exceptions"` // exceptions painted onto vertices
}

// StateColor returns the edge color for a token state. Unknown states are
// gray.
func StateColor(s process.State) string {
	switch s {
	case process.StateInterrupted:
		return ColorInterrupted
	case process.StatePassed:
		return ColorPassed
	case process.StateWaiting:
		return ColorWaiting
	default:
		return ColorUnknown
	}
}

// Apply paints tokens onto g, which must have been compiled from p. Tokens
// and their transitions are processed in order.
//
// A token transition whose transition has no edge in g aborts the pass with
// an error coded TRANSITION_NOT_FOUND; changes made before it are kept.
func Apply(g *digraph.Graph, p *process.Process, tokens []process.Token, opts Options) (Stats, error) {
	var stats Stats
	edges := indexEdges(g)

	for _, tok := range tokens {
		for _, tt := range tok.Transitions {
			edge, ok := edges[tt.TransitionID]
			if !ok {
				return stats, errors.New(errors.ErrCodeTransitionNotFound,
					"the edge for transition %q could not be found (token %q)", tt.TransitionID, tok.ID)
			}
			if State(edge) == process.StatePassed {
				stats.Skipped++
				continue
			}

			paint(edge, tt.State, opts)
			stats.Applied++

			if tt.HasException() && opts.ShowExceptions {
				if v, ok := g.Vertex(edge.To); ok {
					v.Attrs["color"] = ColorException
					stats.Exceptions++
				}
			}

			if tt.State == process.StatePassed && p.IsTerminal(edge.To) {
				if end, ok := g.FirstEdge(edge.To, compile.EndID); ok && State(end) != process.StatePassed {
					paint(end, tt.State, opts)
				}
			}
		}
	}
	return stats, nil
}

// State returns the overlay state of an edge, or "" when it was never
// painted.
func State(e *digraph.Edge) process.State {
	return process.State(e.Meta.String(compile.MetaState))
}

// EdgeState describes the overlay state of one compiled edge.
type EdgeState struct {
	TransitionID string
	From         string
	To           string
	State        process.State
}

// States lists the state of every edge that carries a transition id, in
// graph order.
func States(g *digraph.Graph) []EdgeState {
	var out []EdgeState
	for _, e := range g.Edges() {
		id := e.Meta.String(compile.MetaTransitionID)
		if id == "" {
			continue
		}
		out = append(out, EdgeState{TransitionID: id, From: e.From, To: e.To, State: State(e)})
	}
	return out
}

func paint(e *digraph.Edge, s process.State, opts Options) {
	e.Meta[compile.MetaState] = string(s)
	e.Attrs["color"] = StateColor(s)
	if s == process.StatePassed && opts.TakenStyle != "" {
		e.Attrs["style"] = opts.TakenStyle
	}
}

// indexEdges maps transition ids to the first edge carrying them.
func indexEdges(g *digraph.Graph) map[string]*digraph.Edge {
	idx := make(map[string]*digraph.Edge, g.EdgeCount())
	for _, e := range g.Edges() {
		id := e.Meta.String(compile.MetaTransitionID)
		if _, seen := idx[id]; id != "" && !seen {
			idx[id] = e
		}
	}
	return idx
}
