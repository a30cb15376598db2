package style

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a [Source] that has no record for a key. The
// resolver treats it as a quiet fallback to the built-in table.
var ErrNotFound = errors.New("style: not found")

// Source delivers raw style records. Implementations live in the stylestore
// packages and may be backed by files or remote stores; they are called
// synchronously and may fail, which never aborts a compilation.
type Source interface {
	NodeStyle(ctx context.Context, nodeType string) (Record, error)
	TransitionStyle(ctx context.Context) (Record, error)
	SpecialNodeStyle(ctx context.Context, kind Special) (Record, error)
	GraphSettings(ctx context.Context) (GraphRecord, error)
}

// Builtin is a Source that knows nothing. Every lookup yields ErrNotFound,
// so a resolver backed by it serves the built-in table only.
type Builtin struct{}

func (Builtin) NodeStyle(context.Context, string) (Record, error) { return Record{}, ErrNotFound }
func (Builtin) TransitionStyle(context.Context) (Record, error) { return Record{}, ErrNotFound }
func (Builtin) SpecialNodeStyle(context.Context, Special) (Record, error) { return Record{}, ErrNotFound }
func (Builtin) GraphSettings(context.Context) (GraphRecord, error) { return GraphRecord{}, ErrNotFound }

// Table is an in-memory Source, used by the file store and by tests.
type Table struct {
	Nodes      map[string]Record
	Transition *Record
	Special    map[Special]Record
	Graph      *GraphRecord
}

func (t *Table) NodeStyle(_ context.Context, nodeType string) (Record, error) {
	if r, ok := t.Nodes[nodeType]; ok {
		return r, nil
	}
	return Record{}, ErrNotFound
}

func (t *Table) TransitionStyle(context.Context) (Record, error) {
	if t.Transition == nil {
		return Record{}, ErrNotFound
	}
	return *t.Transition, nil
}

func (t *Table) SpecialNodeStyle(_ context.Context, kind Special) (Record, error) {
	if r, ok := t.Special[kind]; ok {
		return r, nil
	}
	return Record{}, ErrNotFound
}

func (t *Table) GraphSettings(context.Context) (GraphRecord, error) {
	if t.Graph == nil {
		return GraphRecord{}, ErrNotFound
	}
	return *t.Graph, nil
}

// BuiltinTable returns the built-in defaults as a Table, for dumping and
// seeding stores.
func BuiltinTable() *Table {
	tr := builtinTransition
	g := builtinGraph
	special := make(map[Special]Record, len(builtinSpecial))
	for k, v := range builtinSpecial {
		special[k] = v
	}
	return &Table{
		Nodes:      BuiltinNodeStyles(),
		Transition: &tr,
		Special:    special,
		Graph:      &g,
	}
}
