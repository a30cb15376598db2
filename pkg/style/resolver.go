package style

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pvmviz/pkg/observability"
)

type cacheKey struct {
	mode Mode
	kind Kind
	key  string
}

// Resolver turns raw records from a [Source] into mode-applied entries,
// falling back to the built-in table whenever the source has nothing or
// fails. Resolved values are cached per (mode, kind, key).
//
// A Resolver is safe for concurrent use; one instance can serve compilations
// in different modes at the same time.
type Resolver struct {
	src    Source
	logger *log.Logger

	mu      sync.RWMutex
	entries map[cacheKey]Entry
	graphs  map[Mode]GraphSettings
}

// NewResolver creates a resolver over src. A nil src serves the built-in
// table only; a nil logger uses log.Default().
func NewResolver(src Source, logger *log.Logger) *Resolver {
	if src == nil {
		src = Builtin{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		src:     src,
		logger:  logger,
		entries: make(map[cacheKey]Entry),
		graphs:  make(map[Mode]GraphSettings),
	}
}

// NodeStyle resolves the style for a node type. An empty type resolves as
// [DefaultNodeType].
//
// When the source provides a record, its empty fields are filled from the
// built-in record except Color, which stays empty so the caller can apply
// its own hint.
func (r *Resolver) NodeStyle(ctx context.Context, m Mode, nodeType string) Entry {
	if nodeType == "" {
		nodeType = DefaultNodeType
	}
	return r.entry(ctx, cacheKey{m, KindNode, nodeType}, func() Record {
		builtin, known := BuiltinNodeStyle(nodeType)
		rec, err := r.src.NodeStyle(ctx, nodeType)
		if err == nil {
			return fillKeepColor(rec, builtin)
		}
		r.fallback(ctx, KindNode, nodeType, err)
		if known {
			return builtin
		}
		// Unknown to the built-ins as well: try the source's default record.
		rec, err = r.src.NodeStyle(ctx, DefaultNodeType)
		if err == nil {
			return fillKeepColor(rec, builtin)
		}
		r.fallback(ctx, KindNode, DefaultNodeType, err)
		return builtin
	})
}

// TransitionStyle resolves the style shared by all edges.
func (r *Resolver) TransitionStyle(ctx context.Context, m Mode) Entry {
	return r.entry(ctx, cacheKey{m, KindTransition, DefaultNodeType}, func() Record {
		rec, err := r.src.TransitionStyle(ctx)
		if err != nil {
			r.fallback(ctx, KindTransition, DefaultNodeType, err)
			return builtinTransition
		}
		return rec.fill(builtinTransition)
	})
}

// SpecialNodeStyle resolves the style for the synthetic start or end vertex.
func (r *Resolver) SpecialNodeStyle(ctx context.Context, m Mode, kind Special) Entry {
	return r.entry(ctx, cacheKey{m, KindSpecial, string(kind)}, func() Record {
		builtin := BuiltinSpecialNodeStyle(kind)
		rec, err := r.src.SpecialNodeStyle(ctx, kind)
		if err != nil {
			r.fallback(ctx, KindSpecial, string(kind), err)
			return builtin
		}
		return rec.fill(builtin)
	})
}

// GraphSettings resolves the graph-level layout settings.
func (r *Resolver) GraphSettings(ctx context.Context, m Mode) GraphSettings {
	r.mu.RLock()
	gs, ok := r.graphs[m]
	r.mu.RUnlock()
	observability.Style().OnStyleLookup(ctx, string(KindGraph), DefaultNodeType, string(m), ok)
	if ok {
		return gs
	}

	rec, err := r.src.GraphSettings(ctx)
	if err != nil {
		r.fallback(ctx, KindGraph, DefaultNodeType, err)
		rec = builtinGraph
	} else {
		rec = rec.fill(builtinGraph)
	}
	gs = rec.Resolve(m)

	r.mu.Lock()
	r.graphs[m] = gs
	r.mu.Unlock()
	return gs
}

// Invalidate drops every cached entry.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.entries)
	clear(r.graphs)
}

// InvalidateMode drops the cached entries of one mode.
func (r *Resolver) InvalidateMode(m Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.entries {
		if k.mode == m {
			delete(r.entries, k)
		}
	}
	delete(r.graphs, m)
}

func (r *Resolver) entry(ctx context.Context, k cacheKey, load func() Record) Entry {
	r.mu.RLock()
	e, ok := r.entries[k]
	r.mu.RUnlock()
	observability.Style().OnStyleLookup(ctx, string(k.kind), k.key, string(k.mode), ok)
	if ok {
		return e
	}

	e = load().Resolve(k.mode)

	r.mu.Lock()
	r.entries[k] = e
	r.mu.Unlock()
	return e
}

func (r *Resolver) fallback(ctx context.Context, kind Kind, key string, err error) {
	if errors.Is(err, ErrNotFound) {
		r.logger.Debug("style not in source, using built-in", "kind", kind, "key", key)
		observability.Style().OnStyleFallback(ctx, string(kind), key, nil)
		return
	}
	r.logger.Warn("style lookup failed, using built-in", "kind", kind, "key", key, "err", err)
	observability.Style().OnStyleFallback(ctx, string(kind), key, err)
}

func fillKeepColor(rec, builtin Record) Record {
	color := rec.Color
	rec = rec.fill(builtin)
	rec.Color = color
	return rec
}
