package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pvmviz/pkg/cache"
	"github.com/matzehuels/pvmviz/pkg/compile"
	"github.com/matzehuels/pvmviz/pkg/digraph"
	"github.com/matzehuels/pvmviz/pkg/observability"
	"github.com/matzehuels/pvmviz/pkg/overlay"
	"github.com/matzehuels/pvmviz/pkg/render"
	"github.com/matzehuels/pvmviz/pkg/style"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner holds no per-request state. Multiple goroutines can safely use
// the same Runner; the compiler's style resolver is itself concurrent-safe.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Compiler *compile.Compiler
	Logger   *log.Logger
}

// NewRunner creates a runner.
// If c is nil, a NullCache is used (caching disabled).
// If keyer is nil, a DefaultKeyer is used.
// If compiler is nil, one backed by the built-in styles is created.
func NewRunner(c cache.Cache, keyer cache.Keyer, compiler *compile.Compiler, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if compiler == nil {
		compiler = compile.New(style.NewResolver(nil, logger), logger)
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Compiler: compiler,
		Logger:   logger,
	}
}

// Run executes compile → overlay → render for one request.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	// Stage 1 and 2: Compile and overlay
	g, ostats, stats, err := r.build(ctx, &req)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Graph:   g,
		Overlay: ostats,
		Stats:   stats,
	}

	// Stage 3: Render
	result.DOT = render.ToDOT(g, render.Options{URLTemplate: req.URLTemplate})
	result.DOTHash = cache.Hash([]byte(result.DOT))

	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, req.Formats)
	artifacts, hits, err := r.RenderWithCacheInfo(ctx, result.DOT, result.DOTHash, req.Formats, req.Refresh)
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Pipeline().OnRenderComplete(ctx, req.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo = CacheInfo{Hits: hits, RenderHit: len(hits) == len(req.Formats)}

	r.Logger.Info("rendered diagram",
		"process", req.Process.ID,
		"formats", req.Formats,
		"cached", len(hits),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Build runs the compile and overlay stages only. The watch view uses it to
// obtain a graph whose overlay it then refreshes in place.
func (r *Runner) Build(ctx context.Context, req Request) (*digraph.Graph, overlay.Stats, error) {
	if err := req.ValidateAndSetDefaults(); err != nil {
		return nil, overlay.Stats{}, err
	}
	g, ostats, _, err := r.build(ctx, &req)
	return g, ostats, err
}

// OverlayOptions returns the overlay options for req in its mode.
func (r *Runner) OverlayOptions(ctx context.Context, req Request) overlay.Options {
	tr := r.Compiler.Styles.TransitionStyle(ctx, req.Mode)
	return overlay.Options{ShowExceptions: req.ShowExceptions, TakenStyle: tr.TakenStyle}
}

func (r *Runner) build(ctx context.Context, req *Request) (*digraph.Graph, overlay.Stats, Stats, error) {
	var stats Stats

	compileStart := time.Now()
	g, err := r.Compiler.Compile(ctx, req.Process, req.Mode)
	if err != nil {
		return nil, overlay.Stats{}, stats, fmt.Errorf("compile: %w", err)
	}
	stats.CompileTime = time.Since(compileStart)
	stats.VertexCount = g.VertexCount()
	stats.EdgeCount = g.EdgeCount()

	r.Logger.Debug("compiled process",
		"process", req.Process.ID,
		"vertices", stats.VertexCount,
		"edges", stats.EdgeCount,
		"duration", stats.CompileTime)

	if len(req.Tokens) == 0 {
		return g, overlay.Stats{}, stats, nil
	}

	overlayStart := time.Now()
	ostats, err := overlay.Apply(g, req.Process, req.Tokens, r.OverlayOptions(ctx, *req))
	stats.OverlayTime = time.Since(overlayStart)
	observability.Pipeline().OnOverlayComplete(ctx, ostats.Applied, ostats.Skipped, stats.OverlayTime, err)
	if err != nil {
		return nil, ostats, stats, fmt.Errorf("overlay: %w", err)
	}

	r.Logger.Debug("applied tokens",
		"applied", ostats.Applied,
		"skipped", ostats.Skipped,
		"exceptions", ostats.Exceptions)

	return g, ostats, stats, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
