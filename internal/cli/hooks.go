package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pvmviz/pkg/observability"
)

// debugHooks logs pipeline, style and cache events at debug level.
type debugHooks struct {
	observability.NoopPipelineHooks
	logger *log.Logger
}

// RegisterDebugHooks routes observability events to the CLI logger. It is
// enabled by --verbose.
func (c *CLI) RegisterDebugHooks() {
	h := &debugHooks{logger: c.Logger.WithPrefix("hooks")}
	observability.SetPipelineHooks(h)
	observability.SetStyleHooks(h)
	observability.SetCacheHooks(h)
}

func (h *debugHooks) OnCompileComplete(_ context.Context, processID string, vertices, edges int, d time.Duration, err error) {
	h.logger.Debug("compiled", "process", processID, "vertices", vertices, "edges", edges, "duration", d, "error", err)
}

func (h *debugHooks) OnOverlayComplete(_ context.Context, applied, skipped int, d time.Duration, err error) {
	h.logger.Debug("overlay applied", "applied", applied, "skipped", skipped, "duration", d, "error", err)
}

func (h *debugHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("rendered", "formats", formats, "duration", d, "error", err)
}

func (h *debugHooks) OnStyleLookup(context.Context, string, string, string, bool) {}

func (h *debugHooks) OnStyleFallback(_ context.Context, kind, key string, err error) {
	if err != nil {
		h.logger.Debug("style source failed, using built-in", "kind", kind, "key", key, "error", err)
		return
	}
	h.logger.Debug("no stored style, using built-in", "kind", kind, "key", key)
}

func (h *debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *debugHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

var (
	_ observability.PipelineHooks = (*debugHooks)(nil)
	_ observability.StyleHooks    = (*debugHooks)(nil)
	_ observability.CacheHooks    = (*debugHooks)(nil)
)
