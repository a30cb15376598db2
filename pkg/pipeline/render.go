package pipeline

import (
	"context"

	"github.com/matzehuels/pvmviz/pkg/cache"
	"github.com/matzehuels/pvmviz/pkg/observability"
	"github.com/matzehuels/pvmviz/pkg/render"
)

const artifactKeyType = "artifact"

// RenderWithCacheInfo renders dot in each format and reports which formats
// were served from the cache. The "dot" format is returned as-is and never
// cached. Cache failures are logged and otherwise ignored.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, dot, dotHash string, formats []string, refresh bool) (map[string][]byte, []string, error) {
	artifacts := make(map[string][]byte, len(formats))
	var hits []string

	for _, name := range formats {
		format, err := render.ParseFormat(name)
		if err != nil {
			return nil, nil, err
		}
		if format == render.FormatDOT {
			artifacts[name] = []byte(dot)
			hits = append(hits, name)
			continue
		}

		key := r.Keyer.ArtifactKey(dotHash, name)
		if !refresh {
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil {
				r.Logger.Warn("cache read failed", "format", name, "error", err)
			}
			if err == nil && hit {
				observability.Cache().OnCacheHit(ctx, artifactKeyType)
				artifacts[name] = data
				hits = append(hits, name)
				continue
			}
			observability.Cache().OnCacheMiss(ctx, artifactKeyType)
		}

		data, err := render.Render(ctx, dot, format)
		if err != nil {
			return nil, nil, err
		}
		artifacts[name] = data

		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
			r.Logger.Warn("cache write failed", "format", name, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, artifactKeyType, len(data))
	}
	return artifacts, hits, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Render(ctx context.Context, dot string, formats []string) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, dot, cache.Hash([]byte(dot)), formats, false)
	return artifacts, err
}
