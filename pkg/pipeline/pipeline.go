// Package pipeline provides the compile → overlay → render pipeline for
// process diagrams.
//
// The CLI, the render server and the watch view all go through this package
// so that a diagram looks the same no matter where it was produced.
//
// # Stages
//
//  1. Compile: build the styled diagram graph from the process definition
//  2. Overlay: paint token state onto the compiled edges (optional)
//  3. Render: emit DOT and encode it as SVG or PNG through Graphviz
//
// Rendered artifacts are cached by the hash of the DOT text, so re-running
// an unchanged diagram never reaches Graphviz.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, compiler, logger)
//	result, err := runner.Run(ctx, pipeline.Request{
//	    Process: p,
//	    Tokens:  tokens,
//	    Mode:    style.ModeDark,
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"time"

	"github.com/matzehuels/pvmviz/pkg/digraph"
	"github.com/matzehuels/pvmviz/pkg/errors"
	"github.com/matzehuels/pvmviz/pkg/overlay"
	"github.com/matzehuels/pvmviz/pkg/process"
	"github.com/matzehuels/pvmviz/pkg/render"
	"github.com/matzehuels/pvmviz/pkg/style"
)

// =============================================================================
// Default Values
// =============================================================================

// DefaultFormat is rendered when a request names no format.
const DefaultFormat = string(render.FormatSVG)

// DefaultMode is used when a request names no mode.
const DefaultMode = style.ModeLight

// =============================================================================
// Request - Pipeline Input
// =============================================================================

// Request describes one diagram to produce. It decodes from the JSON body
// accepted by the render server.
type Request struct {
	Process *process.Process `json:"process"`
	Tokens  []process.Token  `json:"tokens,omitempty"`

	Mode           style.Mode `json:"mode,omitempty"`
	Formats        []string   `json:"formats,omitempty"`
	ShowExceptions bool       `json:"show_exceptions,omitempty"`
	URLTemplate    string     `json:"url_template,omitempty"`

	// Refresh skips cache reads; fresh artifacts are still written.
	Refresh bool `json:"refresh,omitempty"`

	validated bool
}

// ValidateAndSetDefaults checks the request and fills in defaults. It is
// idempotent.
func (r *Request) ValidateAndSetDefaults() error {
	if r.validated {
		return nil
	}
	if r.Process == nil {
		return errors.New(errors.ErrCodeInvalidInput, "process is required")
	}
	if err := r.Process.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidProcess, err, "invalid process")
	}

	mode, err := style.ParseMode(string(r.Mode))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidMode, err, "invalid mode")
	}
	r.Mode = mode

	if len(r.Formats) == 0 {
		r.Formats = []string{DefaultFormat}
	}
	if err := errors.ValidateFormats(r.Formats); err != nil {
		return err
	}
	if err := errors.ValidateURLTemplate(r.URLTemplate); err != nil {
		return err
	}
	r.validated = true
	return nil
}

// =============================================================================
// Result - Pipeline Output
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the compiled and overlaid diagram.
	Graph *digraph.Graph

	// DOT is the emitted Graphviz source and DOTHash its content hash.
	DOT     string
	DOTHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Overlay summarizes the token pass. Zero when no tokens were given.
	Overlay overlay.Stats

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which artifacts came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	VertexCount int
	EdgeCount   int
	CompileTime time.Duration
	OverlayTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for the render stage.
type CacheInfo struct {
	Hits      []string // formats served without Graphviz (cache hits and dot)
	RenderHit bool     // whether every artifact came from the cache
}
