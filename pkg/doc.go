// Package pkg provides the core libraries for pvmviz process diagrams.
//
// # Overview
//
// pvmviz turns process definitions (nodes connected by transitions) into
// Graphviz diagrams, paints the recorded state of running tokens onto the
// edges, and renders the result as DOT, SVG or PNG. The pkg directory is
// organized into these areas:
//
//  1. [process] and [digraph] - the input model and the compiled graph
//  2. [style] and [stylestore] - light/dark style resolution over pluggable stores
//  3. [compile], [overlay] and [render] - the three pipeline stages
//  4. [pipeline] and [cache] - orchestration and artifact caching
//  5. [errors] and [observability] - coded errors and event hooks
//
// # Architecture
//
// The typical data flow:
//
//	process JSON + tokens JSON
//	         ↓
//	    [compile] package (styled digraph with virtual start/end nodes)
//	         ↓
//	    [overlay] package (token state painted onto edges)
//	         ↓
//	    [render] package (DOT text, then Graphviz SVG/PNG)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/pvmviz/pkg/pipeline"
//	    "github.com/matzehuels/pvmviz/pkg/process"
//	)
//
//	func main() {
//	    p, _ := process.ImportJSON("review.json")
//	    tokens, _ := process.ImportTokensJSON("tokens.json")
//
//	    runner := pipeline.NewRunner(nil, nil, nil, nil)
//	    res, _ := runner.Run(context.Background(), pipeline.Request{
//	        Process: p,
//	        Tokens:  tokens,
//	        Formats: []string{"svg"},
//	    })
//	    _ = os.WriteFile("review.svg", res.Artifacts["svg"], 0o644)
//	}
//
// Styles come from the built-in table unless a store is opened with
// [stylestore.Open]; see that package for the supported source URLs.
package pkg
