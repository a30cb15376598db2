// Package render turns compiled process diagrams into Graphviz output.
//
// # Overview
//
// Rendering is a two-step affair. [ToDOT] serializes an attributed graph
// into DOT text, which is also a valid output format on its own. [Render]
// then lays the DOT out with Graphviz (through the WebAssembly build shipped
// by go-graphviz, so no system install is needed) and produces SVG or PNG:
//
//	dot := render.ToDOT(g, render.Options{URLTemplate: "javascript:edit('%s')"})
//	svg, err := render.RenderSVG(dot)
//	src, err := render.ImageSrc(render.FormatSVG, svg)
//
// # Groups
//
// Vertices carrying a group in their metadata are wrapped in a
// "cluster_<group>" subgraph, which Graphviz draws as a framed box.
//
// # Links
//
// With [Options.URLTemplate] set, every vertex and edge that carries a
// database id gets a URL attribute. SVG output turns those into clickable
// links, which is how host applications open an editor for a node.
package render
