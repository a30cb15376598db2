// Package compile turns a process definition into an attributed directed
// graph ready for rendering.
//
// The compiled graph holds one vertex per process node plus two synthetic
// vertices, [StartID] and [EndID]. Start transitions (no source node) hang
// off the start vertex; every transition that leads into a terminal node
// also produces a single edge from that node to the end vertex, shared by
// all transitions converging there.
//
//	c := compile.New(style.NewResolver(src, logger), logger)
//	g, err := c.Compile(ctx, p, style.ModeLight)
//
// Vertices and edges carry Graphviz attributes in Attrs and correlation data
// in Meta (see the Meta* keys). The token overlay and the renderer read
// those keys; nothing else about the graph is specific to processes.
package compile
