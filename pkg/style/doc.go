// Package style resolves visual attributes for compiled process diagrams.
//
// Styles come from a [Source], typically one of the stylestore backends, as
// loosely populated [Record] values with separate light and dark variants.
// A [Resolver] turns them into fully populated [Entry] values for one
// [Mode], filling gaps from a built-in table and caching the result:
//
//	r := style.NewResolver(src, logger)
//	e := r.NodeStyle(ctx, style.ModeDark, "gateway")
//	fmt.Println(e.Shape, e.Color, e.FillColor)
//
// The resolver never fails. A source error or a missing record falls back
// to the built-in defaults and is logged at debug (missing) or warn (error)
// level and reported through the observability style hooks.
//
// # Gradients
//
// A record may declare a two-stop gradient ("#fff:#ccc") in addition to a
// solid fill. The gradient wins, and in dark mode its stops are reversed so
// the light end sits at the bottom.
package style
