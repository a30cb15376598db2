package compile

import (
	"context"
	stderrors "errors"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pvmviz/pkg/digraph"
	"github.com/matzehuels/pvmviz/pkg/errors"
	"github.com/matzehuels/pvmviz/pkg/observability"
	"github.com/matzehuels/pvmviz/pkg/process"
	"github.com/matzehuels/pvmviz/pkg/style"
)

// Synthetic vertex ids.
const (
	StartID = "__start"
	EndID   = "__end"
)

// EndSuffix is appended to a transition id to form the id of its end edge.
const EndSuffix = "_end"

// Metadata keys set on compiled vertices and edges.
const (
	MetaTransitionID = "transition_id"
	MetaState        = "state"
	MetaDatabaseID   = "database_id"
	MetaGroup        = "group"
)

// Styles resolves style entries for one color mode. [*style.Resolver]
// implements it.
type Styles interface {
	NodeStyle(ctx context.Context, m style.Mode, nodeType string) style.Entry
	TransitionStyle(ctx context.Context, m style.Mode) style.Entry
	SpecialNodeStyle(ctx context.Context, m style.Mode, kind style.Special) style.Entry
	GraphSettings(ctx context.Context, m style.Mode) style.GraphSettings
}

// Compiler builds diagrams from processes. It is safe for concurrent use
// when its Styles are.
type Compiler struct {
	Styles Styles
	Logger *log.Logger
}

// New creates a compiler. A nil styles serves the built-in table; a nil
// logger uses log.Default().
func New(styles Styles, logger *log.Logger) *Compiler {
	if logger == nil {
		logger = log.Default()
	}
	if styles == nil {
		styles = style.NewResolver(nil, logger)
	}
	return &Compiler{Styles: styles, Logger: logger}
}

// Compile builds the diagram for p in the given mode. The process is not
// modified. Dangling and malformed transitions are skipped; the only error
// is a node id that is duplicated or collides with a synthetic vertex.
func (c *Compiler) Compile(ctx context.Context, p *process.Process, m style.Mode) (*digraph.Graph, error) {
	start := time.Now()
	observability.Pipeline().OnCompileStart(ctx, p.ID, len(p.Nodes))

	g, err := c.compile(ctx, p, m)

	vertices, edges := 0, 0
	if g != nil {
		vertices, edges = g.VertexCount(), g.EdgeCount()
	}
	observability.Pipeline().OnCompileComplete(ctx, p.ID, vertices, edges, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (c *Compiler) compile(ctx context.Context, p *process.Process, m style.Mode) (*digraph.Graph, error) {
	g := digraph.New(graphAttrs(c.Styles.GraphSettings(ctx, m)))

	if _, err := c.EnsureStart(ctx, g, m); err != nil {
		return nil, err
	}
	if _, err := c.EnsureEnd(ctx, g, m); err != nil {
		return nil, err
	}

	for _, n := range p.Nodes {
		if err := c.addNode(ctx, g, n, m); err != nil {
			return nil, err
		}
	}

	tr := c.Styles.TransitionStyle(ctx, m)
	for _, t := range p.Transitions {
		c.addTransition(g, p, t, tr)
	}
	return g, nil
}

// EnsureStart returns the synthetic start vertex of g, creating it when
// missing.
func (c *Compiler) EnsureStart(ctx context.Context, g *digraph.Graph, m style.Mode) (*digraph.Vertex, error) {
	return c.ensureSpecial(ctx, g, StartID, style.SpecialStart, m)
}

// EnsureEnd returns the synthetic end vertex of g, creating it when missing.
func (c *Compiler) EnsureEnd(ctx context.Context, g *digraph.Graph, m style.Mode) (*digraph.Vertex, error) {
	return c.ensureSpecial(ctx, g, EndID, style.SpecialEnd, m)
}

func (c *Compiler) ensureSpecial(ctx context.Context, g *digraph.Graph, id string, kind style.Special, m style.Mode) (*digraph.Vertex, error) {
	return g.Ensure(id, func(v *digraph.Vertex) {
		e := c.Styles.SpecialNodeStyle(ctx, m, kind)
		v.Attrs = vertexAttrs(e)
		set(v.Attrs, "label", e.Label)
	})
}

func (c *Compiler) addNode(ctx context.Context, g *digraph.Graph, n process.Node, m style.Mode) error {
	e := c.Styles.NodeStyle(ctx, m, n.Option(process.OptionType))
	if e.Color == "" {
		e.Color = n.ConfigValue(process.ConfigVisualColor)
	}
	if e.Color == "" {
		e.Color = style.NeutralColor
	}

	label := n.DisplayLabel()
	tooltip := n.ConfigValue(process.ConfigVisualTooltip)
	if tooltip == "" {
		tooltip = label
	}

	attrs := vertexAttrs(e)
	attrs["id"] = n.ID
	attrs["label"] = label
	attrs["tooltip"] = tooltip

	meta := digraph.Metadata{}
	if group := n.Option(process.OptionGroup); group != "" {
		meta[MetaGroup] = group
	}
	if dbid := n.Option(process.OptionDatabaseID); dbid != "" {
		meta[MetaDatabaseID] = dbid
	}

	if _, err := g.AddVertex(digraph.Vertex{ID: n.ID, Attrs: attrs, Meta: meta}); err != nil {
		if stderrors.Is(err, digraph.ErrDuplicateVertexID) {
			return errors.Wrap(errors.ErrCodeInvalidProcess, process.ErrDuplicateNodeID, "node %q is defined more than once or uses a reserved id", n.ID)
		}
		return errors.Wrap(errors.ErrCodeInvalidProcess, err, "node %q", n.ID)
	}
	return nil
}

// addTransition adds the edge for t and, when t.To is terminal, the edge to
// the end vertex. The end edge does not depend on the transition edge: a
// transition from an unknown node still ends its known destination.
func (c *Compiler) addTransition(g *digraph.Graph, p *process.Process, t process.Transition, tr style.Entry) {
	if t.IsMalformed() {
		return
	}
	if !g.HasVertex(t.To) {
		c.Logger.Warn("skipping transition to unknown node", "transition", t.ID, "node", t.To)
		return
	}
	if t.From != "" && !g.HasVertex(t.From) {
		c.Logger.Warn("skipping transition from unknown node", "transition", t.ID, "node", t.From)
	} else {
		addTransitionEdge(g, t, tr)
	}
	if p.IsTerminal(t.To) {
		c.ensureEndEdge(g, t, tr)
	}
}

func addTransitionEdge(g *digraph.Graph, t process.Transition, tr style.Entry) {
	from := t.From
	if t.IsStart() {
		from = StartID
	}
	attrs := edgeAttrs(tr)
	attrs["id"] = t.ID
	set(attrs, "label", t.Name)
	meta := digraph.Metadata{MetaTransitionID: t.ID}
	if t.DatabaseID != "" {
		meta[MetaDatabaseID] = t.DatabaseID
	}
	// Both endpoints are known to exist, so AddEdge cannot fail.
	_, _ = g.AddEdge(digraph.Edge{ID: t.ID, From: from, To: t.To, Attrs: attrs, Meta: meta})
}

// ensureEndEdge creates or updates the single edge from t.To to the end
// vertex. A reused edge takes the id of the latest converging transition.
func (c *Compiler) ensureEndEdge(g *digraph.Graph, t process.Transition, tr style.Entry) {
	id := t.ID + EndSuffix
	attrs := edgeAttrs(tr)
	attrs["id"] = id

	if e, ok := g.FirstEdge(t.To, EndID); ok {
		e.ID = id
		e.Attrs = attrs
		e.Meta[MetaTransitionID] = id
		return
	}
	_, _ = g.AddEdge(digraph.Edge{
		ID:    id,
		From:  t.To,
		To:    EndID,
		Attrs: attrs,
		Meta:  digraph.Metadata{MetaTransitionID: id},
	})
}

func graphAttrs(gs style.GraphSettings) digraph.Attrs {
	a := digraph.Attrs{}
	set(a, "rankdir", gs.RankDir)
	setNum(a, "ranksep", gs.RankSep)
	set(a, "size", gs.Size)
	set(a, "fontname", gs.FontName)
	setNum(a, "fontsize", gs.FontSize)
	set(a, "fontcolor", gs.FontColor)
	set(a, "bgcolor", gs.Background)
	set(a, "splines", gs.Splines)
	return a
}

func vertexAttrs(e style.Entry) digraph.Attrs {
	a := digraph.Attrs{}
	set(a, "shape", e.Shape)
	set(a, "color", e.Color)
	set(a, "fillcolor", e.FillColor)
	set(a, "style", e.Style)
	set(a, "fontname", e.FontName)
	setNum(a, "fontsize", e.FontSize)
	set(a, "fontcolor", e.FontColor)
	setNum(a, "penwidth", e.PenWidth)
	if e.GradientAngle > 0 {
		a["gradientangle"] = strconv.Itoa(e.GradientAngle)
	}
	return a
}

func edgeAttrs(e style.Entry) digraph.Attrs {
	a := digraph.Attrs{}
	set(a, "color", e.Color)
	set(a, "style", e.Style)
	set(a, "fontname", e.FontName)
	setNum(a, "fontsize", e.FontSize)
	set(a, "fontcolor", e.FontColor)
	setNum(a, "penwidth", e.PenWidth)
	setNum(a, "arrowsize", e.ArrowSize)
	if e.GradientAngle > 0 {
		a["gradientangle"] = strconv.Itoa(e.GradientAngle)
	}
	return a
}

func set(a digraph.Attrs, key, value string) {
	if value != "" {
		a[key] = value
	}
}

func setNum(a digraph.Attrs, key string, value float64) {
	if value != 0 {
		a[key] = strconv.FormatFloat(value, 'f', -1, 64)
	}
}
