package render

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/pvmviz/pkg/compile"
	"github.com/matzehuels/pvmviz/pkg/digraph"
)

// Options configures DOT emission.
type Options struct {
	// URLTemplate is a fmt template with a single %s verb that receives a
	// database id, e.g. "javascript:edit('%s')". Empty disables links.
	URLTemplate string

	// Name is the graph name. Defaults to "G".
	Name string
}

// ToDOT converts a compiled graph to Graphviz DOT format. Attribute values
// are always quoted and emitted in sorted key order, so equal graphs yield
// equal text.
func ToDOT(g *digraph.Graph, opts Options) string {
	name := opts.Name
	if name == "" {
		name = "G"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %s {\n", quote(name))
	for _, k := range slices.Sorted(maps.Keys(g.Attrs())) {
		fmt.Fprintf(&buf, "  %s=%s;\n", k, quote(g.Attrs()[k]))
	}
	buf.WriteString("\n")

	var groups []string
	members := map[string][]*digraph.Vertex{}
	for _, v := range g.Vertices() {
		group := v.Meta.String(compile.MetaGroup)
		if group == "" {
			writeVertex(&buf, "  ", v, opts)
			continue
		}
		if _, seen := members[group]; !seen {
			groups = append(groups, group)
		}
		members[group] = append(members[group], v)
	}
	for _, group := range groups {
		fmt.Fprintf(&buf, "\n  subgraph %s {\n", quote("cluster_"+group))
		fmt.Fprintf(&buf, "    label=%s;\n", quote(group))
		for _, v := range members[group] {
			writeVertex(&buf, "    ", v, opts)
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		attrs := withURL(e.Attrs, e.Meta, opts)
		fmt.Fprintf(&buf, "  %s -> %s", quote(e.From), quote(e.To))
		if len(attrs) > 0 {
			fmt.Fprintf(&buf, " [%s]", fmtAttrs(attrs))
		}
		buf.WriteString(";\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeVertex(buf *bytes.Buffer, indent string, v *digraph.Vertex, opts Options) {
	attrs := withURL(v.Attrs, v.Meta, opts)
	fmt.Fprintf(buf, "%s%s", indent, quote(v.ID))
	if len(attrs) > 0 {
		fmt.Fprintf(buf, " [%s]", fmtAttrs(attrs))
	}
	buf.WriteString(";\n")
}

func withURL(attrs digraph.Attrs, meta digraph.Metadata, opts Options) digraph.Attrs {
	id := meta.String(compile.MetaDatabaseID)
	if opts.URLTemplate == "" || id == "" {
		return attrs
	}
	out := maps.Clone(attrs)
	if out == nil {
		out = digraph.Attrs{}
	}
	out["URL"] = fmt.Sprintf(opts.URLTemplate, id)
	return out
}

func fmtAttrs(attrs digraph.Attrs) string {
	parts := make([]string, 0, len(attrs))
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		parts = append(parts, k+"="+quote(attrs[k]))
	}
	return strings.Join(parts, ", ")
}

var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")

// quote returns s as a DOT double-quoted string.
func quote(s string) string {
	return `"` + quoter.Replace(s) + `"`
}
