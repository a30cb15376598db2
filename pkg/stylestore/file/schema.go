package file

import "github.com/matzehuels/pvmviz/pkg/style"

// document mirrors the on-disk layout shared by TOML and HCL.
type document struct {
	Graph      *graphDoc            `toml:"graph,omitempty"`
	Transition *recordDoc           `toml:"transition,omitempty"`
	Special    map[string]recordDoc `toml:"special,omitempty"`
	Nodes      map[string]recordDoc `toml:"nodes,omitempty"`
}

type recordDoc struct {
	Label           string  `toml:"label,omitempty" hcl:"label,optional"`
	Shape           string  `toml:"shape,omitempty" hcl:"shape,optional"`
	ColorLight      string  `toml:"color_light,omitempty" hcl:"color_light,optional"`
	ColorDark       string  `toml:"color_dark,omitempty" hcl:"color_dark,optional"`
	FillLight       string  `toml:"fillcolor_light,omitempty" hcl:"fillcolor_light,optional"`
	FillDark        string  `toml:"fillcolor_dark,omitempty" hcl:"fillcolor_dark,optional"`
	GradientLight   string  `toml:"fillcolor_gradient_light,omitempty" hcl:"fillcolor_gradient_light,optional"`
	GradientDark    string  `toml:"fillcolor_gradient_dark,omitempty" hcl:"fillcolor_gradient_dark,optional"`
	Style           string  `toml:"style,omitempty" hcl:"style,optional"`
	FontName        string  `toml:"fontname,omitempty" hcl:"fontname,optional"`
	FontSize        float64 `toml:"fontsize,omitzero" hcl:"fontsize,optional"`
	FontColorLight  string  `toml:"fontcolor_light,omitempty" hcl:"fontcolor_light,optional"`
	FontColorDark   string  `toml:"fontcolor_dark,omitempty" hcl:"fontcolor_dark,optional"`
	GradientAngle   int     `toml:"gradientangle,omitzero" hcl:"gradientangle,optional"`
	PenWidth        float64 `toml:"penwidth,omitzero" hcl:"penwidth,optional"`
	ArrowSize       float64 `toml:"arrowsize,omitzero" hcl:"arrowsize,optional"`
	TakenStyle      string  `toml:"taken_style,omitempty" hcl:"taken_style,optional"`
	TakenColorLight string  `toml:"taken_color_light,omitempty" hcl:"taken_color_light,optional"`
	TakenColorDark  string  `toml:"taken_color_dark,omitempty" hcl:"taken_color_dark,optional"`
}

type graphDoc struct {
	RankDir         string  `toml:"rankdir,omitempty" hcl:"rankdir,optional"`
	RankSep         float64 `toml:"ranksep,omitzero" hcl:"ranksep,optional"`
	Size            string  `toml:"size,omitempty" hcl:"size,optional"`
	FontName        string  `toml:"fontname,omitempty" hcl:"fontname,optional"`
	FontSize        float64 `toml:"fontsize,omitzero" hcl:"fontsize,optional"`
	FontColorLight  string  `toml:"fontcolor_light,omitempty" hcl:"fontcolor_light,optional"`
	FontColorDark   string  `toml:"fontcolor_dark,omitempty" hcl:"fontcolor_dark,optional"`
	BackgroundLight string  `toml:"bgcolor_light,omitempty" hcl:"bgcolor_light,optional"`
	BackgroundDark  string  `toml:"bgcolor_dark,omitempty" hcl:"bgcolor_dark,optional"`
	Splines         string  `toml:"splines,omitempty" hcl:"splines,optional"`
}

func (r recordDoc) record() style.Record {
	return style.Record{
		Label:         r.Label,
		Shape:         r.Shape,
		Color:         style.V(r.ColorLight, r.ColorDark),
		FillColor:     style.V(r.FillLight, r.FillDark),
		Gradient:      style.V(r.GradientLight, r.GradientDark),
		Style:         r.Style,
		FontName:      r.FontName,
		FontSize:      r.FontSize,
		FontColor:     style.V(r.FontColorLight, r.FontColorDark),
		GradientAngle: r.GradientAngle,
		PenWidth:      r.PenWidth,
		ArrowSize:     r.ArrowSize,
		TakenStyle:    r.TakenStyle,
		TakenColor:    style.V(r.TakenColorLight, r.TakenColorDark),
	}
}

func fromRecord(r style.Record) recordDoc {
	return recordDoc{
		Label:           r.Label,
		Shape:           r.Shape,
		ColorLight:      r.Color.Light,
		ColorDark:       r.Color.Dark,
		FillLight:       r.FillColor.Light,
		FillDark:        r.FillColor.Dark,
		GradientLight:   r.Gradient.Light,
		GradientDark:    r.Gradient.Dark,
		Style:           r.Style,
		FontName:        r.FontName,
		FontSize:        r.FontSize,
		FontColorLight:  r.FontColor.Light,
		FontColorDark:   r.FontColor.Dark,
		GradientAngle:   r.GradientAngle,
		PenWidth:        r.PenWidth,
		ArrowSize:       r.ArrowSize,
		TakenStyle:      r.TakenStyle,
		TakenColorLight: r.TakenColor.Light,
		TakenColorDark:  r.TakenColor.Dark,
	}
}

func (g graphDoc) record() style.GraphRecord {
	return style.GraphRecord{
		RankDir:    g.RankDir,
		RankSep:    g.RankSep,
		Size:       g.Size,
		FontName:   g.FontName,
		FontSize:   g.FontSize,
		FontColor:  style.V(g.FontColorLight, g.FontColorDark),
		Background: style.V(g.BackgroundLight, g.BackgroundDark),
		Splines:    g.Splines,
	}
}

func fromGraph(g style.GraphRecord) graphDoc {
	return graphDoc{
		RankDir:         g.RankDir,
		RankSep:         g.RankSep,
		Size:            g.Size,
		FontName:        g.FontName,
		FontSize:        g.FontSize,
		FontColorLight:  g.FontColor.Light,
		FontColorDark:   g.FontColor.Dark,
		BackgroundLight: g.Background.Light,
		BackgroundDark:  g.Background.Dark,
		Splines:         g.Splines,
	}
}

func (d document) table() *style.Table {
	t := &style.Table{}
	if d.Graph != nil {
		g := d.Graph.record()
		t.Graph = &g
	}
	if d.Transition != nil {
		r := d.Transition.record()
		t.Transition = &r
	}
	if len(d.Special) > 0 {
		t.Special = make(map[style.Special]style.Record, len(d.Special))
		for k, v := range d.Special {
			t.Special[style.Special(k)] = v.record()
		}
	}
	if len(d.Nodes) > 0 {
		t.Nodes = make(map[string]style.Record, len(d.Nodes))
		for k, v := range d.Nodes {
			t.Nodes[k] = v.record()
		}
	}
	return t
}

func fromTable(t *style.Table) document {
	var d document
	if t.Graph != nil {
		g := fromGraph(*t.Graph)
		d.Graph = &g
	}
	if t.Transition != nil {
		r := fromRecord(*t.Transition)
		d.Transition = &r
	}
	if len(t.Special) > 0 {
		d.Special = make(map[string]recordDoc, len(t.Special))
		for k, v := range t.Special {
			d.Special[string(k)] = fromRecord(v)
		}
	}
	if len(t.Nodes) > 0 {
		d.Nodes = make(map[string]recordDoc, len(t.Nodes))
		for k, v := range t.Nodes {
			d.Nodes[k] = fromRecord(v)
		}
	}
	return d
}
