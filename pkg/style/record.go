package style

import (
	"fmt"
	"strings"
)

// Mode selects the light or dark palette of a style record.
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// ParseMode parses "light" or "dark". The empty string yields ModeLight.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeLight:
		return ModeLight, nil
	case ModeDark:
		return ModeDark, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (must be 'light' or 'dark')", s)
	}
}

// Kind names the category of a style lookup.
type Kind string

const (
	KindNode       Kind = "node"
	KindTransition Kind = "transition"
	KindSpecial    Kind = "special"
	KindGraph      Kind = "graph"
)

// Special names a synthetic vertex.
type Special string

const (
	SpecialStart Special = "start"
	SpecialEnd   Special = "end"
)

// DefaultNodeType is the node style used for unset or unknown node types.
const DefaultNodeType = "default"

// Variant holds a light and a dark value. An empty Dark reuses Light.
type Variant struct {
	Light string
	Dark  string
}

// V builds a variant from a light and a dark value.
func V(light, dark string) Variant { return Variant{Light: light, Dark: dark} }

// For returns the value for the given mode.
func (v Variant) For(m Mode) string {
	if m == ModeDark && v.Dark != "" {
		return v.Dark
	}
	return v.Light
}

// IsZero reports whether both values are empty.
func (v Variant) IsZero() bool { return v.Light == "" && v.Dark == "" }

// Record is a style entry as delivered by a [Source]. Every field is
// optional; zero values are filled from the built-in table during
// resolution.
type Record struct {
	Label         string
	Shape         string
	Color         Variant
	FillColor     Variant
	Gradient      Variant // two stops, "a:b"
	Style         string
	FontName      string
	FontSize      float64
	FontColor     Variant
	GradientAngle int
	PenWidth      float64
	ArrowSize     float64
	TakenStyle    string
	// TakenColor round-trips through stores but is never resolved. Taken
	// edges use the fixed overlay colors.
	TakenColor    Variant
}

// fill returns r with zero fields taken from d. A gradient is only
// inherited when r declares no fill at all.
func (r Record) fill(d Record) Record {
	setStr(&r.Label, d.Label)
	setStr(&r.Shape, d.Shape)
	setVar(&r.Color, d.Color)
	if r.FillColor.IsZero() && r.Gradient.IsZero() {
		r.FillColor = d.FillColor
		r.Gradient = d.Gradient
	}
	setStr(&r.Style, d.Style)
	setStr(&r.FontName, d.FontName)
	setNum(&r.FontSize, d.FontSize)
	setVar(&r.FontColor, d.FontColor)
	if r.GradientAngle == 0 {
		r.GradientAngle = d.GradientAngle
	}
	setNum(&r.PenWidth, d.PenWidth)
	setNum(&r.ArrowSize, d.ArrowSize)
	setStr(&r.TakenStyle, d.TakenStyle)
	return r
}

// Resolve applies mode to the record. A gradient wins over a solid fill; in
// dark mode its stops are reversed.
func (r Record) Resolve(m Mode) Entry {
	e := Entry{
		Label:         r.Label,
		Shape:         r.Shape,
		Color:         r.Color.For(m),
		FillColor:     r.FillColor.For(m),
		Style:         r.Style,
		FontName:      r.FontName,
		FontSize:      r.FontSize,
		FontColor:     r.FontColor.For(m),
		GradientAngle: r.GradientAngle,
		PenWidth:      r.PenWidth,
		ArrowSize:     r.ArrowSize,
		TakenStyle:    r.TakenStyle,
	}
	if g := r.Gradient.For(m); g != "" {
		if m == ModeDark {
			g = ReverseGradient(g)
		}
		e.FillColor = g
	}
	return e
}

// ReverseGradient swaps the order of the color stops in a Graphviz color
// list such as "#fff:#000". Single colors are returned unchanged.
func ReverseGradient(g string) string {
	stops := strings.Split(g, ":")
	if len(stops) < 2 {
		return g
	}
	for i, j := 0, len(stops)-1; i < j; i, j = i+1, j-1 {
		stops[i], stops[j] = stops[j], stops[i]
	}
	return strings.Join(stops, ":")
}

// Entry is a fully resolved style bundle for one mode.
type Entry struct {
	Label         string
	Shape         string
	Color         string
	FillColor     string
	Style         string
	FontName      string
	FontSize      float64
	FontColor     string
	GradientAngle int
	PenWidth      float64
	ArrowSize     float64
	TakenStyle    string
}

// GraphRecord holds graph-level layout settings as delivered by a [Source].
type GraphRecord struct {
	RankDir    string
	RankSep    float64
	Size       string
	FontName   string
	FontSize   float64
	FontColor  Variant
	Background Variant
	Splines    string
}

func (r GraphRecord) fill(d GraphRecord) GraphRecord {
	setStr(&r.RankDir, d.RankDir)
	setNum(&r.RankSep, d.RankSep)
	setStr(&r.Size, d.Size)
	setStr(&r.FontName, d.FontName)
	setNum(&r.FontSize, d.FontSize)
	setVar(&r.FontColor, d.FontColor)
	setVar(&r.Background, d.Background)
	setStr(&r.Splines, d.Splines)
	return r
}

// Resolve applies mode to the record.
func (r GraphRecord) Resolve(m Mode) GraphSettings {
	return GraphSettings{
		RankDir:    r.RankDir,
		RankSep:    r.RankSep,
		Size:       r.Size,
		FontName:   r.FontName,
		FontSize:   r.FontSize,
		FontColor:  r.FontColor.For(m),
		Background: r.Background.For(m),
		Splines:    r.Splines,
	}
}

// GraphSettings are resolved graph-level layout settings for one mode.
type GraphSettings struct {
	RankDir    string
	RankSep    float64
	Size       string
	FontName   string
	FontSize   float64
	FontColor  string
	Background string
	Splines    string
}

func setStr(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func setNum(dst *float64, def float64) {
	if *dst == 0 {
		*dst = def
	}
}

func setVar(dst *Variant, def Variant) {
	if dst.IsZero() {
		*dst = def
	}
}
