package style

import "maps"

const (
	defaultFont      = "helvetica"
	defaultFontSize  = 10
	neutralGray      = "#a6a6a6"
	fontLight        = "#000000"
	fontDark         = "#e6e6e6"
	transitionGray   = "#808080"
	roundedFilled    = "rounded,filled"
	darkNeutralFill  = "#3a3a3a"
	darkNeutralColor = "#8c8c8c"
)

// NeutralColor is the outline color used when neither the style source nor
// the node's own visual hint provide one.
const NeutralColor = neutralGray

func nodeRecord(shape string, color, fill Variant) Record {
	return Record{
		Shape:     shape,
		Color:     color,
		FillColor: fill,
		Style:     roundedFilled,
		FontName:  defaultFont,
		FontSize:  defaultFontSize,
		FontColor: V(fontLight, fontDark),
		PenWidth:  1,
	}
}

var builtinNodes = map[string]Record{
	"gateway":             nodeRecord("diamond", V("#d4b102", "#f0d03a"), V("#fffabf", "#4d4520")),
	"diagram":             nodeRecord("doubleoctagon", V("orange", "#ffb347"), V("#ffe396", "#5c4a1a")),
	"medication_decision": nodeRecord("box", V("purple", "#c792ea"), V("#ddadff", "#3f2a55")),
	"notification":        nodeRecord("box", V("#56c7c4", "#6fe0dd"), V("#bff2f1", "#1f4a49")),
	"output_array":        nodeRecord("box", V("#57992b", "#7fcf4a"), V("#bcff8f", "#2a4d17")),
	"output":              nodeRecord("box", V("#57992b", "#7fcf4a"), V("#bcff8f", "#2a4d17")),
	"output_behaviour":    nodeRecord("box", V("#57992b", "#7fcf4a"), V("#bcff8f", "#2a4d17")),
	"component":           nodeRecord("component", V("orange", "#ffb347"), V("#f0f0f0", darkNeutralFill)),
	DefaultNodeType:       nodeRecord("box", V(neutralGray, darkNeutralColor), V("#f0f0f0", darkNeutralFill)),
}

var builtinTransition = Record{
	Color:      V(transitionGray, "#a0a0a0"),
	Style:      "solid",
	FontName:   defaultFont,
	FontSize:   defaultFontSize,
	FontColor:  V(fontLight, fontDark),
	PenWidth:   1,
	ArrowSize:  1,
	TakenStyle: "bold",
}

var builtinSpecial = map[Special]Record{
	SpecialStart: {
		Label:     "Start",
		Shape:     "circle",
		Color:     V("#2f65fa", "#5b8cff"),
		FillColor: V("lightblue", "#1c3a7a"),
		Style:     "filled",
		FontName:  defaultFont,
		FontSize:  defaultFontSize,
		FontColor: V(fontLight, fontDark),
		PenWidth:  1,
	},
	SpecialEnd: {
		Label:     "End",
		Shape:     "circle",
		Color:     V("#fa4141", "#ff6b6b"),
		FillColor: V("#ff8c8c", "#7a1c1c"),
		Style:     "filled",
		FontName:  defaultFont,
		FontSize:  defaultFontSize,
		FontColor: V(fontLight, fontDark),
		PenWidth:  1,
	},
}

var builtinGraph = GraphRecord{
	RankDir:    "TB",
	RankSep:    0.2,
	Size:       "10,100",
	FontName:   defaultFont,
	FontSize:   defaultFontSize,
	FontColor:  V(fontLight, fontDark),
	Background: V("transparent", "#1e1e1e"),
}

// BuiltinNodeStyles returns a copy of the built-in node style table.
func BuiltinNodeStyles() map[string]Record { return maps.Clone(builtinNodes) }

// BuiltinNodeStyle returns the built-in record for a node type and whether
// the type is known. Unknown types yield the default record.
func BuiltinNodeStyle(nodeType string) (Record, bool) {
	if r, ok := builtinNodes[nodeType]; ok {
		return r, true
	}
	return builtinNodes[DefaultNodeType], false
}

// BuiltinTransitionStyle returns the built-in transition record.
func BuiltinTransitionStyle() Record { return builtinTransition }

// BuiltinSpecialNodeStyle returns the built-in record for a synthetic vertex.
func BuiltinSpecialNodeStyle(kind Special) Record {
	if r, ok := builtinSpecial[kind]; ok {
		return r
	}
	return builtinSpecial[SpecialEnd]
}

// BuiltinGraphSettings returns the built-in graph settings record.
func BuiltinGraphSettings() GraphRecord { return builtinGraph }
