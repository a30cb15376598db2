package style

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// External schema field names shared by all style stores.
const (
	FieldLabel            = "label"
	FieldShape            = "shape"
	FieldColorLight       = "color_light"
	FieldColorDark        = "color_dark"
	FieldFillLight        = "fillcolor_light"
	FieldFillDark         = "fillcolor_dark"
	FieldGradientLight    = "fillcolor_gradient_light"
	FieldGradientDark     = "fillcolor_gradient_dark"
	FieldStyle            = "style"
	FieldFontName         = "fontname"
	FieldFontSize         = "fontsize"
	FieldFontColorLight   = "fontcolor_light"
	FieldFontColorDark    = "fontcolor_dark"
	FieldGradientAngle    = "gradientangle"
	FieldPenWidth         = "penwidth"
	FieldArrowSize        = "arrowsize"
	FieldTakenStyle       = "taken_style"
	FieldTakenColorLight  = "taken_color_light"
	FieldTakenColorDark   = "taken_color_dark"
	FieldRankDir          = "rankdir"
	FieldRankSep          = "ranksep"
	FieldSize             = "size"
	FieldBackgroundLight  = "bgcolor_light"
	FieldBackgroundDark   = "bgcolor_dark"
	FieldSplines          = "splines"
	legacyFieldColor      = "color"
	legacyFieldFill       = "fillcolor"
	legacyFieldFontColor  = "fontcolor"
	legacyFieldTakenColor = "taken_color"
	legacyFieldBackground = "bgcolor"
)

// RecordFromFields builds a Record from a flat field map using the external
// schema names. Unset numeric fields stay zero. The unsuffixed legacy names
// ("color", "fillcolor", "fontcolor") populate the light variant.
func RecordFromFields(f map[string]string) (Record, error) {
	r := Record{
		Label:      f[FieldLabel],
		Shape:      f[FieldShape],
		Color:      variant(f, FieldColorLight, FieldColorDark, legacyFieldColor),
		FillColor:  variant(f, FieldFillLight, FieldFillDark, legacyFieldFill),
		Gradient:   V(f[FieldGradientLight], f[FieldGradientDark]),
		Style:      f[FieldStyle],
		FontName:   f[FieldFontName],
		FontColor:  variant(f, FieldFontColorLight, FieldFontColorDark, legacyFieldFontColor),
		TakenStyle: f[FieldTakenStyle],
		TakenColor: variant(f, FieldTakenColorLight, FieldTakenColorDark, legacyFieldTakenColor),
	}
	var err error
	if r.FontSize, err = parseFloat(f, FieldFontSize); err != nil {
		return Record{}, err
	}
	if r.PenWidth, err = parseFloat(f, FieldPenWidth); err != nil {
		return Record{}, err
	}
	if r.ArrowSize, err = parseFloat(f, FieldArrowSize); err != nil {
		return Record{}, err
	}
	if v := f[FieldGradientAngle]; v != "" {
		if r.GradientAngle, err = strconv.Atoi(v); err != nil {
			return Record{}, fmt.Errorf("%s: %w", FieldGradientAngle, err)
		}
	}
	return r, nil
}

// Fields flattens the record into external schema names. Empty and zero
// values are omitted.
func (r Record) Fields() map[string]string {
	f := map[string]string{}
	put(f, FieldLabel, r.Label)
	put(f, FieldShape, r.Shape)
	put(f, FieldColorLight, r.Color.Light)
	put(f, FieldColorDark, r.Color.Dark)
	put(f, FieldFillLight, r.FillColor.Light)
	put(f, FieldFillDark, r.FillColor.Dark)
	put(f, FieldGradientLight, r.Gradient.Light)
	put(f, FieldGradientDark, r.Gradient.Dark)
	put(f, FieldStyle, r.Style)
	put(f, FieldFontName, r.FontName)
	putFloat(f, FieldFontSize, r.FontSize)
	put(f, FieldFontColorLight, r.FontColor.Light)
	put(f, FieldFontColorDark, r.FontColor.Dark)
	if r.GradientAngle != 0 {
		f[FieldGradientAngle] = strconv.Itoa(r.GradientAngle)
	}
	putFloat(f, FieldPenWidth, r.PenWidth)
	putFloat(f, FieldArrowSize, r.ArrowSize)
	put(f, FieldTakenStyle, r.TakenStyle)
	put(f, FieldTakenColorLight, r.TakenColor.Light)
	put(f, FieldTakenColorDark, r.TakenColor.Dark)
	return f
}

// GraphRecordFromFields builds a GraphRecord from a flat field map.
func GraphRecordFromFields(f map[string]string) (GraphRecord, error) {
	r := GraphRecord{
		RankDir:    f[FieldRankDir],
		Size:       f[FieldSize],
		FontName:   f[FieldFontName],
		FontColor:  variant(f, FieldFontColorLight, FieldFontColorDark, legacyFieldFontColor),
		Background: variant(f, FieldBackgroundLight, FieldBackgroundDark, legacyFieldBackground),
		Splines:    f[FieldSplines],
	}
	var err error
	if r.RankSep, err = parseFloat(f, FieldRankSep); err != nil {
		return GraphRecord{}, err
	}
	if r.FontSize, err = parseFloat(f, FieldFontSize); err != nil {
		return GraphRecord{}, err
	}
	return r, nil
}

// Fields flattens the graph record into external schema names.
func (r GraphRecord) Fields() map[string]string {
	f := map[string]string{}
	put(f, FieldRankDir, r.RankDir)
	putFloat(f, FieldRankSep, r.RankSep)
	put(f, FieldSize, r.Size)
	put(f, FieldFontName, r.FontName)
	putFloat(f, FieldFontSize, r.FontSize)
	put(f, FieldFontColorLight, r.FontColor.Light)
	put(f, FieldFontColorDark, r.FontColor.Dark)
	put(f, FieldBackgroundLight, r.Background.Light)
	put(f, FieldBackgroundDark, r.Background.Dark)
	put(f, FieldSplines, r.Splines)
	return f
}

// RecordFieldNames lists the record schema fields in a stable order, for
// stores that need fixed columns.
func RecordFieldNames() []string {
	return []string{
		FieldLabel, FieldShape, FieldColorLight, FieldColorDark, FieldFillLight, FieldFillDark,
		FieldGradientLight, FieldGradientDark, FieldStyle, FieldFontName, FieldFontSize,
		FieldFontColorLight, FieldFontColorDark, FieldGradientAngle, FieldPenWidth, FieldArrowSize,
		FieldTakenStyle, FieldTakenColorLight, FieldTakenColorDark,
	}
}

// GraphFieldNames lists the graph settings schema fields in a stable order.
func GraphFieldNames() []string {
	return []string{
		FieldRankDir, FieldRankSep, FieldSize, FieldFontName, FieldFontSize,
		FieldFontColorLight, FieldFontColorDark, FieldBackgroundLight, FieldBackgroundDark, FieldSplines,
	}
}

// SortedKeys returns the keys of a field map in lexical order.
func SortedKeys(f map[string]string) []string { return slices.Sorted(maps.Keys(f)) }

func variant(f map[string]string, light, dark, legacy string) Variant {
	v := V(f[light], f[dark])
	if v.Light == "" {
		v.Light = f[legacy]
	}
	return v
}

func parseFloat(f map[string]string, key string) (float64, error) {
	v := f[key]
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func put(f map[string]string, key, value string) {
	if value != "" {
		f[key] = value
	}
}

func putFloat(f map[string]string, key string, value float64) {
	if value != 0 {
		f[key] = strconv.FormatFloat(value, 'f', -1, 64)
	}
}
