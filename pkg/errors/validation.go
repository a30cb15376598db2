package errors

import (
	"slices"
	"strings"
	"unicode"
)

// Formats lists the output formats the renderer understands.
var Formats = []string{"dot", "svg", "png"}

// ValidateFormats validates a list of output format names. At least one
// format is required; names are compared case-sensitively.
func ValidateFormats(formats []string) error {
	if len(formats) == 0 {
		return New(ErrCodeInvalidFormat, "at least one output format is required")
	}
	for _, f := range formats {
		if !slices.Contains(Formats, f) {
			return New(ErrCodeInvalidFormat, "unsupported format %q (must be one of %s)", f, strings.Join(Formats, ", "))
		}
	}
	return nil
}

// ValidateURLTemplate validates a template used to turn a database id into a
// node URL. It must contain exactly one %s verb and no other verbs.
func ValidateURLTemplate(tmpl string) error {
	if tmpl == "" {
		return nil
	}
	if strings.Count(tmpl, "%s") != 1 {
		return New(ErrCodeInvalidInput, "url template must contain exactly one %%s: %q", tmpl)
	}
	if strings.Count(strings.ReplaceAll(tmpl, "%%", ""), "%") != 1 {
		return New(ErrCodeInvalidInput, "url template may only use the %%s verb: %q", tmpl)
	}
	for _, r := range tmpl {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "url template contains control characters")
		}
	}
	return nil
}

// styleSourcePrefixes are the accepted style source schemes.
var styleSourcePrefixes = []string{"file:", "redis://", "rediss://", "mongodb://", "mongodb+srv://", "libsql:"}

// ValidateStyleSource validates a style source string such as
// "file:styles.toml" or "redis://localhost:6379/0". The empty string selects
// the built-in table and is valid.
func ValidateStyleSource(src string) error {
	if src == "" {
		return nil
	}
	for _, p := range styleSourcePrefixes {
		if strings.HasPrefix(src, p) {
			if len(src) == len(p) {
				return New(ErrCodeInvalidStyleSource, "style source %q has no target", src)
			}
			return nil
		}
	}
	return New(ErrCodeInvalidStyleSource, "unknown style source %q (want file:, redis://, mongodb:// or libsql:)", src)
}
