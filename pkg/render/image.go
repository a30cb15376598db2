package render

import (
	"encoding/base64"

	"github.com/matzehuels/pvmviz/pkg/errors"
)

var mimeTypes = map[Format]string{
	FormatSVG: "image/svg+xml",
	FormatPNG: "image/png",
	FormatDOT: "text/vnd.graphviz",
}

// MIMEType returns the media type of a rendered format.
func MIMEType(f Format) string {
	if m, ok := mimeTypes[f]; ok {
		return m
	}
	return "application/octet-stream"
}

// ImageSrc encodes rendered data as a data: URI suitable for an <img> src
// attribute.
func ImageSrc(f Format, data []byte) (string, error) {
	mime, ok := mimeTypes[f]
	if !ok {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", f)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
