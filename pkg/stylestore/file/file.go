// Package file loads style tables from TOML or HCL documents.
//
// Both formats share one schema. In TOML:
//
//	[graph]
//	rankdir = "LR"
//	bgcolor_dark = "#101010"
//
//	[transition]
//	color_light = "#808080"
//	penwidth = 1.5
//
//	[special.start]
//	label = "Begin"
//
//	[nodes.gateway]
//	shape = "diamond"
//	fillcolor_gradient_light = "#fffabf:#ffffff"
//
// and in HCL:
//
//	graph {
//	  rankdir = "LR"
//	}
//
//	node "gateway" {
//	  shape = "diamond"
//	}
//
//	special "start" {
//	  label = "Begin"
//	}
package file

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/matzehuels/pvmviz/pkg/errors"
	"github.com/matzehuels/pvmviz/pkg/style"
)

// Format is a document syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatHCL  Format = "hcl"
)

// FormatFor returns the format implied by a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidStyleSource, "style file %s: unknown extension (want .toml or .hcl)", path)
	}
}

// Load reads a style document from disk. The format follows the extension.
func Load(path string) (*style.Table, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "style file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read style file: %w", err)
	}
	return Decode(data, path, format)
}

// Decode parses a style document. name is used in error messages.
func Decode(data []byte, name string, format Format) (*style.Table, error) {
	var (
		d   document
		err error
	)
	switch format {
	case FormatTOML:
		err = decodeTOML(data, &d)
	case FormatHCL:
		err = decodeHCL(data, name, &d)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "style format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStyleSource, err, "decode %s", name)
	}
	return d.table(), nil
}

// Encode writes t as a TOML document.
func Encode(w io.Writer, t *style.Table) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(fromTable(t)); err != nil {
		return fmt.Errorf("encode styles: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func decodeTOML(data []byte, d *document) error {
	md, err := toml.Decode(string(data), d)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys: %v", undecoded)
	}
	return nil
}

// hclFile is the top-level HCL schema. Labeled blocks keep their bodies so
// they can be decoded into the shared record schema.
type hclFile struct {
	Graph      *graphDoc  `hcl:"graph,block"`
	Transition *recordDoc `hcl:"transition,block"`
	Special    []hclBlock `hcl:"special,block"`
	Nodes      []hclBlock `hcl:"node,block"`
}

type hclBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

func decodeHCL(data []byte, name string, d *document) error {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(data, name)
	if diags.HasErrors() {
		return diags
	}

	var hf hclFile
	if diags := gohcl.DecodeBody(f.Body, nil, &hf); diags.HasErrors() {
		return diags
	}

	d.Graph = hf.Graph
	d.Transition = hf.Transition
	decodeBlocks := func(blocks []hclBlock) (map[string]recordDoc, error) {
		if len(blocks) == 0 {
			return nil, nil
		}
		out := make(map[string]recordDoc, len(blocks))
		for _, b := range blocks {
			var r recordDoc
			if diags := gohcl.DecodeBody(b.Body, nil, &r); diags.HasErrors() {
				return nil, fmt.Errorf("%s: %w", b.Name, diags)
			}
			out[b.Name] = r
		}
		return out, nil
	}
	var err error
	if d.Special, err = decodeBlocks(hf.Special); err != nil {
		return err
	}
	d.Nodes, err = decodeBlocks(hf.Nodes)
	return err
}
