package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pvmviz/pkg/errors"
	"github.com/matzehuels/pvmviz/pkg/pipeline"
	"github.com/matzehuels/pvmviz/pkg/process"
	"github.com/matzehuels/pvmviz/pkg/style"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output file path (or base path for multiple outputs)
	tokens  string   // tokens JSON file
	formats []string // output formats: "svg", "png", "dot"
	noCache bool     // bypass the artifact cache entirely
	refresh bool     // re-render even when cached
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		opts       renderOpts
		formatsStr string
		cfgFlags   Config
	)

	cmd := &cobra.Command{
		Use:   "render <process.json>",
		Short: "Render a process definition to DOT, SVG or PNG",
		Long: `Render compiles a process definition into a diagram and writes it in the
requested formats. With --tokens, the recorded token transitions are painted
onto the edges: passed blue, waiting orange, interrupted red.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			overrideString(cmd, "styles", &cfg.Styles)
			overrideString(cmd, "mode", &cfg.Mode)
			overrideString(cmd, "url-template", &cfg.URLTemplate)
			overrideBoolPtr(cmd, "exceptions", &cfg.Exceptions)

			opts.formats = parseFormats(formatsStr)
			if err := errors.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if opts.output == "-" && len(opts.formats) != 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--output - needs exactly one format")
			}
			return c.runRender(cmd.Context(), args[0], cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot (comma-separated)")
	cmd.Flags().StringVarP(&opts.tokens, "tokens", "t", "", "tokens JSON file to overlay")
	cmd.Flags().StringVarP(&cfgFlags.Mode, "mode", "m", "", "color mode: light (default), dark")
	cmd.Flags().StringVar(&cfgFlags.Styles, "styles", "", "style source (file:, redis://, mongodb://, libsql:)")
	cmd.Flags().StringVar(&cfgFlags.URLTemplate, "url-template", "", "link template with one %s for the database id")
	cmd.Flags().Bool("exceptions", true, "highlight nodes reached by a transition that raised an exception (--exceptions=false to turn off)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when a cached artifact exists")

	return cmd
}

// loadRequest reads the process and optional tokens files.
func loadRequest(input, tokensPath string, cfg Config) (pipeline.Request, error) {
	p, err := process.ImportJSON(input)
	if err != nil {
		return pipeline.Request{}, err
	}
	if p.ID == "" {
		p.ID = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}

	req := pipeline.Request{
		Process:        p,
		Mode:           style.Mode(cfg.Mode),
		ShowExceptions: cfg.ShowExceptions(),
		URLTemplate:    cfg.URLTemplate,
	}
	if tokensPath != "" {
		if req.Tokens, err = process.ImportTokensJSON(tokensPath); err != nil {
			return pipeline.Request{}, err
		}
	}
	return req, nil
}

func (c *CLI) runRender(ctx context.Context, input string, cfg Config, opts renderOpts) error {
	req, err := loadRequest(input, opts.tokens, cfg)
	if err != nil {
		return err
	}
	req.Formats = opts.formats
	req.Refresh = opts.refresh

	runner, closeRunner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer closeRunner()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Rendering "+req.Process.ID+"...")
	if opts.output != "-" {
		spinner.Start()
	}
	result, err := runner.Run(ctx, req)
	if err != nil {
		if opts.output != "-" {
			spinner.StopWithError("Render failed")
		}
		return err
	}
	if opts.output != "-" {
		spinner.Stop()
	}

	if opts.output == "-" {
		_, err := os.Stdout.Write(result.Artifacts[opts.formats[0]])
		return err
	}

	base := basePath(opts.output, input)
	var written []string
	for _, format := range opts.formats {
		path := outputPath(opts.output, base, format, len(opts.formats))
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	prog.done("Rendered " + req.Process.ID)
	printSuccess("Rendered %s", StyleHighlight.Render(req.Process.ID))
	printRenderSummary(result, len(req.Tokens))
	for _, path := range written {
		printFile(path)
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .png, .dot), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if errors.ValidateFormats([]string{strings.TrimPrefix(ext, ".")}) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns the file for one format. A single format written to an
// explicit output uses that path verbatim.
func outputPath(output, base, format string, count int) string {
	if output != "" && count == 1 {
		return output
	}
	return base + "." + format
}
