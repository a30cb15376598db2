package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pvmviz/pkg/errors"
	"github.com/matzehuels/pvmviz/pkg/style"
	"github.com/matzehuels/pvmviz/pkg/stylestore"
	"github.com/matzehuels/pvmviz/pkg/stylestore/file"
)

// stylesCommand creates the style management command.
func (c *CLI) stylesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "styles",
		Short: "Inspect and seed diagram styles",
	}

	cmd.AddCommand(c.stylesDumpCommand())
	cmd.AddCommand(c.stylesShowCommand())
	cmd.AddCommand(c.stylesSeedCommand())

	return cmd
}

// stylesDumpCommand creates the "styles dump" subcommand.
func (c *CLI) stylesDumpCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the built-in styles as a TOML style file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			if err := file.Encode(w, style.BuiltinTable()); err != nil {
				return err
			}
			if output != "" {
				printSuccess("Wrote built-in styles")
				printFile(output)
				printNextStep("Use them with", "pvmviz render --styles file:"+output+" <process.json>")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

// stylesShowCommand creates the "styles show" subcommand.
func (c *CLI) stylesShowCommand() *cobra.Command {
	var cfgFlags Config
	cmd := &cobra.Command{
		Use:   "show <node <type> | transition | special <start|end> | graph>",
		Short: "Show a resolved style entry",
		Long: `Show resolves one style entry the way the compiler would, including the
fallback to built-in defaults, and prints its attributes.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			overrideString(cmd, "styles", &cfg.Styles)
			overrideString(cmd, "mode", &cfg.Mode)

			mode, err := style.ParseMode(cfg.Mode)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidMode, err, "invalid mode")
			}
			resolver, closeStyles, err := c.openResolver(cmd.Context(), cfg.Styles)
			if err != nil {
				return err
			}
			defer closeStyles()

			ctx := cmd.Context()
			var rows [][2]string
			switch {
			case args[0] == "node" && len(args) == 2:
				rows = entryRows(resolver.NodeStyle(ctx, mode, args[1]))
			case args[0] == "transition" && len(args) == 1:
				rows = entryRows(resolver.TransitionStyle(ctx, mode))
			case args[0] == "special" && len(args) == 2:
				kind := style.Special(args[1])
				if kind != style.SpecialStart && kind != style.SpecialEnd {
					return errors.New(errors.ErrCodeInvalidInput, "special node must be start or end, got %q", args[1])
				}
				rows = entryRows(resolver.SpecialNodeStyle(ctx, mode, kind))
			case args[0] == "graph" && len(args) == 1:
				rows = graphRows(resolver.GraphSettings(ctx, mode))
			default:
				return errors.New(errors.ErrCodeInvalidInput, "usage: %s", cmd.Use)
			}

			fmt.Println(StyleTitle.Render(fmt.Sprintf("%s (%s)", joinArgs(args), mode)))
			for _, row := range rows {
				printStyleRow(row[0], row[1])
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgFlags.Mode, "mode", "m", "", "color mode: light (default), dark")
	cmd.Flags().StringVar(&cfgFlags.Styles, "styles", "", "style source (file:, redis://, mongodb://, libsql:)")
	return cmd
}

// stylesSeedCommand creates the "styles seed" subcommand.
func (c *CLI) stylesSeedCommand() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "seed <target>",
		Short: "Write styles into a Redis, MongoDB or libSQL style store",
		Long: `Seed writes the built-in styles, or the styles of a TOML/HCL file given
with --from, into a writable style store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			table := style.BuiltinTable()
			if from != "" {
				var err error
				if table, err = file.Load(from); err != nil {
					return err
				}
			}

			store, err := stylestore.Open(ctx, args[0], c.Logger)
			if err != nil {
				return err
			}
			defer store.Close()

			seeder, ok := store.(stylestore.Seeder)
			if !ok {
				return errors.New(errors.ErrCodeUnsupported, "style source %s is read-only", stylestore.Describe(args[0]))
			}
			spinner := newSpinnerWithContext(ctx, "Seeding "+stylestore.Describe(args[0])+"...")
			spinner.Start()
			if err := seeder.Seed(ctx, table); err != nil {
				spinner.StopWithError("Seed failed")
				return err
			}
			spinner.Stop()
			printSuccess("Seeded %d node styles", len(table.Nodes))
			printDetail("Target: %s", stylestore.Describe(args[0]))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "TOML or HCL style file to seed instead of the built-ins")
	return cmd
}

func entryRows(e style.Entry) [][2]string {
	rows := [][2]string{
		{"label", e.Label},
		{"shape", e.Shape},
		{"color", e.Color},
		{"fillcolor", e.FillColor},
		{"style", e.Style},
		{"fontname", e.FontName},
		{"fontsize", formatNum(e.FontSize)},
		{"fontcolor", e.FontColor},
		{"gradientangle", formatNum(float64(e.GradientAngle))},
		{"penwidth", formatNum(e.PenWidth)},
		{"arrowsize", formatNum(e.ArrowSize)},
		{"taken_style", e.TakenStyle},
	}
	return nonEmpty(rows)
}

func graphRows(g style.GraphSettings) [][2]string {
	rows := [][2]string{
		{"rankdir", g.RankDir},
		{"ranksep", formatNum(g.RankSep)},
		{"size", g.Size},
		{"fontname", g.FontName},
		{"fontsize", formatNum(g.FontSize)},
		{"fontcolor", g.FontColor},
		{"bgcolor", g.Background},
		{"splines", g.Splines},
	}
	return nonEmpty(rows)
}

func nonEmpty(rows [][2]string) [][2]string {
	out := rows[:0]
	for _, r := range rows {
		if r[1] != "" {
			out = append(out, r)
		}
	}
	return out
}

func formatNum(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func joinArgs(args []string) string {
	if len(args) == 2 {
		return args[0] + " " + args[1]
	}
	return args[0]
}
