package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pvmviz/pkg/errors"
	"github.com/matzehuels/pvmviz/pkg/style"
)

// styleSchemes are the style source prefixes offered for --styles.
var styleSchemes = []string{"file:", "redis://", "mongodb://", "libsql:"}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for pvmviz. Besides commands and flags,
the scripts complete color modes, output formats and style source schemes.

  $ source <(pvmviz completion bash)
  $ pvmviz completion zsh > "${fpath[1]}/_pvmviz"
  $ pvmviz completion fish > ~/.config/fish/completions/pvmviz.fish
  PS> pvmviz completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(w, true)
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(w)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}

// registerCompletions attaches value completions to the domain flags cmd
// defines. Flags the command lacks are skipped.
func registerCompletions(cmd *cobra.Command) {
	complete := func(name string, fn cobra.CompletionFunc) {
		if cmd.Flags().Lookup(name) != nil {
			_ = cmd.RegisterFlagCompletionFunc(name, fn)
		}
	}
	complete("mode", fixedCompletion(string(style.ModeLight), string(style.ModeDark)))
	complete("format", completeFormats)
	complete("styles", completeStyleSource)
}

func fixedCompletion(values ...string) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeFormats completes the last element of a comma-separated format
// list, leaving formats already given out.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	done, _, _ := cutLast(toComplete, ",")
	seen := map[string]bool{}
	for _, f := range strings.Split(done, ",") {
		seen[f] = true
	}
	var out []string
	for _, f := range errors.Formats {
		if !seen[f] {
			out = append(out, joinNonEmpty(done, f))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// completeStyleSource offers the source schemes, then files once "file:"
// has been typed.
func completeStyleSource(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if strings.HasPrefix(toComplete, "file:") {
		return []string{"toml", "hcl"}, cobra.ShellCompDirectiveFilterFileExt
	}
	return styleSchemes, cobra.ShellCompDirectiveNoSpace | cobra.ShellCompDirectiveNoFileComp
}

func cutLast(s, sep string) (before, after string, found bool) {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return "", s, false
}

func joinNonEmpty(prefix, value string) string {
	if prefix == "" {
		return value
	}
	return prefix + "," + value
}
