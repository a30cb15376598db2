package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pvmviz/pkg/digraph"
	"github.com/matzehuels/pvmviz/pkg/overlay"
	"github.com/matzehuels/pvmviz/pkg/process"
)

const defaultWatchInterval = 2 * time.Second

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		tokens   string
		interval time.Duration
		cfgFlags Config
	)
	cmd := &cobra.Command{
		Use:   "watch <process.json>",
		Short: "Follow token progress through a process in the terminal",
		Long: `Watch compiles a process once and re-reads the tokens file whenever it
changes, showing the overlay state of every transition. Tokens only move
edges forward, so the table converges as the process advances.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			overrideString(cmd, "styles", &cfg.Styles)
			overrideBoolPtr(cmd, "exceptions", &cfg.Exceptions)
			return c.runWatch(cmd.Context(), args[0], tokens, interval, cfg)
		},
	}
	cmd.Flags().StringVarP(&tokens, "tokens", "t", "", "tokens JSON file to follow (required)")
	cmd.Flags().DurationVar(&interval, "interval", defaultWatchInterval, "poll interval")
	cmd.Flags().StringVar(&cfgFlags.Styles, "styles", "", "style source (file:, redis://, mongodb://, libsql:)")
	cmd.Flags().Bool("exceptions", true, "count exceptions raised by token transitions (--exceptions=false to turn off)")
	_ = cmd.MarkFlagRequired("tokens")
	return cmd
}

func (c *CLI) runWatch(ctx context.Context, input, tokensPath string, interval time.Duration, cfg Config) error {
	req, err := loadRequest(input, "", cfg)
	if err != nil {
		return err
	}
	runner, closeRunner, err := c.newRunner(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer closeRunner()

	g, _, err := runner.Build(ctx, req)
	if err != nil {
		return err
	}
	m := newWatchModel(g, req.Process, tokensPath, interval, runner.OverlayOptions(ctx, req))
	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// watchModel - Live overlay table
// =============================================================================

type tickMsg time.Time

// tokensMsg carries one read of the tokens file. Only reads made by the
// polling loop schedule the next tick; a manual reload must not start a
// second loop.
type tokensMsg struct {
	tokens  []process.Token
	modTime time.Time
	err     error
	manual  bool
}

// watchModel holds one compiled graph and repaints it as tokens arrive.
// Painting is monotonic, so re-applying the full token list each time
// never moves an edge backwards.
type watchModel struct {
	graph      *digraph.Graph
	proc       *process.Process
	tokensPath string
	interval   time.Duration
	opts       overlay.Options

	modTime time.Time
	updated time.Time
	stats   overlay.Stats
	tokens  int
	err     error
}

func newWatchModel(g *digraph.Graph, p *process.Process, tokensPath string, interval time.Duration, opts overlay.Options) watchModel {
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	return watchModel{graph: g, proc: p, tokensPath: tokensPath, interval: interval, opts: opts}
}

func (m watchModel) Init() tea.Cmd {
	return loadTokens(m.tokensPath, time.Time{}, false)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, loadTokens(m.tokensPath, time.Time{}, true)
		}
	case tickMsg:
		return m, loadTokens(m.tokensPath, m.modTime, false)
	case tokensMsg:
		m = m.apply(msg)
		if msg.manual {
			return m, nil
		}
		return m, tick(m.interval)
	}
	return m, nil
}

// apply paints a freshly read token list. An unchanged file (nil tokens
// and no error) leaves the model as it was.
func (m watchModel) apply(msg tokensMsg) watchModel {
	if msg.err != nil {
		m.err = msg.err
		return m
	}
	if msg.tokens == nil {
		return m
	}
	m.modTime = msg.modTime
	stats, err := overlay.Apply(m.graph, m.proc, msg.tokens, m.opts)
	m.err = err
	m.stats = stats
	m.tokens = len(msg.tokens)
	m.updated = time.Now()
	return m
}

func (m watchModel) View() string {
	var b strings.Builder

	title := m.proc.ID
	if title == "" {
		title = "process"
	}
	b.WriteString(StyleTitle.Render("Watching " + title))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%s every %s  r: reload  q: quit", m.tokensPath, m.interval)))
	b.WriteString("\n\n")

	states := overlay.States(m.graph)
	rows := make([][]string, 0, len(states))
	for _, s := range states {
		state := string(s.State)
		if state == "" {
			state = "-"
		}
		rows = append(rows, []string{s.TransitionID, s.From, s.To, state})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("TRANSITION", "FROM", "TO", "STATE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == -1 {
				return base.Foreground(colorCyan).Bold(true)
			}
			if col != 3 {
				return base
			}
			return stateStyle(states[row].State).Padding(0, 1)
		})
	b.WriteString(t.Render())
	b.WriteString("\n\n")

	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d tokens  ", m.tokens)))
	b.WriteString(stateSummary(states))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d exceptions", m.stats.Exceptions)))
	if !m.updated.IsZero() {
		b.WriteString(StyleDim.Render("  updated " + m.updated.Format(time.Kitchen)))
	}
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(StyleWarning.Render("  " + m.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// Commands
// =============================================================================

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// loadTokens reads the tokens file when it changed after since.
func loadTokens(path string, since time.Time, manual bool) tea.Cmd {
	return func() tea.Msg {
		msg := tokensMsg{manual: manual}
		info, err := os.Stat(path)
		if err != nil {
			msg.err = err
			return msg
		}
		if !info.ModTime().After(since) {
			return msg
		}
		if msg.tokens, msg.err = process.ImportTokensJSON(path); msg.err != nil {
			msg.tokens = nil
			return msg
		}
		if msg.tokens == nil {
			msg.tokens = []process.Token{}
		}
		msg.modTime = info.ModTime()
		return msg
	}
}
