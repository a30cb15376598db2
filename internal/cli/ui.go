package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pvmviz/pkg/overlay"
	"github.com/matzehuels/pvmviz/pkg/pipeline"
	"github.com/matzehuels/pvmviz/pkg/process"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - titles and headers
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - keys
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for process ids.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for paths and style values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached  = lipgloss.NewStyle().Foreground(colorGreen)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(24)
)

// Edge states use the diagram's own passed color so the terminal and the
// rendered image agree.
var (
	statePassedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(overlay.ColorPassed))
	stateWaitingStyle     = lipgloss.NewStyle().Foreground(colorYellow)
	stateInterruptedStyle = lipgloss.NewStyle().Foreground(colorRed)
	stateNoneStyle        = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconSwatch  = "■"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written artifact path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Render Summary
// =============================================================================

// statsLine summarizes a render: graph size, whether Graphviz ran, and the
// compile time.
func statsLine(stats pipeline.Stats, cached bool) string {
	status := StyleDim.Render("rendered")
	if cached {
		status = styleCached.Render("cached")
	}
	sep := StyleDim.Render(" · ")
	return "  " + strings.Join([]string{
		StyleDim.Render(fmt.Sprintf("%d vertices", stats.VertexCount)),
		StyleDim.Render(fmt.Sprintf("%d edges", stats.EdgeCount)),
		status,
		StyleDim.Render("compiled in " + stats.CompileTime.Round(10*time.Microsecond).String()),
	}, sep)
}

// printRenderSummary reports a finished render and its token pass.
func printRenderSummary(res *pipeline.Result, tokens int) {
	fmt.Println(statsLine(res.Stats, res.CacheInfo.RenderHit))
	if tokens == 0 {
		return
	}
	if res.Overlay.Applied == 0 {
		printWarning("No token transition changed the diagram")
		return
	}
	printDetail("%d token transitions applied, %d already passed, %d exceptions",
		res.Overlay.Applied, res.Overlay.Skipped, res.Overlay.Exceptions)
}

// =============================================================================
// Style Rows
// =============================================================================

// styleRow renders one resolved style field. Color values get a swatch in
// their own color; gradient lists get one swatch per stop.
func styleRow(key, value string) string {
	if value == "" {
		return styleKey.Render(key) + " " + StyleDim.Render("-")
	}
	out := styleKey.Render(key) + " "
	if isColorKey(key) {
		for _, c := range strings.Split(value, ":") {
			if strings.HasPrefix(c, "#") {
				out += lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render(iconSwatch) + " "
			}
		}
	}
	return out + StyleValue.Render(value)
}

func isColorKey(key string) bool {
	return strings.Contains(key, "color") || strings.Contains(key, "gradient")
}

func printStyleRow(key, value string) {
	fmt.Println(styleRow(key, value))
}

// =============================================================================
// Edge States
// =============================================================================

func stateStyle(s process.State) lipgloss.Style {
	switch s {
	case process.StatePassed:
		return statePassedStyle
	case process.StateWaiting:
		return stateWaitingStyle
	case process.StateInterrupted:
		return stateInterruptedStyle
	default:
		return stateNoneStyle
	}
}

// stateSummary counts edges per overlay state, e.g. "3 passed  1 waiting".
// States without edges are left out; untouched edges count as "untouched".
func stateSummary(states []overlay.EdgeState) string {
	order := []process.State{process.StatePassed, process.StateWaiting, process.StateInterrupted, ""}
	counts := make(map[process.State]int, len(order))
	for _, s := range states {
		counts[s.State]++
	}
	var parts []string
	for _, s := range order {
		n := counts[s]
		if n == 0 {
			continue
		}
		name := string(s)
		if name == "" {
			name = "untouched"
		}
		parts = append(parts, stateStyle(s).Render(fmt.Sprintf("%d %s", n, name)))
	}
	return strings.Join(parts, "  ")
}
