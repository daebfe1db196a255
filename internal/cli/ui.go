package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/gridboard/pkg/dashboard"
	"github.com/matzehuels/gridboard/pkg/layout"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// widgetColors cycles through the grid cells so neighbours are distinguishable.
var widgetColors = []lipgloss.Color{"36", "75", "141", "179", "108", "168", "110", "215"}

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

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

	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleEmpty    = lipgloss.NewStyle().Foreground(colorDim)
	styleSelected = lipgloss.NewStyle().Bold(true).Reverse(true)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconEmpty   = "·"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Layout Display
// =============================================================================

// layoutStats formats the widget count and grid size on a single line.
func layoutStats(widgets []dashboard.Widget, cols int) string {
	enabled := dashboard.Enabled(widgets)
	parts := []string{
		fmt.Sprintf("%d widgets", len(enabled)),
		fmt.Sprintf("%d×%d grid", cols, layout.Height(dashboard.Rects(enabled))),
	}
	if n := len(widgets) - len(enabled); n > 0 {
		parts = append(parts, fmt.Sprintf("%d disabled", n))
	}
	return StyleDim.Render(strings.Join(parts, " · "))
}

// renderGrid draws the enabled widgets as a character grid, one cell per
// grid unit. Each widget is filled with the first letter of its ID; the
// widget named by selected is drawn reversed.
func renderGrid(w io.Writer, widgets []dashboard.Widget, cols int, selected string) {
	enabled := dashboard.Enabled(widgets)
	rows := layout.Height(dashboard.Rects(enabled))
	owner := make([][]int, rows)
	for y := range owner {
		owner[y] = make([]int, cols)
		for x := range owner[y] {
			owner[y][x] = -1
		}
	}
	for i, wdg := range enabled {
		for y := wdg.Y; y < wdg.Y+wdg.H && y < rows; y++ {
			for x := wdg.X; x < wdg.X+wdg.W && x < cols; x++ {
				if x >= 0 && y >= 0 {
					owner[y][x] = i
				}
			}
		}
	}

	for y := range owner {
		var line strings.Builder
		for _, i := range owner[y] {
			if i < 0 {
				line.WriteString(styleEmpty.Render(iconEmpty + " "))
				continue
			}
			wdg := enabled[i]
			style := lipgloss.NewStyle().Foreground(widgetColors[i%len(widgetColors)])
			if wdg.ID == selected {
				style = styleSelected.Foreground(widgetColors[i%len(widgetColors)])
			}
			line.WriteString(style.Render(cellGlyph(wdg.ID) + " "))
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}

func cellGlyph(id string) string {
	if id == "" {
		return "?"
	}
	return strings.ToUpper(id[:1])
}
