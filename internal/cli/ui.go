package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/shikc/wotan/pkg/analysis"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(18)
	styleGood    = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleBad     = lipgloss.NewStyle().Foreground(colorRed)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
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

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + styleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + styleDim.Render(iconArrow) + " " + styleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	fmt.Println("  " + styleKey.Render(key) + " " + styleValue.Render(value))
}

// =============================================================================
// Summary Display
// =============================================================================

// routabilityStyle picks a color for a routability value: green above 0.9,
// amber above 0.5, red below.
func routabilityStyle(v float64) lipgloss.Style {
	switch {
	case v > 0.9:
		return styleGood
	case v > 0.5:
		return styleWarning
	default:
		return styleBad
	}
}

// renderSummary returns the formatted run summary.
func renderSummary(sum *analysis.Summary) string {
	out := styleTitle.Render("Routability Summary") + "\n"
	out += "  " + styleKey.Render("run") + " " + styleDim.Render(sum.RunID) + "\n"
	out += "  " + styleKey.Render("routability") + " " +
		routabilityStyle(sum.Routability).Render(fmt.Sprintf("%.4f", sum.Routability)) + "\n"
	out += "  " + styleKey.Render("worst routability") + " " +
		routabilityStyle(sum.WorstRoutability).Render(fmt.Sprintf("%.4f", sum.WorstRoutability)) + "\n"
	out += "  " + styleKey.Render("worst node demand") + " " +
		styleValue.Render(fmt.Sprintf("%.4f", sum.WorstNodeDemand)) + "\n"
	out += "  " + styleKey.Render("connections") + " " +
		styleValue.Render(fmt.Sprintf("%d analyzed / %.0f desired", sum.AnalyzedConns, sum.DesiredConns)) + "\n"
	out += "  " + styleKey.Render("subgraph nodes") + " " +
		styleValue.Render(fmt.Sprintf("%.1f mean", sum.MeanSubgraphNodes)) + "\n"

	if len(sum.PerLength) > 0 {
		out += "  " + styleDim.Render("per length:") + "\n"
		for _, ls := range sum.PerLength {
			out += "    " + styleDim.Render(fmt.Sprintf("L=%d", ls.Length)) + " " +
				routabilityStyle(ls.Routability).Render(fmt.Sprintf("%.4f", ls.Routability)) +
				styleDim.Render(fmt.Sprintf(" (worst %.4f, %.0f possible)", ls.WorstRoutability, ls.Possible)) + "\n"
		}
	}
	return out
}

// printSummary prints the formatted run summary.
func printSummary(sum *analysis.Summary) {
	fmt.Print(renderSummary(sum))
}
