package tui

import "github.com/charmbracelet/lipgloss"

func colored(code string, text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(code)).
		Render(text)
}

// ColorRed colors text red
func ColorRed(text string) string {
	return colored("1", text)
}

// ColorGreen colors text green
func ColorGreen(text string) string {
	return colored("2", text)
}

// ColorYellow colors text yellow
func ColorYellow(text string) string {
	return colored("3", text)
}

// ColorCyan colors text cyan
func ColorCyan(text string) string {
	return colored("6", text)
}

// ColorDim renders text in a muted gray
func ColorDim(text string) string {
	return colored("8", text)
}
