// Package tui provides terminal output for stagesync.
//
// It handles:
//   - Structured logging and status reporting (Splog)
//   - Terminal styling and colors (using lipgloss)
//   - Confirmation prompts (using survey)
package tui
