package tui

import (
	"errors"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"
)

// ErrInteractiveDisabled is returned when a prompt is needed but no terminal is available
var ErrInteractiveDisabled = errors.New("interactive prompts are disabled (use --yes)")

// IsTTY returns true if stdin and stdout are both terminals
func IsTTY() bool {
	in, out := os.Stdin.Fd(), os.Stdout.Fd()
	return (isatty.IsTerminal(in) || isatty.IsCygwinTerminal(in)) &&
		(isatty.IsTerminal(out) || isatty.IsCygwinTerminal(out))
}

// IsInteractive reports whether prompts may be shown
func IsInteractive() bool {
	return os.Getenv("STAGESYNC_NON_INTERACTIVE") == "" && IsTTY()
}

// Confirm asks a yes/no question
func Confirm(message string, defaultValue bool) (bool, error) {
	if !IsInteractive() {
		return false, ErrInteractiveDisabled
	}

	answer := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, errors.New("canceled")
	}
	return answer, nil
}
