package actions

import (
	"fmt"

	"stagesync.dev/stagesync/internal/tui"
)

// PrintConflictStatus displays conflict information and instructions to the user
func PrintConflictStatus(splog *tui.Splog, stage string, conflicts []string) {
	msg := tui.ColorRed(fmt.Sprintf("Hit conflicts merging %s", stage))
	splog.Info("%s", msg)
	splog.Newline()

	if len(conflicts) > 0 {
		splog.Info("%s", tui.ColorYellow("Conflicting elements:"))
		for _, key := range conflicts {
			splog.Info("%s", tui.ColorRed(key))
		}
		splog.Newline()
	}

	splog.Info("%s", tui.ColorYellow("To finish the merge:"))
	splog.Info("(1) resolve the conflict markers in the listed files")
	splog.Info("(2) check the pending merge with %s", tui.ColorCyan("stagesync status"))
	splog.Info("It's safe to drop the pending merge with %s.", tui.ColorCyan("stagesync abort"))
}
