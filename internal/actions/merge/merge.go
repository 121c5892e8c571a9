package merge

import (
	"fmt"
	"strings"

	"stagesync.dev/stagesync/internal/actions"
	"stagesync.dev/stagesync/internal/engine"
	stagesyncerrors "stagesync.dev/stagesync/internal/errors"
	"stagesync.dev/stagesync/internal/index"
	"stagesync.dev/stagesync/internal/runtime"
	"stagesync.dev/stagesync/internal/tui"
)

// Options contains options for the merge command
type Options struct {
	Stage       string
	RemoteStage string
	// Files restricts the merge to these element keys when non-empty
	Files  []string
	Engine engine.Options
}

// ValidateFiles checks that every file filter entry looks like an element key
func ValidateFiles(files []string) error {
	var invalid []string
	for _, file := range files {
		if !index.IsFileFilter(file) {
			invalid = append(invalid, file)
		}
	}
	if len(invalid) > 0 {
		return stagesyncerrors.NewInvalidFileFormatError(invalid...)
	}
	return nil
}

// Action merges the remote index of a stage into its local state using the
// plan/execute pattern. Nothing is read or written before the file filter is
// validated.
func Action(ctx *runtime.Context, opts Options) (*Summary, error) {
	splog := ctx.Splog

	// 1. Validate
	if err := ValidateFiles(opts.Files); err != nil {
		return nil, err
	}

	// 2. Resolve and load
	res, err := Resolve(ctx.Context, ctx.Objects, opts.Stage, opts.RemoteStage)
	if err != nil {
		return nil, err
	}
	plan, err := CreatePlan(ctx.Context, ctx.Objects, ctx.Refs, res)
	if err != nil {
		return nil, err
	}

	if plan.Created {
		splog.Info("No local index for %s, creating it from %s", tui.ColorCyan(plan.LocalName), tui.ColorCyan(plan.RemoteName))
	} else {
		splog.Debug("Merging %s (%s) with %s (%s)", plan.LocalName, plan.LocalSource, plan.RemoteName, plan.RemoteHash.Short())
	}

	// 3. Merge and persist
	summary, err := Execute(ctx, plan, opts.Files, opts.Engine)
	if err != nil {
		return nil, err
	}

	printSummary(ctx, summary)
	return summary, nil
}

func printSummary(ctx *runtime.Context, summary *Summary) {
	splog := ctx.Splog

	for _, key := range summary.Keys() {
		outcome := summary.Outcomes[key]
		switch outcome {
		case engine.OutcomeMerged:
			splog.Info("%s %s", tui.ColorGreen(padOutcome(outcome)), key)
		case engine.OutcomeDeleted:
			splog.Info("%s %s", tui.ColorYellow(padOutcome(outcome)), key)
		case engine.OutcomeConflict:
			splog.Info("%s %s", tui.ColorRed(padOutcome(outcome)), key)
		default:
			splog.Debug("%s %s", padOutcome(outcome), key)
		}
	}

	if n := len(summary.Failures); n > 0 {
		splog.Warn("%d element(s) could not be merged and will be retried by the next merge", n)
	}

	switch {
	case summary.Created:
		splog.Info("Created local index %s for %s.", tui.ColorCyan(summary.LocalHash.Short()), summary.Stage)
	case !summary.HasUpdates:
		splog.Info("Already up to date.")
	case !summary.AllMerged:
		splog.Newline()
		actions.PrintConflictStatus(splog, summary.Stage, summary.ConflictFiles)
	default:
		splog.Info("%s", tui.ColorGreen(fmt.Sprintf("Merged %s into %s.", summary.RemoteStage, summary.Stage)))
		splog.Tip("The merge is pending; check it with %s", tui.ColorCyan("stagesync status"))
	}
}

func padOutcome(outcome engine.Outcome) string {
	const width = len(engine.OutcomeUpToDate)
	s := string(outcome)
	return s + strings.Repeat(" ", width-len(s))
}
