package actions

import (
	"fmt"
	"path"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"stagesync.dev/stagesync/internal/git"
	"stagesync.dev/stagesync/internal/index"
	"stagesync.dev/stagesync/internal/runtime"
	"stagesync.dev/stagesync/internal/tui"
)

// DiffOptions contains options for the diff command
type DiffOptions struct {
	Stage  string
	Key    string
	OutDir string
}

// DiffLine is one line of a line diff
type DiffLine struct {
	Op   diffmatchpatch.Operation
	Text string
}

// DiffAction shows the line diff from the working file of an element to the
// content recorded for it in the stage's remote index. A missing working file
// diffs as empty.
func DiffAction(ctx *runtime.Context, opts DiffOptions) ([]DiffLine, error) {
	if !index.IsElementKey(opts.Key) {
		return nil, fmt.Errorf("invalid element key %q (expected <type>/<name>)", opts.Key)
	}

	remote, _, err := loadStageIndex(ctx, opts.Stage, true)
	if err != nil {
		return nil, err
	}
	entry, ok := remote.Get(opts.Key)
	if !ok {
		return nil, fmt.Errorf("%s is not tracked by the remote index of %s", opts.Key, remote.StageName)
	}

	remoteContent, err := ctx.Objects.Read(ctx.Context, entry.LocalContentHash, git.KindBlob)
	if err != nil {
		return nil, err
	}

	var working []byte
	filePath := path.Join(opts.OutDir, opts.Key)
	if ctx.Tree.Exists(ctx.Context, filePath) {
		working, err = ctx.Tree.Read(ctx.Context, filePath)
		if err != nil {
			return nil, err
		}
	}

	lines := LineDiff(string(working), string(remoteContent))
	printDiff(ctx.Splog, opts.Key, lines)
	return lines, nil
}

// LineDiff computes a line-level diff from one text to another
func LineDiff(from, to string) []DiffLine {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var lines []DiffLine
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			lines = append(lines, DiffLine{Op: d.Type, Text: strings.TrimSuffix(line, "\n")})
		}
	}
	return lines
}

func printDiff(splog *tui.Splog, key string, lines []DiffLine) {
	changed := false
	for _, line := range lines {
		if line.Op != diffmatchpatch.DiffEqual {
			changed = true
			break
		}
	}
	if !changed {
		splog.Info("%s matches the remote content.", key)
		return
	}

	splog.Info("%s", tui.ColorDim("--- working/"+key))
	splog.Info("%s", tui.ColorDim("+++ remote/"+key))
	for _, line := range lines {
		switch line.Op {
		case diffmatchpatch.DiffInsert:
			splog.Info("%s", tui.ColorGreen("+"+line.Text))
		case diffmatchpatch.DiffDelete:
			splog.Info("%s", tui.ColorRed("-"+line.Text))
		default:
			splog.Info(" %s", line.Text)
		}
	}
}
