package actions

import (
	"encoding/json"
	"fmt"

	"stagesync.dev/stagesync/internal/runtime"
)

// CatIndexOptions contains options for the cat-index command
type CatIndexOptions struct {
	Identifier string
	Remote     bool
}

// CatIndexAction prints an index as indented JSON
func CatIndexAction(ctx *runtime.Context, opts CatIndexOptions) (string, error) {
	idx, hash, err := loadStageIndex(ctx, opts.Identifier, opts.Remote)
	if err != nil {
		return "", err
	}
	ctx.Splog.Debug("Loaded index %s", hash)

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format index: %w", err)
	}

	out := string(data)
	ctx.Splog.Info("%s", out)
	return out, nil
}
