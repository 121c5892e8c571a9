package tui

import (
	"os"
	"path/filepath"
)

// GetLogFilePath returns the path to the log file.
// STAGESYNC_LOG_FILE wins, then the configured path, then
// ~/.stagesync/logs/stagesync.log.
func GetLogFilePath(configured string) string {
	if customPath := os.Getenv("STAGESYNC_LOG_FILE"); customPath != "" {
		return customPath
	}
	if configured != "" {
		return configured
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "stagesync.log"
	}
	return filepath.Join(homeDir, ".stagesync", "logs", "stagesync.log")
}
