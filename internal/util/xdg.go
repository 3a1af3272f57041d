package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// XDGDataDir returns the XDG data directory for claude-usage.
// It respects XDG_DATA_HOME if set, otherwise falls back to
// ~/.local/share/claude-usage
func XDGDataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "claude-usage"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".local", "share", "claude-usage"), nil
}
