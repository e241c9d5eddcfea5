//go:build linux

package autostart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Path returns the XDG autostart entry location
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "autostart", "toastify.desktop"), nil
}

// Install writes the autostart entry, replacing any previous one. It
// returns the entry's path. The daemon starts at the next login.
func Install(e Entry) (string, error) {
	entry, err := GenerateDesktopEntry(e)
	if err != nil {
		return "", err
	}

	path, err := Path()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.LogDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create autostart directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(entry), 0644); err != nil {
		return "", fmt.Errorf("failed to write autostart entry: %w", err)
	}
	return path, nil
}

// Uninstall removes the autostart entry. It reports false if nothing was
// installed.
func Uninstall() (bool, error) {
	path, err := Path()
	if err != nil {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return true, fmt.Errorf("failed to remove autostart entry: %w", err)
	}
	return true, nil
}
