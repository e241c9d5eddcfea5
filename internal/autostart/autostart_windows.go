//go:build windows

package autostart

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/windows/registry"
)

const (
	runKey   = `Software\Microsoft\Windows\CurrentVersion\Run`
	runValue = "Toastify"
)

// Path returns the registry value that starts the daemon
func Path() (string, error) {
	return `HKCU\` + runKey + `\` + runValue, nil
}

// Install sets the Run key value, replacing any previous one. It returns
// the value's path. The daemon starts at the next login.
func Install(e Entry) (string, error) {
	if err := os.MkdirAll(e.LogDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	k, _, err := registry.CreateKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		return "", fmt.Errorf("failed to open Run key: %w", err)
	}
	defer k.Close()

	if err := k.SetStringValue(runValue, CommandLine(e)); err != nil {
		return "", fmt.Errorf("failed to set Run value: %w", err)
	}
	return Path()
}

// Uninstall deletes the Run key value. It reports false if nothing was
// installed.
func Uninstall() (bool, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to open Run key: %w", err)
	}
	defer k.Close()

	if err := k.DeleteValue(runValue); err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return true, fmt.Errorf("failed to delete Run value: %w", err)
	}
	return true, nil
}
