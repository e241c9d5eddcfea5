//go:build darwin

package autostart

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Path returns the launchd plist location
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, "Library", "LaunchAgents", Label+".plist"), nil
}

// Install writes the plist and loads the agent, replacing any previous
// installation. It returns the plist path.
func Install(e Entry) (string, error) {
	plist, err := GeneratePlist(e)
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
		return "", fmt.Errorf("failed to create LaunchAgents directory: %w", err)
	}

	// Bootstrap fails if the agent is already loaded
	if _, err := os.Stat(path); err == nil {
		_ = bootout()
	}

	if err := os.WriteFile(path, []byte(plist), 0644); err != nil {
		return "", fmt.Errorf("failed to write plist file: %w", err)
	}

	out, err := exec.Command("launchctl", "bootstrap", domain(), path).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return "", fmt.Errorf("launchctl bootstrap failed: %s", msg)
		}
		return "", fmt.Errorf("failed to run launchctl bootstrap: %w", err)
	}
	return path, nil
}

// Uninstall unloads the agent and removes the plist. It reports false if
// nothing was installed.
func Uninstall() (bool, error) {
	path, err := Path()
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	// Bootout fails if the agent is not loaded, which is fine
	_ = bootout()

	if err := os.Remove(path); err != nil {
		return true, fmt.Errorf("failed to remove plist file: %w", err)
	}
	return true, nil
}

func domain() string {
	return fmt.Sprintf("gui/%d", os.Getuid())
}

func bootout() error {
	return exec.Command("launchctl", "bootout", domain()+"/"+Label).Run()
}
