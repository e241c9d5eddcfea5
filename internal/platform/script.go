package platform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// helperTimeout bounds helper programs run outside of an action's context
const helperTimeout = 5 * time.Second

// scriptRunner feeds scripts to an interpreter on stdin. It backs the key
// injector on every platform: AutoHotkey on Windows, xdotool on Linux and
// osascript on macOS.
type scriptRunner struct {
	path string
	args []string
	env  []string // Added to the inherited environment
}

// RunScript implements player.KeyInjector
func (r scriptRunner) RunScript(ctx context.Context, script string) error {
	_, err := r.output(ctx, script)
	return err
}

// output runs script and returns its trimmed stdout
func (r scriptRunner) output(ctx context.Context, script string) (string, error) {
	cmd := exec.CommandContext(ctx, r.path, r.args...)
	cmd.Stdin = strings.NewReader(script)
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stderr.Len() > 0 {
			return "", fmt.Errorf("%s error: %s", r.path, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("failed to execute %s: %w", r.path, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// runCommand runs a helper program with optional stdin
func runCommand(ctx context.Context, stdin string, name string, args ...string) (string, error) {
	return scriptRunner{path: name, args: args}.output(ctx, stdin)
}
