package platform

import (
	"context"
	"fmt"
)

// DefaultXdotoolPath is looked up on PATH when no path is configured
const DefaultXdotoolPath = "xdotool"

// newXdotool returns a runner that executes xdotool command scripts read
// from stdin
func newXdotool(path string) scriptRunner {
	if path == "" {
		path = DefaultXdotoolPath
	}
	return scriptRunner{path: path, args: []string{"-"}}
}

// xdotoolSeekScript sends Shift plus an arrow key to the first window of
// the given class without focusing it
func xdotoolSeekScript(class, key string) string {
	return fmt.Sprintf("search --limit 1 --class %s\nkey --window %%1 shift+%s\n", class, key)
}

// xdotoolKeyboard pastes with xdotool and reads modifiers from X
type xdotoolKeyboard struct {
	runner    scriptRunner
	modifiers func() bool
}

func (k xdotoolKeyboard) ModifiersHeld() bool {
	if k.modifiers == nil {
		return false
	}
	return k.modifiers()
}

func (k xdotoolKeyboard) Paste() error {
	ctx, cancel := context.WithTimeout(context.Background(), helperTimeout)
	defer cancel()
	return k.runner.RunScript(ctx, "key --clearmodifiers ctrl+v\n")
}

// commandClipboard writes the clipboard by piping text into a helper such
// as xclip or pbcopy
type commandClipboard struct {
	name string
	args []string
}

func (c commandClipboard) SetText(text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), helperTimeout)
	defer cancel()
	if _, err := runCommand(ctx, text, c.name, c.args...); err != nil {
		return fmt.Errorf("failed to set clipboard: %w", err)
	}
	return nil
}
