package platform

import (
	"context"
	"fmt"
	"strings"
)

// DefaultAutoHotkeyPath is looked up on PATH when no path is configured
const DefaultAutoHotkeyPath = "AutoHotkey.exe"

// newAutoHotkey returns a runner that executes scripts read from stdin
func newAutoHotkey(path string) scriptRunner {
	if path == "" {
		path = DefaultAutoHotkeyPath
	}
	return scriptRunner{path: path, args: []string{"/ErrorStdOut", "*"}}
}

// ahkSeekScript sends Shift plus an arrow key to the target window even when
// it is hidden, which the target maps to seeking
func ahkSeekScript(class, key string) string {
	var b strings.Builder
	b.WriteString("SetTitleMatchMode 2\n")
	b.WriteString("DetectHiddenWindows, On\n")
	fmt.Fprintf(&b, "ControlSend, ahk_parent, +{%s}, ahk_class %s\n", key, class)
	b.WriteString("DetectHiddenWindows, Off\n")
	return b.String()
}

// ahkClipboardScript assigns text to the clipboard and waits for it to land
func ahkClipboardScript(text string) string {
	return fmt.Sprintf("Clipboard := %s\nClipWait, 1\n", ahkQuote(text))
}

// ahkQuote renders s as an AutoHotkey expression string literal
func ahkQuote(s string) string {
	r := strings.NewReplacer(
		"`", "``",
		`"`, `""`,
		"\r", "`r",
		"\n", "`n",
		"\t", "`t",
		";", "`;",
	)
	return `"` + r.Replace(s) + `"`
}

// ahkClipboard writes the clipboard through AutoHotkey
type ahkClipboard struct {
	runner scriptRunner
}

func (c ahkClipboard) SetText(text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), helperTimeout)
	defer cancel()
	return c.runner.RunScript(ctx, ahkClipboardScript(text))
}
