//go:build windows

package discord

import (
	"fmt"
	"os"
)

// dialSocket opens Discord's named pipe. A pipe opened as a file supports
// the blocking reads and writes the frame protocol needs.
func dialSocket() (*os.File, error) {
	var lastErr error
	for i := 0; i <= 9; i++ {
		path := fmt.Sprintf(`\\.\pipe\discord-ipc-%d`, i)
		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if err == nil {
			return f, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no discord pipe found: %w", lastErr)
}
