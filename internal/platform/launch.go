package platform

import (
	"fmt"
	"os/exec"
)

// start runs name detached from the daemon; the child outlives it
func start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return cmd.Process.Release()
}
