//go:build linux

package platform

import (
	"fmt"
	"os/exec"

	"github.com/jfmyers9/toastify/internal/window"
)

// Launch starts the target from PATH. It does nothing if the target is
// running.
func Launch(appName string, target window.Target) error {
	if len(processIDs(target.ProcessName)) > 0 {
		return nil
	}

	path, err := exec.LookPath(target.ProcessName)
	if err != nil {
		return fmt.Errorf("could not find %s: %w", appName, err)
	}
	return start(path)
}
