//go:build darwin

package platform

import "github.com/jfmyers9/toastify/internal/window"

// Launch asks Launch Services to open the target application. It does
// nothing if the target is running.
func Launch(appName string, target window.Target) error {
	if len(processIDs(target.ProcessName)) > 0 {
		return nil
	}
	return start("open", "-g", "-a", appName)
}
