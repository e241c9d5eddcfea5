//go:build windows

package platform

import (
	"fmt"
	"path/filepath"

	"github.com/jfmyers9/toastify/internal/window"
	"golang.org/x/sys/windows/registry"
)

// Launch starts the target from the install location its installer
// recorded in the registry. It does nothing if the target is running.
func Launch(appName string, target window.Target) error {
	if len(processIDs(target.ProcessName)) > 0 {
		return nil
	}

	dir, err := installDir(appName)
	if err != nil {
		return err
	}
	return start(filepath.Join(dir, target.ProcessName+".exe"))
}

// installDir reads the default value of HKCU\Software\<app>, falling back
// to the uninstall entry's InstallLocation
func installDir(appName string) (string, error) {
	lookups := []struct{ path, value string }{
		{`Software\` + appName, ""},
		{`Software\Microsoft\Windows\CurrentVersion\Uninstall\` + appName, "InstallLocation"},
	}

	for _, l := range lookups {
		k, err := registry.OpenKey(registry.CURRENT_USER, l.path, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		dir, _, err := k.GetStringValue(l.value)
		k.Close()
		if err == nil && dir != "" {
			return dir, nil
		}
	}
	return "", fmt.Errorf("could not find %s install location in registry", appName)
}
