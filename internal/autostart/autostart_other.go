//go:build !darwin && !linux && !windows

package autostart

import "errors"

// ErrUnsupported is returned where no autostart mechanism is known
var ErrUnsupported = errors.New("autostart is not supported on this system")

// Path is unsupported here
func Path() (string, error) {
	return "", ErrUnsupported
}

// Install is unsupported here
func Install(Entry) (string, error) {
	return "", ErrUnsupported
}

// Uninstall is unsupported here
func Uninstall() (bool, error) {
	return false, ErrUnsupported
}
