// Package autostart registers the daemon to start when the user logs in:
// a launchd agent on macOS, an XDG autostart entry on Linux and a Run key
// value on Windows.
package autostart

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/template"
)

// Label identifies the daemon to the service manager
const Label = "com.toastify.daemon"

const plistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>{{.Label}}</string>
	<key>ProgramArguments</key>
	<array>
		<string>{{.BinaryPath}}</string>
		<string>daemon</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<true/>
	<key>StandardOutPath</key>
	<string>{{.LogDir}}/toastify.log</string>
	<key>StandardErrorPath</key>
	<string>{{.LogDir}}/toastify.err</string>
	<key>WorkingDirectory</key>
	<string>{{.WorkingDirectory}}</string>
	<key>EnvironmentVariables</key>
	<dict>
		<key>PATH</key>
		<string>/usr/local/bin:/opt/homebrew/bin:/usr/bin:/bin:/usr/sbin:/sbin</string>
	</dict>
</dict>
</plist>
`

const desktopTemplate = `[Desktop Entry]
Type=Application
Name=Toastify
Comment=Track change notifications and media hotkeys
Exec={{.Exec}} daemon --log-file {{.LogFile}}
Path={{.WorkingDirectory}}
Terminal=false
X-GNOME-Autostart-enabled=true
`

// Entry describes how to start the daemon
type Entry struct {
	BinaryPath       string
	LogDir           string
	WorkingDirectory string
}

// NewEntry describes the running executable with the default log directory
func NewEntry() (Entry, error) {
	binaryPath, err := os.Executable()
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual binary path
	binaryPath, err = filepath.EvalSymlinks(binaryPath)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to resolve executable path: %w", err)
	}

	logDir, err := DefaultLogDir()
	if err != nil {
		return Entry{}, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	return Entry{BinaryPath: binaryPath, LogDir: logDir, WorkingDirectory: home}, nil
}

// LogFile returns the daemon's log file inside LogDir
func (e Entry) LogFile() string {
	return filepath.Join(e.LogDir, "toastify.log")
}

// DefaultLogDir returns the conventional log directory for the OS
func DefaultLogDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		dir, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("failed to get cache directory: %w", err)
		}
		return filepath.Join(dir, "toastify", "logs"), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Logs", "toastify"), nil
	default:
		if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
			return filepath.Join(dir, "toastify"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, ".local", "state", "toastify"), nil
	}
}

// GeneratePlist generates a launchd plist file from the template
func GeneratePlist(e Entry) (string, error) {
	return render("plist", plistTemplate, struct {
		Entry
		Label string
	}{e, Label})
}

// GenerateDesktopEntry generates an XDG autostart desktop entry
func GenerateDesktopEntry(e Entry) (string, error) {
	return render("desktop", desktopTemplate, struct {
		Entry
		Exec    string
		LogFile string
	}{e, desktopQuote(e.BinaryPath), desktopQuote(e.LogFile())})
}

// desktopQuote quotes an Exec argument the way desktop entries require when it
// contains characters the launcher would split on
func desktopQuote(arg string) string {
	if !strings.ContainsAny(arg, " \t\n\"'\\><~|&;$*?#()`") {
		return arg
	}
	r := strings.NewReplacer(`\`, `\\\\`, `"`, `\\"`, "`", "\\\\`", `$`, `\\$`)
	return `"` + r.Replace(arg) + `"`
}

// CommandLine returns the Run key value that starts the daemon
func CommandLine(e Entry) string {
	return fmt.Sprintf(`"%s" daemon --log-file "%s"`, e.BinaryPath, e.LogFile())
}

func render(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}

	return buf.String(), nil
}
