package cmd

import (
	"fmt"
	"runtime"

	"github.com/jfmyers9/toastify/internal/autostart"
	"github.com/spf13/cobra"
)

// installCmd represents the install command
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Start the toastify daemon automatically on login",
	Long: `Register the toastify daemon to run automatically on login.

Depending on the OS this will:
  - macOS: write a launchd agent to ~/Library/LaunchAgents/ and load it
  - Linux: write an XDG autostart entry to ~/.config/autostart/
  - Windows: add a value under HKCU\Software\Microsoft\Windows\CurrentVersion\Run

The daemon logs to a file in the OS log directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := autostart.NewEntry()
		if err != nil {
			return err
		}

		path, err := autostart.Install(entry)
		if err != nil {
			return fmt.Errorf("failed to install autostart entry: %w", err)
		}

		fmt.Printf("✓ Installed autostart entry at %s\n", path)
		fmt.Printf("✓ Logs will be written to %s\n", entry.LogFile())
		if runtime.GOOS == "darwin" {
			fmt.Println("✓ Daemon loaded and started successfully")
			fmt.Println("\nYou can check the daemon status with:")
			fmt.Printf("  launchctl list | grep %s\n", autostart.Label)
		} else {
			fmt.Println("\nThe daemon will start on your next login. To start it now, run:")
			fmt.Printf("  %s\n", autostart.CommandLine(entry))
		}
		fmt.Println("\nTo uninstall, run:")
		fmt.Println("  toastify uninstall")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
