package cmd

import (
	"fmt"

	"github.com/jfmyers9/toastify/internal/autostart"
	"github.com/spf13/cobra"
)

// uninstallCmd represents the uninstall command
var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Stop starting the toastify daemon on login",
	Long: `Remove the autostart entry created by 'toastify install'.

On macOS the launchd agent is also stopped. After uninstalling, the
daemon will no longer run automatically on login.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := autostart.Uninstall()
		if err != nil {
			return fmt.Errorf("failed to uninstall autostart entry: %w", err)
		}
		if !removed {
			fmt.Println("Daemon is not installed")
			return nil
		}

		fmt.Println("✓ Removed autostart entry")
		fmt.Println("\nThe toastify daemon will no longer run automatically on login.")
		fmt.Println("\nTo reinstall, run:")
		fmt.Println("  toastify install")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
