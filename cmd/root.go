package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "toastify",
	Short: "Track change notifications and media hotkeys for Spotify",
	Long: `toastify watches the Spotify desktop client and announces every track
change with a toast that carries the album artwork.

It runs as a background daemon that samples Spotify's window title, looks
up artwork, and executes media actions (play/pause, skip, volume, copy
track info) sent from hotkeys, the command line or the local HTTP API.

Toasts are written to the log and streamed to websocket clients, such as
a browser overlay, on ws://localhost:52846/ws.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
