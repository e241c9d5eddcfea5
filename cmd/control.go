package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jfmyers9/toastify/internal/api"
	"github.com/jfmyers9/toastify/internal/config"
	"github.com/jfmyers9/toastify/internal/player"
	"github.com/spf13/cobra"
)

// shortcut is a top-level command that submits one action to the daemon
type shortcut struct {
	use    string
	short  string
	action player.Action
}

var shortcuts = []shortcut{
	{"playpause", "Toggle play/pause in Spotify", player.ActionPlayPause},
	{"next", "Skip to the next track", player.ActionNextTrack},
	{"prev", "Go to the previous track", player.ActionPreviousTrack},
	{"stop", "Stop playback", player.ActionStop},
	{"mute", "Toggle mute", player.ActionMute},
	{"volume-up", "Raise the volume", player.ActionVolumeUp},
	{"volume-down", "Lower the volume", player.ActionVolumeDown},
	{"toast", "Show the current song again", player.ActionShowToast},
	{"copy", "Copy the current song to the clipboard", player.ActionCopyTrackInfo},
}

// actionCmd represents the action command
var actionCmd = &cobra.Command{
	Use:   "action <name>",
	Short: "Send any action to the running daemon",
	Long: `Send an action to the running daemon by name.

Run 'toastify action --list' to see every action name.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if list, _ := cmd.Flags().GetBool("list"); list {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	ValidArgs: actionNames(),
	RunE:      runAction,
}

func init() {
	for _, s := range shortcuts {
		action := s.action
		rootCmd.AddCommand(&cobra.Command{
			Use:   s.use,
			Short: s.short,
			Long:  fmt.Sprintf("%s. Requires a running daemon; same as 'toastify action %s'.", s.short, action),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return submitAction(action)
			},
		})
	}

	rootCmd.AddCommand(actionCmd)
	actionCmd.Flags().Bool("list", false, "List the available actions")
}

func runAction(cmd *cobra.Command, args []string) error {
	if list, _ := cmd.Flags().GetBool("list"); list {
		for _, name := range actionNames() {
			fmt.Println(name)
		}
		return nil
	}

	action, err := player.ParseAction(args[0])
	if err != nil || action == player.ActionNone {
		return fmt.Errorf("unknown action %q (see 'toastify action --list')", args[0])
	}
	return submitAction(action)
}

func submitAction(action player.Action) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := api.NewClient(cfg.API.Listen).Submit(ctx, action); err != nil {
		return fmt.Errorf("failed to send %s: %w", action, err)
	}
	return nil
}

func actionNames() []string {
	names := make([]string, 0, len(player.Actions()))
	for _, a := range player.Actions() {
		names = append(names, a.String())
	}
	return names
}
