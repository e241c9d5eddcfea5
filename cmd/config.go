package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jfmyers9/toastify/internal/config"
	"github.com/spf13/cobra"
)

var configForce bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration the daemon would run with: defaults, then
~/.config/toastify/config.yaml, then TOASTIFY_* environment variables.

The Spotify client secret is masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return printConfig(cmd.OutOrStdout(), cfg)
	},
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := initConfig(config.GetConfigDir(), configForce)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
}

func printConfig(w io.Writer, cfg *config.Config) error {
	masked := *cfg
	if masked.Spotify.ClientSecret != "" {
		masked.Spotify.ClientSecret = "********"
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(masked.Settings()); err != nil {
		return fmt.Errorf("failed to print config: %w", err)
	}
	return nil
}

// initConfig writes the defaults to dir and returns the file path
func initConfig(dir string, force bool) (string, error) {
	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	cfg, err := config.Defaults()
	if err != nil {
		return "", fmt.Errorf("failed to build defaults: %w", err)
	}
	if err := cfg.Save(dir); err != nil {
		return "", err
	}
	return path, nil
}
