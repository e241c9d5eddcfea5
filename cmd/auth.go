package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jfmyers9/toastify/internal/artwork"
	"github.com/jfmyers9/toastify/internal/config"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Store Spotify API credentials for artwork lookup",
	Long: `Store Spotify Web API client credentials so that album artwork is
looked up on Spotify instead of iTunes.

This command will:
1. Prompt for your Spotify client ID and secret
2. Verify them by requesting an access token
3. Save them to your config file

You can create credentials at: https://developer.spotify.com/dashboard`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	// Load existing config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := promptCredentials(cfg, os.Stdin, os.Stdout); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	fmt.Println("\nVerifying credentials...")
	if _, err := artwork.ClientCredentials(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret).Token(ctx); err != nil {
		return fmt.Errorf("failed to verify credentials: %w", err)
	}

	// Explicit iTunes or none stays as chosen
	if cfg.Catalog.Provider == config.ProviderAuto {
		cfg.Catalog.Provider = config.ProviderSpotify
	}

	configDir := config.GetConfigDir()
	if err := cfg.Save(configDir); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("\n✓ Credentials verified\n")
	fmt.Printf("✓ Saved to %s/config.yaml\n", configDir)
	fmt.Println("\nRestart 'toastify daemon' to look up artwork on Spotify.")

	return nil
}

// promptCredentials fills cfg.Spotify from in, offering to keep existing
// credentials
func promptCredentials(cfg *config.Config, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "Spotify Credentials")
	fmt.Fprintln(out, "===================")
	fmt.Fprintln(out)

	// Check if we already have credentials
	if cfg.Spotify.HasCredentials() {
		fmt.Fprintf(out, "Found existing credentials.\n")
		fmt.Fprintf(out, "Client ID: %s\n", cfg.Spotify.ClientID)
		fmt.Fprint(out, "\nUse existing credentials? [Y/n]: ")
		response, err := reader.ReadString('\n')
		if err != nil {
			response = "y"
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "" && response != "y" && response != "yes" {
			cfg.Spotify.ClientID = ""
			cfg.Spotify.ClientSecret = ""
		}
	}

	if cfg.Spotify.ClientID == "" {
		fmt.Fprint(out, "Enter your Spotify Client ID: ")
		id, err := reader.ReadString('\n')
		if err != nil && id == "" {
			return fmt.Errorf("failed to read client ID: %w", err)
		}
		cfg.Spotify.ClientID = strings.TrimSpace(id)
	}

	if cfg.Spotify.ClientSecret == "" {
		fmt.Fprint(out, "Enter your Spotify Client Secret: ")
		secret, err := reader.ReadString('\n')
		if err != nil && secret == "" {
			return fmt.Errorf("failed to read client secret: %w", err)
		}
		cfg.Spotify.ClientSecret = strings.TrimSpace(secret)
	}

	if !cfg.Spotify.HasCredentials() {
		return fmt.Errorf("client ID and secret are required")
	}
	return nil
}
