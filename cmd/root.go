package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/podkeep/podkeep/pkg/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "podkeep",
	Short: "Podcast subscription and playback state manager",
	Long: `podkeep manages podcast subscriptions, playback progress, playlists,
and playback queues, persisting everything as JSON files in a data folder.

It serves an HTTP API for player frontends and also works as a standalone
CLI for subscribing to and refreshing feeds.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig initializes the configuration for commands that need it
func loadConfig() (*config.Config, error) {
	if err := config.Init(); err != nil {
		return nil, fmt.Errorf("initializing config: %w", err)
	}
	return config.GetConfig()
}
