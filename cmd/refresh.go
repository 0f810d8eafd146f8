package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/podkeep/podkeep/internal/app"
)

var refreshAll bool

// refreshCmd represents the refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh [podcast-id]",
	Short: "Refresh podcast feeds",
	Long: `Refetch feeds and report new episodes.

With a podcast ID only that feed is refreshed. With --all every podcast
that is due for an update is refreshed.

Example:
  podkeep refresh 1a2b3c4d5e6f7081
  podkeep refresh --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
	refreshCmd.Flags().BoolVar(&refreshAll, "all", false, "refresh every podcast that is due")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		podcast, err := application.Subscriptions.GetByID(ctx, args[0])
		if err != nil {
			return err
		}
		updated, newEpisodes, err := application.Feeds.UpdateFeed(ctx, podcast)
		if err != nil {
			return err
		}
		if err := application.Subscriptions.UpdatePodcastEpisodes(ctx, updated.ID, updated.Episodes); err != nil {
			return err
		}
		fmt.Printf("%q: %d new episodes\n", updated.Title, len(newEpisodes))
		return application.Flush(ctx)
	}

	if !refreshAll {
		return fmt.Errorf("provide a podcast ID or --all")
	}

	due, err := application.Subscriptions.GetPodcastsNeedingUpdate(ctx, cfg.Feeds.UpdateInterval)
	if err != nil {
		return err
	}

	totalNew := 0
	for i := range due {
		updated, newEpisodes, err := application.Feeds.UpdateFeed(ctx, &due[i])
		if err != nil {
			fmt.Printf("%q: refresh failed: %v\n", due[i].Title, err)
			continue
		}
		if err := application.Subscriptions.UpdatePodcastEpisodes(ctx, updated.ID, updated.Episodes); err != nil {
			fmt.Printf("%q: could not persist episodes: %v\n", updated.Title, err)
			continue
		}
		fmt.Printf("%q: %d new episodes\n", updated.Title, len(newEpisodes))
		totalNew += len(newEpisodes)
	}

	fmt.Printf("Refreshed %d podcasts, %d new episodes\n", len(due), totalNew)
	return application.Flush(ctx)
}
