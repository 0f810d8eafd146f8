package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/podkeep/podkeep/internal/app"
	apperrors "github.com/podkeep/podkeep/pkg/errors"
)

// subscribeCmd represents the subscribe command
var subscribeCmd = &cobra.Command{
	Use:   "subscribe <feed-url>",
	Short: "Subscribe to a podcast feed",
	Long: `Fetch a podcast feed, parse it, and add it to the subscription list.

Example:
  podkeep subscribe https://example.com/feed.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runSubscribe,
}

func init() {
	rootCmd.AddCommand(subscribeCmd)
}

func runSubscribe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}

	feedURL := args[0]
	if existing, err := application.Subscriptions.GetByFeedURL(ctx, feedURL); err == nil {
		return fmt.Errorf("already subscribed to %q (%s)", existing.Title, existing.ID)
	}

	podcast, err := application.Feeds.FetchFeed(ctx, feedURL, false)
	if err != nil {
		return fmt.Errorf("%s: %w", apperrors.UserMessage(err), err)
	}

	if err := application.Subscriptions.AddPodcast(ctx, *podcast); err != nil {
		return err
	}
	if err := application.Flush(ctx); err != nil {
		return err
	}

	fmt.Printf("Subscribed to %q (%d episodes)\n", podcast.Title, len(podcast.Episodes))
	return nil
}
