package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/podkeep/podkeep/internal/app"
)

var listSearch string

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscribed podcasts",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listSearch, "search", "", "filter by title or author substring")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}

	podcasts, err := application.Subscriptions.SearchPodcasts(ctx, listSearch)
	if err != nil {
		return err
	}
	if len(podcasts) == 0 {
		fmt.Println("No subscriptions")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tEPISODES\tFEED")
	for _, p := range podcasts {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.ID, p.Title, len(p.Episodes), p.FeedURL)
	}
	return w.Flush()
}
