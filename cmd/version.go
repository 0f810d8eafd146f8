package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/podkeep/podkeep/api/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the podkeep version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("podkeep %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
