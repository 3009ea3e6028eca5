package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd returns the callers installed okto version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Retrieve the currently installed okto version",
	Long:  "Run `okto version` to get your current okto version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(currentReleaseVersion)
	},
}
