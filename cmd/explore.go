package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exploreCmd)
}

// exploreCmd opens the interactive explorer.
var exploreCmd = &cobra.Command{
	Use:               "explore [source]",
	Short:             "Browse and search sources interactively",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionSourceIDs,
	Run: func(cmd *cobra.Command, args []string) {
		var source string
		if len(args) > 0 {
			source = args[0]
		}
		explore(cmd, source)
	},
}
