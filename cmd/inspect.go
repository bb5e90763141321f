package cmd

import (
	"encoding/json"
	"os"

	"github.com/medley-cli/medley/inspect"
	"github.com/medley-cli/medley/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	inspectCmd.Flags().Bool("schema", false, "Print the JSON schema of the output and exit")
	inspectCmd.SetOut(os.Stdout)
}

// inspectCmd lists the loaded sources or describes one of them.
var inspectCmd = &cobra.Command{
	Use:               "inspect [source]",
	Short:             "List loaded sources or describe one of them",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionSourceIDs,
	Run: func(cmd *cobra.Command, args []string) {
		asJSON := lo.Must(cmd.Flags().GetBool("json"))
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")

		if lo.Must(cmd.Flags().GetBool("schema")) {
			handleErr(encoder.Encode(inspect.Schema(len(args) == 0)))
			return
		}

		reg := session(cmd.Context(), cmd)
		defer reg.Close()

		if len(args) == 0 {
			summaries := inspect.Summaries(reg)
			if asJSON {
				handleErr(encoder.Encode(summaries))
				return
			}
			handleErr(inspect.RenderSummaries(cmd.OutOrStdout(), summaries))
			return
		}

		report, err := inspect.Describe(reg, args[0])
		handleErr(err)

		if asJSON {
			handleErr(encoder.Encode(report))
			return
		}
		handleErr(inspect.RenderReport(cmd.OutOrStdout(), report, util.TerminalWidth(80)))
	},
}
