package cmd

import (
	"fmt"
	"strings"

	"github.com/medley-cli/medley/key"
	"github.com/medley-cli/medley/launch"
	"github.com/medley-cli/medley/log"
	"github.com/medley-cli/medley/query"
	"github.com/medley-cli/medley/style"
	"github.com/medley-cli/medley/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntP("limit", "l", 5, "Items requested from each source")
	lo.Must0(viper.BindPFlag(key.SearchLimit, searchCmd.Flags().Lookup("limit")))

	searchCmd.Flags().Bool("suggest", false, "Print remembered queries similar to the text instead of searching")
}

// searchCmd searches every source able to search.
var searchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Search all sources at once",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		text := strings.Join(args, " ")

		if lo.Must(cmd.Flags().GetBool("suggest")) {
			for _, s := range query.SuggestMany(text) {
				cmd.Println(s)
			}
			return
		}

		if err := query.Remember(text, 1); err != nil {
			log.Warn(err)
		}

		reg := session(cmd.Context(), cmd)
		defer reg.Close()

		res, err := launch.SearchAll(cmd.Context(), reg, text, launch.Options{
			Out:   cmd.OutOrStdout(),
			Count: viper.GetInt(key.SearchLimit),
		})
		handleErr(err)

		for _, failure := range res.Failures {
			warn(failure)
		}

		cmd.PrintErrln(style.Faint(fmt.Sprintf(
			"%s from %s",
			util.Quantify(res.Items, "result", "results"),
			util.Quantify(res.Sources, "source", "sources"),
		)))
	},
}
