package cmd

import (
	"fmt"
	"os"

	"github.com/medley-cli/medley/icon"
	"github.com/medley-cli/medley/log"
	"github.com/medley-cli/medley/util"
	"github.com/medley-cli/medley/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// clearTarget defines a filesystem resource eligible for cleanup.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
}

var clearTargets = []clearTarget{
	{"response cache", "cache", mo.Some("c"), where.Responses},
	{"query suggestions", "queries", mo.Some("q"), where.Queries},
	{"bookmarks", "bookmarks", mo.None[string](), where.Bookmarks},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if target.argShort.IsPresent() {
			clearCmd.Flags().BoolP(target.argLong, target.argShort.MustGet(), false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

// clearCmd removes cached and stored application data.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cached and stored application data",
	Run: func(cmd *cobra.Command, args []string) {
		var anyCleared bool

		for _, target := range clearTargets {
			if !lo.Must(cmd.Flags().GetBool(target.argLong)) {
				continue
			}

			anyCleared = true
			if err := util.Delete(target.location()); err != nil && !os.IsNotExist(err) {
				handleErr(err)
			}
			log.WithFields(log.Fields{"path": target.location()}).Info("cleared")
			fmt.Printf("%s %s cleared\n", icon.Get(icon.Success), target.name)
		}

		if !anyCleared {
			handleErr(cmd.Help())
		}
	},
}
