package cmd

import (
	"os"

	"github.com/medley-cli/medley/color"
	"github.com/medley-cli/medley/style"
	"github.com/medley-cli/medley/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// whereTarget is a path medley reads or writes, printed by "medley where".
type whereTarget struct {
	name   string
	path   func() string
	flag   string
	short  mo.Option[string]
	listed bool
}

var wherePaths = []whereTarget{
	{"Config", where.Config, "config", mo.Some("c"), true},
	{"Sources", where.Sources, "sources", mo.Some("s"), true},
	{"Bookmarks", where.Bookmarks, "bookmarks", mo.Some("b"), true},
	{"Logs", where.Logs, "logs", mo.Some("l"), true},
	{"Cache", where.Cache, "cache", mo.None[string](), false},
	{"Queries", where.Queries, "queries", mo.None[string](), false},
	{"Responses", where.Responses, "responses", mo.None[string](), false},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, t := range wherePaths {
		whereCmd.Flags().BoolP(t.flag, t.short.OrEmpty(), false, t.name+" path")
		if !t.listed {
			lo.Must0(whereCmd.Flags().MarkHidden(t.flag))
		}
	}

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(wherePaths, func(t whereTarget, _ int) string {
		return t.flag
	})...)

	whereCmd.SetOut(os.Stdout)
}

// whereCmd prints the paths medley uses.
var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Print the paths of configuration, sources and data files",
	Run: func(cmd *cobra.Command, args []string) {
		if t, ok := lo.Find(wherePaths, func(t whereTarget) bool {
			return lo.Must(cmd.Flags().GetBool(t.flag))
		}); ok {
			cmd.Println(t.path())
			return
		}

		header := style.New().Bold(true).Foreground(color.HiPurple).Render
		listed := lo.Filter(wherePaths, func(t whereTarget, _ int) bool { return t.listed })

		for i, t := range listed {
			cmd.Printf("%s %s\n", header(t.name+"?"), style.Fg(color.Yellow)("--"+t.flag))
			cmd.Println(t.path())

			if i < len(listed)-1 {
				cmd.Println()
			}
		}
	},
}
