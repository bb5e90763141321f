package cmd

import (
	"os"
	"runtime"
	"text/template"

	"github.com/medley-cli/medley/color"
	"github.com/medley-cli/medley/constant"
	"github.com/medley-cli/medley/style"
	"github.com/medley-cli/medley/version"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Print only the version number")
	versionCmd.Flags().Bool("no-check", false, "Skip looking for a newer release")
}

var versionTemplate = lo.Must(template.New("version").Funcs(template.FuncMap{
	"faint":  style.Faint,
	"bold":   style.Bold,
	"accent": style.Fg(color.Purple),
}).Parse(`{{ accent "▇▇▇" }} {{ accent .App }}

  {{ faint "Version" }}      {{ bold .Version }}
  {{ faint "Revision" }}     {{ bold .Revision }}
  {{ faint "Built" }}        {{ bold .BuiltAt }} {{ faint "by" }} {{ bold .BuiltBy }}
  {{ faint "Platform" }}     {{ bold .OS }}/{{ bold .Arch }} {{ faint .Go }}
`))

// versionCmd prints the version and build metadata.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version and build metadata",
	Long:  "Display the application version, build revision and platform, and announce newer releases.",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), map[string]string{
			"App":      constant.Medley,
			"Version":  constant.Version,
			"Revision": constant.Revision,
			"BuiltAt":  constant.BuiltAt,
			"BuiltBy":  constant.BuiltBy,
			"OS":       runtime.GOOS,
			"Arch":     runtime.GOARCH,
			"Go":       runtime.Version(),
		}))

		if !lo.Must(cmd.Flags().GetBool("no-check")) {
			version.Notify(cmd.Context(), cmd.OutOrStdout())
		}
	},
}
