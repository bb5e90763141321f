package cmd

import (
	"os"
	"strings"

	"github.com/medley-cli/medley/color"
	"github.com/medley-cli/medley/config"
	"github.com/medley-cli/medley/constant"
	"github.com/medley-cli/medley/style"
	"github.com/medley-cli/medley/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Display only variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Display only variables that are unset")

	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

// envName returns the environment variable bound to a config key.
func envName(key string) string {
	return strings.ToUpper(constant.Medley + "_" + config.EnvKeyReplacer.Replace(key))
}

// envCmd lists the environment variables medley reads.
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the supported environment variables",
	Long: `List the environment variables medley reads and their current values.
Provider settings are read from ` + envName("providers.<id>.<field>") + ` as well.`,
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))

		names := append(lo.Map(config.EnvExposed, func(k string, _ int) string {
			return envName(k)
		}), where.EnvConfigPath)
		slices.Sort(names)

		for _, env := range names {
			value, present := os.LookupEnv(env)
			if (setOnly && !present) || (unsetOnly && present) {
				continue
			}

			cmd.Print(style.New().Bold(true).Foreground(color.Purple).Render(env))
			cmd.Print("=")

			if present {
				cmd.Println(style.Fg(color.Green)(value))
			} else {
				cmd.Println(style.Fg(color.Red)("unset"))
			}
		}
	},
}
