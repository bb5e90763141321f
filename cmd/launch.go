package cmd

import (
	"errors"
	"strings"
	"time"

	"github.com/medley-cli/medley/key"
	"github.com/medley-cli/medley/launch"
	"github.com/medley-cli/medley/source"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(launchCmd)

	launchCmd.Flags().IntP("count", "c", source.CountInfinity, "Maximum number of items to request")
	lo.Must0(viper.BindPFlag(key.LaunchCount, launchCmd.Flags().Lookup("count")))

	launchCmd.Flags().IntP("delay", "d", 0, "Seconds to wait before the operation starts")
	lo.Must0(viper.BindPFlag(key.LaunchDelay, launchCmd.Flags().Lookup("delay")))

	launchCmd.Flags().Int("skip", 0, "Number of items to skip")
	launchCmd.Flags().StringP("keys", "k", "", "Comma separated metadata keys to print")
	launchCmd.Flags().StringP("flags", "f", "normal", "Resolution flags: normal, full, idle_relay, fast_only")
	launchCmd.Flags().BoolP("json", "j", false, "Print one JSON object per item")
	launchCmd.Flags().BoolP("titles", "t", false, "Print the key names before the results")
}

// launchCmd runs a single operation and prints its results.
var launchCmd = &cobra.Command{
	Use:   "launch <operation> <params...>",
	Short: "Run one source operation without the explorer",
	Long: "Run one source operation and print the results as comma separated values.\n\nOperations:\n  " +
		strings.Join(launch.Usage(), "\n  "),
	Example: `  medley launch browse local
  medley launch search "blue train" jamendo -k title,artist
  medley launch metadata 1234 jamendo --json`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		req, err := launch.Parse(args)
		handleErr(err)

		flags, err := source.ParseFlags(lo.Must(cmd.Flags().GetString("flags")))
		handleErr(err)

		skip := lo.Must(cmd.Flags().GetInt("skip"))
		if skip < 0 {
			handleErr(errors.New("skip must not be negative"))
		}

		reg := session(cmd.Context(), cmd)
		defer reg.Close()

		options := launch.Options{
			Out:    cmd.OutOrStdout(),
			Count:  viper.GetInt(key.LaunchCount),
			Skip:   skip,
			Flags:  flags,
			Delay:  time.Duration(viper.GetInt(key.LaunchDelay)) * time.Second,
			JSON:   lo.Must(cmd.Flags().GetBool("json")),
			Titles: lo.Must(cmd.Flags().GetBool("titles")),
		}

		if keys := lo.Must(cmd.Flags().GetString("keys")); keys != "" {
			options.Keys, err = reg.Keys().Parse(keys)
			handleErr(err)
		}

		handleErr(launch.Run(cmd.Context(), reg, req, options))
	},
}
