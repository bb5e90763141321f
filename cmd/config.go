package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/medley-cli/medley/color"
	"github.com/medley-cli/medley/config"
	"github.com/medley-cli/medley/constant"
	"github.com/medley-cli/medley/filesystem"
	"github.com/medley-cli/medley/icon"
	"github.com/medley-cli/medley/style"
	"github.com/medley-cli/medley/where"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func errUnknownKey(key string) error {
	closest, ok := config.Suggest(key)
	if !ok {
		return fmt.Errorf("unknown key %s", style.Fg(color.Red)(key))
	}

	return fmt.Errorf(
		"unknown key %s, did you mean %s?",
		style.Fg(color.Red)(key),
		style.Fg(color.Yellow)(closest),
	)
}

// configFile is the path of the TOML file viper reads.
func configFile() string {
	return filepath.Join(where.Config(), constant.Medley+".toml")
}

// field returns the registered field of key, failing the command for unknown keys.
func field(key string) config.Field {
	f, ok := config.Default[key]
	if !ok {
		handleErr(errUnknownKey(key))
	}
	return f
}

// keyArg picks the key from the first argument or the --key flag.
func keyArg(cmd *cobra.Command, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if k, _ := cmd.Flags().GetString("key"); k != "" {
		return k
	}
	handleErr(errors.New("key is required as an argument or --key flag"))
	return ""
}

// persist writes the in-memory configuration, creating the file when needed.
func persist() {
	err := viper.WriteConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = viper.SafeWriteConfig()
	}
	handleErr(err)
}

// convert parses raw into the type of the field's default value.
func convert(f config.Field, raw []string) (any, error) {
	switch f.Value.(type) {
	case []string:
		return raw, nil
	case int:
		return cast.ToIntE(raw[0])
	case bool:
		return cast.ToBoolE(raw[0])
	default:
		return raw[0], nil
	}
}

func success(format string, args ...any) {
	fmt.Printf("%s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), fmt.Sprintf(format, args...))
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// configCmd groups the configuration commands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
}

func init() {
	configCmd.AddCommand(configInfoCmd)
	configInfoCmd.Flags().StringSliceP("key", "k", []string{}, "Keys to describe; all keys when omitted")
	configInfoCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	_ = configInfoCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)

	configInfoCmd.SetOut(os.Stdout)
}

// configInfoCmd describes configuration fields.
var configInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe configuration fields",
	Run: func(cmd *cobra.Command, args []string) {
		keys := lo.Must(cmd.Flags().GetStringSlice("key"))
		if len(keys) == 0 {
			keys = lo.Keys(config.Default)
		}
		slices.Sort(keys)

		fields := lo.Map(keys, func(k string, _ int) config.Field { return field(k) })

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(fields))
			return
		}

		cmd.Println(strings.Join(lo.Map(fields, func(f config.Field, _ int) string {
			return f.Pretty()
		}), "\n\n"))
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configSetCmd.Flags().StringP("key", "k", "", "The configuration key to update")
	configSetCmd.Flags().StringSliceP("value", "v", []string{}, "The new value")
	_ = configSetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

// configSetCmd updates a configuration key and writes the file.
var configSetCmd = &cobra.Command{
	Use:               "set [key] [value...]",
	Short:             "Update a configuration key",
	Example:           "  medley config set search.limit 10\n  medley config set sources.ranks jamendo:40 local:10",
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		key := keyArg(cmd, args)
		f := field(key)

		raw := lo.Must(cmd.Flags().GetStringSlice("value"))
		if len(args) > 1 {
			raw = args[1:]
		}
		if len(raw) == 0 {
			handleErr(errors.New("value is required as an argument or --value flag"))
		}

		v, err := convert(f, raw)
		if err != nil {
			handleErr(fmt.Errorf("invalid value for %s: %w", key, err))
		}

		viper.Set(key, v)
		persist()
		success("set %s to %s", style.Fg(color.Purple)(key), style.Fg(color.Yellow)(fmt.Sprint(v)))
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configGetCmd.Flags().StringP("key", "k", "", "The configuration key to read")
	_ = configGetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

// configGetCmd prints the current value of a key.
var configGetCmd = &cobra.Command{
	Use:               "get [key]",
	Short:             "Print the current value of a configuration key",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		key := keyArg(cmd, args)
		field(key)
		fmt.Println(viper.Get(key))
	},
}

func init() {
	configCmd.AddCommand(configWriteCmd)
	configWriteCmd.Flags().BoolP("force", "f", false, "Overwrite an existing configuration file")
}

// configWriteCmd writes the current configuration to disk.
var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the current configuration to the config file",
	Run: func(cmd *cobra.Command, args []string) {
		path := configFile()
		if lo.Must(cmd.Flags().GetBool("force")) {
			if err := filesystem.API().Remove(path); err != nil && !os.IsNotExist(err) {
				handleErr(err)
			}
		}

		handleErr(viper.SafeWriteConfig())
		success("wrote config to %s", path)
	},
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}

// configDeleteCmd removes the configuration file.
var configDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove the configuration file",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(filesystem.API().Remove(configFile()))
		success("deleted config")
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)

	configResetCmd.Flags().StringP("key", "k", "", "The configuration key to reset")
	configResetCmd.Flags().BoolP("all", "a", false, "Reset every key")
	configResetCmd.MarkFlagsMutuallyExclusive("key", "all")
	configResetCmd.MarkFlagsOneRequired("key", "all")
	_ = configResetCmd.RegisterFlagCompletionFunc("key", completionConfigKeys)
}

// configResetCmd restores default values.
var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore configuration keys to their defaults",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("all")) {
			for k, f := range config.Default {
				viper.Set(k, f.Value)
			}
			persist()
			success("reset all config values")
			return
		}

		key := lo.Must(cmd.Flags().GetString("key"))
		f := field(key)
		viper.Set(key, f.Value)
		persist()
		success("reset %s to default value %s", style.Fg(color.Purple)(key), style.Fg(color.Yellow)(fmt.Sprint(f.Value)))
	},
}
