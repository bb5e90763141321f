// Package cmd implements the command-line interface for medley.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/ivanpirog/coloredcobra"
	"github.com/medley-cli/medley/color"
	"github.com/medley-cli/medley/config"
	"github.com/medley-cli/medley/constant"
	"github.com/medley-cli/medley/icon"
	"github.com/medley-cli/medley/key"
	"github.com/medley-cli/medley/log"
	"github.com/medley-cli/medley/style"
	"github.com/medley-cli/medley/tui"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringSliceP("allow", "A", []string{}, "Only load the listed source ids")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("allow", completionSourceIDs))
	lo.Must0(viper.BindPFlag(key.SourcesAllow, rootCmd.PersistentFlags().Lookup("allow")))

	rootCmd.PersistentFlags().StringSliceP("rank", "R", []string{}, "Override source ranks with id:rank pairs")
	lo.Must0(viper.BindPFlag(key.SourcesRanks, rootCmd.PersistentFlags().Lookup("rank")))

	rootCmd.PersistentFlags().BoolP("watch", "W", false, "Reload scripted sources when their files change")
	lo.Must0(viper.BindPFlag(key.SourcesWatch, rootCmd.PersistentFlags().Lookup("watch")))

	rootCmd.PersistentFlags().String("metrics", "", "Serve prometheus metrics on this address")
	lo.Must0(viper.BindPFlag(key.MetricsAddress, rootCmd.PersistentFlags().Lookup("metrics")))

	rootCmd.Flags().StringP("source", "s", "", "Open the explorer on this source")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("source", completionSourceIDs))
}

// rootCmd defines the entry point for the medley application.
var rootCmd = &cobra.Command{
	Use:   constant.Medley,
	Short: "Browse, search and inspect media from pluggable sources",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiPurple).Render("    - Browse, search and inspect media from pluggable sources"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		explore(cmd, lo.Must(cmd.Flags().GetString("source")))
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		coloredcobra.Init(&coloredcobra.Config{
			RootCmd:       rootCmd,
			Headings:      coloredcobra.HiCyan + coloredcobra.Bold + coloredcobra.Underline,
			Commands:      coloredcobra.HiYellow + coloredcobra.Bold,
			Example:       coloredcobra.Italic,
			ExecName:      coloredcobra.Bold,
			Flags:         coloredcobra.Bold,
			FlagsDataType: coloredcobra.Italic + coloredcobra.HiBlue,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}

func explore(cmd *cobra.Command, source string) {
	ctx := cmd.Context()
	reg := session(ctx, cmd)
	defer reg.Close()

	if source == "" {
		source = viper.GetString(key.SourcesDefault)
		if _, err := reg.Lookup(source); err != nil {
			source = ""
		}
	}

	handleErr(tui.Run(ctx, reg, &tui.Options{Source: source}))
}

// warn prints a non fatal problem to stderr.
func warn(err error) {
	log.Warn(err)
	_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", style.Fg(color.Yellow)(icon.Get(icon.Warn)), strings.Trim(err.Error(), " \n"))
}

func completionConfigKeys(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return lo.Keys(config.Default), cobra.ShellCompDirectiveNoFileComp
}
