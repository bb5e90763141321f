package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/medley-cli/medley/caps"
	"github.com/medley-cli/medley/color"
	"github.com/medley-cli/medley/config"
	"github.com/medley-cli/medley/constant"
	"github.com/medley-cli/medley/filesystem"
	"github.com/medley-cli/medley/icon"
	"github.com/medley-cli/medley/inspect"
	"github.com/medley-cli/medley/provider"
	"github.com/medley-cli/medley/provider/custom"
	"github.com/medley-cli/medley/registry"
	"github.com/medley-cli/medley/style"
	"github.com/medley-cli/medley/util"
	"github.com/medley-cli/medley/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

// sourcesCmd provides a parent command for managing source plugins.
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage builtin and scripted sources",
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)

	sourcesListCmd.Flags().BoolP("raw", "r", false, "Suppress headers in the output")
	sourcesListCmd.Flags().BoolP("custom", "c", false, "Display only scripted sources")
	sourcesListCmd.Flags().BoolP("builtin", "b", false, "Display only builtin sources")

	sourcesListCmd.MarkFlagsMutuallyExclusive("custom", "builtin")
	sourcesListCmd.SetOut(os.Stdout)
}

// sourcesListCmd lists the available plugins without loading them.
var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available source plugins",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader := !lo.Must(cmd.Flags().GetBool("raw"))
		headerStyle := style.New().Foreground(color.HiBlue).Bold(true).Render
		h := func(s string) {
			if printHeader {
				cmd.Println(headerStyle(s))
			}
		}

		printBuiltin := func() {
			h("Builtin:")
			for _, p := range provider.Builtins() {
				cmd.Println(p.ID)
			}
		}

		printCustom := func() {
			h("Custom:")
			customs, err := provider.Customs()
			handleErr(err)
			for _, p := range customs {
				cmd.Println(p.ID)
			}
		}

		switch {
		case lo.Must(cmd.Flags().GetBool("builtin")):
			printBuiltin()
		case lo.Must(cmd.Flags().GetBool("custom")):
			printCustom()
		default:
			printBuiltin()
			if printHeader {
				cmd.Println()
			}
			printCustom()
		}
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesRemoveCmd)

	sourcesRemoveCmd.Flags().StringArrayP("name", "n", []string{}, "Id of the scripted source to remove")
	lo.Must0(sourcesRemoveCmd.RegisterFlagCompletionFunc("name", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		customs, err := provider.Customs()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		return lo.Map(customs, func(p registry.Plugin, _ int) string {
			return p.ID
		}), cobra.ShellCompDirectiveNoFileComp
	}))
}

// sourcesRemoveCmd deletes scripted sources from the sources directory.
var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Delete scripted sources",
	Run: func(cmd *cobra.Command, args []string) {
		customs, err := provider.Customs()
		handleErr(err)

		for _, name := range lo.Must(cmd.Flags().GetStringArray("name")) {
			p, ok := lo.Find(customs, func(p registry.Plugin) bool {
				return p.ID == name
			})
			if !ok {
				handleErr(fmt.Errorf("no scripted source named %s", name))
			}

			handleErr(filesystem.API().Remove(p.Filename))
			fmt.Printf("%s successfully removed %s\n", icon.Get(icon.Success), style.Fg(color.Yellow)(name))
		}
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesInstallCmd)
}

// sourcesInstallCmd downloads a script into the sources directory.
var sourcesInstallCmd = &cobra.Command{
	Use:     "install <url>",
	Short:   "Download a Lua source into the sources directory",
	Args:    cobra.ExactArgs(1),
	Example: "  medley sources install https://example.com/radio.lua",
	Run: func(cmd *cobra.Command, args []string) {
		path, changed, err := provider.Install(cmd.Context(), args[0])
		handleErr(err)

		if !changed {
			fmt.Printf("%s %s is up to date\n", icon.Get(icon.Success), style.Fg(color.Yellow)(custom.IDFromFilename(path)))
			return
		}
		fmt.Printf("%s installed %s\n", icon.Get(icon.Success), style.Fg(color.Yellow)(path))
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesRunCmd)
	sourcesRunCmd.SetOut(os.Stdout)
}

// sourcesRunCmd loads a single script and describes the source it declares.
var sourcesRunCmd = &cobra.Command{
	Use:     "run <file>",
	Short:   "Load a Lua source file and describe it",
	Long:    "Load a Lua source file outside the sources directory. Useful while writing a source.",
	Args:    cobra.ExactArgs(1),
	Example: "  medley sources run ./radio.lua",
	Run: func(cmd *cobra.Command, args []string) {
		if !provider.IsScript(args[0]) {
			handleErr(errors.New("not a lua source: " + args[0]))
		}

		reg := registry.New(registry.WithConfig(config.BundleFor))
		defer reg.Close()

		p := provider.Custom(args[0])
		handleErr(reg.Add(cmd.Context(), p))

		var id string
		for e := range reg.List(caps.None) {
			id = e.ID()
		}

		report, err := inspect.Describe(reg, id)
		handleErr(err)
		handleErr(inspect.RenderReport(cmd.OutOrStdout(), report, util.TerminalWidth(80)))
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesGenCmd)

	sourcesGenCmd.Flags().StringP("name", "n", "", "The display name of the new source")
	sourcesGenCmd.Flags().StringP("url", "u", "", "The base URL of the service the source reads from")

	lo.Must0(sourcesGenCmd.MarkFlagRequired("name"))
	lo.Must0(sourcesGenCmd.MarkFlagRequired("url"))
}

// sourcesGenCmd scaffolds a Lua source script.
var sourcesGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Scaffold a new Lua source",
	Long:  `Generate a Lua source with search and browse functions and a source declaration.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SetOut(os.Stdout)

		var author string
		usr, err := user.Current()
		if err == nil {
			author = usr.Username
		} else {
			author = "Anonymous"
		}

		name := lo.Must(cmd.Flags().GetString("name"))
		s := struct {
			SourceTable string
			ID          string
			Name        string
			URL         string
			Author      string
			SearchFn    string
			BrowseFn    string
		}{
			SourceTable: constant.SourceTable,
			ID:          strings.ToLower(util.SanitizeFilename(name)),
			Name:        name,
			URL:         lo.Must(cmd.Flags().GetString("url")),
			Author:      author,
			SearchFn:    constant.SearchFn,
			BrowseFn:    constant.BrowseFn,
		}

		funcMap := template.FuncMap{
			"repeat": strings.Repeat,
			"plus":   func(a, b int) int { return a + b },
			"max":    util.Max[int],
		}

		tmpl, err := template.New("source").Funcs(funcMap).Parse(constant.SourceTemplate)
		handleErr(err)

		target := filepath.Join(where.Sources(), s.ID+".lua")
		if exists, _ := filesystem.API().Exists(target); exists {
			handleErr(fmt.Errorf("%s already exists", target))
		}

		f, err := filesystem.API().Create(target)
		handleErr(err)

		defer util.Ignore(f.Close)

		handleErr(tmpl.Execute(f, s))

		cmd.Println(target)
	},
}
