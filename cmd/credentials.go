package cmd

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/medley-cli/medley/auth"
	"github.com/medley-cli/medley/color"
	"github.com/medley-cli/medley/icon"
	"github.com/medley-cli/medley/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(credentialsCmd)
}

// credentialsCmd manages provider secrets kept in the system keyring.
var credentialsCmd = &cobra.Command{
	Use:     "credentials",
	Aliases: []string{"creds"},
	Short:   "Manage provider secrets stored in the system keyring",
}

func init() {
	credentialsCmd.AddCommand(credentialsSetCmd)
	credentialsSetCmd.Flags().StringP("value", "V", "", "Secret value; prompted for when omitted")
}

var credentialsSetCmd = &cobra.Command{
	Use:               "set <provider> <field>",
	Short:             "Store a provider secret",
	Example:           "  medley credentials set jamendo client_id",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completionSourceIDs,
	Run: func(cmd *cobra.Command, args []string) {
		secret := lo.Must(cmd.Flags().GetString("value"))
		if secret == "" {
			prompt := &survey.Password{
				Message: fmt.Sprintf("%s %s:", args[0], args[1]),
			}
			handleErr(survey.AskOne(prompt, &secret, survey.WithValidator(survey.Required)))
		}

		handleErr(auth.Set(args[0], args[1], strings.TrimSpace(secret)))
		fmt.Printf(
			"%s stored %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(args[0]+"."+args[1]),
		)
	},
}

func init() {
	credentialsCmd.AddCommand(credentialsGetCmd)
	credentialsGetCmd.Flags().BoolP("reveal", "r", false, "Print the secret instead of a masked value")
}

var credentialsGetCmd = &cobra.Command{
	Use:               "get <provider> <field>",
	Short:             "Print a stored provider secret",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completionSourceIDs,
	Run: func(cmd *cobra.Command, args []string) {
		secret, err := auth.Get(args[0], args[1])
		handleErr(err)

		if !lo.Must(cmd.Flags().GetBool("reveal")) {
			secret = mask(secret)
		}
		fmt.Println(secret)
	},
}

func init() {
	credentialsCmd.AddCommand(credentialsDeleteCmd)
}

var credentialsDeleteCmd = &cobra.Command{
	Use:               "delete <provider> <field>",
	Aliases:           []string{"remove"},
	Short:             "Remove a stored provider secret",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completionSourceIDs,
	Run: func(cmd *cobra.Command, args []string) {
		confirm := survey.Confirm{
			Message: fmt.Sprintf("Delete %s.%s?", args[0], args[1]),
			Default: true,
		}
		var response bool
		handleErr(survey.AskOne(&confirm, &response))
		if !response {
			return
		}

		handleErr(auth.Delete(args[0], args[1]))
		fmt.Printf(
			"%s deleted %s\n",
			style.Fg(color.Green)(icon.Get(icon.Success)),
			style.Fg(color.Purple)(args[0]+"."+args[1]),
		)
	},
}

// mask keeps the last four characters of short-enough secrets visible.
func mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
