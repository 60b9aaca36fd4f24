package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/skipad/internal/output"
)

var whitelistCmd = &cobra.Command{
	Use:   "whitelist",
	Short: "Manage apps that are never monitored",
}

var whitelistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List whitelisted app ids",
	Args:  cobra.NoArgs,
	RunE:  runWhitelist("list"),
}

var whitelistAddCmd = &cobra.Command{
	Use:   "add <app-id>",
	Short: "Stop monitoring an app",
	Args:  cobra.ExactArgs(1),
	RunE:  runWhitelist("add"),
}

var whitelistRemoveCmd = &cobra.Command{
	Use:   "remove <app-id>",
	Short: "Resume monitoring an app",
	Args:  cobra.ExactArgs(1),
	RunE:  runWhitelist("remove"),
}

var whitelistClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every app from the whitelist",
	Args:  cobra.NoArgs,
	RunE:  runWhitelist("clear"),
}

func init() {
	rootCmd.AddCommand(whitelistCmd)
	whitelistCmd.AddCommand(whitelistListCmd, whitelistAddCmd, whitelistRemoveCmd, whitelistClearCmd)
}

func runWhitelist(action string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := runtimeFromFlags(cmd, runtimeOptions{})
		if err != nil {
			return err
		}
		defer rt.Close()

		var res output.WhitelistResult
		switch action {
		case "list":
			res.Apps = rt.whitelist.List()
		case "add", "remove":
			var changed bool
			if action == "add" {
				changed, err = rt.whitelist.Add(args[0])
			} else {
				changed, err = rt.whitelist.Remove(args[0])
			}
			if err != nil {
				return err
			}
			res.App, res.Changed = args[0], &changed
		case "clear":
			n, err := rt.whitelist.Clear()
			if err != nil {
				return err
			}
			res.Cleared = &n
		}
		return output.Print(res)
	}
}
