package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/skipad/internal/output"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Find the skip control on the current screen",
	Long: `Look for the skip control of the foreground app, trying its learned
patterns first and then the skip vocabulary. Prints where it was found and
which strategy found it.

Examples:
  skipad locate
  skipad locate --tap`,
	RunE: runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)
	locateCmd.Flags().Bool("tap", false, "Tap the control when found")
}

func runLocate(cmd *cobra.Command, args []string) error {
	tap, _ := cmd.Flags().GetBool("tap")

	rt, err := runtimeFromFlags(cmd, runtimeOptions{device: true})
	if err != nil {
		return err
	}
	defer rt.Close()
	screen, err := rt.screen()
	if err != nil {
		return err
	}

	m, err := rt.locator.LocateWindow(cmd.Context(), screen)
	if err != nil {
		return err
	}
	res := output.LocateResult{App: m.App, Found: m.Found}
	if m.Found {
		res.Source = string(m.Source)
		res.Bounds = &m.Bounds
		res.Point = &m.Point
		if tap {
			accepted := rt.dispatcher.Dispatch(cmd.Context(), m.Point)
			res.Tapped = &accepted
		}
	}
	return output.Print(res)
}
