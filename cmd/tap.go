package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/skipad/internal/model"
	"github.com/mj1618/skipad/internal/output"
	"github.com/mj1618/skipad/internal/platform"
)

var tapCmd = &cobra.Command{
	Use:   "tap",
	Short: "Tap a screen point with the configured gesture",
	Long: `Submit the same tap gesture the monitor uses at the given point. Useful to
check that a captured point dismisses an ad.

Examples:
  skipad tap --x 970 --y 120
  skipad tap --at 970,120`,
	RunE: runTap,
}

func init() {
	rootCmd.AddCommand(tapCmd)
	tapCmd.Flags().Int("x", 0, "X coordinate in device pixels")
	tapCmd.Flags().Int("y", 0, "Y coordinate in device pixels")
	tapCmd.Flags().String("at", "", "Point as x,y (instead of --x and --y)")
	tapCmd.MarkFlagsRequiredTogether("x", "y")
	tapCmd.MarkFlagsMutuallyExclusive("at", "x")
	tapCmd.MarkFlagsMutuallyExclusive("at", "y")
}

// tapPoint reads the target from --at or --x/--y.
func tapPoint(cmd *cobra.Command) (model.Point, error) {
	if at, _ := cmd.Flags().GetString("at"); at != "" {
		return platform.ParsePoint(at)
	}
	if !cmd.Flags().Changed("x") {
		return model.Point{}, fmt.Errorf("--at or --x and --y are required")
	}
	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")
	return model.Point{X: x, Y: y}, nil
}

func runTap(cmd *cobra.Command, args []string) error {
	p, err := tapPoint(cmd)
	if err != nil {
		return err
	}

	rt, err := runtimeFromFlags(cmd, runtimeOptions{device: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	return output.Print(output.TapResult{Point: p, Accepted: rt.dispatcher.Dispatch(cmd.Context(), p)})
}
