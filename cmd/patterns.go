package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/skipad/internal/model"
	"github.com/mj1618/skipad/internal/output"
	"github.com/mj1618/skipad/internal/platform"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List and capture learned skip-control patterns",
}

var patternsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List learned patterns by app",
	RunE:  runPatternsList,
}

var patternsCaptureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Save a node of the current screen as the skip control of its app",
	Long: `Take a snapshot of the current screen and save the node with the given
number as a skip-control pattern for the foreground app. Run 'skipad
snapshot' first to find the number.

By default the pattern matches any text, so countdown labels such as "5s"
keep matching as they tick. --keep-text requires the exact text.

Examples:
  skipad patterns capture --id 14
  skipad patterns capture --id 14 --keep-text`,
	RunE: runPatternsCapture,
}

func init() {
	rootCmd.AddCommand(patternsCmd)
	patternsCmd.AddCommand(patternsListCmd)
	patternsCmd.AddCommand(patternsCaptureCmd)

	patternsListCmd.Flags().String("app", "", "Only list patterns of this app id")
	patternsCaptureCmd.Flags().Int("id", 0, "Snapshot node number to capture (required)")
	patternsCaptureCmd.Flags().Bool("keep-text", false, "Match the node text exactly")
	patternsCaptureCmd.MarkFlagRequired("id")
}

func runPatternsList(cmd *cobra.Command, args []string) error {
	app, _ := cmd.Flags().GetString("app")

	rt, err := runtimeFromFlags(cmd, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	all := rt.patterns.All()
	if app != "" {
		all = map[string][]model.Pattern{app: rt.patterns.Query(app)}
	}
	return output.Print(output.NewPatternsResult(all))
}

func runPatternsCapture(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetInt("id")
	keepText, _ := cmd.Flags().GetBool("keep-text")
	if id <= 0 {
		return fmt.Errorf("--id must be a snapshot node number")
	}

	rt, err := runtimeFromFlags(cmd, runtimeOptions{device: true})
	if err != nil {
		return err
	}
	defer rt.Close()
	screen, err := rt.screen()
	if err != nil {
		return err
	}

	snap, err := platform.TakeSnapshot(cmd.Context(), screen, rt.cfg.Locator.Walk(), time.Now())
	if err != nil {
		return err
	}
	p, err := rt.patterns.Capture(snap, id, keepText)
	if err != nil {
		return err
	}
	return output.Print(output.CaptureResult{
		App:        p.AppID,
		SnapshotID: snap.ID,
		ID:         id,
		Pattern:    output.NewPatternEntry(p),
	})
}
