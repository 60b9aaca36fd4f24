package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/skipad/internal/model"
	"github.com/mj1618/skipad/internal/outline"
	"github.com/mj1618/skipad/internal/output"
	"github.com/mj1618/skipad/internal/platform"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print the nodes of the current screen",
	Long: `Flatten the UI tree of the current screen into numbered nodes with class,
text, description, bounds and depth. Use a node's number with
'patterns capture --id' to teach skipad the skip control of an app.

--outline writes a PNG with every node's bounds and number drawn on it.

Examples:
  skipad snapshot --clickable
  skipad snapshot --text 跳过
  skipad snapshot --bbox 800,0,280,300 --outline nodes.png`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().Bool("clickable", false, "Only print clickable nodes")
	snapshotCmd.Flags().String("text", "", "Only print nodes whose text or description contains this")
	snapshotCmd.Flags().String("bbox", "", "Only print nodes intersecting x,y,width,height")
	snapshotCmd.Flags().Bool("prune", false, "Drop containers with no text, description or id")
	snapshotCmd.Flags().String("outline", "", "Write a PNG of node outlines to this file")
	snapshotCmd.Flags().Float64("scale", 0.5, "Outline image scale relative to the device resolution")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	clickable, _ := cmd.Flags().GetBool("clickable")
	text, _ := cmd.Flags().GetString("text")
	bboxStr, _ := cmd.Flags().GetString("bbox")
	prune, _ := cmd.Flags().GetBool("prune")
	outlinePath, _ := cmd.Flags().GetString("outline")
	scale, _ := cmd.Flags().GetFloat64("scale")

	var bbox *model.Rect
	if bboxStr != "" {
		var err error
		if bbox, err = platform.ParseBBox(bboxStr); err != nil {
			return err
		}
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
	elements := model.FilterFlat(snap.Elements, clickable, bbox, text)
	if prune {
		elements = model.PruneEmptyContainers(elements)
	}

	if outlinePath != "" {
		if err := writeOutline(outlinePath, elements, scale); err != nil {
			return err
		}
		rt.log.Info().Str("path", outlinePath).Int("nodes", len(elements)).Msg("outline written")
	}

	return output.Print(output.SnapshotResult{
		SnapshotID: snap.ID,
		App:        snap.App,
		TS:         snap.TakenAt.Unix(),
		Elements:   elements,
	})
}

func writeOutline(path string, elements []model.FlatElement, scale float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating outline: %w", err)
	}
	if err := outline.WritePNG(f, elements, outline.Options{Scale: scale}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
