package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/mj1618/skipad/internal/model"
	"github.com/mj1618/skipad/internal/platform"
	"github.com/mj1618/skipad/internal/tree"
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Watch the screen and stream node changes as JSONL",
	Long: `Continuously sample the UI tree of the device and emit changes (added,
removed, changed nodes) as JSONL to stdout. Handy for seeing how a splash
screen evolves while its countdown runs.

Output is always JSONL regardless of the --format flag.

Use Ctrl+C or --duration to stop observing.`,
	RunE: runObserve,
}

func init() {
	rootCmd.AddCommand(observeCmd)
	observeCmd.Flags().Int("interval", 500, "Sampling interval in milliseconds")
	observeCmd.Flags().Int("duration", 0, "Max seconds to observe (0 = until Ctrl+C)")
	observeCmd.Flags().Bool("ignore-bounds", false, "Ignore node position changes")
}

func runObserve(cmd *cobra.Command, args []string) error {
	intervalMs, _ := cmd.Flags().GetInt("interval")
	durationSec, _ := cmd.Flags().GetInt("duration")
	ignoreBounds, _ := cmd.Flags().GetBool("ignore-bounds")

	rt, err := runtimeFromFlags(cmd, runtimeOptions{device: true})
	if err != nil {
		return err
	}
	defer rt.Close()
	screen, err := rt.screen()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if durationSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(durationSec)*time.Second)
		defer cancel()
	}

	o := &observer{
		screen:       screen,
		walk:         rt.cfg.Locator.Walk(),
		enc:          newJSONL(os.Stdout),
		ignoreBounds: ignoreBounds,
	}
	start := time.Now()

	// Initial read to establish baseline
	prev, err := o.sample(ctx)
	if err != nil {
		return fmt.Errorf("initial read failed: %w", err)
	}
	o.enc.Encode(map[string]interface{}{
		"type":  "snapshot",
		"ts":    time.Now().Unix(),
		"count": len(prev),
	})

	limiter := rate.NewLimiter(rate.Every(time.Duration(intervalMs)*time.Millisecond), 1)
	limiter.Allow()
	events := 0
	for limiter.Wait(ctx) == nil {
		curr, err := o.sample(ctx)
		if err != nil {
			o.enc.Encode(map[string]interface{}{
				"type":  "error",
				"ts":    time.Now().Unix(),
				"error": err.Error(),
			})
			continue
		}
		events += o.emit(prev, curr)
		prev = curr
	}

	// Emit done event
	o.enc.Encode(map[string]interface{}{
		"type":    "done",
		"ts":      time.Now().Unix(),
		"elapsed": fmt.Sprintf("%.1fs", time.Since(start).Seconds()),
		"events":  events,
	})
	return nil
}

type observer struct {
	screen       platform.Screen
	walk         tree.Options
	enc          *json.Encoder
	ignoreBounds bool
}

func (o *observer) sample(ctx context.Context) ([]model.FlatElement, error) {
	snap, err := platform.TakeSnapshot(ctx, o.screen, o.walk, time.Now())
	if err != nil {
		return nil, err
	}
	return snap.Elements, nil
}

// emit writes the changes between two samples and returns how many it wrote.
func (o *observer) emit(prev, curr []model.FlatElement) int {
	n := 0
	for _, change := range model.DiffElements(prev, curr) {
		if change.Type == model.ChangeChanged && o.ignoreBounds {
			delete(change.Changes, "b")
			if len(change.Changes) == 0 {
				continue
			}
		}
		o.enc.Encode(change)
		n++
	}
	return n
}

func newJSONL(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}
