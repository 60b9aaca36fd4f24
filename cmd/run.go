package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mj1618/skipad/internal/logging"
	"github.com/mj1618/skipad/internal/model"
	"github.com/mj1618/skipad/internal/monitor"
	"github.com/mj1618/skipad/internal/output"
	"github.com/mj1618/skipad/internal/patterns"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch app launches and dismiss their splash ads",
	Long: `Follow the foreground app of the device. When an app that is not
whitelisted comes to the front, look for its skip control at most once per
interval for the length of the launch window, and tap it once found.

Edits to the pattern document are picked up while running.

Examples:
  skipad run
  skipad run --device emulator-5554 --log-level debug
  skipad run --snapshot-on-launch > launches.yaml`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("snapshot-on-launch", false, "Print a snapshot of every launch screen to stdout for later capture")
	runCmd.Flags().Bool("quiet", false, "Do not print state transitions")
}

func runRun(cmd *cobra.Command, args []string) error {
	snapshotOnLaunch, _ := cmd.Flags().GetBool("snapshot-on-launch")
	quiet, _ := cmd.Flags().GetBool("quiet")

	rt, err := runtimeFromFlags(cmd, runtimeOptions{device: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(rt.patterns.Path()), 0o755); err != nil {
		return fmt.Errorf("creating pattern directory: %w", err)
	}
	watcher, err := patterns.NewWatcher(rt.patterns, patterns.WatchOptions{
		Logger: logging.Module(rt.log, "patterns"),
	})
	if err != nil {
		rt.log.Warn().Err(err).Msg("pattern document will not be reloaded on change")
	} else {
		defer watcher.Close()
		go watcher.Run(ctx)
	}

	// requests carries snapshot_requested events raised by the observer,
	// which runs on the event loop and must not block.
	requests := make(chan model.Event, 1)
	out := io.Writer(os.Stderr)
	if quiet {
		out = io.Discard
	}
	observer := func(t monitor.Transition) {
		printTransition(out, t)
		if snapshotOnLaunch && t.Reason == monitor.ReasonLaunched {
			select {
			case requests <- model.Event{Kind: model.EventSnapshotRequested, App: t.App, At: t.At}:
			default:
			}
		}
	}

	m := monitor.New(monitor.Options{
		Screen:         rt.provider.Screen,
		Locator:        rt.locator,
		Dispatcher:     rt.dispatcher,
		Whitelist:      rt.whitelist,
		Interval:       rt.cfg.Monitor.Interval(),
		Window:         rt.cfg.Monitor.Window(),
		Walk:           rt.cfg.Locator.Walk(),
		Observer:       observer,
		SnapshotBuffer: 4,
		Logger:         logging.Module(rt.log, "monitor"),
	})
	go printSnapshots(ctx, m.Snapshots(), rt)

	rt.log.Info().
		Str("device", rt.cfg.Device).
		Dur("interval", rt.cfg.Monitor.Interval()).
		Dur("window", rt.cfg.Monitor.Window()).
		Int("whitelisted", len(rt.whitelist.List())).
		Int("pattern_apps", len(rt.patterns.Apps())).
		Msg("monitoring device")

	m.Run(ctx, mergeEvents(ctx, rt.provider.Events.Events(ctx), requests))
	rt.log.Info().Msg("stopped")
	return nil
}

// mergeEvents forwards host events and local requests onto one channel,
// closing it when ctx is done or the host stream ends.
func mergeEvents(ctx context.Context, host <-chan model.Event, local <-chan model.Event) <-chan model.Event {
	out := make(chan model.Event)
	go func() {
		defer close(out)
		for {
			var ev model.Event
			select {
			case <-ctx.Done():
				return
			case e, ok := <-host:
				if !ok {
					return
				}
				ev = e
			case ev = <-local:
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func printSnapshots(ctx context.Context, snaps <-chan model.Snapshot, rt *runtime) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-snaps:
			err := output.Print(output.SnapshotResult{
				SnapshotID: snap.ID,
				App:        snap.App,
				TS:         snap.TakenAt.Unix(),
				Elements:   snap.Elements,
			})
			if err != nil {
				rt.log.Warn().Err(err).Msg("printing snapshot")
			}
		}
	}
}

var (
	monitoringLabel = color.New(color.FgGreen, color.Bold).Sprint("MONITORING")
	idleLabel       = color.New(color.FgBlue).Sprint("IDLE      ")
	dismissedReason = color.New(color.FgGreen).Sprint(monitor.ReasonDismissed)
	failureReason   = color.New(color.FgRed).Sprint
)

// printTransition writes one colored status line per state change.
func printTransition(w io.Writer, t monitor.Transition) {
	label := idleLabel
	if t.To == monitor.Monitoring {
		label = monitoringLabel
	}
	reason := string(t.Reason)
	switch t.Reason {
	case monitor.ReasonDismissed:
		reason = dismissedReason
	case monitor.ReasonTraversalFailure, monitor.ReasonPanic:
		reason = failureReason(t.Reason)
	}
	fmt.Fprintf(w, "%s %s %s (%s)\n", t.At.Format(time.TimeOnly), label, t.App, reason)
}
