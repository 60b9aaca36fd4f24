package adb

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mj1618/skipad/internal/gesture"
)

// Injector performs gestures with `input swipe`. A swipe that starts and
// ends at one point is a tap held for the gesture's duration.
type Injector struct {
	run Runner
	log zerolog.Logger
	// onDone is called after a gesture finishes, before its callback. Used
	// to invalidate cached dumps.
	onDone func()
}

// NewInjector creates an Injector.
func NewInjector(r Runner, logger zerolog.Logger, onDone func()) *Injector {
	return &Injector{run: r, log: logger, onDone: onDone}
}

// Inject runs the gesture and reports whether adb accepted it. The callback
// fires on its own goroutine once the command has returned.
func (inj *Injector) Inject(ctx context.Context, g gesture.Gesture, done gesture.Callback) bool {
	if g.StartDelay > 0 {
		t := time.NewTimer(g.StartDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return false
		case <-t.C:
		}
	}
	ms := g.Duration.Milliseconds()
	if ms <= 0 {
		ms = gesture.DefaultDuration.Milliseconds()
	}
	cmdline := fmt.Sprintf("input swipe %d %d %d %d %d", g.Start.X, g.Start.Y, g.Start.X, g.Start.Y, ms)
	_, err := shell(ctx, inj.run, cmdline)
	completed := err == nil
	if err != nil {
		inj.log.Warn().Err(err).Msg("input swipe failed")
	}
	if inj.onDone != nil {
		inj.onDone()
	}
	if done != nil {
		go done(g, completed)
	}
	return completed
}
