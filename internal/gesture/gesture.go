// Package gesture submits synthetic taps to the host.
package gesture

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mj1618/skipad/internal/model"
)

// Defaults for a tap gesture.
const (
	DefaultDuration          = 100 * time.Millisecond
	DefaultCompletionTimeout = 1 * time.Second
)

// Gesture is a single-stroke gesture. A tap is a zero-length stroke: it
// starts and ends at Start.
type Gesture struct {
	Start      model.Point   `yaml:"start"       json:"start"`
	StartDelay time.Duration `yaml:"start_delay" json:"start_delay"`
	Duration   time.Duration `yaml:"duration"    json:"duration"`
}

// Callback receives the asynchronous outcome of an injected gesture.
// completed is false when the host cancelled it.
type Callback func(g Gesture, completed bool)

// Injector submits gestures to the host. Inject reports whether the host
// accepted the gesture; the outcome arrives later through done.
type Injector interface {
	Inject(ctx context.Context, g Gesture, done Callback) bool
}

// InjectorFunc adapts a function to Injector.
type InjectorFunc func(ctx context.Context, g Gesture, done Callback) bool

func (f InjectorFunc) Inject(ctx context.Context, g Gesture, done Callback) bool {
	return f(ctx, g, done)
}

// Options configures a Dispatcher.
type Options struct {
	Injector Injector
	Duration time.Duration
	// AwaitCompletion makes Dispatch wait for the completed callback and
	// report it instead of acceptance.
	AwaitCompletion   bool
	CompletionTimeout time.Duration
	Logger            zerolog.Logger
}

// Dispatcher turns screen points into tap gestures.
type Dispatcher struct {
	injector Injector
	duration time.Duration
	await    bool
	timeout  time.Duration
	log      zerolog.Logger
}

// New creates a Dispatcher.
func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		injector: opts.Injector,
		duration: opts.Duration,
		await:    opts.AwaitCompletion,
		timeout:  opts.CompletionTimeout,
		log:      opts.Logger,
	}
	if d.duration <= 0 {
		d.duration = DefaultDuration
	}
	if d.timeout <= 0 {
		d.timeout = DefaultCompletionTimeout
	}
	return d
}

// Tap returns the gesture Dispatch submits for p.
func (d *Dispatcher) Tap(p model.Point) Gesture {
	return Gesture{Start: p, StartDelay: 0, Duration: d.duration}
}

// Dispatch submits a tap at p and reports whether the host accepted it.
// With AwaitCompletion it reports whether the tap completed in time.
func (d *Dispatcher) Dispatch(ctx context.Context, p model.Point) (accepted bool) {
	if d.injector == nil {
		d.log.Warn().Msg("no injector configured")
		return false
	}
	g := d.Tap(p)
	outcome := make(chan bool, 1)
	done := func(g Gesture, completed bool) {
		if completed {
			d.log.Debug().Int("x", g.Start.X).Int("y", g.Start.Y).Msg("gesture completed")
		} else {
			d.log.Warn().Int("x", g.Start.X).Int("y", g.Start.Y).Msg("gesture cancelled")
		}
		select {
		case outcome <- completed:
		default:
		}
	}

	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Msg("gesture injection failed")
			accepted = false
		}
	}()
	if !d.injector.Inject(ctx, g, done) {
		d.log.Warn().Int("x", p.X).Int("y", p.Y).Msg("gesture rejected")
		return false
	}
	d.log.Info().Int("x", p.X).Int("y", p.Y).Msg("gesture dispatched")
	if !d.await {
		return true
	}

	timer := time.NewTimer(d.timeout)
	defer timer.Stop()
	select {
	case completed := <-outcome:
		return completed
	case <-timer.C:
		d.log.Warn().Dur("timeout", d.timeout).Msg("gesture completion timed out")
		return false
	case <-ctx.Done():
		return false
	}
}
