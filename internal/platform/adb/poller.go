package adb

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/mj1618/skipad/internal/model"
	"github.com/mj1618/skipad/internal/tree"
)

// DefaultPollInterval is the minimum spacing between device samples.
const DefaultPollInterval = 250 * time.Millisecond

// Poller samples the device and turns differences between samples into
// host events. adb has no push notifications, so focus changes and tree
// mutations are inferred.
type Poller struct {
	screen  *Screen
	limiter *rate.Limiter
	walk    tree.Options
	log     zerolog.Logger
}

// NewPoller creates a Poller that samples at most once per interval.
func NewPoller(screen *Screen, interval time.Duration, walk tree.Options, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		screen:  screen,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		walk:    walk,
		log:     logger,
	}
}

// Events starts sampling and returns the event channel. The channel is
// closed when ctx is done.
func (p *Poller) Events(ctx context.Context) <-chan model.Event {
	ch := make(chan model.Event, 8)
	go p.loop(ctx, ch)
	return ch
}

func (p *Poller) loop(ctx context.Context, ch chan<- model.Event) {
	defer close(ch)
	var (
		lastApp  string
		lastTree []model.FlatElement
	)
	emit := func(kind model.EventKind, app string) bool {
		select {
		case ch <- model.Event{Kind: kind, App: app, At: time.Now()}:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}

		app, err := p.screen.Foreground(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.log.Warn().Err(err).Msg("foreground query failed")
			continue
		}
		if app != "" && app != lastApp {
			lastApp = app
			lastTree = nil
			p.screen.Invalidate()
			if !emit(model.EventForegroundChanged, app) {
				return
			}
		}

		root, err := p.screen.Root(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.log.Debug().Err(err).Msg("tree dump failed")
			continue
		}
		flat, err := tree.Snapshot(root, p.walk)
		if err != nil && !tree.IsExhaustion(err) {
			p.log.Debug().Err(err).Msg("tree flatten failed")
			continue
		}
		// An oversized tree still counts as a content change so the
		// monitor can observe the exhaustion itself.
		if err != nil || model.TreeChanged(lastTree, flat) {
			lastTree = flat
			contentApp := root.AppID()
			if contentApp == "" {
				contentApp = lastApp
			}
			if !emit(model.EventContentChanged, contentApp) {
				return
			}
		}
	}
}
