// Package monitor watches application launches and dismisses skip
// controls during a short window after each launch.
package monitor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mj1618/skipad/internal/locator"
	"github.com/mj1618/skipad/internal/model"
	"github.com/mj1618/skipad/internal/tree"
)

// Defaults for the monitoring window.
const (
	DefaultInterval = 200 * time.Millisecond
	DefaultWindow   = 5000 * time.Millisecond
)

// State is the monitor's mode.
type State int

const (
	Idle State = iota
	Monitoring
)

func (s State) String() string {
	if s == Monitoring {
		return "monitoring"
	}
	return "idle"
}

// Reason explains a transition.
type Reason string

const (
	ReasonLaunched         Reason = "launched"
	ReasonDismissed        Reason = "dismissed"
	ReasonExpired          Reason = "expired"
	ReasonTraversalFailure Reason = "traversal_failure"
	ReasonPanic            Reason = "panic"
)

// Transition is reported to the observer on every state change.
type Transition struct {
	From   State     `yaml:"from"   json:"from"`
	To     State     `yaml:"to"     json:"to"`
	App    string    `yaml:"app"    json:"app"`
	Reason Reason    `yaml:"reason" json:"reason"`
	At     time.Time `yaml:"at"     json:"at"`
}

// Status is a copy of the monitor's transient state.
type Status struct {
	State       State
	Tracked     string
	StartedAt   time.Time
	LastAttempt time.Time
}

// RootSource supplies the root of the current window on demand.
type RootSource interface {
	Root(ctx context.Context) (tree.Node, error)
}

// Locator finds a skip control in a tree.
type Locator interface {
	Locate(root tree.Node, appID string) (locator.Result, bool, error)
}

// Dispatcher taps a point.
type Dispatcher interface {
	Dispatch(ctx context.Context, p model.Point) bool
}

// Whitelist reports applications that must never be monitored.
type Whitelist interface {
	IsWhitelisted(appID string) bool
}

// Options configures a Monitor.
type Options struct {
	Screen     RootSource
	Locator    Locator
	Dispatcher Dispatcher
	Whitelist  Whitelist
	Interval   time.Duration
	Window     time.Duration
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
	// Walk bounds snapshot traversals.
	Walk     tree.Options
	Observer func(Transition)
	// SnapshotBuffer is the capacity of the snapshot channel.
	SnapshotBuffer int
	Logger         zerolog.Logger
}

// Monitor is the launch state machine. Events must be delivered from one
// goroutine; overlapping HandleEvent calls are dropped.
type Monitor struct {
	screen    RootSource
	locator   Locator
	dispatch  Dispatcher
	whitelist Whitelist
	interval  time.Duration
	window    time.Duration
	now       func() time.Time
	walk      tree.Options
	observer  func(Transition)
	snapshots chan model.Snapshot
	log       zerolog.Logger

	busy   atomic.Bool
	status Status
}

// New creates a Monitor in the Idle state.
func New(opts Options) *Monitor {
	m := &Monitor{
		screen:    opts.Screen,
		locator:   opts.Locator,
		dispatch:  opts.Dispatcher,
		whitelist: opts.Whitelist,
		interval:  opts.Interval,
		window:    opts.Window,
		now:       opts.Clock,
		walk:      opts.Walk,
		observer:  opts.Observer,
		snapshots: make(chan model.Snapshot, opts.SnapshotBuffer),
		log:       opts.Logger,
	}
	if m.interval <= 0 {
		m.interval = DefaultInterval
	}
	if m.window <= 0 {
		m.window = DefaultWindow
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Snapshots delivers flattened trees produced by snapshot_requested events.
func (m *Monitor) Snapshots() <-chan model.Snapshot { return m.snapshots }

// Status returns a copy of the current state. It must be called from the
// goroutine that delivers events.
func (m *Monitor) Status() Status { return m.status }

// Run feeds events to HandleEvent until ctx is done or events is closed.
func (m *Monitor) Run(ctx context.Context, events <-chan model.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.HandleEvent(ctx, ev)
		}
	}
}

// HandleEvent processes one host notification. It never panics; any
// internal failure abandons the current round.
func (m *Monitor) HandleEvent(ctx context.Context, ev model.Event) {
	if !m.busy.CompareAndSwap(false, true) {
		m.log.Debug().Str("kind", string(ev.Kind)).Msg("event dropped, handler busy")
		return
	}
	defer m.busy.Store(false)
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Interface("panic", r).Str("kind", string(ev.Kind)).Msg("event handling failed")
			m.toIdle(ReasonPanic, m.now())
		}
	}()

	now := m.now()
	if m.status.State == Monitoring && now.Sub(m.status.StartedAt) > m.window {
		m.log.Debug().Str("app", m.status.Tracked).Msg("monitoring window expired")
		m.toIdle(ReasonExpired, now)
	}

	switch ev.Kind {
	case model.EventForegroundChanged:
		m.onForeground(ev, now)
	case model.EventContentChanged:
		m.onContent(ctx, ev, now)
	case model.EventSnapshotRequested:
		m.onSnapshot(ctx, ev, now)
	default:
		m.log.Debug().Str("kind", string(ev.Kind)).Msg("ignoring unknown event")
	}
}

func (m *Monitor) onForeground(ev model.Event, now time.Time) {
	if ev.App == "" || ev.App == m.status.Tracked {
		return
	}
	if m.whitelist != nil && m.whitelist.IsWhitelisted(ev.App) {
		m.log.Debug().Str("app", ev.App).Msg("whitelisted, not monitoring")
		return
	}
	from := m.status.State
	m.status = Status{State: Monitoring, Tracked: ev.App, StartedAt: now}
	m.log.Info().Str("app", ev.App).Msg("application launched, monitoring")
	m.notify(Transition{From: from, To: Monitoring, App: ev.App, Reason: ReasonLaunched, At: now})
}

func (m *Monitor) onContent(ctx context.Context, ev model.Event, now time.Time) {
	if m.status.State != Monitoring {
		return
	}
	if !m.status.LastAttempt.IsZero() && now.Sub(m.status.LastAttempt) < m.interval {
		return
	}
	m.status.LastAttempt = now

	if m.screen == nil || m.locator == nil {
		return
	}
	root, err := m.screen.Root(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("no root available")
		return
	}
	if root == nil {
		return
	}
	defer tree.Release(root)

	appID := root.AppID()
	if appID == "" {
		appID = ev.App
	}
	if appID == "" {
		appID = m.status.Tracked
	}

	res, found, err := m.locator.Locate(root, appID)
	if err != nil {
		if tree.IsExhaustion(err) {
			m.log.Error().Err(err).Str("app", appID).Msg("traversal exhausted, stopping")
			m.toIdle(ReasonTraversalFailure, now)
		}
		return
	}
	if !found {
		return
	}
	defer res.Release()

	m.log.Info().
		Str("app", appID).
		Str("source", string(res.Source)).
		Str("bounds", res.Bounds.String()).
		Msg("skip control found")
	if m.dispatch == nil || !m.dispatch.Dispatch(ctx, res.Point) {
		return
	}
	m.toIdle(ReasonDismissed, now)
}

func (m *Monitor) onSnapshot(ctx context.Context, ev model.Event, now time.Time) {
	if m.screen == nil {
		return
	}
	root, err := m.screen.Root(ctx)
	if err != nil || root == nil {
		m.log.Warn().Err(err).Msg("snapshot requested but no root available")
		return
	}
	defer tree.Release(root)

	elements, err := tree.Snapshot(root, m.walk)
	if err != nil {
		m.log.Warn().Err(err).Msg("snapshot traversal failed")
		return
	}
	app := root.AppID()
	if app == "" {
		app = ev.App
	}
	snap := model.Snapshot{ID: uuid.NewString(), App: app, TakenAt: now, Elements: elements}
	select {
	case m.snapshots <- snap:
		m.log.Debug().Str("snapshot", snap.ID).Int("elements", len(elements)).Msg("snapshot delivered")
	default:
		m.log.Warn().Str("snapshot", snap.ID).Msg("snapshot dropped, no reader")
	}
}

func (m *Monitor) toIdle(reason Reason, now time.Time) {
	from, app := m.status.State, m.status.Tracked
	m.status = Status{State: Idle}
	if from == Idle {
		return
	}
	m.notify(Transition{From: from, To: Idle, App: app, Reason: reason, At: now})
}

func (m *Monitor) notify(t Transition) {
	if m.observer != nil {
		m.observer(t)
	}
}
