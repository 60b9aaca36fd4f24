package platform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mj1618/skipad/internal/model"
	"github.com/mj1618/skipad/internal/tree"
)

// ErrNoWindow is returned when the screen has no window to read.
var ErrNoWindow = errors.New("no window available")

// TakeSnapshot flattens the current window of screen into a snapshot with a
// fresh id.
func TakeSnapshot(ctx context.Context, screen Screen, walk tree.Options, now time.Time) (model.Snapshot, error) {
	root, err := screen.Root(ctx)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("reading window: %w", err)
	}
	if root == nil {
		return model.Snapshot{}, ErrNoWindow
	}
	defer tree.Release(root)

	elements, err := tree.Snapshot(root, walk)
	if err != nil {
		return model.Snapshot{}, err
	}
	app := root.AppID()
	if app == "" {
		app, _ = screen.Foreground(ctx)
	}
	return model.Snapshot{ID: uuid.NewString(), App: app, TakenAt: now, Elements: elements}, nil
}
